package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by Compare when the password is wrong.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher hashes and verifies coach passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptPasswordHasher is a PasswordHasher implementation using bcrypt.
type BcryptPasswordHasher struct {
	cost int
	// dummy is compared against when the account does not exist so that a
	// failed lookup costs as much as a failed password.
	dummy []byte
}

// NewBcryptPasswordHasher clamps cost into bcrypt's accepted range.
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &BcryptPasswordHasher{cost: cost, dummy: dummy}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare returns nil on success and ErrPasswordMismatch for a wrong password.
// An empty hash is treated as an unknown account.
func (h *BcryptPasswordHasher) Compare(hash, plain string) error {
	stored := []byte(hash)
	if hash == "" {
		stored = h.dummy
	}
	err := bcrypt.CompareHashAndPassword(stored, []byte(plain))
	if hash == "" || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
