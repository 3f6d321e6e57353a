package apperror

import "maps"

// AppError is an error with an HTTP status code and a user-facing message.
type AppError struct {
	Code    int            // HTTP Status Code (e.g., 400, 404)
	Message string         // User-facing error message
	Details map[string]any // Extra fields rendered next to the message
	Err     error          // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// From derives a new AppError from a sentinel, keeping the sentinel in the
// chain so errors.Is still matches it.
func From(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Message: message,
		Err:     sentinel,
	}
}

// WithDetail returns a copy of e carrying an extra detail field. The copy
// wraps e, so errors.Is(copy, e) holds.
func (e *AppError) WithDetail(key string, value any) *AppError {
	cp := *e
	cp.Err = e
	cp.Details = maps.Clone(e.Details)
	if cp.Details == nil {
		cp.Details = make(map[string]any, 1)
	}
	cp.Details[key] = value
	return &cp
}
