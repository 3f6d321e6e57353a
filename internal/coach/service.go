package coach

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
)

const minPasswordLength = 8

type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	IsShopAdmin bool
}

// UpdateSettingsRequest holds the settings fields a coach may change.
// Nil fields are left as they are.
type UpdateSettingsRequest struct {
	MustApproveRequests  *bool
	AlertEmails          []string
	NotifyOnRequest      *bool
	NotifyOnConfirmation *bool
	NotifyOnCancellation *bool
}

// Service defines business logic related to coaches.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Coach, error)
	Login(ctx context.Context, email, password string) (*Coach, error)
	GetByID(ctx context.Context, id string) (*Coach, error)
	List(ctx context.Context) ([]*Coach, error)
	// EnsureCoach creates the account unless the email is already registered.
	EnsureCoach(ctx context.Context, req RegisterRequest) (*Coach, error)

	GetSettings(ctx context.Context, coachID string) (*Settings, error)
	UpdateSettings(ctx context.Context, coachID string, req UpdateSettingsRequest) (*Settings, error)
	IsShopAdmin(ctx context.Context, coachID string) (bool, error)

	GetCancellationPolicy(ctx context.Context) (*CancellationPolicy, error)
	UpdateCancellationPolicy(ctx context.Context, minHoursNotice int) (*CancellationPolicy, error)
}

type service struct {
	repo          Repository
	hasher        auth.PasswordHasher
	defaultNotice int
	logger        *zap.Logger
}

// NewService creates a coach Service. defaultNotice is the cancellation notice
// in hours used until a policy row is saved.
func NewService(repo Repository, hasher auth.PasswordHasher, defaultNotice int, logger *zap.Logger) Service {
	return &service{
		repo:          repo,
		hasher:        hasher,
		defaultNotice: defaultNotice,
		logger:        logger,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Coach, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	c := &Coach{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if req.IsShopAdmin {
		settings := DefaultSettings(c.ID)
		settings.IsShopAdmin = true
		if err := s.repo.UpsertSettings(ctx, settings); err != nil {
			return nil, err
		}
	}

	s.logger.Info("coach registered", zap.String("coach_id", c.ID), zap.Bool("shop_admin", req.IsShopAdmin))
	return c, nil
}

func (s *service) EnsureCoach(ctx context.Context, req RegisterRequest) (*Coach, error) {
	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Register(ctx, req)
}

func (s *service) Login(ctx context.Context, email, password string) (*Coach, error) {
	clean := normalizeEmail(email)
	if clean == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	c, err := s.repo.GetByEmail(ctx, clean)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch coach by email: %w", err)
	}

	hash := ""
	if c != nil {
		hash = c.PasswordHash
	}
	if err := s.hasher.Compare(hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Coach, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Coach, error) {
	return s.repo.List(ctx)
}

// GetSettings falls back to the defaults when the coach never saved settings.
func (s *service) GetSettings(ctx context.Context, coachID string) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx, coachID)
	if errors.Is(err, errNoRow) {
		return DefaultSettings(coachID), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *service) UpdateSettings(ctx context.Context, coachID string, req UpdateSettingsRequest) (*Settings, error) {
	settings, err := s.GetSettings(ctx, coachID)
	if err != nil {
		return nil, err
	}

	if req.MustApproveRequests != nil {
		settings.MustApproveRequests = *req.MustApproveRequests
	}
	if req.AlertEmails != nil {
		settings.AlertEmails = normalizeEmails(req.AlertEmails)
	}
	if req.NotifyOnRequest != nil {
		settings.NotifyOnRequest = *req.NotifyOnRequest
	}
	if req.NotifyOnConfirmation != nil {
		settings.NotifyOnConfirmation = *req.NotifyOnConfirmation
	}
	if req.NotifyOnCancellation != nil {
		settings.NotifyOnCancellation = *req.NotifyOnCancellation
	}

	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("coach settings updated",
		zap.String("coach_id", coachID),
		zap.Bool("must_approve_requests", settings.MustApproveRequests),
	)
	return settings, nil
}

func (s *service) IsShopAdmin(ctx context.Context, coachID string) (bool, error) {
	settings, err := s.GetSettings(ctx, coachID)
	if err != nil {
		return false, err
	}
	return settings.IsShopAdmin, nil
}

func (s *service) GetCancellationPolicy(ctx context.Context) (*CancellationPolicy, error) {
	p, err := s.repo.GetPolicy(ctx)
	if errors.Is(err, errNoRow) {
		return &CancellationPolicy{MinHoursNotice: s.defaultNotice}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateCancellationPolicy(ctx context.Context, minHoursNotice int) (*CancellationPolicy, error) {
	if minHoursNotice < 0 {
		return nil, ErrInvalidNotice
	}
	p := &CancellationPolicy{MinHoursNotice: minHoursNotice}
	if err := s.repo.UpsertPolicy(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("cancellation policy updated", zap.Int("min_hours_notice", minHoursNotice))
	return p, nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = normalizeEmail(e); e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
