package offering

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type CreateRequest struct {
	CoachID         string
	Name            string
	Kind            Kind
	DurationMinutes int
	PriceCents      int
}

type UpdateRequest struct {
	Name            *string
	DurationMinutes *int
	PriceCents      *int
	IsActive        *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Offering, error)
	GetByID(ctx context.Context, id string) (*Offering, error)
	List(ctx context.Context, filter Filter) ([]*Offering, int, error)
	Update(ctx context.Context, coachID, id string, req UpdateRequest) (*Offering, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func validDuration(m int) bool {
	return m > 0 && m <= 24*60
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Offering, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !req.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if !validDuration(req.DurationMinutes) {
		return nil, ErrInvalidDuration
	}
	if req.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}

	o := &Offering{
		CoachID:         req.CoachID,
		Name:            name,
		Kind:            req.Kind,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("service created",
		zap.String("service_id", o.ID),
		zap.String("coach_id", o.CoachID),
		zap.String("kind", string(o.Kind)),
	)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Offering, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Offering, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, coachID, id string, req UpdateRequest) (*Offering, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CoachID != coachID {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		o.Name = name
	}
	if req.DurationMinutes != nil {
		if !validDuration(*req.DurationMinutes) {
			return nil, ErrInvalidDuration
		}
		o.DurationMinutes = *req.DurationMinutes
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, ErrInvalidPrice
		}
		o.PriceCents = *req.PriceCents
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
