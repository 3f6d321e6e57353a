package classes

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
)

// OfferingGetter resolves the service a template sells.
type OfferingGetter interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

type CreateTemplateRequest struct {
	CoachID      string
	ServiceID    string
	Weekday      int
	StartMinutes int
	Capacity     int
}

type UpdateTemplateRequest struct {
	Capacity *int
	IsActive *bool
}

type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error)
	ListTemplates(ctx context.Context, coachID string) ([]*Template, error)
	UpdateTemplate(ctx context.Context, coachID, id string, req UpdateTemplateRequest) (*Template, error)
	// DeleteTemplate removes occurrences, the template and then its service
	// in one transaction. It refuses while any occurrence holds a confirmed booking.
	DeleteTemplate(ctx context.Context, coachID, id string) error

	// GenerateUpcomingOccurrences materialises occurrences of every active
	// template for the next weeks and returns how many were upserted.
	GenerateUpcomingOccurrences(ctx context.Context, weeks int) (int, error)
	ListUpcomingOccurrences(ctx context.Context, filter OccurrenceFilter) ([]*Occurrence, error)
}

type service struct {
	store     Store
	offerings OfferingGetter
	conv      *civiltime.Converter
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(store Store, offerings OfferingGetter, conv *civiltime.Converter, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		store:     store,
		offerings: offerings,
		conv:      conv,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	if req.Weekday < 0 || req.Weekday > 6 {
		return nil, ErrInvalidWeekday
	}
	if req.StartMinutes < 0 || req.StartMinutes >= civiltime.MinutesPerDay {
		return nil, ErrInvalidStartMinutes
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	svc, err := s.offerings.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.Kind != offering.KindClass || svc.CoachID != req.CoachID || !svc.IsActive {
		return nil, ErrServiceNotClass
	}

	t := &Template{
		CoachID:      req.CoachID,
		ServiceID:    req.ServiceID,
		Weekday:      time.Weekday(req.Weekday),
		StartMinutes: req.StartMinutes,
		Capacity:     req.Capacity,
		IsActive:     true,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("class template created",
		zap.String("template_id", t.ID),
		zap.String("coach_id", t.CoachID),
		zap.Stringer("weekday", t.Weekday),
	)
	return t, nil
}

func (s *service) ListTemplates(ctx context.Context, coachID string) ([]*Template, error) {
	return s.store.ListTemplates(ctx, coachID)
}

func (s *service) ownedTemplate(ctx context.Context, repo Repository, coachID, id string) (*Template, error) {
	t, err := repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CoachID != coachID {
		return nil, ErrNotOwner
	}
	return t, nil
}

func (s *service) UpdateTemplate(ctx context.Context, coachID, id string, req UpdateTemplateRequest) (*Template, error) {
	t, err := s.ownedTemplate(ctx, s.store, coachID, id)
	if err != nil {
		return nil, err
	}

	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, ErrInvalidCapacity
		}
		t.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) DeleteTemplate(ctx context.Context, coachID, id string) error {
	err := s.store.WithTx(ctx, func(repo Repository) error {
		t, err := s.ownedTemplate(ctx, repo, coachID, id)
		if err != nil {
			return err
		}

		// A booking committed while we wait for the locks is visible to the check below.
		if err := repo.LockTemplateOccurrences(ctx, t.ID); err != nil {
			return err
		}
		booked, err := repo.TemplateHasConfirmedBookings(ctx, t.ID)
		if err != nil {
			return err
		}
		if booked {
			return ErrTemplateHasBookings
		}

		if err := repo.DeleteOccurrences(ctx, t.ID); err != nil {
			return err
		}
		if err := repo.DeleteTemplate(ctx, t.ID); err != nil {
			return err
		}
		return repo.DeleteOrphanService(ctx, t.ServiceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("class template deleted", zap.String("template_id", id), zap.String("coach_id", coachID))
	return nil
}

// occurrenceDate returns the date with the given weekday inside
// [from, from+7).
func occurrenceDate(from civiltime.Date, weekday time.Weekday) civiltime.Date {
	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDays(offset)
}

func (s *service) GenerateUpcomingOccurrences(ctx context.Context, weeks int) (int, error) {
	if weeks < 1 || weeks > maxWeeks {
		return 0, ErrInvalidWeeks
	}

	templates, err := s.store.ListActiveTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("load templates: %w", err)
	}

	now := s.now()
	today := s.conv.DateOf(now)

	count := 0
	for _, t := range templates {
		for i := range weeks {
			date := occurrenceDate(today.AddDays(7*i), t.Weekday)
			startsAt := s.conv.Combine(date, t.StartMinutes)
			if startsAt.Before(now) {
				continue
			}
			if err := s.store.UpsertOccurrence(ctx, t.ID, startsAt, t.Capacity); err != nil {
				return count, fmt.Errorf("template %s: %w", t.ID, err)
			}
			count++
		}
	}

	s.logger.Info("class occurrences generated",
		zap.Int("templates", len(templates)),
		zap.Int("weeks", weeks),
		zap.Int("upserted", count),
	)
	return count, nil
}

func (s *service) ListUpcomingOccurrences(ctx context.Context, filter OccurrenceFilter) ([]*Occurrence, error) {
	now := s.now()
	if filter.From.IsZero() || filter.From.Before(now) {
		filter.From = now
	}
	if filter.To.IsZero() {
		filter.To = filter.From.AddDate(0, 0, 7*DefaultWeeks)
	}
	if !filter.From.Before(filter.To) {
		return nil, ErrInvalidRange
	}
	return s.store.ListOccurrences(ctx, filter)
}
