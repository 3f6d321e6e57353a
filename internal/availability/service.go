package availability

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
)

// BookingSource supplies the confirmed private bookings that block slots.
type BookingSource interface {
	// ListConfirmedIntervals returns confirmed private bookings of the coach
	// overlapping [from, to).
	ListConfirmedIntervals(ctx context.Context, coachID string, from, to time.Time) ([]Interval, error)
}

type CreateRuleRequest struct {
	CoachID       string
	Weekdays      []string
	StartMinutes  int
	EndMinutes    int
	EffectiveFrom string
	EffectiveTo   string
}

type CreateExceptionRequest struct {
	CoachID     string
	Date        string
	IsAvailable bool
	Note        string
}

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error)
	DeleteRule(ctx context.Context, coachID, id string) error
	ListRules(ctx context.Context, coachID string) ([]*Rule, error)

	CreateException(ctx context.Context, req CreateExceptionRequest) (*Exception, error)
	DeleteException(ctx context.Context, coachID, id string) error
	ListExceptions(ctx context.Context, coachID, from, to string) ([]*Exception, error)

	// ResolveWindows returns the coach's available windows on a civil date.
	ResolveWindows(ctx context.Context, coachID string, date civiltime.Date) ([]Window, error)
	// ResolveAvailableSlots returns bookable slots of durationMinutes on the
	// civil date localDate ("YYYY-MM-DD").
	ResolveAvailableSlots(ctx context.Context, coachID, localDate string, durationMinutes int) ([]Slot, error)
}

type service struct {
	repo     Repository
	bookings BookingSource
	conv     *civiltime.Converter
	now      func() time.Time
	logger   *zap.Logger
}

// Option customises the service.
type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(repo Repository, bookings BookingSource, conv *civiltime.Converter, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:     repo,
		bookings: bookings,
		conv:     conv,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseOptionalDate(s string) (*civiltime.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := civiltime.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	if req.StartMinutes < 0 || req.EndMinutes > civiltime.MinutesPerDay || req.EndMinutes <= req.StartMinutes {
		return nil, ErrInvalidMinutes
	}
	if len(req.Weekdays) == 0 {
		return nil, ErrInvalidWeekday
	}

	var days []WeekdayCode
	for _, raw := range req.Weekdays {
		code, ok := ParseWeekdayCode(raw)
		if !ok {
			return nil, ErrInvalidWeekday
		}
		if !slices.Contains(days, code) {
			days = append(days, code)
		}
	}

	from, err := parseOptionalDate(req.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(req.EffectiveTo)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrInvalidEffectiveRange
	}

	rule := &Rule{
		CoachID:       req.CoachID,
		Kind:          RuleKindWeekly,
		Weekdays:      days,
		StartMinutes:  req.StartMinutes,
		EndMinutes:    req.EndMinutes,
		EffectiveFrom: from,
		EffectiveTo:   to,
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("availability rule created",
		zap.String("coach_id", rule.CoachID),
		zap.String("rule_id", rule.ID),
	)
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, coachID, id string) error {
	return s.repo.DeleteRule(ctx, coachID, id)
}

func (s *service) ListRules(ctx context.Context, coachID string) ([]*Rule, error) {
	return s.repo.ListRules(ctx, coachID)
}

func (s *service) CreateException(ctx context.Context, req CreateExceptionRequest) (*Exception, error) {
	date, err := civiltime.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	ex := &Exception{
		CoachID:     req.CoachID,
		Date:        date,
		IsAvailable: req.IsAvailable,
		Note:        req.Note,
	}
	if err := s.repo.CreateException(ctx, ex); err != nil {
		return nil, err
	}

	s.logger.Info("availability exception created",
		zap.String("coach_id", ex.CoachID),
		zap.String("date", ex.Date.String()),
		zap.Bool("is_available", ex.IsAvailable),
	)
	return ex, nil
}

func (s *service) DeleteException(ctx context.Context, coachID, id string) error {
	return s.repo.DeleteException(ctx, coachID, id)
}

func (s *service) ListExceptions(ctx context.Context, coachID, from, to string) ([]*Exception, error) {
	today := s.conv.DateOf(s.now())
	fromDate, toDate := today, today.AddDays(90)

	if from != "" {
		d, err := civiltime.ParseDate(from)
		if err != nil {
			return nil, ErrInvalidDate
		}
		fromDate = d
	}
	if to != "" {
		d, err := civiltime.ParseDate(to)
		if err != nil {
			return nil, ErrInvalidDate
		}
		toDate = d
	}
	if fromDate.After(toDate) || toDate.After(fromDate.AddDays(maxExceptionRangeDays)) {
		return nil, ErrInvalidRange
	}

	return s.repo.ListExceptions(ctx, coachID, fromDate, toDate)
}

func (s *service) ResolveWindows(ctx context.Context, coachID string, date civiltime.Date) ([]Window, error) {
	rules, err := s.repo.ListRules(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	exceptions, err := s.repo.ListExceptions(ctx, coachID, date, date)
	if err != nil {
		return nil, fmt.Errorf("load exceptions: %w", err)
	}
	return ResolveWindows(rules, exceptions, date), nil
}

func (s *service) ResolveAvailableSlots(ctx context.Context, coachID, localDate string, durationMinutes int) ([]Slot, error) {
	if durationMinutes <= 0 || durationMinutes > civiltime.MinutesPerDay {
		return nil, ErrInvalidDuration
	}
	date, err := civiltime.ParseDate(localDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	windows, err := s.ResolveWindows(ctx, coachID, date)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []Slot{}, nil
	}

	from := s.conv.LocalMidnightToUTC(date).Add(-bookingFetchMargin)
	to := s.conv.LocalMidnightToUTC(date.AddDays(1)).Add(bookingFetchMargin)
	busy, err := s.bookings.ListConfirmedIntervals(ctx, coachID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load confirmed bookings: %w", err)
	}

	slots := GenerateSlots(s.conv, date, windows, durationMinutes, busy, s.now())
	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}
