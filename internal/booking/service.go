package booking

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
)

// OfferingGetter resolves the service being booked.
type OfferingGetter interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

// SettingsProvider is the part of the coach service bookings depend on.
type SettingsProvider interface {
	GetSettings(ctx context.Context, coachID string) (*coach.Settings, error)
	GetCancellationPolicy(ctx context.Context) (*coach.CancellationPolicy, error)
}

type Template string

const (
	TemplateConfirmation   Template = "confirmation"
	TemplateDecline        Template = "decline"
	TemplateCancellation   Template = "cancellation"
	TemplateApprovalNeeded Template = "approval_needed"
)

// Notifier is invoked only after a state change has been committed. It
// reports its own failures.
type Notifier interface {
	Notify(ctx context.Context, tmpl Template, b *Booking)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Template, *Booking) {}

type CreatePrivateRequest struct {
	CoachID     string
	ServiceID   string
	Start       time.Time
	End         time.Time
	NumAthletes int
	Customer    Customer
}

type CreateClassRequest struct {
	OccurrenceID string
	ServiceID    string
	Customer     Customer
}

type Service interface {
	CreatePrivateBooking(ctx context.Context, req CreatePrivateRequest) (*Booking, error)
	CreateClassBooking(ctx context.Context, req CreateClassRequest) (*Booking, error)

	// Approve, Deny and Cancel return ErrAlreadyResolved together with the
	// current booking when it has already left the source state.
	Approve(ctx context.Context, lookup Lookup) (*Booking, error)
	Deny(ctx context.Context, lookup Lookup, reason string) (*Booking, error)
	Cancel(ctx context.Context, lookup Lookup, actor Actor) (*Booking, error)

	// SweepExpired expires overdue pending requests and returns how many.
	SweepExpired(ctx context.Context) (int, error)

	ListCoachBookings(ctx context.Context, filter Filter) ([]*Booking, int, error)
	GetCoachBooking(ctx context.Context, coachID, id string) (*Booking, error)
}

type service struct {
	store       Store
	offerings   OfferingGetter
	settings    SettingsProvider
	notifier    Notifier
	approvalTTL time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewService(store Store, offerings OfferingGetter, settings SettingsProvider, approvalTTL time.Duration, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		store:       store,
		offerings:   offerings,
		settings:    settings,
		notifier:    nopNotifier{},
		approvalTTL: approvalTTL,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateCustomer(c *Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.AthleteName = strings.TrimSpace(c.AthleteName)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Name == "" || c.Email == "" {
		return ErrInvalidCustomer
	}
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return ErrInvalidCustomer
	}
	return nil
}

func privateKindFor(numAthletes int) PrivateKind {
	if numAthletes > 1 {
		return PrivateSemiPrivate
	}
	return PrivateSolo
}

func (s *service) CreatePrivateBooking(ctx context.Context, req CreatePrivateRequest) (*Booking, error) {
	if req.CoachID == "" || req.ServiceID == "" {
		return nil, ErrInvalidInput
	}
	if !req.Start.Before(req.End) {
		return nil, ErrInvalidInterval
	}
	if req.NumAthletes == 0 {
		req.NumAthletes = 1
	}
	if req.NumAthletes < 1 || req.NumAthletes > maxAthletes {
		return nil, ErrInvalidAthletes
	}
	if err := validateCustomer(&req.Customer); err != nil {
		return nil, err
	}

	now := s.now()
	if !req.Start.After(now) {
		return nil, ErrStartInPast
	}

	off, err := s.offerings.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if off.Kind != offering.KindPrivate || off.CoachID != req.CoachID || !off.IsActive {
		return nil, ErrServiceNotBooking
	}
	if req.End.Sub(req.Start) != off.Duration() {
		return nil, ErrDurationMismatch
	}

	settings, err := s.settings.GetSettings(ctx, req.CoachID)
	if err != nil {
		return nil, err
	}

	kind := privateKindFor(req.NumAthletes)
	b := &Booking{
		Type:              TypePrivate,
		CustomerName:      req.Customer.Name,
		CustomerEmail:     req.Customer.Email,
		AthleteName:       req.Customer.AthleteName,
		Notes:             req.Customer.Notes,
		CoachID:           strPtr(req.CoachID),
		ServiceID:         strPtr(off.ID),
		Start:             req.Start.UTC(),
		End:               req.End.UTC(),
		PriceCents:        off.PriceCents,
		CancellationToken: newToken(),
		NumAthletes:       req.NumAthletes,
		PrivateKind:       &kind,
		OwnerCoachID:      req.CoachID,
		ServiceName:       off.Name,
	}
	if settings.MustApproveRequests {
		b.Status = StatusPending
		b.ApprovalStatus = ApprovalPending
		b.ApprovalToken = strPtr(newToken())
		b.AutoExpireAt = timePtr(approvalDeadline(now, b.Start, s.approvalTTL).UTC())
	} else {
		b.Status = StatusConfirmed
		b.ApprovalStatus = ApprovalNotRequired
	}

	var declined []*Booking
	err = s.store.WithTx(ctx, func(repo Repository) error {
		if err := guardPrivate(ctx, repo, req.CoachID, b.Start, b.End, ""); err != nil {
			return err
		}
		if err := repo.Create(ctx, b); err != nil {
			return err
		}
		if b.Status == StatusConfirmed {
			declined, err = declineOverlappingPending(ctx, repo, b, now)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Private booking created",
		zap.String("booking_id", b.ID),
		zap.String("coach_id", req.CoachID),
		zap.String("status", string(b.Status)),
		zap.Time("start", b.Start),
	)

	if b.Status == StatusPending {
		s.notify(ctx, TemplateApprovalNeeded, b)
	} else {
		s.notify(ctx, TemplateConfirmation, b)
	}
	s.notifyAll(ctx, TemplateDecline, declined)
	return b, nil
}

func (s *service) CreateClassBooking(ctx context.Context, req CreateClassRequest) (*Booking, error) {
	if req.OccurrenceID == "" || req.ServiceID == "" {
		return nil, ErrInvalidInput
	}
	if err := validateCustomer(&req.Customer); err != nil {
		return nil, err
	}

	off, err := s.offerings.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if off.Kind != offering.KindClass {
		return nil, ErrServiceNotBooking
	}

	now := s.now()
	var b *Booking
	err = s.store.WithTx(ctx, func(repo Repository) error {
		occ, err := repo.LockOccurrence(ctx, req.OccurrenceID)
		if err != nil {
			return err
		}
		if occ.Status != classes.OccurrenceScheduled || !occ.StartsAt.After(now) || occ.ServiceID != off.ID {
			return ErrUnavailable
		}

		taken, err := repo.CountConfirmedForOccurrence(ctx, occ.ID)
		if err != nil {
			return err
		}
		if taken >= occ.Capacity {
			return ErrCapacity
		}

		b = &Booking{
			Type:              TypeClass,
			Status:            StatusConfirmed,
			ApprovalStatus:    ApprovalNotRequired,
			CustomerName:      req.Customer.Name,
			CustomerEmail:     req.Customer.Email,
			AthleteName:       req.Customer.AthleteName,
			Notes:             req.Customer.Notes,
			ServiceID:         strPtr(off.ID),
			ClassOccurrenceID: strPtr(occ.ID),
			Start:             occ.StartsAt.UTC(),
			End:               occ.StartsAt.Add(off.Duration()).UTC(),
			PriceCents:        off.PriceCents,
			CancellationToken: newToken(),
			NumAthletes:       1,
			OwnerCoachID:      occ.CoachID,
			ServiceName:       off.Name,
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class booking created",
		zap.String("booking_id", b.ID),
		zap.String("occurrence_id", req.OccurrenceID),
	)
	s.notify(ctx, TemplateConfirmation, b)
	return b, nil
}

// findBooking resolves a lookup with the given readers. A token wins over an
// ID; an ID is only accepted together with the owning coach.
func findBooking(ctx context.Context, lookup Lookup, byToken, byID func(context.Context, string) (*Booking, error)) (*Booking, error) {
	switch {
	case lookup.Token != "":
		return byToken(ctx, lookup.Token)
	case lookup.ID != "" && lookup.CoachID != "":
		b, err := byID(ctx, lookup.ID)
		if err != nil {
			return nil, err
		}
		if b.OwnerCoachID != lookup.CoachID {
			return nil, ErrForbidden
		}
		return b, nil
	default:
		return nil, ErrInvalidInput
	}
}

func (s *service) Approve(ctx context.Context, lookup Lookup) (*Booking, error) {
	now := s.now()

	var (
		b        *Booking
		declined []*Booking
		expired  bool
	)
	err := s.store.WithTx(ctx, func(repo Repository) error {
		// The coach lock is taken before the row lock, in the same order as
		// the cascade that declines overlapping requests.
		owner, err := findBooking(ctx, lookup, repo.GetByApprovalToken, repo.GetByID)
		if err != nil {
			return err
		}
		if err := repo.LockCoach(ctx, owner.OwnerCoachID); err != nil {
			return err
		}
		b, err = findBooking(ctx, lookup, repo.LockByApprovalToken, repo.LockByID)
		if err != nil {
			return err
		}

		switch err := b.checkAwaitingApproval(now); {
		case errors.Is(err, ErrExpired):
			// Commit the expiry; the caller still gets ErrExpired.
			b.markExpired(now)
			expired = true
			return repo.UpdateState(ctx, b)
		case err != nil:
			return err
		}

		if err := guardPrivate(ctx, repo, b.OwnerCoachID, b.Start, b.End, b.ID); err != nil {
			return err
		}
		b.markApproved(now)
		if err := repo.UpdateState(ctx, b); err != nil {
			return err
		}
		declined, err = declineOverlappingPending(ctx, repo, b, now)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return b, err
		}
		return nil, err
	}

	if expired {
		s.logger.Info("Booking expired on approval", zap.String("booking_id", b.ID))
		s.notify(ctx, TemplateDecline, b)
		return b, ErrExpired
	}

	s.logger.Info("Booking approved",
		zap.String("booking_id", b.ID),
		zap.Int("auto_declined", len(declined)),
	)
	s.notify(ctx, TemplateConfirmation, b)
	s.notifyAll(ctx, TemplateDecline, declined)
	return b, nil
}

func (s *service) Deny(ctx context.Context, lookup Lookup, reason string) (*Booking, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)

	var (
		b       *Booking
		expired bool
	)
	err := s.store.WithTx(ctx, func(repo Repository) error {
		var err error
		b, err = findBooking(ctx, lookup, repo.LockByApprovalToken, repo.LockByID)
		if err != nil {
			return err
		}

		switch err := b.checkAwaitingApproval(now); {
		case errors.Is(err, ErrExpired):
			b.markExpired(now)
			expired = true
			return repo.UpdateState(ctx, b)
		case err != nil:
			return err
		}

		b.markDenied(now, reason)
		return repo.UpdateState(ctx, b)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return b, err
		}
		return nil, err
	}

	s.notify(ctx, TemplateDecline, b)
	if expired {
		return b, ErrExpired
	}
	s.logger.Info("Booking denied", zap.String("booking_id", b.ID))
	return b, nil
}

func (s *service) Cancel(ctx context.Context, lookup Lookup, actor Actor) (*Booking, error) {
	switch actor {
	case ActorCustomer:
		if lookup.Token == "" {
			return nil, ErrInvalidInput
		}
	case ActorCoach:
		if lookup.ID == "" || lookup.CoachID == "" {
			return nil, ErrInvalidInput
		}
		lookup.Token = ""
	default:
		return nil, ErrInvalidInput
	}

	var notice time.Duration
	var minHours int
	if actor == ActorCustomer {
		policy, err := s.settings.GetCancellationPolicy(ctx)
		if err != nil {
			return nil, err
		}
		notice, minHours = policy.Notice(), policy.MinHoursNotice
	}

	now := s.now()
	var (
		b                 *Booking
		occurrenceEmptied bool
	)
	err := s.store.WithTx(ctx, func(repo Repository) error {
		var err error
		b, err = findBooking(ctx, lookup, repo.LockByCancellationToken, repo.LockByID)
		if err != nil {
			return err
		}
		if b.Status == StatusCancelled {
			return ErrAlreadyResolved
		}

		wasConfirmed := b.Status == StatusConfirmed
		if wasConfirmed && actor == ActorCustomer && b.insideNotice(now, notice) {
			return policyViolation(minHours)
		}

		if b.ClassOccurrenceID != nil {
			// Serialise with seat allocation before counting.
			if _, err := repo.LockOccurrence(ctx, *b.ClassOccurrenceID); err != nil {
				return err
			}
		}

		b.markCancelled(now)
		if err := repo.UpdateState(ctx, b); err != nil {
			return err
		}

		if b.ClassOccurrenceID != nil && wasConfirmed {
			left, err := repo.CountConfirmedForOccurrence(ctx, *b.ClassOccurrenceID)
			if err != nil {
				return err
			}
			if left == 0 {
				occurrenceEmptied = true
				return repo.CancelOccurrence(ctx, *b.ClassOccurrenceID)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return b, err
		}
		return nil, err
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", b.ID),
		zap.String("actor", string(actor)),
		zap.Bool("occurrence_cancelled", occurrenceEmptied),
	)
	s.notify(ctx, TemplateCancellation, b)
	return b, nil
}

func policyViolation(minHours int) error {
	return ErrPolicyViolation.WithDetail("min_hours_notice", minHours)
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	ids, err := s.store.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	s.logger.Info("Expired pending bookings", zap.Int("count", len(ids)))
	for _, id := range ids {
		b, err := s.store.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to load expired booking for notification",
				zap.String("booking_id", id), zap.Error(err))
			continue
		}
		s.notify(ctx, TemplateDecline, b)
	}
	return len(ids), nil
}

func (s *service) ListCoachBookings(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.CoachID == "" {
		return nil, 0, ErrInvalidInput
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, ErrInvalidInterval
	}
	return s.store.List(ctx, filter)
}

func (s *service) GetCoachBooking(ctx context.Context, coachID, id string) (*Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerCoachID != coachID {
		return nil, ErrForbidden
	}
	return b, nil
}

// notify detaches from the request so a client hanging up after commit does
// not cancel delivery.
func (s *service) notify(ctx context.Context, tmpl Template, b *Booking) {
	s.notifier.Notify(context.WithoutCancel(ctx), tmpl, b)
}

func (s *service) notifyAll(ctx context.Context, tmpl Template, bs []*Booking) {
	for _, b := range bs {
		s.notify(ctx, tmpl, b)
	}
}

// newToken returns 32 hex characters from a random UUID.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
