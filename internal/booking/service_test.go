package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

const (
	coachA = "coach-a"
	coachB = "coach-b"
)

// Monday 2025-10-27 08:00 PDT.
var testNow = time.Date(2025, 10, 27, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	settings *fakeSettings
	notifier *recordingNotifier
	now      time.Time
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newMemStore(),
		settings: &fakeSettings{minHours: 24},
		now:      testNow,
	}
	f.notifier = &recordingNotifier{store: f.store}
	offerings := fakeOfferings{
		"svc-private": {ID: "svc-private", CoachID: coachA, Name: "Private lesson", Kind: offering.KindPrivate, DurationMinutes: 60, PriceCents: 9000, IsActive: true},
		"svc-retired": {ID: "svc-retired", CoachID: coachA, Name: "Old lesson", Kind: offering.KindPrivate, DurationMinutes: 60, IsActive: false},
		"svc-b":       {ID: "svc-b", CoachID: coachB, Name: "B lesson", Kind: offering.KindPrivate, DurationMinutes: 60, IsActive: true},
		"svc-class":   {ID: "svc-class", CoachID: coachA, Name: "Group class", Kind: offering.KindClass, DurationMinutes: 90, PriceCents: 2500, IsActive: true},
	}
	f.svc = NewService(f.store, offerings, f.settings, 24*time.Hour, zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
		WithNotifier(f.notifier),
	)
	return f
}

func customer() Customer {
	return Customer{Name: "Sam Rivera", Email: "sam@example.com", AthleteName: "Jo Rivera"}
}

// at returns testNow shifted by h hours.
func at(h float64) time.Time {
	return testNow.Add(time.Duration(h * float64(time.Hour)))
}

func (f *fixture) book(t *testing.T, startH float64) *Booking {
	t.Helper()
	b, err := f.svc.CreatePrivateBooking(context.Background(), CreatePrivateRequest{
		CoachID: coachA, ServiceID: "svc-private", Start: at(startH), End: at(startH + 1), Customer: customer(),
	})
	require.NoError(t, err)
	return b
}

func TestCreatePrivateBooking_DirectConfirm(t *testing.T) {
	f := newFixture(t)

	b := f.book(t, 48)

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, ApprovalNotRequired, b.ApprovalStatus)
	assert.Nil(t, b.ApprovalToken)
	assert.Nil(t, b.AutoExpireAt)
	assert.Len(t, b.CancellationToken, 32)
	assert.Equal(t, 9000, b.PriceCents)
	require.NotNil(t, b.PrivateKind)
	assert.Equal(t, PrivateSolo, *b.PrivateKind)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sent{tmpl: TemplateConfirmation, id: b.ID, status: StatusConfirmed}, f.notifier.sent[0])
}

func TestCreatePrivateBooking_RequiresApproval(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true

	far := f.book(t, 72)
	assert.Equal(t, StatusPending, far.Status)
	assert.Equal(t, ApprovalPending, far.ApprovalStatus)
	require.NotNil(t, far.ApprovalToken)
	assert.NotEqual(t, far.CancellationToken, *far.ApprovalToken)
	require.NotNil(t, far.AutoExpireAt)
	assert.Equal(t, testNow.Add(24*time.Hour), *far.AutoExpireAt)

	// A lesson starting before the TTL elapses expires at its start.
	soon := f.book(t, 5)
	require.NotNil(t, soon.AutoExpireAt)
	assert.Equal(t, at(5), *soon.AutoExpireAt)

	assert.Equal(t, []Template{TemplateApprovalNeeded, TemplateApprovalNeeded}, f.notifier.templates())
}

func TestCreatePrivateBooking_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreatePrivateRequest)
		want   error
	}{
		{name: "end before start", mutate: func(r *CreatePrivateRequest) { r.End = r.Start.Add(-time.Hour) }, want: ErrInvalidInterval},
		{name: "zero length", mutate: func(r *CreatePrivateRequest) { r.End = r.Start }, want: ErrInvalidInterval},
		{name: "in the past", mutate: func(r *CreatePrivateRequest) { r.Start, r.End = at(-2), at(-1) }, want: ErrStartInPast},
		{name: "wrong length", mutate: func(r *CreatePrivateRequest) { r.End = r.Start.Add(30 * time.Minute) }, want: ErrDurationMismatch},
		{name: "class service", mutate: func(r *CreatePrivateRequest) { r.ServiceID = "svc-class" }, want: ErrServiceNotBooking},
		{name: "other coach's service", mutate: func(r *CreatePrivateRequest) { r.ServiceID = "svc-b" }, want: ErrServiceNotBooking},
		{name: "inactive service", mutate: func(r *CreatePrivateRequest) { r.ServiceID = "svc-retired" }, want: ErrServiceNotBooking},
		{name: "unknown service", mutate: func(r *CreatePrivateRequest) { r.ServiceID = "missing" }, want: offering.ErrNotFound},
		{name: "missing customer", mutate: func(r *CreatePrivateRequest) { r.Customer.Name = "  " }, want: ErrInvalidCustomer},
		{name: "bad email", mutate: func(r *CreatePrivateRequest) { r.Customer.Email = "not-an-email" }, want: ErrInvalidCustomer},
		{name: "too many athletes", mutate: func(r *CreatePrivateRequest) { r.NumAthletes = 5 }, want: ErrInvalidAthletes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := CreatePrivateRequest{CoachID: coachA, ServiceID: "svc-private", Start: at(24), End: at(25), Customer: customer()}
			tt.mutate(&req)

			_, err := f.svc.CreatePrivateBooking(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.writes)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestCreatePrivateBooking_SemiPrivate(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.CreatePrivateBooking(context.Background(), CreatePrivateRequest{
		CoachID: coachA, ServiceID: "svc-private", Start: at(24), End: at(25), NumAthletes: 2, Customer: customer(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, b.NumAthletes)
	assert.Equal(t, PrivateSemiPrivate, *b.PrivateKind)
}

func TestCreatePrivateBooking_Conflict(t *testing.T) {
	f := newFixture(t)
	f.book(t, 24)

	tests := []struct {
		name  string
		start float64
		want  error
	}{
		{name: "same slot", start: 24, want: ErrConflict},
		{name: "starts inside", start: 24.5, want: ErrConflict},
		{name: "ends inside", start: 23.5, want: ErrConflict},
		{name: "touching after", start: 25},
		{name: "touching before", start: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(f.notifier.sent)
			_, err := f.svc.CreatePrivateBooking(context.Background(), CreatePrivateRequest{
				CoachID: coachA, ServiceID: "svc-private", Start: at(tt.start), End: at(tt.start + 1), Customer: customer(),
			})
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				assert.Len(t, f.notifier.sent, before, "no notification for a rolled back booking")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreatePrivateBooking_NoOverlapUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	f.notifier.store = nil

	const writers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every request overlaps every other one.
			start := at(24 + float64(i%3)*0.25)
			_, err := f.svc.CreatePrivateBooking(context.Background(), CreatePrivateRequest{
				CoachID: coachA, ServiceID: "svc-private", Start: start, End: start.Add(time.Hour),
				Customer: Customer{Name: fmt.Sprintf("Customer %d", i), Email: "c@example.com"},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicts)
}

func TestCreatePrivateBooking_DirectConfirmDeclinesPending(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	pending := f.book(t, 24)

	f.settings.mustApprove = false
	confirmed := f.book(t, 24.5)

	assert.Equal(t, StatusConfirmed, confirmed.Status)
	got := f.store.get(pending.ID)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, ApprovalDenied, got.ApprovalStatus)
	require.NotNil(t, got.DenialReason)
	assert.Equal(t, autoDeclineReason, *got.DenialReason)
}

func TestApprove_CascadesOverlappingPending(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true

	a := f.book(t, 24)
	b := f.book(t, 24.5)
	c := f.book(t, 26)
	other := f.book(t, 23.75)
	f.notifier.sent = nil

	got, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, ApprovalApproved, got.ApprovalStatus)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, testNow, *got.ApprovedAt)

	for _, id := range []string{b.ID, other.ID} {
		declined := f.store.get(id)
		assert.Equal(t, StatusCancelled, declined.Status, id)
		assert.Equal(t, ApprovalDenied, declined.ApprovalStatus, id)
		assert.Equal(t, autoDeclineReason, *declined.DenialReason, id)
		assert.Equal(t, testNow, *declined.CancelledAt, id)
	}
	assert.Equal(t, StatusPending, f.store.get(c.ID).Status, "non-overlapping request untouched")

	require.Len(t, f.notifier.sent, 3)
	assert.Equal(t, sent{tmpl: TemplateConfirmation, id: a.ID, status: StatusConfirmed}, f.notifier.sent[0])
	assert.Equal(t, TemplateDecline, f.notifier.sent[1].tmpl)
	assert.Equal(t, TemplateDecline, f.notifier.sent[2].tmpl)
}

func TestApprove_LocksCoachBeforeBookingRows(t *testing.T) {
	tests := []struct {
		name   string
		lookup func(a *Booking) Lookup
	}{
		{name: "by token", lookup: func(a *Booking) Lookup { return Lookup{Token: *a.ApprovalToken} }},
		{name: "by id", lookup: func(a *Booking) Lookup { return Lookup{ID: a.ID, CoachID: coachA} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.settings.mustApprove = true
			a := f.book(t, 24)
			b := f.book(t, 24.5)

			_, err := f.svc.Approve(context.Background(), tt.lookup(a))
			require.NoError(t, err)

			// The decline cascade locks overlapping rows while holding the
			// coach lock, so the approved row must not be locked before it.
			assert.Equal(t, []string{"coach:" + coachA, "row:" + a.ID, "coach:" + coachA, "row:" + b.ID}, f.store.locks)
		})
	}
}

func TestApprove_AlreadyResolved(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 24)

	_, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.NoError(t, err)
	sentBefore := len(f.notifier.sent)

	got, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.ErrorIs(t, err, ErrAlreadyResolved)
	require.NotNil(t, got)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Len(t, f.notifier.sent, sentBefore)

	got, err = f.svc.Deny(context.Background(), Lookup{Token: *a.ApprovalToken}, "too late")
	require.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestApprove_PastDeadlineExpires(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 72)

	f.now = a.AutoExpireAt.Add(time.Second)
	got, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.ErrorIs(t, err, ErrExpired)
	require.NotNil(t, got)

	stored := f.store.get(a.ID)
	assert.Equal(t, StatusCancelled, stored.Status, "expiry is committed")
	assert.Equal(t, ApprovalExpired, stored.ApprovalStatus)

	_, err = f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestApprove_ExactlyAtDeadlineExpires(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 72)

	f.now = *a.AutoExpireAt
	_, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.ErrorIs(t, err, ErrExpired)
}

func TestApprove_ConflictKeepsPending(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 24)

	f.store.put(Booking{
		Type: TypePrivate, Status: StatusConfirmed, ApprovalStatus: ApprovalNotRequired,
		CoachID: strPtr(coachA), OwnerCoachID: coachA, Start: at(24.5), End: at(25.5),
	})

	_, err := f.svc.Approve(context.Background(), Lookup{Token: *a.ApprovalToken})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, StatusPending, f.store.get(a.ID).Status)
}

func TestApprove_ByIDChecksOwnership(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 24)

	_, err := f.svc.Approve(context.Background(), Lookup{ID: a.ID, CoachID: coachB})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Approve(context.Background(), Lookup{ID: a.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := f.svc.Approve(context.Background(), Lookup{ID: a.ID, CoachID: coachA})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestDeny(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	a := f.book(t, 24)
	f.notifier.sent = nil

	got, err := f.svc.Deny(context.Background(), Lookup{Token: *a.ApprovalToken}, "  fully booked that week ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, ApprovalDenied, got.ApprovalStatus)
	assert.Equal(t, "fully booked that week", *got.DenialReason)
	assert.Equal(t, testNow, *got.DeniedAt)
	assert.Equal(t, []Template{TemplateDecline}, f.notifier.templates())

	_, err = f.svc.Deny(context.Background(), Lookup{Token: "unknown-token-value"}, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	soon := f.book(t, 2)  // expires at its start
	later := f.book(t, 6) // expires at its start
	far := f.book(t, 72)  // expires after 24h
	f.notifier.sent = nil

	f.now = at(6)
	n, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []Template{TemplateDecline, TemplateDecline}, f.notifier.templates())

	for _, id := range []string{soon.ID, later.ID} {
		b := f.store.get(id)
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, ApprovalExpired, b.ApprovalStatus)
	}
	assert.Equal(t, StatusPending, f.store.get(far.ID).Status)

	n, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "re-running is a no-op")

	// Expired requests never return to PENDING, even if approval is attempted.
	_, err = f.svc.Approve(context.Background(), Lookup{Token: *soon.ApprovalToken})
	require.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, ApprovalExpired, f.store.get(soon.ID).ApprovalStatus)
}

func TestCancel_CustomerNoticeWindow(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, 10)

	_, err := f.svc.Cancel(context.Background(), Lookup{Token: b.CancellationToken}, ActorCustomer)
	require.ErrorIs(t, err, ErrPolicyViolation)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 24, appErr.Details["min_hours_notice"])
	assert.Equal(t, StatusConfirmed, f.store.get(b.ID).Status)

	// The coach is not bound by the window.
	got, err := f.svc.Cancel(context.Background(), Lookup{ID: b.ID, CoachID: coachA}, ActorCoach)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.True(t, got.WasConfirmed())

	_, err = f.svc.Cancel(context.Background(), Lookup{ID: b.ID, CoachID: coachA}, ActorCoach)
	require.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestCancel_CustomerOutsideWindow(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, 48)
	f.notifier.sent = nil

	got, err := f.svc.Cancel(context.Background(), Lookup{Token: b.CancellationToken}, ActorCustomer)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, testNow, *got.CancelledAt)
	assert.Equal(t, []Template{TemplateCancellation}, f.notifier.templates())
}

func TestCancel_PendingIsUnconditional(t *testing.T) {
	f := newFixture(t)
	f.settings.mustApprove = true
	b := f.book(t, 1)

	got, err := f.svc.Cancel(context.Background(), Lookup{Token: b.CancellationToken}, ActorCustomer)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, ApprovalPending, got.ApprovalStatus)
	assert.False(t, got.WasConfirmed())
}

func TestCancel_ActorMustMatchLookup(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, 48)

	_, err := f.svc.Cancel(context.Background(), Lookup{ID: b.ID, CoachID: coachA}, ActorCustomer)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Cancel(context.Background(), Lookup{Token: b.CancellationToken}, ActorCoach)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Cancel(context.Background(), Lookup{ID: b.ID, CoachID: coachB}, ActorCoach)
	require.ErrorIs(t, err, ErrForbidden)
}

func (f *fixture) addOccurrence(o classes.Occurrence) {
	f.store.occurrences[o.ID] = o
}

func (f *fixture) bookClass(t *testing.T, occurrenceID string) (*Booking, error) {
	t.Helper()
	return f.svc.CreateClassBooking(context.Background(), CreateClassRequest{
		OccurrenceID: occurrenceID, ServiceID: "svc-class", Customer: customer(),
	})
}

func TestCreateClassBooking_CapacityAndAutoCancel(t *testing.T) {
	f := newFixture(t)
	f.addOccurrence(classes.Occurrence{
		ID: "occ-1", StartsAt: at(30), Capacity: 2, Status: classes.OccurrenceScheduled,
		CoachID: coachA, ServiceID: "svc-class",
	})

	first, err := f.bookClass(t, "occ-1")
	require.NoError(t, err)
	assert.Equal(t, TypeClass, first.Type)
	assert.Equal(t, StatusConfirmed, first.Status)
	assert.Nil(t, first.CoachID)
	assert.Equal(t, coachA, first.OwnerCoachID)
	assert.Equal(t, at(31.5), first.End)
	assert.Equal(t, 2500, first.PriceCents)

	second, err := f.bookClass(t, "occ-1")
	require.NoError(t, err)

	_, err = f.bookClass(t, "occ-1")
	require.ErrorIs(t, err, ErrCapacity)

	_, err = f.svc.Cancel(context.Background(), Lookup{Token: first.CancellationToken}, ActorCustomer)
	require.NoError(t, err)
	assert.Equal(t, classes.OccurrenceScheduled, f.store.occurrences["occ-1"].Status)

	_, err = f.svc.Cancel(context.Background(), Lookup{Token: second.CancellationToken}, ActorCustomer)
	require.NoError(t, err)
	assert.Equal(t, classes.OccurrenceCancelled, f.store.occurrences["occ-1"].Status)

	_, err = f.bookClass(t, "occ-1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateClassBooking_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		occ  classes.Occurrence
		want error
	}{
		{
			name: "cancelled occurrence",
			occ:  classes.Occurrence{ID: "occ", StartsAt: at(30), Capacity: 5, Status: classes.OccurrenceCancelled, ServiceID: "svc-class"},
			want: ErrUnavailable,
		},
		{
			name: "already started",
			occ:  classes.Occurrence{ID: "occ", StartsAt: at(-1), Capacity: 5, Status: classes.OccurrenceScheduled, ServiceID: "svc-class"},
			want: ErrUnavailable,
		},
		{
			name: "different service",
			occ:  classes.Occurrence{ID: "occ", StartsAt: at(30), Capacity: 5, Status: classes.OccurrenceScheduled, ServiceID: "svc-other"},
			want: ErrUnavailable,
		},
		{
			name: "unknown occurrence",
			occ:  classes.Occurrence{ID: "elsewhere", StartsAt: at(30), Capacity: 5, Status: classes.OccurrenceScheduled, ServiceID: "svc-class"},
			want: classes.ErrOccurrenceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addOccurrence(tt.occ)

			_, err := f.bookClass(t, "occ")
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.writes)
		})
	}
}

func TestCreateClassBooking_RejectsPrivateService(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateClassBooking(context.Background(), CreateClassRequest{
		OccurrenceID: "occ", ServiceID: "svc-private", Customer: customer(),
	})
	require.ErrorIs(t, err, ErrServiceNotBooking)
}

func TestListAndGetCoachBookings(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, 24)
	f.book(t, 48)

	items, total, err := f.svc.ListCoachBookings(context.Background(), Filter{CoachID: coachA, Status: StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	from, to := at(10), at(5)
	_, _, err = f.svc.ListCoachBookings(context.Background(), Filter{CoachID: coachA, From: &from, To: &to})
	require.ErrorIs(t, err, ErrInvalidInterval)

	got, err := f.svc.GetCoachBooking(context.Background(), coachA, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.GetCoachBooking(context.Background(), coachB, b.ID)
	require.ErrorIs(t, err, ErrForbidden)
}
