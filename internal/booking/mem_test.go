package booking

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
)

// memRepo keeps committed state; memStore.WithTx restores a snapshot when fn fails.
type memRepo struct {
	bookings    map[string]Booking
	occurrences map[string]classes.Occurrence
	seq         int
	writes      int
	// locks records LockCoach and row-lock calls in order.
	locks []string
}

type memStore struct {
	*memRepo
	mu sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{memRepo: &memRepo{
		bookings:    map[string]Booking{},
		occurrences: map[string]classes.Occurrence{},
	}}
}

func (m *memStore) WithTx(_ context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := maps.Clone(m.bookings)
	occurrences := maps.Clone(m.occurrences)
	m.locks = nil
	if err := fn(m.memRepo); err != nil {
		m.bookings, m.occurrences = bookings, occurrences
		return err
	}
	return nil
}

// put stores a booking directly, bypassing the service.
func (m *memStore) put(b Booking) *Booking {
	m.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("bk-%03d", m.seq)
	}
	if b.CancellationToken == "" {
		b.CancellationToken = fmt.Sprintf("cancel-token-%03d", m.seq)
	}
	m.bookings[b.ID] = b
	return &b
}

func (m *memStore) get(id string) Booking {
	return m.bookings[id]
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.seq++
	r.writes++
	b.ID = fmt.Sprintf("bk-%03d", r.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memRepo) UpdateState(_ context.Context, b *Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	r.writes++
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, id := range slices.Sorted(maps.Keys(r.bookings)) {
		b := r.bookings[id]
		if b.OwnerCoachID != f.CoachID || (f.Status != "" && b.Status != f.Status) {
			continue
		}
		out = append(out, &b)
	}
	return out, len(out), nil
}

func (r *memRepo) LockByID(ctx context.Context, id string) (*Booking, error) {
	r.locks = append(r.locks, "row:"+id)
	return r.GetByID(ctx, id)
}

func (r *memRepo) find(match func(Booking) bool) (*Booking, error) {
	for _, b := range r.bookings {
		if match(b) {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByApprovalToken(_ context.Context, token string) (*Booking, error) {
	return r.find(func(b Booking) bool { return b.ApprovalToken != nil && *b.ApprovalToken == token })
}

func (r *memRepo) LockByApprovalToken(ctx context.Context, token string) (*Booking, error) {
	b, err := r.GetByApprovalToken(ctx, token)
	if err == nil {
		r.locks = append(r.locks, "row:"+b.ID)
	}
	return b, err
}

func (r *memRepo) LockByCancellationToken(_ context.Context, token string) (*Booking, error) {
	b, err := r.find(func(b Booking) bool { return b.CancellationToken == token })
	if err == nil {
		r.locks = append(r.locks, "row:"+b.ID)
	}
	return b, err
}

func (r *memRepo) LockCoach(_ context.Context, coachID string) error {
	r.locks = append(r.locks, "coach:"+coachID)
	return nil
}

func (r *memRepo) overlapping(coachID string, status Status, start, end time.Time, excludeID string) []string {
	want := availability.Interval{Start: start, End: end}
	var ids []string
	for _, id := range slices.Sorted(maps.Keys(r.bookings)) {
		b := r.bookings[id]
		if id == excludeID || b.Type != TypePrivate || b.Status != status || b.OwnerCoachID != coachID {
			continue
		}
		if want.Overlaps(availability.Interval{Start: b.Start, End: b.End}) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *memRepo) HasConfirmedOverlap(_ context.Context, coachID string, start, end time.Time, excludeID string) (bool, error) {
	return len(r.overlapping(coachID, StatusConfirmed, start, end, excludeID)) > 0, nil
}

func (r *memRepo) ListOverlappingPending(_ context.Context, coachID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	var out []*Booking
	for _, id := range r.overlapping(coachID, StatusPending, start, end, excludeID) {
		if b := r.bookings[id]; b.ApprovalStatus == ApprovalPending {
			r.locks = append(r.locks, "row:"+id)
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *memRepo) ExpirePending(_ context.Context, now time.Time) ([]string, error) {
	var ids []string
	for _, id := range slices.Sorted(maps.Keys(r.bookings)) {
		b := r.bookings[id]
		if b.isAwaitingApproval() && b.approvalExpired(now) {
			b.markExpired(now)
			r.bookings[id] = b
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memRepo) LockOccurrence(_ context.Context, id string) (*classes.Occurrence, error) {
	o, ok := r.occurrences[id]
	if !ok {
		return nil, classes.ErrOccurrenceNotFound
	}
	return &o, nil
}

func (r *memRepo) CountConfirmedForOccurrence(_ context.Context, occurrenceID string) (int, error) {
	n := 0
	for _, b := range r.bookings {
		if b.ClassOccurrenceID != nil && *b.ClassOccurrenceID == occurrenceID && b.Status == StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CancelOccurrence(_ context.Context, occurrenceID string) error {
	o := r.occurrences[occurrenceID]
	o.Status = classes.OccurrenceCancelled
	r.occurrences[occurrenceID] = o
	return nil
}

func (r *memRepo) ListConfirmedIntervals(_ context.Context, coachID string, from, to time.Time) ([]availability.Interval, error) {
	var out []availability.Interval
	for _, id := range r.overlapping(coachID, StatusConfirmed, from, to, "") {
		b := r.bookings[id]
		out = append(out, availability.Interval{Start: b.Start, End: b.End})
	}
	return out, nil
}

type fakeOfferings map[string]*offering.Offering

func (f fakeOfferings) GetByID(_ context.Context, id string) (*offering.Offering, error) {
	o, ok := f[id]
	if !ok {
		return nil, offering.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type fakeSettings struct {
	mustApprove bool
	minHours    int
}

func (f *fakeSettings) GetSettings(_ context.Context, coachID string) (*coach.Settings, error) {
	s := coach.DefaultSettings(coachID)
	s.MustApproveRequests = f.mustApprove
	return s, nil
}

func (f *fakeSettings) GetCancellationPolicy(context.Context) (*coach.CancellationPolicy, error) {
	return &coach.CancellationPolicy{MinHoursNotice: f.minHours}, nil
}

type sent struct {
	tmpl   Template
	id     string
	status Status
}

// recordingNotifier also records the committed status at delivery time.
type recordingNotifier struct {
	mu    sync.Mutex
	store *memStore
	sent  []sent
}

func (n *recordingNotifier) Notify(_ context.Context, tmpl Template, b *Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec := sent{tmpl: tmpl, id: b.ID}
	if n.store != nil {
		rec.status = n.store.get(b.ID).Status
	}
	n.sent = append(n.sent, rec)
}

func (n *recordingNotifier) templates() []Template {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Template, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.tmpl
	}
	return out
}
