package classes

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
)

type occKey struct {
	templateID string
	startsAt   time.Time
}

type memStore struct {
	templates   map[string]*Template
	occurrences map[occKey]*Occurrence
	confirmed   map[occKey]int
	services    map[string]bool
	upserts     int
	calls       []string
}

func newMemStore() *memStore {
	return &memStore{
		templates:   map[string]*Template{},
		occurrences: map[occKey]*Occurrence{},
		confirmed:   map[occKey]int{},
		services:    map[string]bool{},
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	templates := maps.Clone(m.templates)
	occurrences := maps.Clone(m.occurrences)
	services := maps.Clone(m.services)
	if err := fn(m); err != nil {
		m.templates, m.occurrences, m.services = templates, occurrences, services
		return err
	}
	return nil
}

func (m *memStore) CreateTemplate(_ context.Context, t *Template) error {
	t.ID = fmt.Sprintf("tpl-%d", len(m.templates)+1)
	cp := *t
	m.templates[t.ID] = &cp
	m.services[t.ServiceID] = true
	return nil
}

func (m *memStore) GetTemplate(_ context.Context, id string) (*Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListTemplates(_ context.Context, coachID string) ([]*Template, error) {
	var out []*Template
	for _, t := range m.templates {
		if t.CoachID == coachID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveTemplates(_ context.Context) ([]*Template, error) {
	var out []*Template
	for _, id := range slices.Sorted(maps.Keys(m.templates)) {
		if t := m.templates[id]; t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTemplate(_ context.Context, t *Template) error {
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *memStore) UpsertOccurrence(_ context.Context, templateID string, startsAt time.Time, capacity int) error {
	m.upserts++
	key := occKey{templateID, startsAt}
	if o, ok := m.occurrences[key]; ok {
		o.Capacity = max(capacity, m.confirmed[key])
		return nil
	}
	m.occurrences[key] = &Occurrence{
		ID:         fmt.Sprintf("occ-%d", len(m.occurrences)+1),
		TemplateID: templateID,
		StartsAt:   startsAt,
		Capacity:   capacity,
		Status:     OccurrenceScheduled,
	}
	return nil
}

func (m *memStore) ListOccurrences(_ context.Context, f OccurrenceFilter) ([]*Occurrence, error) {
	var out []*Occurrence
	for key, o := range m.occurrences {
		if o.StartsAt.Before(f.From) || !o.StartsAt.Before(f.To) {
			continue
		}
		cp := *o
		cp.Confirmed = m.confirmed[key]
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *Occurrence) int { return a.StartsAt.Compare(b.StartsAt) })
	return out, nil
}

func (m *memStore) LockTemplateOccurrences(_ context.Context, templateID string) error {
	m.calls = append(m.calls, "lock")
	if _, ok := m.templates[templateID]; !ok {
		return ErrTemplateNotFound
	}
	return nil
}

func (m *memStore) TemplateHasConfirmedBookings(_ context.Context, templateID string) (bool, error) {
	m.calls = append(m.calls, "check")
	for key, n := range m.confirmed {
		if key.templateID == templateID && n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteOccurrences(_ context.Context, templateID string) error {
	m.calls = append(m.calls, "delete")
	for key := range m.occurrences {
		if key.templateID == templateID {
			delete(m.occurrences, key)
		}
	}
	return nil
}

func (m *memStore) DeleteTemplate(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memStore) DeleteOrphanService(_ context.Context, serviceID string) error {
	for _, t := range m.templates {
		if t.ServiceID == serviceID {
			return nil
		}
	}
	delete(m.services, serviceID)
	return nil
}

type fakeOfferings map[string]*offering.Offering

func (f fakeOfferings) GetByID(_ context.Context, id string) (*offering.Offering, error) {
	if o, ok := f[id]; ok {
		return o, nil
	}
	return nil, offering.ErrNotFound
}

var la = civiltime.MustConverter("America/Los_Angeles")

func newTestService(store *memStore, now time.Time) Service {
	offerings := fakeOfferings{
		"svc-class":   {ID: "svc-class", CoachID: "coach-1", Kind: offering.KindClass, DurationMinutes: 60, IsActive: true},
		"svc-private": {ID: "svc-private", CoachID: "coach-1", Kind: offering.KindPrivate, DurationMinutes: 60, IsActive: true},
	}
	return NewService(store, offerings, la, zap.NewNop(), WithClock(func() time.Time { return now }))
}

func TestCreateTemplateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), time.Now())

	tests := []struct {
		name    string
		req     CreateTemplateRequest
		wantErr error
	}{
		{name: "weekday too big", req: CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", Weekday: 7, Capacity: 5}, wantErr: ErrInvalidWeekday},
		{name: "start at midnight end", req: CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", StartMinutes: 1440, Capacity: 5}, wantErr: ErrInvalidStartMinutes},
		{name: "zero capacity", req: CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class"}, wantErr: ErrInvalidCapacity},
		{name: "private service", req: CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-private", Capacity: 5}, wantErr: ErrServiceNotClass},
		{name: "other coach", req: CreateTemplateRequest{CoachID: "coach-2", ServiceID: "svc-class", Capacity: 5}, wantErr: ErrServiceNotClass},
		{name: "unknown service", req: CreateTemplateRequest{CoachID: "coach-1", ServiceID: "nope", Capacity: 5}, wantErr: offering.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateUpcomingOccurrences(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	// Wednesday 2025-10-29 10:00 local.
	now := la.Combine(civiltime.Date{Year: 2025, Month: time.October, Day: 29}, 10*60)
	svc := newTestService(store, now)

	// Wednesday 09:00 has already passed this week; Sunday 16:00 has not.
	wed, err := svc.CreateTemplate(ctx, CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", Weekday: 3, StartMinutes: 9 * 60, Capacity: 8})
	require.NoError(t, err)
	sun, err := svc.CreateTemplate(ctx, CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", Weekday: 0, StartMinutes: 16 * 60, Capacity: 10})
	require.NoError(t, err)

	n, err := svc.GenerateUpcomingOccurrences(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Sunday 2025-11-02 is the fall-back day, 16:00 is PST.
	assert.Contains(t, store.occurrences, occKey{sun.ID, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)})
	// The following Wednesday.
	assert.Contains(t, store.occurrences, occKey{wed.ID, time.Date(2025, 11, 5, 17, 0, 0, 0, time.UTC)})
	assert.NotContains(t, store.occurrences, occKey{wed.ID, time.Date(2025, 10, 29, 16, 0, 0, 0, time.UTC)})

	t.Run("idempotent", func(t *testing.T) {
		before := len(store.occurrences)
		_, err := svc.GenerateUpcomingOccurrences(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, store.occurrences, before)
	})

	t.Run("capacity never below confirmed and cancelled status kept", func(t *testing.T) {
		key := occKey{sun.ID, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)}
		store.confirmed[key] = 12
		store.occurrences[key].Status = OccurrenceCancelled

		_, err := svc.GenerateUpcomingOccurrences(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 12, store.occurrences[key].Capacity)
		assert.Equal(t, OccurrenceCancelled, store.occurrences[key].Status)
	})

	t.Run("inactive templates are skipped", func(t *testing.T) {
		inactive := false
		_, err := svc.UpdateTemplate(ctx, "coach-1", wed.ID, UpdateTemplateRequest{IsActive: &inactive})
		require.NoError(t, err)

		n, err := svc.GenerateUpcomingOccurrences(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	_, err = svc.GenerateUpcomingOccurrences(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidWeeks)
}

func TestOccurrenceDate(t *testing.T) {
	wed := civiltime.Date{Year: 2025, Month: time.October, Day: 29}
	assert.Equal(t, wed, occurrenceDate(wed, time.Wednesday))
	assert.Equal(t, civiltime.Date{Year: 2025, Month: time.November, Day: 2}, occurrenceDate(wed, time.Sunday))
	assert.Equal(t, civiltime.Date{Year: 2025, Month: time.November, Day: 4}, occurrenceDate(wed, time.Tuesday))
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2025, 10, 29, 17, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	tpl, err := svc.CreateTemplate(ctx, CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", Weekday: 0, StartMinutes: 16 * 60, Capacity: 10})
	require.NoError(t, err)
	_, err = svc.GenerateUpcomingOccurrences(ctx, 1)
	require.NoError(t, err)
	require.Len(t, store.occurrences, 1)

	assert.ErrorIs(t, svc.DeleteTemplate(ctx, "coach-2", tpl.ID), ErrNotOwner)

	for key := range store.occurrences {
		store.confirmed[key] = 1
	}
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, "coach-1", tpl.ID), ErrTemplateHasBookings)
	assert.Len(t, store.occurrences, 1)
	assert.Contains(t, store.templates, tpl.ID)

	clear(store.confirmed)
	store.calls = nil
	require.NoError(t, svc.DeleteTemplate(ctx, "coach-1", tpl.ID))
	assert.Equal(t, []string{"lock", "check", "delete"}, store.calls, "occurrences are locked before the booking check")
	assert.Empty(t, store.occurrences)
	assert.NotContains(t, store.templates, tpl.ID)
	assert.NotContains(t, store.services, "svc-class")
}

func TestListUpcomingOccurrences(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2025, 10, 29, 17, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	_, err := svc.CreateTemplate(ctx, CreateTemplateRequest{CoachID: "coach-1", ServiceID: "svc-class", Weekday: 0, StartMinutes: 16 * 60, Capacity: 3})
	require.NoError(t, err)
	_, err = svc.GenerateUpcomingOccurrences(ctx, 3)
	require.NoError(t, err)

	for key := range store.occurrences {
		store.confirmed[key] = 5
	}

	got, err := svc.ListUpcomingOccurrences(ctx, OccurrenceFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Zero(t, got[0].SeatsLeft())

	_, err = svc.ListUpcomingOccurrences(ctx, OccurrenceFilter{From: now.Add(time.Hour), To: now})
	assert.ErrorIs(t, err, ErrInvalidRange)
}
