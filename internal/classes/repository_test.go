package classes

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

// testPool connects to TEST_DB_DSN and migrates it. Tests using it are
// skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.bookings, public.class_occurrences, public.class_templates, public.services, public.coach_settings, public.coaches CASCADE")
	require.NoError(t, err)
	return pool
}

func seedOccurrence(t *testing.T, pool *pgxpool.Pool) (coachID, templateID, occurrenceID string) {
	t.Helper()
	ctx := context.Background()
	var serviceID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO public.coaches (email, password_hash, display_name) VALUES ('classes@example.com', 'x', 'Class Coach') RETURNING id`,
	).Scan(&coachID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO public.services (coach_id, name, kind, duration_minutes) VALUES ($1, 'Group', 'CLASS', 60) RETURNING id`,
		coachID,
	).Scan(&serviceID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO public.class_templates (coach_id, service_id, weekday, start_minutes, capacity) VALUES ($1, $2, 1, 960, 8) RETURNING id`,
		coachID, serviceID,
	).Scan(&templateID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO public.class_occurrences (template_id, starts_at, capacity) VALUES ($1, $2, 8) RETURNING id`,
		templateID, time.Now().Add(96*time.Hour).Truncate(time.Hour).UTC(),
	).Scan(&occurrenceID))
	return coachID, templateID, occurrenceID
}

func TestDeleteTemplateWaitsForSeatAllocation(t *testing.T) {
	pool := testPool(t)
	coachID, templateID, occurrenceID := seedOccurrence(t, pool)
	ctx := context.Background()
	svc := NewService(NewPgxStore(pool), fakeOfferings{}, la, zap.NewNop())

	// Hold the occurrence the way a class booking does while it allocates a seat.
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()
	_, err = tx.Exec(ctx, `SELECT id FROM public.class_occurrences WHERE id = $1 FOR UPDATE`, occurrenceID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.DeleteTemplate(ctx, coachID, templateID) }()

	// Give the delete time to reach the occurrence lock.
	time.Sleep(200 * time.Millisecond)

	var bookingID string
	require.NoError(t, tx.QueryRow(ctx, `
		INSERT INTO public.bookings (type, status, approval_status, customer_name, customer_email,
			class_occurrence_id, start_at, end_at, cancellation_token)
		SELECT 'CLASS', 'CONFIRMED', 'NOT_REQUIRED', 'Sam', 'sam@example.com', o.id, o.starts_at, o.starts_at + interval '1 hour', 'seat-token-0001'
		FROM public.class_occurrences o WHERE o.id = $1
		RETURNING id`, occurrenceID,
	).Scan(&bookingID))
	require.NoError(t, tx.Commit(ctx))

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrTemplateHasBookings)
	case <-time.After(5 * time.Second):
		t.Fatal("delete template did not finish")
	}

	var linked *string
	require.NoError(t, pool.QueryRow(ctx, `SELECT class_occurrence_id::text FROM public.bookings WHERE id = $1`, bookingID).Scan(&linked))
	if assert.NotNil(t, linked) {
		assert.Equal(t, occurrenceID, *linked)
	}

	var occurrences int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.class_occurrences WHERE template_id = $1`, templateID).Scan(&occurrences))
	assert.Equal(t, 1, occurrences)
}

func TestDeleteTemplateRemovesUnbookedOccurrences(t *testing.T) {
	pool := testPool(t)
	coachID, templateID, _ := seedOccurrence(t, pool)
	ctx := context.Background()
	svc := NewService(NewPgxStore(pool), fakeOfferings{}, la, zap.NewNop())

	require.NoError(t, svc.DeleteTemplate(ctx, coachID, templateID))

	var templates int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.class_templates WHERE id = $1`, templateID).Scan(&templates))
	assert.Zero(t, templates)
}
