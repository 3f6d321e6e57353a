package classes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

type Repository interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, coachID string) ([]*Template, error)
	ListActiveTemplates(ctx context.Context) ([]*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error

	// UpsertOccurrence inserts or refreshes the occurrence keyed on
	// (template, start). Capacity becomes the larger of capacity and the
	// confirmed bookings already held; status is left untouched.
	UpsertOccurrence(ctx context.Context, templateID string, startsAt time.Time, capacity int) error
	ListOccurrences(ctx context.Context, filter OccurrenceFilter) ([]*Occurrence, error)

	// LockTemplateOccurrences locks the template row and then every one of its
	// occurrences until the transaction ends. Holding the template row blocks
	// new occurrences; holding the occurrences blocks seat allocation.
	LockTemplateOccurrences(ctx context.Context, templateID string) error
	TemplateHasConfirmedBookings(ctx context.Context, templateID string) (bool, error)
	DeleteOccurrences(ctx context.Context, templateID string) error
	DeleteTemplate(ctx context.Context, id string) error
	// DeleteOrphanService removes the service unless another template still uses it.
	DeleteOrphanService(ctx context.Context, serviceID string) error
}

// Store adds transactions on top of Repository.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}

type pgxRepository struct {
	q db.Querier
}

func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

type pgxStore struct {
	Repository
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) Store {
	return &pgxStore{Repository: NewPgxRepository(pool), pool: pool}
}

func (s *pgxStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewPgxRepository(tx))
	})
}

var templateColumns = []string{
	"id", "coach_id", "service_id", "weekday", "start_minutes", "capacity", "is_active", "created_at",
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var (
		t       Template
		weekday int16
	)
	if err := row.Scan(&t.ID, &t.CoachID, &t.ServiceID, &weekday, &t.StartMinutes, &t.Capacity, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Weekday = time.Weekday(weekday)
	return &t, nil
}

func (r *pgxRepository) CreateTemplate(ctx context.Context, t *Template) error {
	query, args, err := db.PSQL.Insert("public.class_templates").
		Columns("coach_id", "service_id", "weekday", "start_minutes", "capacity", "is_active").
		Values(t.CoachID, t.ServiceID, int16(t.Weekday), t.StartMinutes, t.Capacity, t.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create template query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create template failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetTemplate(ctx context.Context, id string) (*Template, error) {
	query, args, err := db.PSQL.Select(templateColumns...).
		From("public.class_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get template query failed: %w", err)
	}

	t, err := scanTemplate(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) listTemplates(ctx context.Context, where squirrel.Sqlizer) ([]*Template, error) {
	query, args, err := db.PSQL.Select(templateColumns...).
		From("public.class_templates").
		Where(where).
		OrderBy("weekday ASC", "start_minutes ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list templates query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates failed: %w", err)
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template failed: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *pgxRepository) ListTemplates(ctx context.Context, coachID string) ([]*Template, error) {
	return r.listTemplates(ctx, squirrel.Eq{"coach_id": coachID})
}

func (r *pgxRepository) ListActiveTemplates(ctx context.Context) ([]*Template, error) {
	return r.listTemplates(ctx, squirrel.Eq{"is_active": true})
}

func (r *pgxRepository) UpdateTemplate(ctx context.Context, t *Template) error {
	query, args, err := db.PSQL.Update("public.class_templates").
		Set("capacity", t.Capacity).
		Set("is_active", t.IsActive).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update template query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update template failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *pgxRepository) UpsertOccurrence(ctx context.Context, templateID string, startsAt time.Time, capacity int) error {
	const query = `
		INSERT INTO public.class_occurrences (template_id, starts_at, capacity, status)
		VALUES ($1, $2, $3, 'SCHEDULED')
		ON CONFLICT (template_id, starts_at) DO UPDATE SET
			capacity = GREATEST(
				EXCLUDED.capacity,
				(
					SELECT count(*)::int FROM public.bookings b
					WHERE b.class_occurrence_id = class_occurrences.id AND b.status = 'CONFIRMED'
				)
			)
	`
	if _, err := r.q.Exec(ctx, query, templateID, startsAt.UTC(), capacity); err != nil {
		return fmt.Errorf("upsert occurrence failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListOccurrences(ctx context.Context, filter OccurrenceFilter) ([]*Occurrence, error) {
	query := db.PSQL.Select(
		"o.id", "o.template_id", "o.starts_at", "o.capacity", "o.status", "o.created_at",
		"t.coach_id", "t.service_id", "s.name", "s.duration_minutes",
		"(SELECT count(*)::int FROM public.bookings b WHERE b.class_occurrence_id = o.id AND b.status = 'CONFIRMED')",
	).
		From("public.class_occurrences o").
		Join("public.class_templates t ON t.id = o.template_id").
		Join("public.services s ON s.id = t.service_id").
		Where(squirrel.GtOrEq{"o.starts_at": filter.From}).
		Where(squirrel.Lt{"o.starts_at": filter.To})

	if filter.CoachID != "" {
		query = query.Where(squirrel.Eq{"t.coach_id": filter.CoachID})
	}
	if filter.ScheduledOnly {
		query = query.Where(squirrel.Eq{"o.status": OccurrenceScheduled})
	}

	sql, args, err := query.OrderBy("o.starts_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list occurrences query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list occurrences failed: %w", err)
	}
	defer rows.Close()

	var out []*Occurrence
	for rows.Next() {
		var o Occurrence
		if err := rows.Scan(
			&o.ID, &o.TemplateID, &o.StartsAt, &o.Capacity, &o.Status, &o.CreatedAt,
			&o.CoachID, &o.ServiceID, &o.ServiceName, &o.DurationMinutes, &o.Confirmed,
		); err != nil {
			return nil, fmt.Errorf("scan occurrence failed: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *pgxRepository) LockTemplateOccurrences(ctx context.Context, templateID string) error {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM public.class_templates WHERE id = $1 FOR UPDATE`, templateID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("lock template failed: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT id FROM public.class_occurrences WHERE template_id = $1 ORDER BY id FOR UPDATE`, templateID)
	if err != nil {
		return fmt.Errorf("lock occurrences failed: %w", err)
	}
	if _, err := pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
		return fmt.Errorf("lock occurrences failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) TemplateHasConfirmedBookings(ctx context.Context, templateID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM public.bookings b
			JOIN public.class_occurrences o ON o.id = b.class_occurrence_id
			WHERE o.template_id = $1 AND b.status = 'CONFIRMED'
		)
	`
	var exists bool
	if err := r.q.QueryRow(ctx, query, templateID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check template bookings failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) DeleteOccurrences(ctx context.Context, templateID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM public.class_occurrences WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("delete occurrences failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteTemplate(ctx context.Context, id string) error {
	ct, err := r.q.Exec(ctx, `DELETE FROM public.class_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteOrphanService(ctx context.Context, serviceID string) error {
	const query = `
		DELETE FROM public.services s
		WHERE s.id = $1
		  AND NOT EXISTS (SELECT 1 FROM public.class_templates t WHERE t.service_id = s.id)
	`
	if _, err := r.q.Exec(ctx, query, serviceID); err != nil {
		return fmt.Errorf("delete service failed: %w", err)
	}
	return nil
}
