package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

// Repository defines methods for accessing coach data from storage.
type Repository interface {
	Create(ctx context.Context, c *Coach) error
	GetByID(ctx context.Context, id string) (*Coach, error)
	GetByEmail(ctx context.Context, email string) (*Coach, error)
	List(ctx context.Context) ([]*Coach, error)

	GetSettings(ctx context.Context, coachID string) (*Settings, error)
	UpsertSettings(ctx context.Context, s *Settings) error

	GetPolicy(ctx context.Context) (*CancellationPolicy, error)
	UpsertPolicy(ctx context.Context, p *CancellationPolicy) error
}

type pgxRepository struct {
	q db.Querier
}

func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

func (r *pgxRepository) Create(ctx context.Context, c *Coach) error {
	query, args, err := db.PSQL.Insert("public.coaches").
		Columns("email", "password_hash", "display_name").
		Values(c.Email, c.PasswordHash, c.DisplayName).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create coach query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create coach failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getBy(ctx context.Context, where squirrel.Eq) (*Coach, error) {
	query, args, err := db.PSQL.Select("id", "email", "password_hash", "display_name", "created_at").
		From("public.coaches").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get coach query failed: %w", err)
	}

	var c Coach
	if err := r.q.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coach failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Coach, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*Coach, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *pgxRepository) List(ctx context.Context) ([]*Coach, error) {
	query, args, err := db.PSQL.Select("id", "email", "display_name", "created_at").
		From("public.coaches").
		OrderBy("display_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list coaches query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coaches failed: %w", err)
	}
	defer rows.Close()

	var out []*Coach
	for rows.Next() {
		var c Coach
		if err := rows.Scan(&c.ID, &c.Email, &c.DisplayName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coach failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *pgxRepository) GetSettings(ctx context.Context, coachID string) (*Settings, error) {
	query, args, err := db.PSQL.Select(
		"coach_id", "must_approve_requests", "alert_emails",
		"notify_on_request", "notify_on_confirmation", "notify_on_cancellation",
		"is_shop_admin", "updated_at",
	).
		From("public.coach_settings").
		Where(squirrel.Eq{"coach_id": coachID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get settings query failed: %w", err)
	}

	var s Settings
	if err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.CoachID, &s.MustApproveRequests, &s.AlertEmails,
		&s.NotifyOnRequest, &s.NotifyOnConfirmation, &s.NotifyOnCancellation,
		&s.IsShopAdmin, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNoRow
		}
		return nil, fmt.Errorf("get settings failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) UpsertSettings(ctx context.Context, s *Settings) error {
	query, args, err := db.PSQL.Insert("public.coach_settings").
		Columns(
			"coach_id", "must_approve_requests", "alert_emails",
			"notify_on_request", "notify_on_confirmation", "notify_on_cancellation",
			"is_shop_admin",
		).
		Values(
			s.CoachID, s.MustApproveRequests, s.AlertEmails,
			s.NotifyOnRequest, s.NotifyOnConfirmation, s.NotifyOnCancellation,
			s.IsShopAdmin,
		).
		Suffix(`ON CONFLICT (coach_id) DO UPDATE SET
			must_approve_requests = EXCLUDED.must_approve_requests,
			alert_emails = EXCLUDED.alert_emails,
			notify_on_request = EXCLUDED.notify_on_request,
			notify_on_confirmation = EXCLUDED.notify_on_confirmation,
			notify_on_cancellation = EXCLUDED.notify_on_cancellation,
			is_shop_admin = EXCLUDED.is_shop_admin,
			updated_at = now()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert settings query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("upsert settings failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetPolicy(ctx context.Context) (*CancellationPolicy, error) {
	const query = `SELECT min_hours_notice, updated_at FROM public.cancellation_policies WHERE id = 1`

	var p CancellationPolicy
	if err := r.q.QueryRow(ctx, query).Scan(&p.MinHoursNotice, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNoRow
		}
		return nil, fmt.Errorf("get cancellation policy failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) UpsertPolicy(ctx context.Context, p *CancellationPolicy) error {
	const query = `
		INSERT INTO public.cancellation_policies (id, min_hours_notice)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET min_hours_notice = EXCLUDED.min_hours_notice, updated_at = now()
		RETURNING updated_at
	`
	if err := r.q.QueryRow(ctx, query, p.MinHoursNotice).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert cancellation policy failed: %w", err)
	}
	return nil
}
