package offering

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, o *Offering) error
	GetByID(ctx context.Context, id string) (*Offering, error)
	List(ctx context.Context, filter Filter) ([]*Offering, int, error)
	Update(ctx context.Context, o *Offering) error
}

type pgxRepository struct {
	q db.Querier
}

// NewPgxRepository accepts the pool or a transaction.
func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

var offeringColumns = []string{
	"id", "coach_id", "name", "kind", "duration_minutes", "price_cents", "is_active", "created_at",
}

func scanOffering(row pgx.Row, o *Offering, extra ...any) error {
	dest := []any{&o.ID, &o.CoachID, &o.Name, &o.Kind, &o.DurationMinutes, &o.PriceCents, &o.IsActive, &o.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *pgxRepository) Create(ctx context.Context, o *Offering) error {
	query, args, err := db.PSQL.Insert("public.services").
		Columns("coach_id", "name", "kind", "duration_minutes", "price_cents", "is_active").
		Values(o.CoachID, o.Name, o.Kind, o.DurationMinutes, o.PriceCents, o.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create service query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("create service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Offering, error) {
	query, args, err := db.PSQL.Select(offeringColumns...).
		From("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get service query failed: %w", err)
	}

	var o Offering
	if err := scanOffering(r.q.QueryRow(ctx, query, args...), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	return &o, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Offering, int, error) {
	query := db.PSQL.Select(append(offeringColumns, "count(*) OVER() AS total_count")...).
		From("public.services")

	if filter.CoachID != "" {
		query = query.Where(squirrel.Eq{"coach_id": filter.CoachID})
	}
	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	var result []*Offering
	var total int
	for rows.Next() {
		var o Offering
		if err := scanOffering(rows, &o, &total); err != nil {
			return nil, 0, fmt.Errorf("scan service failed: %w", err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate services failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, o *Offering) error {
	query, args, err := db.PSQL.Update("public.services").
		Set("name", o.Name).
		Set("duration_minutes", o.DurationMinutes).
		Set("price_cents", o.PriceCents).
		Set("is_active", o.IsActive).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update service failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
