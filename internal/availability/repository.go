package availability

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *Rule) error
	DeleteRule(ctx context.Context, coachID, id string) error
	ListRules(ctx context.Context, coachID string) ([]*Rule, error)

	CreateException(ctx context.Context, ex *Exception) error
	DeleteException(ctx context.Context, coachID, id string) error
	// ListExceptions returns exceptions dated within [from, to], both inclusive.
	ListExceptions(ctx context.Context, coachID string, from, to civiltime.Date) ([]*Exception, error)
}

type pgxRepository struct {
	q db.Querier
}

func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

// Dates are sent as "YYYY-MM-DD" text so no zone is ever applied to them.
func dateArg(d *civiltime.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func fromPgDate(d pgtype.Date) *civiltime.Date {
	if !d.Valid {
		return nil
	}
	cd := civiltime.FromTime(d.Time)
	return &cd
}

func (r *pgxRepository) CreateRule(ctx context.Context, rule *Rule) error {
	days := make([]string, len(rule.Weekdays))
	for i, d := range rule.Weekdays {
		days[i] = string(d)
	}

	query, args, err := db.PSQL.Insert("public.availability_rules").
		Columns("coach_id", "kind", "weekdays", "start_minutes", "end_minutes", "effective_from", "effective_to").
		Values(rule.CoachID, rule.Kind, days, rule.StartMinutes, rule.EndMinutes,
			dateArg(rule.EffectiveFrom), dateArg(rule.EffectiveTo)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create rule query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt); err != nil {
		return fmt.Errorf("create rule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteRule(ctx context.Context, coachID, id string) error {
	query, args, err := db.PSQL.Delete("public.availability_rules").
		Where(squirrel.Eq{"id": id, "coach_id": coachID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete rule query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete rule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *pgxRepository) ListRules(ctx context.Context, coachID string) ([]*Rule, error) {
	query, args, err := db.PSQL.Select(
		"id", "coach_id", "kind", "weekdays", "start_minutes", "end_minutes",
		"effective_from", "effective_to", "created_at",
	).
		From("public.availability_rules").
		Where(squirrel.Eq{"coach_id": coachID}).
		OrderBy("start_minutes ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rules query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules failed: %w", err)
	}
	defer rows.Close()

	var out []*Rule
	for rows.Next() {
		var (
			rule     Rule
			days     []string
			from, to pgtype.Date
		)
		if err := rows.Scan(
			&rule.ID, &rule.CoachID, &rule.Kind, &days, &rule.StartMinutes, &rule.EndMinutes,
			&from, &to, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rule failed: %w", err)
		}
		for _, d := range days {
			rule.Weekdays = append(rule.Weekdays, WeekdayCode(d))
		}
		rule.EffectiveFrom = fromPgDate(from)
		rule.EffectiveTo = fromPgDate(to)
		out = append(out, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) CreateException(ctx context.Context, ex *Exception) error {
	query, args, err := db.PSQL.Insert("public.availability_exceptions").
		Columns("coach_id", "date", "is_available", "note").
		Values(ex.CoachID, ex.Date.String(), ex.IsAvailable, ex.Note).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create exception query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&ex.ID, &ex.CreatedAt); err != nil {
		return fmt.Errorf("create exception failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteException(ctx context.Context, coachID, id string) error {
	query, args, err := db.PSQL.Delete("public.availability_exceptions").
		Where(squirrel.Eq{"id": id, "coach_id": coachID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete exception query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete exception failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrExceptionNotFound
	}
	return nil
}

func (r *pgxRepository) ListExceptions(ctx context.Context, coachID string, from, to civiltime.Date) ([]*Exception, error) {
	query, args, err := db.PSQL.Select("id", "coach_id", "date", "is_available", "note", "created_at").
		From("public.availability_exceptions").
		Where(squirrel.Eq{"coach_id": coachID}).
		Where(squirrel.Expr("date BETWEEN ?::date AND ?::date", from.String(), to.String())).
		OrderBy("date ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list exceptions query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exceptions failed: %w", err)
	}
	defer rows.Close()

	var out []*Exception
	for rows.Next() {
		var (
			ex   Exception
			date pgtype.Date
		)
		if err := rows.Scan(&ex.ID, &ex.CoachID, &date, &ex.IsAvailable, &ex.Note, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exception failed: %w", err)
		}
		ex.Date = civiltime.FromTime(date.Time)
		out = append(out, &ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exceptions failed: %w", err)
	}
	return out, nil
}
