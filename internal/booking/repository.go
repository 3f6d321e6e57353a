package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	UpdateState(ctx context.Context, b *Booking) error
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	GetByApprovalToken(ctx context.Context, token string) (*Booking, error)

	// The Lock* lookups take a row lock that lasts until the transaction ends.
	// Writers that also take LockCoach must take it first.
	LockByID(ctx context.Context, id string) (*Booking, error)
	LockByApprovalToken(ctx context.Context, token string) (*Booking, error)
	LockByCancellationToken(ctx context.Context, token string) (*Booking, error)

	// LockCoach serialises all writers touching one coach's calendar.
	LockCoach(ctx context.Context, coachID string) error
	HasConfirmedOverlap(ctx context.Context, coachID string, start, end time.Time, excludeID string) (bool, error)
	ListOverlappingPending(ctx context.Context, coachID string, start, end time.Time, excludeID string) ([]*Booking, error)

	// ExpirePending cancels every pending booking whose deadline is not after
	// now in a single statement and returns their IDs.
	ExpirePending(ctx context.Context, now time.Time) ([]string, error)

	LockOccurrence(ctx context.Context, id string) (*classes.Occurrence, error)
	CountConfirmedForOccurrence(ctx context.Context, occurrenceID string) (int, error)
	CancelOccurrence(ctx context.Context, occurrenceID string) error

	ListConfirmedIntervals(ctx context.Context, coachID string, from, to time.Time) ([]availability.Interval, error)
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

var bookingColumns = []string{
	"b.id", "b.type", "b.status", "b.approval_status", "b.approval_token",
	"b.approved_at", "b.denied_at", "b.denial_reason", "b.auto_expire_at", "b.cancelled_at",
	"b.customer_name", "b.customer_email", "b.athlete_name", "b.notes",
	"b.coach_id", "b.service_id", "b.class_occurrence_id",
	"b.start_at", "b.end_at", "b.price_cents", "b.cancellation_token", "b.num_athletes", "b.private_kind",
	"b.created_at", "b.updated_at",
	"COALESCE(b.coach_id::text, t.coach_id::text, '')", "COALESCE(s.name, '')",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	return db.PSQL.Select(append(bookingColumns, extra...)...).
		From("public.bookings b").
		LeftJoin("public.class_occurrences o ON o.id = b.class_occurrence_id").
		LeftJoin("public.class_templates t ON t.id = o.template_id").
		LeftJoin("public.services s ON s.id = b.service_id")
}

func bookingDest(b *Booking) []any {
	return []any{
		&b.ID, &b.Type, &b.Status, &b.ApprovalStatus, &b.ApprovalToken,
		&b.ApprovedAt, &b.DeniedAt, &b.DenialReason, &b.AutoExpireAt, &b.CancelledAt,
		&b.CustomerName, &b.CustomerEmail, &b.AthleteName, &b.Notes,
		&b.CoachID, &b.ServiceID, &b.ClassOccurrenceID,
		&b.Start, &b.End, &b.PriceCents, &b.CancellationToken, &b.NumAthletes, &b.PrivateKind,
		&b.CreatedAt, &b.UpdatedAt,
		&b.OwnerCoachID, &b.ServiceName,
	}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := db.PSQL.Insert("public.bookings").
		Columns(
			"type", "status", "approval_status", "approval_token", "auto_expire_at",
			"customer_name", "customer_email", "athlete_name", "notes",
			"coach_id", "service_id", "class_occurrence_id",
			"start_at", "end_at", "price_cents", "cancellation_token", "num_athletes", "private_kind",
		).
		Values(
			b.Type, b.Status, b.ApprovalStatus, b.ApprovalToken, b.AutoExpireAt,
			b.CustomerName, b.CustomerEmail, b.AthleteName, b.Notes,
			b.CoachID, b.ServiceID, b.ClassOccurrenceID,
			b.Start.UTC(), b.End.UTC(), b.PriceCents, b.CancellationToken, b.NumAthletes, b.PrivateKind,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if db.IsExclusionViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer, forUpdate bool) (*Booking, error) {
	q := selectBookings().Where(where)
	if forUpdate {
		// Outer-joined rows cannot be locked; lock the booking only.
		q = q.Suffix("FOR UPDATE OF b")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := r.q.QueryRow(ctx, query, args...).Scan(bookingDest(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id}, false)
}

func (r *pgxRepository) LockByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id}, true)
}

func (r *pgxRepository) GetByApprovalToken(ctx context.Context, token string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.approval_token": token}, false)
}

func (r *pgxRepository) LockByApprovalToken(ctx context.Context, token string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.approval_token": token}, true)
}

func (r *pgxRepository) LockByCancellationToken(ctx context.Context, token string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.cancellation_token": token}, true)
}

func (r *pgxRepository) UpdateState(ctx context.Context, b *Booking) error {
	query, args, err := db.PSQL.Update("public.bookings").
		Set("status", b.Status).
		Set("approval_status", b.ApprovalStatus).
		Set("approved_at", b.ApprovedAt).
		Set("denied_at", b.DeniedAt).
		Set("denial_reason", b.DenialReason).
		Set("cancelled_at", b.CancelledAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if db.IsExclusionViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings("count(*) OVER()")

	if filter.CoachID != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"b.coach_id": filter.CoachID},
			squirrel.Eq{"t.coach_id": filter.CoachID},
		})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"b.type": filter.Type})
	}
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_at": filter.From.UTC()})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_at": filter.To.UTC()})
	}

	query = query.OrderBy("b.start_at ASC")
	if filter.PageSize > 0 {
		query = query.Limit(uint64(filter.PageSize))
		if filter.Page > 1 {
			query = query.Offset(uint64((filter.Page - 1) * filter.PageSize))
		}
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Booking
		total int
	)
	for rows.Next() {
		var b Booking
		if err := rows.Scan(append(bookingDest(&b), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, &b)
	}
	return out, total, rows.Err()
}

func (r *pgxRepository) LockCoach(ctx context.Context, coachID string) error {
	return db.LockKey(ctx, r.q, "coach:"+coachID)
}

// overlapWhere matches existing rows that overlap [start, end). Touching
// intervals never match.
func overlapWhere(start, end time.Time) squirrel.Sqlizer {
	start, end = start.UTC(), end.UTC()
	return squirrel.Or{
		// starts inside an existing booking
		squirrel.And{squirrel.LtOrEq{"start_at": start}, squirrel.Gt{"end_at": start}},
		// ends inside an existing booking
		squirrel.And{squirrel.Lt{"start_at": end}, squirrel.GtOrEq{"end_at": end}},
		// encloses an existing booking
		squirrel.And{squirrel.GtOrEq{"start_at": start}, squirrel.LtOrEq{"end_at": end}},
		// enclosed by an existing booking
		squirrel.And{squirrel.LtOrEq{"start_at": start}, squirrel.GtOrEq{"end_at": end}},
	}
}

func coachPrivate(coachID string, status Status, excludeID string) squirrel.And {
	where := squirrel.And{
		squirrel.Eq{"coach_id": coachID},
		squirrel.Eq{"type": TypePrivate},
		squirrel.Eq{"status": status},
	}
	if excludeID != "" {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}
	return where
}

func (r *pgxRepository) HasConfirmedOverlap(ctx context.Context, coachID string, start, end time.Time, excludeID string) (bool, error) {
	query, args, err := db.PSQL.Select("1").
		From("public.bookings").
		Where(coachPrivate(coachID, StatusConfirmed, excludeID)).
		Where(overlapWhere(start, end)).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := r.q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListOverlappingPending(ctx context.Context, coachID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	ids, err := r.selectIDs(ctx, db.PSQL.Select("id").
		From("public.bookings").
		Where(coachPrivate(coachID, StatusPending, excludeID)).
		Where(squirrel.Eq{"approval_status": ApprovalPending}).
		Where(overlapWhere(start, end)).
		OrderBy("id").
		Suffix("FOR UPDATE"))
	if err != nil {
		return nil, fmt.Errorf("list overlapping pending failed: %w", err)
	}

	out := make([]*Booking, 0, len(ids))
	for _, id := range ids {
		b, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *pgxRepository) selectIDs(ctx context.Context, q squirrel.SelectBuilder) ([]string, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *pgxRepository) ExpirePending(ctx context.Context, now time.Time) ([]string, error) {
	// Rows locked by an approval or a cascade are skipped; the locker sees the
	// deadline itself, and the next sweep picks up whatever is left.
	const query = `
		UPDATE public.bookings
		SET status = 'CANCELLED', approval_status = 'EXPIRED', cancelled_at = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM public.bookings
			WHERE status = 'PENDING' AND approval_status = 'PENDING' AND auto_expire_at <= $1
			ORDER BY id
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`
	rows, err := r.q.Query(ctx, query, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("expire pending bookings failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("expire pending bookings failed: %w", err)
	}
	return ids, nil
}

func (r *pgxRepository) LockOccurrence(ctx context.Context, id string) (*classes.Occurrence, error) {
	const query = `
		SELECT o.id, o.template_id, o.starts_at, o.capacity, o.status, o.created_at,
		       t.coach_id, t.service_id, s.name, s.duration_minutes
		FROM public.class_occurrences o
		JOIN public.class_templates t ON t.id = o.template_id
		JOIN public.services s ON s.id = t.service_id
		WHERE o.id = $1
		FOR UPDATE OF o
	`
	var o classes.Occurrence
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.TemplateID, &o.StartsAt, &o.Capacity, &o.Status, &o.CreatedAt,
		&o.CoachID, &o.ServiceID, &o.ServiceName, &o.DurationMinutes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, classes.ErrOccurrenceNotFound
		}
		return nil, fmt.Errorf("lock occurrence failed: %w", err)
	}
	return &o, nil
}

func (r *pgxRepository) CountConfirmedForOccurrence(ctx context.Context, occurrenceID string) (int, error) {
	const query = `SELECT count(*)::int FROM public.bookings WHERE class_occurrence_id = $1 AND status = 'CONFIRMED'`
	var n int
	if err := r.q.QueryRow(ctx, query, occurrenceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count occurrence bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CancelOccurrence(ctx context.Context, occurrenceID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE public.class_occurrences SET status = 'CANCELLED' WHERE id = $1`, occurrenceID); err != nil {
		return fmt.Errorf("cancel occurrence failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListConfirmedIntervals(ctx context.Context, coachID string, from, to time.Time) ([]availability.Interval, error) {
	query, args, err := db.PSQL.Select("start_at", "end_at").
		From("public.bookings").
		Where(coachPrivate(coachID, StatusConfirmed, "")).
		Where(squirrel.Lt{"start_at": to.UTC()}).
		Where(squirrel.Gt{"end_at": from.UTC()}).
		OrderBy("start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build confirmed intervals query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed intervals failed: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (availability.Interval, error) {
		var iv availability.Interval
		err := row.Scan(&iv.Start, &iv.End)
		return iv, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan confirmed intervals failed: %w", err)
	}
	return out, nil
}
