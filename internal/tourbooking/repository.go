package tourbooking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*TourBooking, error)
	List(ctx context.Context, filter Filter) ([]*TourBooking, int, error)

	// CreateWithSlots inserts the booking and claims its slots in one
	// transaction. The slot increment is a compare-and-swap: the update
	// only matches while capacity remains, so a concurrent request that
	// would overbook fails with ErrInsufficientSlots.
	CreateWithSlots(ctx context.Context, b *TourBooking) error

	// UpdateStatus persists a transition as a compare-and-swap against the
	// status the caller validated; a concurrent transition that committed
	// first makes the swap miss and returns ErrInvalidTransition. Statuses
	// that release slots decrement booked_slots in the same transaction. A
	// decrement that would go negative aborts with ErrInconsistent.
	UpdateStatus(ctx context.Context, b *TourBooking, from Status) error

	UpdateCheckIn(ctx context.Context, b *TourBooking) error
	ListExpiredPending(ctx context.Context, before time.Time) ([]*TourBooking, error)
	CountActiveForTour(ctx context.Context, tourID string) (int, error)
	// SumLiveParticipants totals participants over live bookings of a
	// schedule; used by invariant checks and reporting.
	SumLiveParticipants(ctx context.Context, scheduleID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = "id, schedule_id, tour_id, user_id, participants, num_participants, total_cents, currency, status, check_in_status, cancel_reason, created_at, updated_at"

func scanTourBooking(row pgx.Row) (*TourBooking, error) {
	var b TourBooking
	var participants []byte
	var num int
	err := row.Scan(
		&b.ID, &b.ScheduleID, &b.TourID, &b.UserID, &participants, &num,
		&b.TotalCents, &b.Currency, &b.Status, &b.CheckInStatus, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &b.Participants); err != nil {
		return nil, fmt.Errorf("decode participants failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*TourBooking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.tour_bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get tour booking query failed: %w", err)
	}

	b, err := scanTourBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tour booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*TourBooking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns, "count(*) OVER() as total_count").
		From("public.tour_bookings")

	if filter.ScheduleID != "" {
		query = query.Where(squirrel.Eq{"schedule_id": filter.ScheduleID})
	}
	if filter.TourID != "" {
		query = query.Where(squirrel.Eq{"tour_id": filter.TourID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list tour bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tour bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*TourBooking
	var total int

	for rows.Next() {
		var b TourBooking
		var participants []byte
		var num int
		if err := rows.Scan(
			&b.ID, &b.ScheduleID, &b.TourID, &b.UserID, &participants, &num,
			&b.TotalCents, &b.Currency, &b.Status, &b.CheckInStatus, &b.CancelReason,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan tour booking failed: %w", err)
		}
		if err := json.Unmarshal(participants, &b.Participants); err != nil {
			return nil, 0, fmt.Errorf("decode participants failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) CreateWithSlots(ctx context.Context, b *TourBooking) error {
	n := b.NumberOfParticipants()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Guarded increment: matches only while the schedule is open and has
	// room for n more participants.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.tour_schedules").
		Set("booked_slots", squirrel.Expr("booked_slots + ?", n)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ScheduleID, "is_available": true}).
		Where(squirrel.Expr("booked_slots + ? <= available_slots", n)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim slots query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim slots failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrInsufficientSlots
	}

	participants, err := json.Marshal(b.Participants)
	if err != nil {
		return fmt.Errorf("encode participants failed: %w", err)
	}

	query, args, err = psql.Insert("public.tour_bookings").
		Columns("schedule_id", "tour_id", "user_id", "participants", "num_participants",
			"total_cents", "currency", "status", "check_in_status").
		Values(b.ScheduleID, b.TourID, b.UserID, participants, n,
			b.TotalCents, b.Currency, b.Status, b.CheckInStatus).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create tour booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create tour booking failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *TourBooking, from Status) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.tour_bookings").
		Set("status", b.Status).
		Set("cancel_reason", b.CancelReason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update tour booking status query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tour booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// The stored status moved since the caller validated the transition.
		return ErrInvalidTransition
	}

	if b.Status.ReleasesSlots() && !from.ReleasesSlots() {
		n := b.NumberOfParticipants()

		// The guard keeps booked_slots from going negative; hitting it
		// means the counter drifted from the booking set, which is a bug
		// to surface, not to paper over.
		query, args, err = psql.Update("public.tour_schedules").
			Set("booked_slots", squirrel.Expr("booked_slots - ?", n)).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ScheduleID}).
			Where(squirrel.GtOrEq{"booked_slots": n}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build release slots query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("release slots failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrInconsistent
		}
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) UpdateCheckIn(ctx context.Context, b *TourBooking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.tour_bookings").
		Set("check_in_status", b.CheckInStatus).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update check-in query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update check-in failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListExpiredPending(ctx context.Context, before time.Time) ([]*TourBooking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.tour_bookings").
		Where(squirrel.Eq{"status": StatusPending}).
		Where(squirrel.Lt{"created_at": before}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list expired pending query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expired pending failed: %w", err)
	}
	defer rows.Close()

	var bookings []*TourBooking
	for rows.Next() {
		b, err := scanTourBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired pending tour booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *pgxRepository) CountActiveForTour(ctx context.Context, tourID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.tour_bookings").
		Where(squirrel.Eq{"tour_id": tourID}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count active tour bookings query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active tour bookings failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) SumLiveParticipants(ctx context.Context, scheduleID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("coalesce(sum(num_participants), 0)").
		From("public.tour_bookings").
		Where(squirrel.Eq{"schedule_id": scheduleID}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum participants query failed: %w", err)
	}

	var sum int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum participants failed: %w", err)
	}
	return sum, nil
}
