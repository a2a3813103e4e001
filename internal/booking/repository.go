package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/daterange"
)

// maxTxRetries bounds serializable-transaction retries before giving up.
const maxTxRetries = 3

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// CreateWithBlock inserts the reservation and its derived blocked range
	// in one atomic operation. The conflict check against live reservations
	// and active blocks happens inside the same transaction; a losing
	// concurrent request gets ErrNotAvailable, never a partial commit.
	CreateWithBlock(ctx context.Context, b *Booking) error

	// UpdateStatus persists a status transition as a compare-and-swap
	// against the status the caller validated, so two concurrent transitions
	// from the same stored state cannot both commit; the loser gets
	// ErrInvalidTransition. Cancelled and completed retract the derived
	// blocked range in the same transaction; confirmed re-creates the range
	// if it has gone missing.
	UpdateStatus(ctx context.Context, b *Booking, from Status) error

	// Reschedule atomically re-validates the new range (excluding the
	// reservation itself and its own derived block), updates the row, and
	// swaps the derived blocked range. Returns ErrNotAvailable on conflict.
	Reschedule(ctx context.Context, b *Booking) error

	// HasConflict is the read-only availability probe. excludeBookingID
	// skips a reservation and its derived block, for reschedule previews.
	HasConflict(ctx context.Context, propertyID string, r daterange.DateRange, excludeBookingID string) (bool, error)

	ListExpiredPending(ctx context.Context, before time.Time) ([]*Booking, error)
	CountActiveForProperty(ctx context.Context, propertyID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = "id, property_id, guest_id, check_in, check_out, guests, total_cents, status, payment_status, cancel_reason, created_at, updated_at"

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.PropertyID, &b.GuestID, &b.Range.Start, &b.Range.End,
		&b.Guests, &b.TotalCents, &b.Status, &b.PaymentStatus, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns, "count(*) OVER() as total_count").
		From("public.bookings")

	if filter.PropertyID != "" {
		query = query.Where(squirrel.Eq{"property_id": filter.PropertyID})
	}
	if filter.GuestID != "" {
		query = query.Where(squirrel.Eq{"guest_id": filter.GuestID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("check_in ASC")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.PropertyID, &b.GuestID, &b.Range.Start, &b.Range.End,
			&b.Guests, &b.TotalCents, &b.Status, &b.PaymentStatus, &b.CancelReason,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) CreateWithBlock(ctx context.Context, b *Booking) error {
	return r.withSerializableRetry(ctx, func(tx pgx.Tx) error {
		conflict, err := hasConflictTx(ctx, tx, b.PropertyID, b.Range, "")
		if err != nil {
			return err
		}
		if conflict {
			return ErrNotAvailable
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.bookings").
			Columns("property_id", "guest_id", "check_in", "check_out", "guests",
				"total_cents", "status", "payment_status").
			Values(b.PropertyID, b.GuestID, b.Range.Start, b.Range.End, b.Guests,
				b.TotalCents, b.Status, b.PaymentStatus).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).
			Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("create booking failed: %w", err)
		}

		return insertDerivedBlockTx(ctx, tx, b)
	})
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking, from Status) error {
	return r.withSerializableRetry(ctx, func(tx pgx.Tx) error {
		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Update("public.bookings").
			Set("status", b.Status).
			Set("payment_status", b.PaymentStatus).
			Set("cancel_reason", b.CancelReason).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ID, "status": from}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update booking status query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update booking status failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			// The stored status moved since the caller validated the
			// transition.
			return ErrInvalidTransition
		}

		switch b.Status {
		case StatusCancelled, StatusCompleted:
			return retractBlockTx(ctx, tx, blockedrange.BookingTag(b.ID))
		case StatusConfirmed:
			// Self-healing: re-create the derived block if it has gone
			// missing since the reservation was committed.
			return ensureDerivedBlockTx(ctx, tx, b)
		}
		return nil
	})
}

func (r *pgxRepository) Reschedule(ctx context.Context, b *Booking) error {
	return r.withSerializableRetry(ctx, func(tx pgx.Tx) error {
		conflict, err := hasConflictTx(ctx, tx, b.PropertyID, b.Range, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrNotAvailable
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Update("public.bookings").
			Set("check_in", b.Range.Start).
			Set("check_out", b.Range.End).
			Set("total_cents", b.TotalCents).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build reschedule booking query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("reschedule booking failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}

		// Swap the derived block: old range out, new range in, same tag.
		if err := retractBlockTx(ctx, tx, blockedrange.BookingTag(b.ID)); err != nil {
			return err
		}
		return insertDerivedBlockTx(ctx, tx, b)
	})
}

func (r *pgxRepository) HasConflict(ctx context.Context, propertyID string, rng daterange.DateRange, excludeBookingID string) (bool, error) {
	return hasConflictTx(ctx, r.pool, propertyID, rng, excludeBookingID)
}

func (r *pgxRepository) ListExpiredPending(ctx context.Context, before time.Time) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings").
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

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired pending booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *pgxRepository) CountActiveForProperty(ctx context.Context, propertyID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count active bookings query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active bookings failed: %w", err)
	}
	return count, nil
}

// withSerializableRetry runs fn inside a serializable transaction, retrying
// on serialization failures. A conflicting insert that slips past the
// in-transaction check is stopped by the exclusion constraint on
// (property_id, daterange) and surfaces as ErrNotAvailable.
func (r *pgxRepository) withSerializableRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = r.runSerializable(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			break
		}
	}
	if isExclusionViolation(err) {
		return ErrNotAvailable
	}
	if isSerializationFailure(err) {
		// Retries exhausted: a competing transaction kept winning.
		return ErrNotAvailable
	}
	return err
}

func (r *pgxRepository) runSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// querier abstracts the pool and an open transaction for read queries.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func hasConflictTx(ctx context.Context, tx querier, propertyID string, rng daterange.DateRange, excludeBookingID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	// Live reservations: existing.check_in < new.end AND existing.check_out > new.start.
	bookingsQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		Where(squirrel.Lt{"check_in": rng.End}).
		Where(squirrel.Gt{"check_out": rng.Start})
	if excludeBookingID != "" {
		bookingsQuery = bookingsQuery.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := bookingsQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build booking conflict query failed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking conflict failed: %w", err)
	}
	if exists {
		return true, nil
	}

	// Active blocked ranges, ignoring the reservation's own derived block.
	blocksQuery := psql.Select("1").
		From("public.blocked_ranges").
		Where(squirrel.Eq{"property_id": propertyID, "is_active": true}).
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start})
	if excludeBookingID != "" {
		blocksQuery = blocksQuery.Where(squirrel.NotEq{"tag": blockedrange.BookingTag(excludeBookingID)})
	}

	sql, args, err = blocksQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build blocked range conflict query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check blocked range conflict failed: %w", err)
	}
	return exists, nil
}

func insertDerivedBlockTx(ctx context.Context, tx pgx.Tx, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.blocked_ranges").
		Columns("property_id", "start_date", "end_date", "reason", "tag", "is_active").
		Values(b.PropertyID, b.Range.Start, b.Range.End,
			"derived from booking "+b.ID, blockedrange.BookingTag(b.ID), true).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert derived block query failed: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert derived block failed: %w", err)
	}
	return nil
}

func ensureDerivedBlockTx(ctx context.Context, tx pgx.Tx, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("1").
		From("public.blocked_ranges").
		Where(squirrel.Eq{"tag": blockedrange.BookingTag(b.ID), "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build check derived block query failed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return fmt.Errorf("check derived block failed: %w", err)
	}
	if exists {
		return nil
	}
	return insertDerivedBlockTx(ctx, tx, b)
}

func retractBlockTx(ctx context.Context, tx pgx.Tx, tag string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.blocked_ranges").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"tag": tag, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build retract block query failed: %w", err)
	}

	// Retracting a tag with no active ranges is a no-op per the ledger
	// contract, so the affected-row count is not checked.
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("retract block failed: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}
