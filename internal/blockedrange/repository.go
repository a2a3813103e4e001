package blockedrange

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trailstay/booking-backend/internal/daterange"
)

type Repository interface {
	Create(ctx context.Context, br *BlockedRange) error
	// Deactivate turns off a single manual block owned by the property.
	Deactivate(ctx context.Context, id string, propertyID string) error
	ActiveForProperty(ctx context.Context, propertyID string, window daterange.DateRange) ([]*BlockedRange, error)
	// HasActiveOverlap reports whether any active range on the property
	// overlaps r, ignoring ranges tagged excludeTag.
	HasActiveOverlap(ctx context.Context, propertyID string, r daterange.DateRange, excludeTag string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, br *BlockedRange) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.blocked_ranges").
		Columns("property_id", "start_date", "end_date", "reason", "tag", "is_active").
		Values(br.PropertyID, br.Range.Start, br.Range.End, br.Reason, br.Tag, true).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create blocked range query failed: %w", err)
	}

	br.IsActive = true
	return r.pool.QueryRow(ctx, query, args...).
		Scan(&br.ID, &br.CreatedAt, &br.UpdatedAt)
}

func (r *pgxRepository) Deactivate(ctx context.Context, id string, propertyID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.blocked_ranges").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "property_id": propertyID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate blocked range query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deactivate blocked range failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ActiveForProperty(ctx context.Context, propertyID string, window daterange.DateRange) ([]*BlockedRange, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "property_id", "start_date", "end_date", "reason", "tag", "is_active", "created_at", "updated_at").
		From("public.blocked_ranges").
		Where(squirrel.Eq{"property_id": propertyID, "is_active": true})

	if !window.IsZero() {
		query = query.
			Where(squirrel.Lt{"start_date": window.End}).
			Where(squirrel.Gt{"end_date": window.Start})
	}

	sql, args, err := query.OrderBy("start_date ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocked ranges query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked ranges failed: %w", err)
	}
	defer rows.Close()

	var ranges []*BlockedRange
	for rows.Next() {
		var br BlockedRange
		if err := rows.Scan(
			&br.ID, &br.PropertyID, &br.Range.Start, &br.Range.End,
			&br.Reason, &br.Tag, &br.IsActive, &br.CreatedAt, &br.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan blocked range failed: %w", err)
		}
		ranges = append(ranges, &br)
	}

	return ranges, nil
}

func (r *pgxRepository) HasActiveOverlap(ctx context.Context, propertyID string, rng daterange.DateRange, excludeTag string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.blocked_ranges").
		Where(squirrel.Eq{"property_id": propertyID, "is_active": true}).
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start})

	if excludeTag != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"tag": excludeTag})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check blocked overlap query failed: %w", err)
	}

	var exists bool
	err = r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("check blocked overlap failed: %w", err)
	}
	return exists, nil
}
