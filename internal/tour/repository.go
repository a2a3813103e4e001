package tour

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, t *Tour) error
	GetByID(ctx context.Context, id string) (*Tour, error)
	List(ctx context.Context, filter Filter) ([]*Tour, int, error)
	Update(ctx context.Context, t *Tour) error

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, tourID string) ([]*Schedule, error)
	UpdateScheduleAvailability(ctx context.Context, id string, isAvailable bool) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const tourColumns = "id, guide_id, name, price_cents, currency, min_group_size, max_group_size, is_active, created_at, updated_at"
const scheduleColumns = "id, tour_id, start_date, end_date, price_cents, available_slots, booked_slots, is_available, created_at, updated_at"

func (r *pgxRepository) Create(ctx context.Context, t *Tour) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.tours").
		Columns("guide_id", "name", "price_cents", "currency", "min_group_size", "max_group_size", "is_active").
		Values(t.GuideID, t.Name, t.PriceCents, t.Currency, t.MinGroupSize, t.MaxGroupSize, true).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create tour query failed: %w", err)
	}

	t.IsActive = true
	return r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Tour, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(tourColumns).
		From("public.tours").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get tour query failed: %w", err)
	}

	var t Tour
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.GuideID, &t.Name, &t.PriceCents, &t.Currency,
		&t.MinGroupSize, &t.MaxGroupSize, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tour failed: %w", err)
	}
	return &t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Tour, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(tourColumns, "count(*) OVER() as total_count").
		From("public.tours")

	if filter.GuideID != "" {
		query = query.Where(squirrel.Eq{"guide_id": filter.GuideID})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
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
		return nil, 0, fmt.Errorf("build list tours query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tours failed: %w", err)
	}
	defer rows.Close()

	var tours []*Tour
	var total int

	for rows.Next() {
		var t Tour
		if err := rows.Scan(
			&t.ID, &t.GuideID, &t.Name, &t.PriceCents, &t.Currency,
			&t.MinGroupSize, &t.MaxGroupSize, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan tour failed: %w", err)
		}
		tours = append(tours, &t)
	}

	return tours, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Tour) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.tours").
		Set("name", t.Name).
		Set("price_cents", t.PriceCents).
		Set("currency", t.Currency).
		Set("min_group_size", t.MinGroupSize).
		Set("max_group_size", t.MaxGroupSize).
		Set("is_active", t.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update tour query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tour failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.tour_schedules").
		Columns("tour_id", "start_date", "end_date", "price_cents", "available_slots", "booked_slots", "is_available").
		Values(s.TourID, s.Range.Start, s.Range.End, s.PriceCents, s.AvailableSlots, 0, true).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create schedule query failed: %w", err)
	}

	s.BookedSlots = 0
	s.IsAvailable = true
	return r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *pgxRepository) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns).
		From("public.tour_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get schedule query failed: %w", err)
	}

	var s Schedule
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.TourID, &s.Range.Start, &s.Range.End, &s.PriceCents,
		&s.AvailableSlots, &s.BookedSlots, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListSchedules(ctx context.Context, tourID string) ([]*Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns).
		From("public.tour_schedules").
		Where(squirrel.Eq{"tour_id": tourID}).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list schedules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules failed: %w", err)
	}
	defer rows.Close()

	var schedules []*Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(
			&s.ID, &s.TourID, &s.Range.Start, &s.Range.End, &s.PriceCents,
			&s.AvailableSlots, &s.BookedSlots, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan schedule failed: %w", err)
		}
		schedules = append(schedules, &s)
	}

	return schedules, nil
}

func (r *pgxRepository) UpdateScheduleAvailability(ctx context.Context, id string, isAvailable bool) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.tour_schedules").
		Set("is_available", isAvailable).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update schedule availability query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update schedule availability failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
