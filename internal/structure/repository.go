package structure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, s *Structure) error
	GetByID(ctx context.Context, id string) (*Structure, error)
	List(ctx context.Context, filter Filter) ([]*Structure, int, error)
	Update(ctx context.Context, s *Structure) error
	UpdatePhotoRef(ctx context.Context, id, photoRef string) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *Structure) error {
	slots, err := json.Marshal(s.TimeSlots)
	if err != nil {
		return fmt.Errorf("marshal time slots failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.structures").
		Columns("name", "photo_ref", "management_type", "units", "time_slots", "default_status", "approval_mode").
		Values(s.Name, s.PhotoRef, s.ManagementType, s.Units, slots, s.DefaultStatus, s.ApprovalMode).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create structure query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Structure, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "photo_ref", "management_type", "units", "time_slots",
		"default_status", "approval_mode", "created_at", "updated_at",
	).
		From("public.structures").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get structure query failed: %w", err)
	}

	s, err := scanStructure(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get structure failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Structure, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "photo_ref", "management_type", "units", "time_slots",
		"default_status", "approval_mode", "created_at", "updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.structures").
		OrderBy("name ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list structures query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list structures failed: %w", err)
	}
	defer rows.Close()

	var result []*Structure
	var total int

	for rows.Next() {
		var s Structure
		var slots []byte
		if err := rows.Scan(
			&s.ID, &s.Name, &s.PhotoRef, &s.ManagementType, &s.Units, &slots,
			&s.DefaultStatus, &s.ApprovalMode, &s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan structure failed: %w", err)
		}
		if err := json.Unmarshal(slots, &s.TimeSlots); err != nil {
			return nil, 0, fmt.Errorf("unmarshal time slots failed: %w", err)
		}
		result = append(result, &s)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Structure) error {
	slots, err := json.Marshal(s.TimeSlots)
	if err != nil {
		return fmt.Errorf("marshal time slots failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.structures").
		Set("name", s.Name).
		Set("management_type", s.ManagementType).
		Set("units", s.Units).
		Set("time_slots", slots).
		Set("default_status", s.DefaultStatus).
		Set("approval_mode", s.ApprovalMode).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update structure query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update structure failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdatePhotoRef(ctx context.Context, id, photoRef string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.structures").
		Set("photo_ref", photoRef).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update photo ref query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update photo ref failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the structure definition only. Past bookings keep their
// denormalized structure name and are intentionally left orphaned.
func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.structures").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete structure query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete structure failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStructure(row pgx.Row) (*Structure, error) {
	var s Structure
	var slots []byte
	if err := row.Scan(
		&s.ID, &s.Name, &s.PhotoRef, &s.ManagementType, &s.Units, &slots,
		&s.DefaultStatus, &s.ApprovalMode, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slots, &s.TimeSlots); err != nil {
		return nil, fmt.Errorf("unmarshal time slots failed: %w", err)
	}
	return &s, nil
}
