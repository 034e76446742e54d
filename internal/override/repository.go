package override

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Set upserts the override for (date, structure). Last write wins.
	Set(ctx context.Context, o *Override) error
	Clear(ctx context.Context, date, structureID string) error
	GetForDate(ctx context.Context, date string) ([]*Override, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Set(ctx context.Context, o *Override) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.daily_overrides").
		Columns("date", "structure_id", "status").
		Values(o.Date, o.StructureID, o.Status).
		Suffix("ON CONFLICT (date, structure_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set override query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&o.UpdatedAt)
}

func (r *pgxRepository) Clear(ctx context.Context, date, structureID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.daily_overrides").
		Where(squirrel.Eq{"date": date, "structure_id": structureID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear override query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("clear override failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetForDate(ctx context.Context, date string) ([]*Override, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("to_char(date, 'YYYY-MM-DD')", "structure_id", "status", "updated_at").
		From("public.daily_overrides").
		Where(squirrel.Eq{"date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get overrides query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get overrides failed: %w", err)
	}
	defer rows.Close()

	var result []*Override
	for rows.Next() {
		var o Override
		if err := rows.Scan(&o.Date, &o.StructureID, &o.Status, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan override failed: %w", err)
		}
		result = append(result, &o)
	}
	return result, nil
}
