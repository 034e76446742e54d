package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BulkPlan is the change set a bulk operation applies in one transaction.
type BulkPlan struct {
	InsertBlocks []*Booking // new bloqueado records
	CancelIDs    []string   // guest bookings released to cancelado
	DeleteIDs    []string   // bloqueado records removed
}

func (p BulkPlan) Empty() bool {
	return len(p.InsertBlocks) == 0 && len(p.CancelIDs) == 0 && len(p.DeleteIDs) == 0
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListActiveForDate returns every slot-occupying record for the date,
	// the working set the availability resolver and bulk engine consume.
	ListActiveForDate(ctx context.Context, date string) ([]*Booking, error)

	// CreateExclusive inserts b after superseding the owning stay's prior
	// active booking for the same structure and date, and re-checking that no
	// other active record occupies the slot. Supersession, check and insert
	// run in one transaction; a losing race surfaces as ErrSlotTaken.
	// matchAnyUnit widens the conflict check to every unit of the structure
	// (by_structure pooling). Returns the IDs of superseded bookings.
	CreateExclusive(ctx context.Context, b *Booking, matchAnyUnit bool) ([]string, error)

	// UpdateStatusFrom moves the booking to the given status only when its
	// current status is one of from (compare-and-swap, so a transition never
	// acts on a row another request changed since it was read). Returns
	// ErrNotFound for an unknown id and ErrInvalidTransition when the row has
	// already moved out of the allowed set.
	UpdateStatusFrom(ctx context.Context, id string, to Status, from ...Status) error

	// Delete removes a record outright. Only administrative blocks are
	// deleted; guest cancellations go through UpdateStatusFrom.
	Delete(ctx context.Context, id string) error

	// BulkApply commits the plan atomically. Any slot conflict aborts the
	// whole transaction with ErrSlotTaken; nothing is applied.
	BulkApply(ctx context.Context, plan BulkPlan) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"id", "structure_id", "structure_name", "unit_id",
	"to_char(date, 'YYYY-MM-DD')", "start_time", "end_time",
	"stay_id", "status", "preference_time", "selected_options", "notes",
	"created_at", "updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.StructureID, &b.StructureName, &b.UnitID,
		&b.Date, &b.StartTime, &b.EndTime,
		&b.StayID, &b.Status, &b.PreferenceTime, &b.SelectedOptions, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
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
	cols := append(append([]string{}, bookingColumns...), "count(*) OVER() as total_count")
	query := psql.Select(cols...).From("public.bookings")

	if filter.StayID != "" {
		query = query.Where(squirrel.Eq{"stay_id": filter.StayID})
	}
	if filter.StructureID != "" {
		query = query.Where(squirrel.Eq{"structure_id": filter.StructureID})
	}
	if filter.Date != "" {
		query = query.Where(squirrel.Eq{"date": filter.Date})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("date DESC", "start_time ASC")

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
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListActiveForDate(ctx context.Context, date string) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"date": date}).
		Where(squirrel.Eq{"status": activeStatuses}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *pgxRepository) CreateExclusive(ctx context.Context, b *Booking, matchAnyUnit bool) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create booking tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var superseded []string
	if b.StayID != nil {
		superseded, err = supersedePrior(ctx, tx, *b.StayID, b.StructureID, b.Date)
		if err != nil {
			return nil, err
		}
	}

	taken, err := slotTaken(ctx, tx, b, matchAnyUnit)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	if err := insertBooking(ctx, tx, b); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create booking tx failed: %w", err)
	}
	return superseded, nil
}

// supersedePrior cancels the stay's active bookings for (structure, date) so a
// guest never holds two live bookings for the same structure and day.
func supersedePrior(ctx context.Context, tx pgx.Tx, stayID, structureID, date string) ([]string, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.bookings").
		Set("status", StatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"stay_id": stayID, "structure_id": structureID, "date": date}).
		Where(squirrel.Eq{"status": activeStatuses}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build supersede query failed: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("supersede prior bookings failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan superseded id failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func slotTaken(ctx context.Context, tx pgx.Tx, b *Booking, matchAnyUnit bool) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"structure_id": b.StructureID, "date": b.Date, "start_time": b.StartTime}).
		Where(squirrel.Eq{"status": activeStatuses})

	if !matchAnyUnit {
		unit := ""
		if b.UnitID != nil {
			unit = *b.UnitID
		}
		sub = sub.Where(squirrel.Expr("coalesce(unit_id, '') = ?", unit))
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build slot check query failed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("slot check failed: %w", err)
	}
	return exists, nil
}

func insertBooking(ctx context.Context, tx pgx.Tx, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	opts := b.SelectedOptions
	if opts == nil {
		opts = []string{}
	}
	sql, args, err := psql.Insert("public.bookings").
		Columns("structure_id", "structure_name", "unit_id", "date", "start_time", "end_time",
			"stay_id", "status", "preference_time", "selected_options", "notes").
		Values(b.StructureID, b.StructureName, b.UnitID, b.Date, b.StartTime, b.EndTime,
			b.StayID, b.Status, b.PreferenceTime, opts, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		// The partial unique index is the backstop for races the pre-check
		// cannot see (a concurrent tx that has not committed yet).
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateStatusFrom(ctx context.Context, id string, to Status, from ...Status) error {
	states := make([]string, len(from))
	for i, st := range from {
		states[i] = string(st)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": states}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		// Moving a row back into the active set can collide with a booking
		// that claimed the slot in the meantime; the partial unique index
		// reports that as a conflict, not a server error.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: the id is unknown, or the status moved on since the caller
	// read the row.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) BulkApply(ctx context.Context, plan BulkPlan) error {
	if plan.Empty() {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	if len(plan.CancelIDs) > 0 {
		sql, args, err := psql.Update("public.bookings").
			Set("status", StatusCancelled).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": plan.CancelIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build bulk cancel query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("bulk cancel failed: %w", err)
		}
	}

	if len(plan.DeleteIDs) > 0 {
		sql, args, err := psql.Delete("public.bookings").
			Where(squirrel.Eq{"id": plan.DeleteIDs, "status": string(StatusBlocked)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build bulk delete query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("bulk delete failed: %w", err)
		}
	}

	for _, b := range plan.InsertBlocks {
		if err := insertBooking(ctx, tx, b); err != nil {
			// Includes ErrSlotTaken when a guest snatched a slot between the
			// planning snapshot and this transaction; the whole batch aborts.
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk tx failed: %w", err)
	}
	return nil
}
