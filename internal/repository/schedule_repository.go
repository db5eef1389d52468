package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/facility-ops/internal/domain"
)

// ScheduleRepository persists schedule entries.
type ScheduleRepository interface {
	Create(ctx context.Context, entry *domain.ScheduleEntry) error
	Update(ctx context.Context, entry *domain.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleEntry, error)
	ListByDate(ctx context.Context, date string) ([]domain.ScheduleEntry, error)
}

const scheduleColumns = `id, title, schedule_type, to_char(schedule_date, 'YYYY-MM-DD'), start_time, end_time,
        location, assigned_staff, priority, status, description, created_at, updated_at`

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository returns a Postgres-backed implementation.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) Create(ctx context.Context, entry *domain.ScheduleEntry) error {
	const query = `
        INSERT INTO schedule_entries (title, schedule_type, schedule_date, start_time, end_time, location, assigned_staff, priority, status, description)
        VALUES ($1,$2,$3::text::date,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		entry.Title,
		entry.Type,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.Location,
		staffArray(entry.AssignedStaff),
		entry.Priority,
		entry.Status,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *scheduleRepository) Update(ctx context.Context, entry *domain.ScheduleEntry) error {
	const query = `
        UPDATE schedule_entries
        SET title=$1, schedule_type=$2, schedule_date=$3::text::date, start_time=$4, end_time=$5, location=$6,
            assigned_staff=$7, priority=$8, status=$9, description=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`

	if _, err := uuid.Parse(entry.ID); err != nil {
		return pgx.ErrNoRows
	}
	return r.pool.QueryRow(ctx, query,
		entry.Title,
		entry.Type,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.Location,
		staffArray(entry.AssignedStaff),
		entry.Priority,
		entry.Status,
		entry.Description,
		entry.ID,
	).Scan(&entry.UpdatedAt)
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM schedule_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.ScheduleEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries WHERE id=$1`
	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleRepository) ListByDate(ctx context.Context, date string) ([]domain.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + `
        FROM schedule_entries
        WHERE schedule_date = $1::text::date
        ORDER BY start_time, created_at, id`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanEntry(row pgx.Row) (domain.ScheduleEntry, error) {
	var entry domain.ScheduleEntry
	err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Type,
		&entry.Date,
		&entry.StartTime,
		&entry.EndTime,
		&entry.Location,
		&entry.AssignedStaff,
		&entry.Priority,
		&entry.Status,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	return entry, err
}

// staffArray keeps a nil slice from being written as SQL NULL.
func staffArray(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
