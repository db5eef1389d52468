package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/facility-ops/internal/domain"
)

// StaffRepository handles persistence for staff members and doubles as the staff directory.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
	GetAvailableStaff(ctx context.Context, date, startTime, endTime string) ([]string, error)
	AssignBlock(ctx context.Context, id, block string) error
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role          *domain.StaffRole
	Department    *domain.Department
	AssignedBlock *string
	Active        *bool
	Limit         int
	Offset        int
}

const staffColumns = `id, name, email, password_hash, role, position, department, assigned_block, active_flag, created_at, updated_at`

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (name, email, password_hash, role, position, department, assigned_block, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Position,
		staff.Department,
		staff.AssignedBlock,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff_members
        SET name=$1, email=$2, password_hash=$3, role=$4, position=$5, department=$6, assigned_block=$7, active_flag=$8, updated_at=NOW()
        WHERE id=$9`

	if _, err := uuid.Parse(staff.ID); err != nil {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, query,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Position,
		staff.Department,
		staff.AssignedBlock,
		staff.Active,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id=$1`, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE lower(email)=lower($1)`, email)
}

func (r *staffRepository) getOne(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	staff, err := scanStaff(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("lower(department)=lower($%d)", len(args)))
	}
	if filter.AssignedBlock != nil {
		args = append(args, *filter.AssignedBlock)
		clauses = append(clauses, fmt.Sprintf("assigned_block=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at, id"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	return r.query(ctx, query, args...)
}

// ListStaff returns every active member in directory order.
func (r *staffRepository) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	return r.query(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE active_flag ORDER BY created_at, id`)
}

// GetAvailableStaff returns active staff with no entry on date whose window overlaps [start, end).
// HH:MM strings compare correctly as text.
func (r *staffRepository) GetAvailableStaff(ctx context.Context, date, startTime, endTime string) ([]string, error) {
	const query = `
        SELECT s.id::text
        FROM staff_members s
        WHERE s.active_flag
          AND NOT EXISTS (
            SELECT 1 FROM schedule_entries e
            WHERE e.schedule_date = $1::text::date
              AND s.id::text = ANY(e.assigned_staff)
              AND e.start_time < $3
              AND $2 < e.end_time
          )
        ORDER BY s.created_at, s.id`

	rows, err := r.pool.Query(ctx, query, date, startTime, endTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *staffRepository) AssignBlock(ctx context.Context, id, block string) error {
	const query = `UPDATE staff_members SET assigned_block=$1, updated_at=NOW() WHERE id=$2`

	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, query, block, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) query(ctx context.Context, query string, args ...any) ([]domain.StaffMember, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func scanStaff(row pgx.Row) (domain.StaffMember, error) {
	var staff domain.StaffMember
	err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Position,
		&staff.Department,
		&staff.AssignedBlock,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	return staff, err
}
