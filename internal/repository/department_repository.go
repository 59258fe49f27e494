package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitra/portal-backend/internal/model"
)

const departmentColumns = `id, slug, name, open, window_start, window_end,
	points_per_correct, created_at, updated_at`

// Matches departments that are open and inside their admission window.
const acceptingPredicate = `open
	AND (window_start IS NULL OR window_start <= $1)
	AND (window_end IS NULL OR window_end > $1)`

// DepartmentRepository handles department data access.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a new DepartmentRepository.
func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func scanDepartment(row interface{ Scan(...any) error }) (*model.Department, error) {
	d := &model.Department{}
	err := row.Scan(&d.ID, &d.Slug, &d.Name, &d.Open, &d.WindowStart, &d.WindowEnd,
		&d.PointsPerCorrect, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListOpen retrieves the departments accepting applicants at the given
// time, ordered by name.
func (r *DepartmentRepository) ListOpen(ctx context.Context, now time.Time) ([]model.Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+departmentColumns+`
		 FROM departments
		 WHERE `+acceptingPredicate+`
		 ORDER BY name`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *d)
	}
	return departments, rows.Err()
}

// GetBySlug retrieves a department by its slug.
func (r *DepartmentRepository) GetBySlug(ctx context.Context, slug string) (*model.Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx,
		`SELECT `+departmentColumns+`
		 FROM departments WHERE slug = $1`, slug))
}

// CountOpen returns the number of departments accepting applicants at the
// given time.
func (r *DepartmentRepository) CountOpen(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM departments WHERE `+acceptingPredicate, now).Scan(&n)
	return n, err
}
