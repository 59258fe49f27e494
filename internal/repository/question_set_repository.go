package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitra/portal-backend/internal/model"
)

// ErrNotDraft is returned when a publish targets a set that is no longer DRAFT.
var ErrNotDraft = errors.New("question set is not in draft status")

// QuestionSetRepository handles question set data access.
type QuestionSetRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionSetRepository creates a new QuestionSetRepository.
func NewQuestionSetRepository(pool *pgxpool.Pool) *QuestionSetRepository {
	return &QuestionSetRepository{pool: pool}
}

// Create inserts a new DRAFT question set.
func (r *QuestionSetRepository) Create(ctx context.Context, qs *model.QuestionSet) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_sets (department, title, status, questions, created_by)
		 VALUES ($1, $2, 'DRAFT', $3, $4)
		 RETURNING id, status, created_at, updated_at`,
		qs.Department, qs.Title, qs.Questions, qs.CreatedBy,
	).Scan(&qs.ID, &qs.Status, &qs.CreatedAt, &qs.UpdatedAt)
}

// GetByID retrieves a question set with its full question payload.
func (r *QuestionSetRepository) GetByID(ctx context.Context, id string) (*model.QuestionSet, error) {
	qs := &model.QuestionSet{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, department, title, status, questions, created_by, published_at, created_at, updated_at
		 FROM question_sets WHERE id = $1`, id,
	).Scan(&qs.ID, &qs.Department, &qs.Title, &qs.Status, &qs.Questions,
		&qs.CreatedBy, &qs.PublishedAt, &qs.CreatedAt, &qs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return qs, nil
}

// LatestPublishedByDepartment retrieves the currently published set for a
// department, or pgx.ErrNoRows when none exists.
func (r *QuestionSetRepository) LatestPublishedByDepartment(ctx context.Context, department string) (*model.QuestionSet, error) {
	qs := &model.QuestionSet{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, department, title, status, questions, created_by, published_at, created_at, updated_at
		 FROM question_sets
		 WHERE department = $1 AND status = 'PUBLISHED'
		 ORDER BY published_at DESC
		 LIMIT 1`, department,
	).Scan(&qs.ID, &qs.Department, &qs.Title, &qs.Status, &qs.Questions,
		&qs.CreatedBy, &qs.PublishedAt, &qs.CreatedAt, &qs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return qs, nil
}

// List retrieves set summaries, optionally filtered by department, newest first.
func (r *QuestionSetRepository) List(ctx context.Context, department string) ([]model.QuestionSetSummary, error) {
	query := `SELECT id, department, title, status, jsonb_array_length(questions), published_at, created_at
	          FROM question_sets`
	var args []interface{}
	if department != "" {
		query += ` WHERE department = $1`
		args = append(args, department)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []model.QuestionSetSummary
	for rows.Next() {
		var s model.QuestionSetSummary
		if err := rows.Scan(&s.ID, &s.Department, &s.Title, &s.Status,
			&s.QuestionCount, &s.PublishedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// Publish transitions a DRAFT set to PUBLISHED and archives any previously
// published set in the same department, atomically. A set that is already
// PUBLISHED is left as is so re-publish is idempotent.
func (r *QuestionSetRepository) Publish(ctx context.Context, id string) (*model.QuestionSet, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	qs := &model.QuestionSet{}
	err = tx.QueryRow(ctx,
		`SELECT id, department, title, status, questions, created_by, published_at, created_at, updated_at
		 FROM question_sets WHERE id = $1 FOR UPDATE`, id,
	).Scan(&qs.ID, &qs.Department, &qs.Title, &qs.Status, &qs.Questions,
		&qs.CreatedBy, &qs.PublishedAt, &qs.CreatedAt, &qs.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if qs.Status == model.QuestionSetPublished {
		return qs, tx.Commit(ctx)
	}
	if qs.Status != model.QuestionSetDraft {
		return nil, ErrNotDraft
	}

	if _, err := tx.Exec(ctx,
		`UPDATE question_sets SET status = 'ARCHIVED', updated_at = CURRENT_TIMESTAMP
		 WHERE department = $1 AND status = 'PUBLISHED'`, qs.Department); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE question_sets
		 SET status = 'PUBLISHED', published_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING status, published_at, updated_at`, id,
	).Scan(&qs.Status, &qs.PublishedAt, &qs.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return qs, tx.Commit(ctx)
}

// HasPublished reports whether a department has any published set.
func (r *QuestionSetRepository) HasPublished(ctx context.Context, department string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM question_sets WHERE department = $1 AND status = 'PUBLISHED')`,
		department,
	).Scan(&exists)
	return exists, err
}

// CountPublishedDepartments returns the number of departments with a
// published question set.
func (r *QuestionSetRepository) CountPublishedDepartments(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT department) FROM question_sets WHERE status = 'PUBLISHED'`,
	).Scan(&n)
	return n, err
}

// IsNotFound reports whether an error means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
