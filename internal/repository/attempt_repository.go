package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitra/portal-backend/internal/model"
)

// ErrAlreadySubmitted is returned when a state change requires an ACTIVE
// attempt but the row has already been submitted.
var ErrAlreadySubmitted = errors.New("attempt already submitted")

const attemptColumns = `id, applicant_id, department, question_set_id, status, paper, responses,
	points_per_answer, started_at, end_at, submitted_at,
	results, correct_count, exam_score, weighted_score,
	applicant_name, admission_form_id, applicant_phone,
	created_at, updated_at`

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func scanAttempt(row interface{ Scan(...any) error }) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.ApplicantID, &a.Department, &a.QuestionSetID, &a.Status,
		&a.Paper, &a.Responses, &a.PointsPerAnswer, &a.StartedAt, &a.EndAt, &a.SubmittedAt,
		&a.Results, &a.CorrectCount, &a.ExamScore, &a.WeightedScore,
		&a.ApplicantName, &a.AdmissionFormID, &a.ApplicantPhone,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindActive retrieves the applicant's ACTIVE attempt in a department, or
// pgx.ErrNoRows when none exists. At most one can exist at a time; the
// partial unique index on (applicant_id, department) enforces it.
func (r *AttemptRepository) FindActive(ctx context.Context, applicantID int64, department string) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE applicant_id = $1 AND department = $2 AND status = 'ACTIVE'`,
		applicantID, department))
}

// Create inserts a new ACTIVE attempt. If a concurrent request already
// created one, the insert is a no-op and the existing row is returned, so
// racing starts converge on a single attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) (*model.Attempt, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO attempts
		   (applicant_id, department, question_set_id, status, paper, responses,
		    points_per_answer, started_at, end_at)
		 VALUES ($1, $2, $3, 'ACTIVE', $4, '{}'::jsonb, $5, $6, $7)
		 ON CONFLICT (applicant_id, department) WHERE status = 'ACTIVE' DO NOTHING
		 RETURNING id, status, responses, created_at, updated_at`,
		a.ApplicantID, a.Department, a.QuestionSetID, a.Paper,
		a.PointsPerAnswer, a.StartedAt, a.EndAt,
	).Scan(&a.ID, &a.Status, &a.Responses, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race. The winner's row is the attempt.
		return r.FindActive(ctx, a.ApplicantID, a.Department)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ApplyResponseDelta merges the given answer delta into an ACTIVE attempt's
// responses. Keys in the delta overwrite existing keys; other saved answers
// are untouched. Returns ErrAlreadySubmitted when the attempt is no longer
// ACTIVE, and the attempt's end time on success so the caller can enforce
// the window.
func (r *AttemptRepository) ApplyResponseDelta(ctx context.Context, attemptID string, applicantID int64, delta model.ResponseMap) (time.Time, error) {
	var endAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET responses = responses || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND applicant_id = $2 AND status = 'ACTIVE'
		 RETURNING end_at`,
		attemptID, applicantID, delta,
	).Scan(&endAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrAlreadySubmitted
	}
	return endAt, err
}

// TransitionToSubmitted moves an ACTIVE attempt to SUBMITTED, recording the
// per-slot results, the score, and the applicant snapshot in the same
// statement. The status guard makes the transition happen at most once: a
// second submit matches zero rows and gets ErrAlreadySubmitted.
func (r *AttemptRepository) TransitionToSubmitted(ctx context.Context, a *model.Attempt) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET status = 'SUBMITTED',
		     submitted_at = CURRENT_TIMESTAMP,
		     results = $3,
		     correct_count = $4,
		     exam_score = $5,
		     weighted_score = $6,
		     applicant_name = $7,
		     admission_form_id = $8,
		     applicant_phone = $9,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND applicant_id = $2 AND status = 'ACTIVE'
		 RETURNING status, submitted_at, updated_at`,
		a.ID, a.ApplicantID, a.Results, a.CorrectCount, a.ExamScore, a.WeightedScore,
		a.ApplicantName, a.AdmissionFormID, a.ApplicantPhone,
	).Scan(&a.Status, &a.SubmittedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadySubmitted
	}
	return err
}

// GetByIDForApplicant retrieves an attempt scoped to its owner.
func (r *AttemptRepository) GetByIDForApplicant(ctx context.Context, attemptID string, applicantID int64) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts WHERE id = $1 AND applicant_id = $2`,
		attemptID, applicantID))
}

// GetByID retrieves an attempt without ownership scoping, for staff review.
func (r *AttemptRepository) GetByID(ctx context.Context, attemptID string) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts WHERE id = $1`, attemptID))
}

// ListSubmitted retrieves submitted attempts with pagination, optionally
// filtered by department, newest submissions first.
func (r *AttemptRepository) ListSubmitted(ctx context.Context, department string, limit, offset int) ([]model.AttemptResult, int, error) {
	countQuery := `SELECT COUNT(*) FROM attempts WHERE status = 'SUBMITTED'`
	var countArgs []interface{}
	if department != "" {
		countQuery += ` AND department = $1`
		countArgs = append(countArgs, department)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, applicant_id,
	            COALESCE(applicant_name, ''), COALESCE(admission_form_id, ''), COALESCE(applicant_phone, ''),
	            department, COALESCE(correct_count, 0), jsonb_array_length(paper),
	            COALESCE(exam_score, 0), COALESCE(weighted_score, 0), submitted_at
	          FROM attempts WHERE status = 'SUBMITTED'`
	var args []interface{}
	argIdx := 1
	if department != "" {
		query += ` AND department = $1`
		args = append(args, department)
		argIdx++
	}
	query += ` ORDER BY submitted_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.AttemptResult
	for rows.Next() {
		var res model.AttemptResult
		if err := rows.Scan(&res.ID, &res.ApplicantID, &res.ApplicantName, &res.AdmissionFormID,
			&res.ApplicantPhone, &res.Department, &res.CorrectCount, &res.TotalQuestions,
			&res.ExamScore, &res.WeightedScore, &res.SubmittedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// CountSubmitted returns the total number of submitted attempts, and the
// per-department breakdown.
func (r *AttemptRepository) CountSubmitted(ctx context.Context) (int, map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT department, COUNT(*) FROM attempts WHERE status = 'SUBMITTED' GROUP BY department`)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	total := 0
	byDept := make(map[string]int)
	for rows.Next() {
		var dept string
		var n int
		if err := rows.Scan(&dept, &n); err != nil {
			return 0, nil, err
		}
		byDept[dept] = n
		total += n
	}
	return total, byDept, rows.Err()
}
