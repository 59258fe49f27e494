package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitra/portal-backend/internal/model"
)

var (
	ErrDuplicatePhone           = errors.New("applicant with this phone already exists")
	ErrDuplicateAdmissionFormID = errors.New("applicant with this admission form ID already exists")
)

const applicantColumns = `id, name, phone, password_hash, admission_form_id, department, ssc_gpa, hsc_gpa, created_at, updated_at`

// ApplicantRepository handles applicant data access.
type ApplicantRepository struct {
	pool *pgxpool.Pool
}

// NewApplicantRepository creates a new ApplicantRepository.
func NewApplicantRepository(pool *pgxpool.Pool) *ApplicantRepository {
	return &ApplicantRepository{pool: pool}
}

func scanApplicant(row interface{ Scan(...any) error }) (*model.Applicant, error) {
	a := &model.Applicant{}
	err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Password, &a.AdmissionFormID,
		&a.Department, &a.SSCGPA, &a.HSCGPA, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an applicant by ID.
func (r *ApplicantRepository) GetByID(ctx context.Context, id int64) (*model.Applicant, error) {
	return scanApplicant(r.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
}

// GetByPhone retrieves an applicant by their unique phone number.
func (r *ApplicantRepository) GetByPhone(ctx context.Context, phone string) (*model.Applicant, error) {
	return scanApplicant(r.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE phone = $1`, phone))
}

// Create inserts a new applicant.
func (r *ApplicantRepository) Create(ctx context.Context, a *model.Applicant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO applicants (name, phone, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		a.Name, a.Phone, a.Password,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return mapApplicantConstraint(err)
	}
	return nil
}

// UpdateProfile sets the admission details of an applicant.
func (r *ApplicantRepository) UpdateProfile(ctx context.Context, a *model.Applicant) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE applicants
		 SET name = $1, admission_form_id = $2, department = $3, ssc_gpa = $4, hsc_gpa = $5,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		a.Name, a.AdmissionFormID, a.Department, a.SSCGPA, a.HSCGPA, a.ID,
	).Scan(&a.UpdatedAt)

	if err != nil {
		return mapApplicantConstraint(err)
	}
	return nil
}

func mapApplicantConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "admission_form_id") {
			return ErrDuplicateAdmissionFormID
		}
		return ErrDuplicatePhone
	}
	return err
}
