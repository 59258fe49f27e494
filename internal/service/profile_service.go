package service

import (
	"context"
	"errors"
	"time"

	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

var ErrApplicantNotFound = errors.New("applicant not found")

// ProfileUpdate carries the admission details an applicant fills in before
// sitting the exam.
type ProfileUpdate struct {
	Name            string
	AdmissionFormID string
	Department      string
	SSCGPA          *float64
	HSCGPA          *float64
}

// ProfileService manages applicant admission profiles and the department
// catalogue.
type ProfileService struct {
	applicants  *repository.ApplicantRepository
	departments *repository.DepartmentRepository

	// now is swappable for deterministic time in tests.
	now func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(applicants *repository.ApplicantRepository, departments *repository.DepartmentRepository) *ProfileService {
	return &ProfileService{applicants: applicants, departments: departments, now: time.Now}
}

// Get retrieves an applicant's profile.
func (s *ProfileService) Get(ctx context.Context, applicantID int64) (*model.Applicant, error) {
	a, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, err
	}
	return a, nil
}

// Update stores the admission details. The chosen department must be
// accepting applicants at the time of the update. The admission form ID is
// unique portal-wide; a clash surfaces as
// repository.ErrDuplicateAdmissionFormID.
func (s *ProfileService) Update(ctx context.Context, applicantID int64, upd ProfileUpdate) (*model.Applicant, error) {
	a, err := s.Get(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	dept, err := s.departments.GetBySlug(ctx, upd.Department)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoDepartmentSelected
		}
		return nil, err
	}
	if !dept.AcceptingAt(s.now()) {
		return nil, ErrDepartmentClosed
	}

	a.Name = upd.Name
	a.AdmissionFormID = &upd.AdmissionFormID
	a.Department = &upd.Department
	a.SSCGPA = upd.SSCGPA
	a.HSCGPA = upd.HSCGPA

	if err := s.applicants.UpdateProfile(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Departments lists the departments currently accepting applicants.
func (s *ProfileService) Departments(ctx context.Context) ([]model.Department, error) {
	return s.departments.ListOpen(ctx, s.now())
}
