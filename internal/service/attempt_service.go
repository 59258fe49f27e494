package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

// DefaultPointsPerAnswer is the fallback mark value of one correct answer,
// used when the department does not configure its own. The effective value
// is snapshotted onto the attempt at creation so later policy changes never
// rescore papers already in flight.
const DefaultPointsPerAnswer = 1

var (
	ErrNoDepartmentSelected = errors.New("applicant has not selected a department")
	ErrDepartmentClosed     = errors.New("department is not accepting applicants")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptExpired       = errors.New("attempt window is over")
	ErrInvalidAnswerDelta   = errors.New("invalid answer payload")
)

// AttemptStore is the attempt persistence surface the service depends on.
type AttemptStore interface {
	FindActive(ctx context.Context, applicantID int64, department string) (*model.Attempt, error)
	Create(ctx context.Context, a *model.Attempt) (*model.Attempt, error)
	ApplyResponseDelta(ctx context.Context, attemptID string, applicantID int64, delta model.ResponseMap) (time.Time, error)
	TransitionToSubmitted(ctx context.Context, a *model.Attempt) error
	GetByIDForApplicant(ctx context.Context, attemptID string, applicantID int64) (*model.Attempt, error)
}

// ApplicantSource supplies applicant profiles.
type ApplicantSource interface {
	GetByID(ctx context.Context, id int64) (*model.Applicant, error)
}

// BankProvider resolves the question bank to assemble papers from.
type BankProvider interface {
	BankFor(ctx context.Context, department string) ([]model.QuestionItem, *string, error)
}

// DepartmentSource supplies the department catalogue.
type DepartmentSource interface {
	GetBySlug(ctx context.Context, slug string) (*model.Department, error)
}

// SubmissionNotifier is told about finalized attempts. Implementations must
// not block the submit path; delivery is best effort.
type SubmissionNotifier interface {
	NotifySubmitted(ctx context.Context, attemptID string, department string)
}

// AttemptService owns the exam attempt lifecycle: start, autosave, submit,
// and session retrieval.
type AttemptService struct {
	attempts    AttemptStore
	applicants  ApplicantSource
	banks       BankProvider
	departments DepartmentSource
	notifier    SubmissionNotifier
	duration    time.Duration
	log         zerolog.Logger

	// now is swappable for deterministic time in tests.
	now func() time.Time
}

// NewAttemptService creates a new AttemptService. notifier may be nil.
func NewAttemptService(
	attempts AttemptStore,
	applicants ApplicantSource,
	banks BankProvider,
	departments DepartmentSource,
	notifier SubmissionNotifier,
	duration time.Duration,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attempts:    attempts,
		applicants:  applicants,
		banks:       banks,
		departments: departments,
		notifier:    notifier,
		duration:    duration,
		log:         log,
		now:         time.Now,
	}
}

// Start returns the applicant's usable attempt for their selected
// department, creating one if needed. Calling it again while an attempt's
// window is open returns that same attempt with its saved answers, so a
// page reload never produces a second paper.
func (s *AttemptService) Start(ctx context.Context, applicantID int64) (*model.AttemptSession, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.Department == nil || *applicant.Department == "" {
		return nil, ErrNoDepartmentSelected
	}
	department := *applicant.Department

	now := s.now()
	active, err := s.attempts.FindActive(ctx, applicantID, department)
	switch {
	case err == nil:
		if !active.Expired(now) {
			return s.session(active, now), nil
		}
		// The window closed without a submit. Finalize the stale attempt
		// from whatever was saved so a fresh one can be created.
		if err := s.finalize(ctx, active, applicant); err != nil &&
			!errors.Is(err, repository.ErrAlreadySubmitted) {
			return nil, err
		}
	case !repository.IsNotFound(err):
		return nil, err
	}

	// A fresh paper is only handed out while the department accepts
	// applicants. Live attempts above are reusable regardless, so a window
	// closing mid-exam never locks anyone out of their paper.
	dept, err := s.departments.GetBySlug(ctx, department)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoDepartmentSelected
		}
		return nil, err
	}
	if !dept.AcceptingAt(now) {
		return nil, ErrDepartmentClosed
	}

	bank, setID, err := s.banks.BankFor(ctx, department)
	if err != nil {
		return nil, err
	}
	paper, err := AssemblePaper(bank)
	if err != nil {
		return nil, ErrNoQuestionsAvailable
	}

	points := dept.PointsPerCorrect
	if points <= 0 {
		points = DefaultPointsPerAnswer
	}
	attempt := &model.Attempt{
		ApplicantID:     applicantID,
		Department:      department,
		Paper:           paper,
		PointsPerAnswer: points,
		StartedAt:       now,
		EndAt:           now.Add(s.duration),
	}
	if setID != nil {
		if parsed, err := uuid.Parse(*setID); err == nil {
			attempt.QuestionSetID = &parsed
		}
	}

	created, err := s.attempts.Create(ctx, attempt)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("attempt_id", created.ID.String()).
		Int64("applicant_id", applicantID).
		Str("department", department).
		Time("end_at", created.EndAt).
		Msg("exam attempt started")

	return s.session(created, now), nil
}

// Save merges an answer delta into an ACTIVE attempt. The delta maps slot
// indexes to scalar answers; unlisted slots keep their saved values, so
// concurrent autosaves of different slots never clobber each other. Saves
// after the window closes are rejected without persisting anything.
func (s *AttemptService) Save(ctx context.Context, applicantID int64, attemptID string, delta model.ResponseMap) (*model.AttemptSession, error) {
	attempt, err := s.attempts.GetByIDForApplicant(ctx, attemptID, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	now := s.now()
	if attempt.Status != model.AttemptActive {
		return nil, repository.ErrAlreadySubmitted
	}
	if attempt.Expired(now) {
		return nil, ErrAttemptExpired
	}
	if err := validateDelta(delta, len(attempt.Paper)); err != nil {
		return nil, err
	}

	if len(delta) > 0 {
		if _, err := s.attempts.ApplyResponseDelta(ctx, attemptID, applicantID, delta); err != nil {
			return nil, err
		}
		if attempt.Responses == nil {
			attempt.Responses = make(model.ResponseMap, len(delta))
		}
		for k, v := range delta {
			attempt.Responses[k] = v
		}
	}

	return s.session(attempt, now), nil
}

// Submit finalizes an attempt: grades the frozen paper against the saved
// answers, snapshots the applicant, and transitions to SUBMITTED. Submits
// after the window are accepted. A repeat submit reports already=true and
// never rescores.
func (s *AttemptService) Submit(ctx context.Context, applicantID int64, attemptID string) (*model.SubmitResult, error) {
	attempt, err := s.attempts.GetByIDForApplicant(ctx, attemptID, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status == model.AttemptSubmitted {
		return &model.SubmitResult{OK: true, Already: true}, nil
	}

	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	if err := s.finalize(ctx, attempt, applicant); err != nil {
		if errors.Is(err, repository.ErrAlreadySubmitted) {
			// Lost a race with another submit of the same attempt.
			return &model.SubmitResult{OK: true, Already: true}, nil
		}
		return nil, err
	}

	return &model.SubmitResult{OK: true}, nil
}

// Get returns the session view of an attempt for its owner. An ACTIVE
// attempt whose window has closed is reported as expired rather than
// handing out a paper that can no longer be saved.
func (s *AttemptService) Get(ctx context.Context, applicantID int64, attemptID string) (*model.AttemptSession, error) {
	attempt, err := s.attempts.GetByIDForApplicant(ctx, attemptID, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	now := s.now()
	if attempt.Status == model.AttemptActive && attempt.Expired(now) {
		return nil, ErrAttemptExpired
	}
	return s.session(attempt, now), nil
}

// Active resolves the applicant's live attempt in their selected department
// without an attempt ID, for clients reconnecting after losing local state.
func (s *AttemptService) Active(ctx context.Context, applicantID int64) (*model.AttemptSession, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.Department == nil || *applicant.Department == "" {
		return nil, ErrNoDepartmentSelected
	}

	attempt, err := s.attempts.FindActive(ctx, applicantID, *applicant.Department)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	now := s.now()
	if attempt.Expired(now) {
		return nil, ErrAttemptExpired
	}
	return s.session(attempt, now), nil
}

// finalize grades and submits an attempt. The status-guarded update makes
// it safe to call concurrently; exactly one caller wins.
func (s *AttemptService) finalize(ctx context.Context, attempt *model.Attempt, applicant *model.Applicant) error {
	var ssc, hsc float64
	if applicant.SSCGPA != nil {
		ssc = *applicant.SSCGPA
	}
	if applicant.HSCGPA != nil {
		hsc = *applicant.HSCGPA
	}

	results, score := GradePaper(attempt.Paper, attempt.Responses, attempt.PointsPerAnswer, ssc, hsc)
	attempt.Results = results
	attempt.CorrectCount = &score.CorrectCount
	attempt.ExamScore = &score.ExamScore
	attempt.WeightedScore = &score.WeightedScore
	attempt.ApplicantName = &applicant.Name
	attempt.ApplicantPhone = &applicant.Phone
	if applicant.AdmissionFormID != nil {
		attempt.AdmissionFormID = applicant.AdmissionFormID
	}

	if err := s.attempts.TransitionToSubmitted(ctx, attempt); err != nil {
		return err
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int64("applicant_id", attempt.ApplicantID).
		Int("correct", score.CorrectCount).
		Int("exam_score", score.ExamScore).
		Msg("exam attempt submitted")

	if s.notifier != nil {
		s.notifier.NotifySubmitted(ctx, attempt.ID.String(), attempt.Department)
	}
	return nil
}

func (s *AttemptService) session(a *model.Attempt, now time.Time) *model.AttemptSession {
	responses := a.Responses
	if responses == nil {
		responses = model.ResponseMap{}
	}
	return &model.AttemptSession{
		ID:          a.ID,
		Department:  a.Department,
		Status:      a.Status,
		Questions:   a.ClientPaper(),
		Responses:   responses,
		StartedAt:   a.StartedAt,
		EndAt:       a.EndAt,
		ServerTime:  now,
		SubmittedAt: a.SubmittedAt,
	}
}

// validateDelta rejects the whole delta when any key is not a slot index
// inside the paper, or any value is not a JSON scalar. Partial application
// of a malformed payload would make autosave results order dependent.
func validateDelta(delta model.ResponseMap, paperLen int) error {
	for key, answer := range delta {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= paperLen {
			return ErrInvalidAnswerDelta
		}
		if !answer.IsScalar() {
			return ErrInvalidAnswerDelta
		}
	}
	return nil
}
