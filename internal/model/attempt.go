package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus is the lifecycle state of an exam attempt.
type AttemptStatus string

const (
	AttemptActive    AttemptStatus = "ACTIVE"
	AttemptSubmitted AttemptStatus = "SUBMITTED"
)

// PaperSlot is one position in an assembled paper. The full question,
// answer key included, is frozen into the attempt row at start time so
// that later edits to the bank never change what gets scored.
type PaperSlot struct {
	Index    int          `json:"index"`
	Question QuestionItem `json:"question"`
}

// ResultItem is the per-slot grading record frozen into the attempt at
// submit, in slot order. Staff review reads this list back; a submitted
// attempt is never regraded.
type ResultItem struct {
	SlotIndex     int     `json:"slot_index"`
	GivenAnswer   *Answer `json:"given_answer,omitempty"`
	CorrectAnswer Answer  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
}

// Attempt is a single exam sitting for an applicant in a department.
type Attempt struct {
	ID              uuid.UUID     `json:"id"`
	ApplicantID     int64         `json:"applicant_id"`
	Department      string        `json:"department"`
	QuestionSetID   *uuid.UUID    `json:"question_set_id,omitempty"`
	Status          AttemptStatus `json:"status"`
	Paper           []PaperSlot   `json:"-"`
	Responses       ResponseMap   `json:"-"`
	PointsPerAnswer int           `json:"points_per_answer"`
	StartedAt       time.Time     `json:"started_at"`
	EndAt           time.Time     `json:"end_at"`
	SubmittedAt     *time.Time    `json:"submitted_at,omitempty"`

	// Scoring results, populated once at submit.
	Results       []ResultItem `json:"results,omitempty"`
	CorrectCount  *int         `json:"correct_count,omitempty"`
	ExamScore     *int         `json:"exam_score,omitempty"`
	WeightedScore *float64     `json:"weighted_score,omitempty"`

	// Applicant snapshot, copied at submit so results stay stable even if
	// the profile changes afterwards.
	ApplicantName    *string `json:"applicant_name,omitempty"`
	AdmissionFormID  *string `json:"admission_form_id,omitempty"`
	ApplicantPhone   *string `json:"applicant_phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the attempt window has closed at the given time.
func (a *Attempt) Expired(now time.Time) bool {
	return !now.Before(a.EndAt)
}

// ClientPaper returns the answer-key-free projection of the paper, in
// slot order.
func (a *Attempt) ClientPaper() []ClientQuestion {
	out := make([]ClientQuestion, 0, len(a.Paper))
	for _, slot := range a.Paper {
		out = append(out, slot.Question.ClientView(slot.Index))
	}
	return out
}

// AttemptSession is what an applicant sees while taking the exam.
type AttemptSession struct {
	ID          uuid.UUID        `json:"id"`
	Department  string           `json:"department"`
	Status      AttemptStatus    `json:"status"`
	Questions   []ClientQuestion `json:"questions"`
	Responses   ResponseMap      `json:"responses"`
	StartedAt   time.Time        `json:"started_at"`
	EndAt       time.Time        `json:"end_at"`
	ServerTime  time.Time        `json:"server_time"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
}

// SubmitResult is the outcome of a submit request.
type SubmitResult struct {
	OK      bool `json:"ok"`
	Already bool `json:"already,omitempty"`
}

// AttemptResult is the staff-facing view of a submitted attempt.
type AttemptResult struct {
	ID              uuid.UUID  `json:"id"`
	ApplicantID     int64      `json:"applicant_id"`
	ApplicantName   string     `json:"applicant_name"`
	AdmissionFormID string     `json:"admission_form_id"`
	ApplicantPhone  string     `json:"applicant_phone"`
	Department      string     `json:"department"`
	CorrectCount    int        `json:"correct_count"`
	TotalQuestions  int        `json:"total_questions"`
	ExamScore       int        `json:"exam_score"`
	WeightedScore   float64    `json:"weighted_score"`
	SubmittedAt     *time.Time `json:"submitted_at"`
}

// SlotReview pairs a paper slot with its saved answer and scoring verdict
// for the staff detail view.
type SlotReview struct {
	Index    int          `json:"index"`
	Question QuestionItem `json:"question"`
	Answer   *Answer      `json:"answer,omitempty"`
	Correct  bool         `json:"correct"`
}

// AttemptDetail is the staff-facing per-question breakdown.
type AttemptDetail struct {
	AttemptResult
	Slots []SlotReview `json:"slots"`
}
