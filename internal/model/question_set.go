package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionSetStatus is the lifecycle state of a question set.
type QuestionSetStatus string

const (
	QuestionSetDraft     QuestionSetStatus = "DRAFT"
	QuestionSetPublished QuestionSetStatus = "PUBLISHED"
	QuestionSetArchived  QuestionSetStatus = "ARCHIVED"
)

// QuestionSet is a versioned question bank for a department. Only one set
// per department is PUBLISHED at a time; publishing a new one archives the
// previous.
type QuestionSet struct {
	ID          uuid.UUID         `json:"id"`
	Department  string            `json:"department"`
	Title       string            `json:"title"`
	Status      QuestionSetStatus `json:"status"`
	Questions   []QuestionItem    `json:"-"`
	CreatedBy   *int64            `json:"created_by,omitempty"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// QuestionSetSummary omits the question payload for list views.
type QuestionSetSummary struct {
	ID            uuid.UUID         `json:"id"`
	Department    string            `json:"department"`
	Title         string            `json:"title"`
	Status        QuestionSetStatus `json:"status"`
	QuestionCount int               `json:"question_count"`
	PublishedAt   *time.Time        `json:"published_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
