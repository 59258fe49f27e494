package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TRUE_FALSE"
	QuestionFillInBlank QuestionType = "FILL_IN_BLANK"
)

// QuestionItem is a single bank question. Exactly one answer-key field is
// meaningful depending on Type: CorrectIndex for MCQ and TRUE_FALSE,
// AnswerText for FILL_IN_BLANK.
type QuestionItem struct {
	ID           int          `json:"id"`
	Type         QuestionType `json:"type"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"correct_index"`
	AnswerText   string       `json:"answer_text,omitempty"`
}

// ClientQuestion is the projection of a question sent to exam takers.
// Answer keys are stripped.
type ClientQuestion struct {
	Index   int          `json:"index"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
}

// TrueFalseOptions is the fixed option set for TRUE_FALSE questions.
var TrueFalseOptions = []string{"True", "False"}

// Validate checks structural integrity of a bank question.
func (q *QuestionItem) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %d: empty prompt", q.ID)
	}

	switch q.Type {
	case QuestionMCQ:
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: MCQ requires at least 2 options", q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d: correct_index %d out of range", q.ID, q.CorrectIndex)
		}
	case QuestionTrueFalse:
		if q.CorrectIndex != 0 && q.CorrectIndex != 1 {
			return fmt.Errorf("question %d: TRUE_FALSE correct_index must be 0 or 1", q.ID)
		}
	case QuestionFillInBlank:
		if strings.TrimSpace(q.AnswerText) == "" {
			return fmt.Errorf("question %d: FILL_IN_BLANK requires answer_text", q.ID)
		}
	default:
		return fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// CorrectAnswer returns the answer key as the JSON scalar a correct
// response would carry: the option index for MCQ and TRUE_FALSE, the
// accepted text for FILL_IN_BLANK.
func (q *QuestionItem) CorrectAnswer() Answer {
	var raw json.RawMessage
	if q.Type == QuestionFillInBlank {
		raw, _ = json.Marshal(q.AnswerText)
	} else {
		raw, _ = json.Marshal(q.CorrectIndex)
	}
	return NewAnswer(raw)
}

// ClientView returns the answer-key-free projection at the given paper index.
func (q *QuestionItem) ClientView(index int) ClientQuestion {
	opts := q.Options
	if q.Type == QuestionTrueFalse && len(opts) == 0 {
		opts = TrueFalseOptions
	}
	return ClientQuestion{
		Index:   index,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Options: opts,
	}
}
