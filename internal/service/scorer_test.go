package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitra/portal-backend/internal/model"
)

func answer(raw string) *model.Answer {
	a := model.NewAnswer(json.RawMessage(raw))
	return &a
}

func TestGradeSlotMCQ(t *testing.T) {
	q := model.QuestionItem{
		Type:         model.QuestionMCQ,
		Prompt:       "Pick B",
		Options:      []string{"A", "B", "C", "D"},
		CorrectIndex: 1,
	}

	assert.True(t, GradeSlot(q, answer("1")))
	assert.False(t, GradeSlot(q, answer("0")))
	assert.False(t, GradeSlot(q, answer("3")))
	// Non-integral and non-numeric answers are wrong, not errors.
	assert.False(t, GradeSlot(q, answer("1.5")))
	assert.False(t, GradeSlot(q, answer(`"1"`)))
	assert.False(t, GradeSlot(q, nil))
}

func TestGradeSlotTrueFalse(t *testing.T) {
	q := model.QuestionItem{
		Type:         model.QuestionTrueFalse,
		Prompt:       "The sky is blue.",
		CorrectIndex: 0,
	}

	assert.True(t, GradeSlot(q, answer("0")))
	assert.False(t, GradeSlot(q, answer("1")))
	assert.False(t, GradeSlot(q, answer("true")))
}

func TestGradeSlotFillInBlank(t *testing.T) {
	q := model.QuestionItem{
		Type:       model.QuestionFillInBlank,
		Prompt:     "HTTP code for missing pages is ___.",
		AnswerText: "404",
	}

	assert.True(t, GradeSlot(q, answer(`"404"`)))
	assert.True(t, GradeSlot(q, answer(`"  404  "`)))
	assert.False(t, GradeSlot(q, answer(`"405"`)))
	// Numbers do not match text answers.
	assert.False(t, GradeSlot(q, answer("404")))
}

func TestGradeSlotFillInBlankCaseInsensitive(t *testing.T) {
	q := model.QuestionItem{
		Type:       model.QuestionFillInBlank,
		Prompt:     "Name the query language.",
		AnswerText: "SQL",
	}

	assert.True(t, GradeSlot(q, answer(`"sql"`)))
	assert.True(t, GradeSlot(q, answer(`"SQL"`)))
	assert.True(t, GradeSlot(q, answer(`" sQl "`)))
}

func TestGradePaper(t *testing.T) {
	paper := []model.PaperSlot{
		{Index: 0, Question: model.QuestionItem{Type: model.QuestionMCQ, Options: []string{"a", "b"}, CorrectIndex: 1}},
		{Index: 1, Question: model.QuestionItem{Type: model.QuestionTrueFalse, CorrectIndex: 0}},
		{Index: 2, Question: model.QuestionItem{Type: model.QuestionFillInBlank, AnswerText: "go"}},
		{Index: 3, Question: model.QuestionItem{Type: model.QuestionMCQ, Options: []string{"a", "b"}, CorrectIndex: 0}},
	}
	responses := model.ResponseMap{
		"0": *answer("1"),     // correct
		"1": *answer("1"),     // wrong
		"2": *answer(`"Go "`), // correct after normalization
		// slot 3 unanswered
	}

	results, score := GradePaper(paper, responses, 1, 4.5, 5.0)

	assert.Equal(t, 2, score.CorrectCount)
	assert.Equal(t, 2, score.ExamScore)
	assert.InDelta(t, 48.0, score.WeightedScore, 1e-9)

	// One verdict per slot, in slot order.
	require.Len(t, results, len(paper))
	for i, item := range results {
		assert.Equal(t, i, item.SlotIndex)
	}
	assert.True(t, results[0].IsCorrect)
	assert.False(t, results[1].IsCorrect)
	assert.True(t, results[2].IsCorrect)
	assert.False(t, results[3].IsCorrect)

	// The record keeps both sides of the comparison.
	require.NotNil(t, results[0].GivenAnswer)
	idx, ok := results[0].GivenAnswer.AsOptionIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	correctIdx, ok := results[0].CorrectAnswer.AsOptionIndex()
	require.True(t, ok)
	assert.Equal(t, 1, correctIdx)
	correctText, ok := results[2].CorrectAnswer.AsText()
	require.True(t, ok)
	assert.Equal(t, "go", correctText)
	assert.Nil(t, results[3].GivenAnswer)
}

func TestGradePaperDeterministic(t *testing.T) {
	paper := []model.PaperSlot{
		{Index: 0, Question: model.QuestionItem{Type: model.QuestionMCQ, Options: []string{"a", "b"}, CorrectIndex: 0}},
	}
	responses := model.ResponseMap{"0": *answer("0")}

	firstResults, firstScore := GradePaper(paper, responses, 1, 3.0, 3.0)
	for i := 0; i < 10; i++ {
		results, score := GradePaper(paper, responses, 1, 3.0, 3.0)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstResults, results)
	}
}

func TestAcademicWeight(t *testing.T) {
	tests := []struct {
		name     string
		ssc, hsc float64
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"typical", 4.0, 4.5, 43.0},
		{"near the cap", 4.83, 5.0, 49.32},
		{"capped at fifty", 5.0, 5.0, 50.0},
		{"negative clamps to zero", -1.0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AcademicWeight(tt.ssc, tt.hsc), 1e-9)
		})
	}
}
