package service

import (
	"strconv"
	"strings"

	"github.com/admitra/portal-backend/internal/model"
)

// Score is the deterministic outcome of grading a paper against its
// saved responses.
type Score struct {
	CorrectCount  int
	ExamScore     int
	WeightedScore float64
}

// GradeSlot reports whether a saved answer is correct for its question.
// Missing answers and type mismatches are simply wrong, never errors.
func GradeSlot(q model.QuestionItem, answer *model.Answer) bool {
	if answer == nil {
		return false
	}

	switch q.Type {
	case model.QuestionMCQ, model.QuestionTrueFalse:
		idx, ok := answer.AsOptionIndex()
		return ok && idx == q.CorrectIndex
	case model.QuestionFillInBlank:
		text, ok := answer.AsText()
		if !ok {
			return false
		}
		return normalizeText(text) == normalizeText(q.AnswerText)
	}
	return false
}

// GradePaper grades every slot and combines the exam score with the
// GPA-based academic weight. The returned result list has one entry per
// slot, in slot order; it is what gets frozen onto the attempt at submit.
func GradePaper(paper []model.PaperSlot, responses model.ResponseMap, pointsPerAnswer int, sscGPA, hscGPA float64) ([]model.ResultItem, Score) {
	results := make([]model.ResultItem, 0, len(paper))
	correct := 0
	for _, slot := range paper {
		var answer *model.Answer
		if a, ok := responses[strconv.Itoa(slot.Index)]; ok {
			answer = &a
		}
		isCorrect := GradeSlot(slot.Question, answer)
		if isCorrect {
			correct++
		}
		results = append(results, model.ResultItem{
			SlotIndex:     slot.Index,
			GivenAnswer:   answer,
			CorrectAnswer: slot.Question.CorrectAnswer(),
			IsCorrect:     isCorrect,
		})
	}

	return results, Score{
		CorrectCount:  correct,
		ExamScore:     correct * pointsPerAnswer,
		WeightedScore: AcademicWeight(sscGPA, hscGPA),
	}
}

// AcademicWeight converts secondary and higher-secondary GPAs into the
// admission weight component, capped at 50 points.
func AcademicWeight(sscGPA, hscGPA float64) float64 {
	w := sscGPA*4 + hscGPA*6
	if w < 0 {
		return 0
	}
	if w > 50 {
		return 50
	}
	return w
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
