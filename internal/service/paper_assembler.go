package service

import (
	"errors"
	"math/rand"

	"github.com/admitra/portal-backend/internal/model"
)

// PaperSize is the fixed number of questions in every assembled paper.
const PaperSize = 50

// ErrEmptyBank is returned when a paper is requested from an empty bank.
var ErrEmptyBank = errors.New("question bank is empty")

// AssemblePaper draws a paper of PaperSize slots from the given bank.
// Banks with at least PaperSize questions are shuffled and truncated, so
// every question appears at most once. Smaller banks are drawn with
// replacement so the paper still reaches full length. Slots are indexed
// 0..PaperSize-1 regardless of bank IDs.
func AssemblePaper(bank []model.QuestionItem) ([]model.PaperSlot, error) {
	if len(bank) == 0 {
		return nil, ErrEmptyBank
	}

	var picked []model.QuestionItem
	if len(bank) >= PaperSize {
		shuffled := make([]model.QuestionItem, len(bank))
		copy(shuffled, bank)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		picked = shuffled[:PaperSize]
	} else {
		picked = make([]model.QuestionItem, 0, PaperSize)
		for i := 0; i < PaperSize; i++ {
			picked = append(picked, bank[rand.Intn(len(bank))])
		}
	}

	paper := make([]model.PaperSlot, PaperSize)
	for i, q := range picked {
		paper[i] = model.PaperSlot{Index: i, Question: q}
	}
	return paper, nil
}
