package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitra/portal-backend/internal/model"
)

func makeBank(n int) []model.QuestionItem {
	bank := make([]model.QuestionItem, n)
	for i := range bank {
		bank[i] = model.QuestionItem{
			ID:           i + 1,
			Type:         model.QuestionMCQ,
			Prompt:       "q",
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
		}
	}
	return bank
}

func TestAssemblePaperLargeBank(t *testing.T) {
	paper, err := AssemblePaper(makeBank(120))
	require.NoError(t, err)
	require.Len(t, paper, PaperSize)

	// Slots are reindexed 0..49 and no question repeats.
	seen := make(map[int]bool)
	for i, slot := range paper {
		assert.Equal(t, i, slot.Index)
		assert.False(t, seen[slot.Question.ID], "question %d drawn twice", slot.Question.ID)
		seen[slot.Question.ID] = true
	}
}

func TestAssemblePaperExactBank(t *testing.T) {
	paper, err := AssemblePaper(makeBank(PaperSize))
	require.NoError(t, err)
	require.Len(t, paper, PaperSize)

	seen := make(map[int]bool)
	for _, slot := range paper {
		seen[slot.Question.ID] = true
	}
	// Every bank question appears exactly once.
	assert.Len(t, seen, PaperSize)
}

func TestAssemblePaperSmallBank(t *testing.T) {
	paper, err := AssemblePaper(makeBank(7))
	require.NoError(t, err)
	require.Len(t, paper, PaperSize)

	// Small banks draw with replacement; every drawn ID comes from the bank.
	for i, slot := range paper {
		assert.Equal(t, i, slot.Index)
		assert.GreaterOrEqual(t, slot.Question.ID, 1)
		assert.LessOrEqual(t, slot.Question.ID, 7)
	}
}

func TestAssemblePaperEmptyBank(t *testing.T) {
	_, err := AssemblePaper(nil)
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestSampleBanks(t *testing.T) {
	cse := SampleCSEBank()
	require.Len(t, cse, 50)
	counts := map[model.QuestionType]int{}
	for _, q := range cse {
		require.NoError(t, q.Validate())
		counts[q.Type]++
	}
	assert.Equal(t, 30, counts[model.QuestionMCQ])
	assert.Equal(t, 10, counts[model.QuestionTrueFalse])
	assert.Equal(t, 10, counts[model.QuestionFillInBlank])

	generic := SampleGenericBank()
	require.Len(t, generic, 100)
	for _, q := range generic {
		require.NoError(t, q.Validate())
		assert.Equal(t, model.QuestionMCQ, q.Type)
	}

	assert.Len(t, SampleBankFor("cse"), 50)
	assert.Len(t, SampleBankFor("bba"), 100)
}
