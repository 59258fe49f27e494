package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRoundTripPreservesScalar(t *testing.T) {
	var m ResponseMap
	require.NoError(t, json.Unmarshal([]byte(`{"0": 2, "1": "404", "2": true}`), &m))

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0": 2, "1": "404", "2": true}`, string(out))
}

func TestAnswerAsOptionIndex(t *testing.T) {
	idx, ok := NewAnswer(json.RawMessage(`3`)).AsOptionIndex()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = NewAnswer(json.RawMessage(`3.5`)).AsOptionIndex()
	assert.False(t, ok)

	_, ok = NewAnswer(json.RawMessage(`"3"`)).AsOptionIndex()
	assert.False(t, ok)
}

func TestAnswerAsText(t *testing.T) {
	text, ok := NewAnswer(json.RawMessage(`"hello"`)).AsText()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	_, ok = NewAnswer(json.RawMessage(`42`)).AsText()
	assert.False(t, ok)
}

func TestAnswerIsScalar(t *testing.T) {
	assert.True(t, NewAnswer(json.RawMessage(`1`)).IsScalar())
	assert.True(t, NewAnswer(json.RawMessage(`"x"`)).IsScalar())
	assert.True(t, NewAnswer(json.RawMessage(`null`)).IsScalar())
	assert.False(t, NewAnswer(json.RawMessage(`{}`)).IsScalar())
	assert.False(t, NewAnswer(json.RawMessage(`[1]`)).IsScalar())
	assert.False(t, NewAnswer(nil).IsScalar())
}

func TestQuestionValidate(t *testing.T) {
	valid := QuestionItem{ID: 1, Type: QuestionMCQ, Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: 1}
	assert.NoError(t, valid.Validate())

	outOfRange := valid
	outOfRange.CorrectIndex = 2
	assert.Error(t, outOfRange.Validate())

	fib := QuestionItem{ID: 2, Type: QuestionFillInBlank, Prompt: "p", AnswerText: " "}
	assert.Error(t, fib.Validate())

	unknown := QuestionItem{ID: 3, Type: "ESSAY", Prompt: "p"}
	assert.Error(t, unknown.Validate())
}

func TestClientViewStripsAnswerKey(t *testing.T) {
	q := QuestionItem{ID: 1, Type: QuestionMCQ, Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: 1}
	view := q.ClientView(7)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct")
	assert.NotContains(t, string(raw), "answer_text")
	assert.Equal(t, 7, view.Index)

	tf := QuestionItem{ID: 2, Type: QuestionTrueFalse, Prompt: "p", CorrectIndex: 0}
	assert.Equal(t, TrueFalseOptions, tf.ClientView(0).Options)
}
