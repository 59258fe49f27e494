package model

import (
	"encoding/json"
	"math"
)

// Answer is a single saved response value. It preserves the raw JSON scalar
// the client sent (a number for MCQ/TRUE_FALSE, a string for FILL_IN_BLANK)
// so that the value stored equals the value scored.
type Answer struct {
	raw json.RawMessage
}

// NewAnswer wraps a raw JSON value as an Answer.
func NewAnswer(raw json.RawMessage) Answer {
	return Answer{raw: raw}
}

// MarshalJSON emits the stored scalar verbatim.
func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// UnmarshalJSON captures the scalar verbatim.
func (a *Answer) UnmarshalJSON(data []byte) error {
	a.raw = append(a.raw[:0], data...)
	return nil
}

// IsScalar reports whether the stored value is a JSON string, number,
// boolean, or null. Objects and arrays are rejected as answer values.
func (a Answer) IsScalar() bool {
	if len(a.raw) == 0 {
		return false
	}
	switch a.raw[0] {
	case '{', '[':
		return false
	}
	return json.Valid(a.raw)
}

// AsOptionIndex interprets the answer as an option index. It returns
// (index, true) only when the value is an integral JSON number.
func (a Answer) AsOptionIndex() (int, bool) {
	var f float64
	if err := json.Unmarshal(a.raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// AsText interprets the answer as free text. It returns ("", false) when the
// value is not a JSON string.
func (a Answer) AsText() (string, bool) {
	var s string
	if err := json.Unmarshal(a.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ResponseMap maps a paper slot index (as a decimal string key) to the
// answer saved for that slot.
type ResponseMap map[string]Answer
