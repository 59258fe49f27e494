package model

import "time"

// Department is an admission unit applicants apply to. Slug is the stable
// identifier used throughout the attempt tables.
type Department struct {
	ID               int64      `json:"id"`
	Slug             string     `json:"slug"`
	Name             string     `json:"name"`
	Open             bool       `json:"open"`
	WindowStart      *time.Time `json:"window_start,omitempty"`
	WindowEnd        *time.Time `json:"window_end,omitempty"`
	PointsPerCorrect int        `json:"points_per_correct"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AcceptingAt reports whether the department takes applicants at the given
// time: it must be open and inside its admission window. A nil bound leaves
// that side of the window unbounded.
func (d *Department) AcceptingAt(now time.Time) bool {
	if !d.Open {
		return false
	}
	if d.WindowStart != nil && now.Before(*d.WindowStart) {
		return false
	}
	if d.WindowEnd != nil && !now.Before(*d.WindowEnd) {
		return false
	}
	return true
}
