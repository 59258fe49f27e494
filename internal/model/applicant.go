package model

import "time"

// Applicant is an exam candidate account.
type Applicant struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Password        string    `json:"-"`
	AdmissionFormID *string   `json:"admission_form_id,omitempty"`
	Department      *string   `json:"department,omitempty"`
	SSCGPA          *float64  `json:"ssc_gpa,omitempty"`
	HSCGPA          *float64  `json:"hsc_gpa,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
