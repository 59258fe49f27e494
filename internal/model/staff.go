package model

import "time"

// StaffRole controls what a staff account may do.
type StaffRole string

const (
	RoleAdmin     StaffRole = "ADMIN"
	RoleModerator StaffRole = "MODERATOR"
)

// Staff is an administrative account for the review side of the portal.
type Staff struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      StaffRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
