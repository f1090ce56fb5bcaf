package model

import "time"

// User represents a platform account: a student taking exams or a
// superuser (admin/proctor) reviewing integrity logs.
type User struct {
	ID             int       `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	TypingBaseline *float64  `json:"typing_baseline_ms,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// CreateUserRequest is the payload for creating a new account
// (admin bulk-uploading a class list, or bootstrap tooling).
type CreateUserRequest struct {
	FullName    string `json:"full_name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdateUserStatusRequest toggles an account. Deactivation is how a
// student caught cheating gets banned.
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateBaselineRequest carries a keystroke-dynamics baseline reported by
// the bouncer service when a proctoring session ends. The value is stored
// for future scoring; nothing in this backend interprets it.
type UpdateBaselineRequest struct {
	UserID        int     `json:"user_id" binding:"required"`
	NewFlightTime float64 `json:"new_flight_time" binding:"required,gt=0"`
}
