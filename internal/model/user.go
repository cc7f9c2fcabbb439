package model

import "time"

// User is the authenticated identity exposed to views.
type User struct {
	ID        string            `json:"id" db:"id"`
	Email     string            `json:"email" db:"email"`
	Metadata  map[string]string `json:"user_metadata,omitempty" db:"-"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
