package model

import "time"

// DateTimeLayout is how entry dates are typed in and shown.
const DateTimeLayout = "2006-01-02 15:04"

// Schedule is a calendar entry in the schedules collection.
// Date and CreatedAt are stored already shifted by the storage offset.
type Schedule struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
