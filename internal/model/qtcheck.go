package model

import "time"

// QtCheck is a quiet-time journal entry tracking scripture reading (WordCount)
// and devotional sessions (QtCount) for a given date.
type QtCheck struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	WordCount   int       `json:"word_count" db:"word_count"`
	QtCount     int       `json:"qt_count" db:"qt_count"`
	Date        time.Time `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
