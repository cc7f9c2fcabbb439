package model

import "time"

// Row is the common interface for entries displayed in a list view.
// Both Schedule and QtCheck implement it.
type Row interface {
	GetID() string
	GetOwnerID() string
	GetTitle() string
	GetDescription() string
	GetDate() time.Time
	GetCreatedAt() time.Time
}

// Schedule implements Row.

func (s Schedule) GetID() string           { return s.ID }
func (s Schedule) GetOwnerID() string      { return s.UserID }
func (s Schedule) GetTitle() string        { return s.Title }
func (s Schedule) GetDescription() string  { return s.Description }
func (s Schedule) GetDate() time.Time      { return s.Date }
func (s Schedule) GetCreatedAt() time.Time { return s.CreatedAt }

// QtCheck implements Row.

func (q QtCheck) GetID() string           { return q.ID }
func (q QtCheck) GetOwnerID() string      { return q.UserID }
func (q QtCheck) GetTitle() string        { return q.Title }
func (q QtCheck) GetDescription() string  { return q.Description }
func (q QtCheck) GetDate() time.Time      { return q.Date }
func (q QtCheck) GetCreatedAt() time.Time { return q.CreatedAt }
