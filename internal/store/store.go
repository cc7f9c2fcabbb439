package store

import (
	"context"
	"errors"

	"github.com/nhle/qtplanner/internal/model"
)

// ErrNotFound is returned when a lookup or mutation targets a missing row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing key.
var ErrConflict = errors.New("already exists")

// ErrInvalid is returned when a row fails validation before it is written.
var ErrInvalid = errors.New("invalid row")

// EntryFilter controls owner filtering and ordering for entry queries.
// Entries are always ordered by created_at.
type EntryFilter struct {
	OwnerID  *string // user id, or nil (all owners)
	SortDesc bool
	Limit    int
}

// Store defines the persistence interface for accounts, sessions,
// schedules, and QT check entries.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user model.User, passwordHash string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, string, error)

	// === Sessions ===

	CreateSession(ctx context.Context, token, userID string) error
	GetSessionUser(ctx context.Context, token string) (*model.User, error)
	DeleteSession(ctx context.Context, token string) error

	// === Schedules ===

	InsertSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error)
	UpdateSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) (*model.Schedule, error)
	GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error)
	GetSchedules(ctx context.Context, filter EntryFilter) ([]model.Schedule, error)

	// === QT checks ===

	InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error)
	UpdateQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error)
	DeleteQtCheck(ctx context.Context, id string) (*model.QtCheck, error)
	GetQtCheckByID(ctx context.Context, id string) (*model.QtCheck, error)
	GetQtChecks(ctx context.Context, filter EntryFilter) ([]model.QtCheck, error)
}
