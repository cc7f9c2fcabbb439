package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/qtplanner/internal/model"
)

const scheduleColumns = "id, user_id, title, description, date, created_at"

// InsertSchedule inserts a new schedule. Generates a UUID if ID is empty and
// stamps CreatedAt when the caller left it zero. Date and CreatedAt are
// stored exactly as given.
func (s *SQLiteStore) InsertSchedule(
	ctx context.Context,
	sched model.Schedule,
) (*model.Schedule, error) {
	if strings.TrimSpace(sched.Title) == "" {
		return nil, fmt.Errorf("schedule title must not be empty: %w", ErrInvalid)
	}
	if sched.UserID == "" {
		return nil, fmt.Errorf("schedule user_id must not be empty: %w", ErrInvalid)
	}
	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}
	sched.Date = sched.Date.UTC()
	sched.CreatedAt = sched.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, user_id, title, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sched.ID, sched.UserID, sched.Title, sched.Description,
		sched.Date, sched.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating schedule %s: %w", sched.ID, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating schedule: %w", err)
	}
	return &sched, nil
}

// UpdateSchedule replaces the mutable fields of an existing schedule.
// Ownership and creation time are preserved.
func (s *SQLiteStore) UpdateSchedule(
	ctx context.Context,
	sched model.Schedule,
) (*model.Schedule, error) {
	if strings.TrimSpace(sched.Title) == "" {
		return nil, fmt.Errorf("schedule title must not be empty: %w", ErrInvalid)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE schedules SET title = ?, description = ?, date = ?
		WHERE id = ?`,
		sched.Title, sched.Description, sched.Date.UTC(), sched.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating schedule %s: %w", sched.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("schedule %s: %w", sched.ID, ErrNotFound)
	}
	return s.GetScheduleByID(ctx, sched.ID)
}

// DeleteSchedule removes a schedule by ID and returns the deleted row.
func (s *SQLiteStore) DeleteSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	sched, err := s.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting schedule %s: %w", id, err)
	}
	return sched, nil
}

// GetScheduleByID retrieves a single schedule by ID.
func (s *SQLiteStore) GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error) {
	var sched model.Schedule
	err := s.db.GetContext(ctx, &sched,
		"SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting schedule %s: %w", id, err)
	}
	return &sched, nil
}

// GetSchedules returns schedules matching filter, ordered by created_at.
func (s *SQLiteStore) GetSchedules(
	ctx context.Context,
	filter EntryFilter,
) ([]model.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules"
	var args []any
	if filter.OwnerID != nil {
		query += " WHERE user_id = ?"
		args = append(args, *filter.OwnerID)
	}
	query += entryOrder(filter)

	schedules := []model.Schedule{}
	if err := s.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	return schedules, nil
}
