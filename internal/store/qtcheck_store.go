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

const qtCheckColumns = "id, user_id, title, description, word_count, qt_count, date, created_at"

// InsertQtCheck inserts a new QT check entry. Counters must be non-negative.
func (s *SQLiteStore) InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	if strings.TrimSpace(q.Title) == "" {
		return nil, fmt.Errorf("qtcheck title must not be empty: %w", ErrInvalid)
	}
	if q.UserID == "" {
		return nil, fmt.Errorf("qtcheck user_id must not be empty: %w", ErrInvalid)
	}
	if q.WordCount < 0 || q.QtCount < 0 {
		return nil, fmt.Errorf("qtcheck counters must not be negative: %w", ErrInvalid)
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.Date = q.Date.UTC()
	q.CreatedAt = q.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qtcheck (
			id, user_id, title, description,
			word_count, qt_count, date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Title, q.Description,
		q.WordCount, q.QtCount, q.Date, q.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating qtcheck %s: %w", q.ID, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating qtcheck: %w", err)
	}
	return &q, nil
}

// UpdateQtCheck replaces the mutable fields of an existing entry.
func (s *SQLiteStore) UpdateQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	if strings.TrimSpace(q.Title) == "" {
		return nil, fmt.Errorf("qtcheck title must not be empty: %w", ErrInvalid)
	}
	if q.WordCount < 0 || q.QtCount < 0 {
		return nil, fmt.Errorf("qtcheck counters must not be negative: %w", ErrInvalid)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE qtcheck SET
			title = ?, description = ?, word_count = ?, qt_count = ?, date = ?
		WHERE id = ?`,
		q.Title, q.Description, q.WordCount, q.QtCount, q.Date.UTC(), q.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating qtcheck %s: %w", q.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("qtcheck %s: %w", q.ID, ErrNotFound)
	}
	return s.GetQtCheckByID(ctx, q.ID)
}

// DeleteQtCheck removes an entry by ID and returns the deleted row.
func (s *SQLiteStore) DeleteQtCheck(ctx context.Context, id string) (*model.QtCheck, error) {
	q, err := s.GetQtCheckByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM qtcheck WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting qtcheck %s: %w", id, err)
	}
	return q, nil
}

// GetQtCheckByID retrieves a single entry by ID.
func (s *SQLiteStore) GetQtCheckByID(ctx context.Context, id string) (*model.QtCheck, error) {
	var q model.QtCheck
	err := s.db.GetContext(ctx, &q,
		"SELECT "+qtCheckColumns+" FROM qtcheck WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("qtcheck %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting qtcheck %s: %w", id, err)
	}
	return &q, nil
}

// GetQtChecks returns entries matching filter, ordered by created_at.
func (s *SQLiteStore) GetQtChecks(ctx context.Context, filter EntryFilter) ([]model.QtCheck, error) {
	query := "SELECT " + qtCheckColumns + " FROM qtcheck"
	var args []any
	if filter.OwnerID != nil {
		query += " WHERE user_id = ?"
		args = append(args, *filter.OwnerID)
	}
	query += entryOrder(filter)

	entries := []model.QtCheck{}
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("listing qtchecks: %w", err)
	}
	return entries, nil
}
