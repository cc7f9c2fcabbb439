package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/qtplanner/internal/model"
)

// userRow mirrors the users table; metadata is stored as a JSON object.
type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Metadata     string    `db:"metadata"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toUser() (*model.User, error) {
	u := &model.User{
		ID:        r.ID,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
	if r.Metadata != "" && r.Metadata != "{}" {
		if err := json.Unmarshal([]byte(r.Metadata), &u.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for user %s: %w", r.ID, err)
		}
	}
	return u, nil
}

const userColumns = "id, email, password_hash, metadata, created_at"

// CreateUser inserts a new account. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateUser(
	ctx context.Context,
	user model.User,
	passwordHash string,
) (*model.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return nil, fmt.Errorf("user email must not be empty: %w", ErrInvalid)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()

	metadata := "{}"
	if len(user.Metadata) > 0 {
		data, err := json.Marshal(user.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling user metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, passwordHash, metadata, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating user %s: %w", user.Email, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user %s: %w", user.Email, err)
	}
	return &user, nil
}

// GetUserByID retrieves an account by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return row.toUser()
}

// GetUserByEmail retrieves an account and its password hash by email.
// Email comparison is case-insensitive.
func (s *SQLiteStore) GetUserByEmail(
	ctx context.Context,
	email string,
) (*model.User, string, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("getting user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user %s: %w", email, err)
	}
	u, err := row.toUser()
	if err != nil {
		return nil, "", err
	}
	return u, row.PasswordHash, nil
}

// CreateSession records an opaque session token for userID.
func (s *SQLiteStore) CreateSession(ctx context.Context, token, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)",
		token, userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating session for user %s: %w", userID, err)
	}
	return nil
}

// GetSessionUser resolves a session token to its account.
func (s *SQLiteStore) GetSessionUser(ctx context.Context, token string) (*model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT users.id, users.email, users.password_hash, users.metadata, users.created_at
		FROM sessions
		INNER JOIN users ON users.id = sessions.user_id
		WHERE sessions.token = ?`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolving session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}
	return row.toUser()
}

// DeleteSession removes a session token. Deleting an unknown token is not
// an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
