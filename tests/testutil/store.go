package testutil

import (
	"context"
	"testing"

	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// CreateUser inserts an account with a throwaway password hash.
func CreateUser(t *testing.T, s store.Store, email string) *model.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), model.User{Email: email}, "hash")
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return u
}
