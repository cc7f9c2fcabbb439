package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/store"
	"github.com/nhle/qtplanner/tests/testutil"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	u, err := s.CreateUser(ctx, model.User{
		Email:    "  grace@example.com ",
		Metadata: map[string]string{"full_name": "Grace"},
	}, "h1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "grace@example.com", u.Email)

	_, err = s.CreateUser(ctx, model.User{Email: "GRACE@example.com"}, "h2")
	assert.ErrorIs(t, err, store.ErrConflict)

	got, hash, err := s.GetUserByEmail(ctx, "Grace@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h1", hash)
	assert.Equal(t, "Grace", got.Metadata["full_name"])

	_, _, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "a@example.com")

	require.NoError(t, s.CreateSession(ctx, "tok", u.ID))

	got, err := s.GetSessionUser(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.DeleteSession(ctx, "tok"))
	_, err = s.GetSessionUser(ctx, "tok")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, s.DeleteSession(ctx, "tok"))
}

func TestSchedulesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "a@example.com")

	date := time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	sched, err := s.InsertSchedule(ctx, model.Schedule{
		UserID:      u.ID,
		Title:       "Bible Study",
		Description: "Romans 8",
		Date:        date,
		CreatedAt:   created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sched.ID)

	got, err := s.GetScheduleByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bible Study", got.Title)
	assert.True(t, date.Equal(got.Date), "date stored as given")
	assert.True(t, created.Equal(got.CreatedAt), "created_at stored as given")

	got.Title = "Evening Bible Study"
	updated, err := s.UpdateSchedule(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, "Evening Bible Study", updated.Title)

	deleted, err := s.DeleteSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, sched.ID, deleted.ID)

	_, err = s.GetScheduleByID(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.DeleteSchedule(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScheduleValidation(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "a@example.com")

	_, err := s.InsertSchedule(ctx, model.Schedule{UserID: u.ID, Title: "  "})
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = s.InsertSchedule(ctx, model.Schedule{Title: "Orphan"})
	assert.ErrorIs(t, err, store.ErrInvalid)

	_, err = s.UpdateSchedule(ctx, model.Schedule{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	first, err := s.InsertSchedule(ctx, model.Schedule{ID: "dup", UserID: u.ID, Title: "x"})
	require.NoError(t, err)
	_, err = s.InsertSchedule(ctx, model.Schedule{ID: first.ID, UserID: u.ID, Title: "y"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestGetSchedulesFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	alice := testutil.CreateUser(t, s, "alice@example.com")
	bob := testutil.CreateUser(t, s, "bob@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, owner := range []string{alice.ID, bob.ID, alice.ID} {
		_, err := s.InsertSchedule(ctx, model.Schedule{
			UserID:    owner,
			Title:     []string{"one", "two", "three"}[i],
			Date:      base,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := s.GetSchedules(ctx, store.EntryFilter{SortDesc: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"three", "two", "one"},
		[]string{all[0].Title, all[1].Title, all[2].Title})

	mine, err := s.GetSchedules(ctx, store.EntryFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "one", mine[0].Title)
	assert.Equal(t, "three", mine[1].Title)

	limited, err := s.GetSchedules(ctx, store.EntryFilter{SortDesc: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "three", limited[0].Title)

	none := "nobody"
	empty, err := s.GetSchedules(ctx, store.EntryFilter{OwnerID: &none})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestQtChecks(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := testutil.CreateUser(t, s, "a@example.com")

	_, err := s.InsertQtCheck(ctx, model.QtCheck{UserID: u.ID, Title: "x", WordCount: -1})
	assert.ErrorIs(t, err, store.ErrInvalid)

	q, err := s.InsertQtCheck(ctx, model.QtCheck{
		ID:        "client-id",
		UserID:    u.ID,
		Title:     "Psalm 23",
		WordCount: 3,
		QtCount:   1,
		Date:      time.Date(2024, 5, 5, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "client-id", q.ID)
	assert.False(t, q.CreatedAt.IsZero())

	q.QtCount = 2
	updated, err := s.UpdateQtCheck(ctx, *q)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.QtCount)
	assert.Equal(t, 3, updated.WordCount)

	list, err := s.GetQtChecks(ctx, store.EntryFilter{OwnerID: &u.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := s.DeleteQtCheck(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23", deleted.Title)

	list, err = s.GetQtChecks(ctx, store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
