package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/commands/options"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
)

func newClient(t *testing.T) *backend.Local {
	t.Helper()
	client, err := backend.OpenLocal(":memory:", &credential.Memory{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func signIn(t *testing.T, c *backend.Local, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := c.SignUp(ctx, email, "secret1", nil)
	require.NoError(t, err)
	_, err = c.SignIn(ctx, email, "secret1")
	require.NoError(t, err)
}

func TestListSchedules(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	signIn(t, c, "a@example.com")

	date := time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)
	_, err := c.InsertSchedule(ctx, model.Schedule{Title: "Choir practice", Description: "room 2", Date: date})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, list(ctx, c, listSchedules, &options.ListOptions{}, &out, time.UTC))
	assert.Contains(t, out.String(), "Title")
	assert.Contains(t, out.String(), "Choir practice")
	assert.Contains(t, out.String(), "2024-03-01 01:30")
}

func TestListQtCheckShowsCounters(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	signIn(t, c, "a@example.com")

	_, err := c.InsertQtCheck(ctx, model.QtCheck{Title: "Psalm 23", WordCount: 4, QtCount: 2, Date: time.Now()})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, list(ctx, c, listQtCheck, &options.ListOptions{Mine: true}, &out, time.UTC))
	assert.Contains(t, out.String(), "Psalm 23")
	assert.Contains(t, out.String(), "Words")
}

func TestListMineNeedsSession(t *testing.T) {
	c := newClient(t)

	var out bytes.Buffer
	err := list(context.Background(), c, listSchedules, &options.ListOptions{Mine: true}, &out, time.UTC)
	assert.ErrorContains(t, err, "signed-in session")
	assert.Empty(t, out.String())
}

func TestFormatDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	assert.Equal(t, "-", formatDate(time.Time{}, seoul))
	assert.Equal(t, "2024-03-01 10:30", formatDate(time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC), seoul))
}

func TestListLimit(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	signIn(t, c, "a@example.com")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Prayer meeting", "Choir practice"} {
		_, err := c.InsertSchedule(ctx, model.Schedule{
			Title:     title,
			Date:      base,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	require.NoError(t, list(ctx, c, listSchedules, &options.ListOptions{Limit: 1}, &out, time.UTC))
	assert.Contains(t, out.String(), "Choir practice")
	assert.NotContains(t, out.String(), "Prayer meeting")

	err := list(ctx, c, listSchedules, &options.ListOptions{Limit: -1}, &out, time.UTC)
	assert.ErrorContains(t, err, "--limit")
}
