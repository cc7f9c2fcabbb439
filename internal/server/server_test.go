package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/auth"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/server"
	"github.com/nhle/qtplanner/tests/testutil"
)

const testAPIKey = "anon-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s := testutil.NewTestStore(t)
	svc := backend.NewService(
		s,
		auth.NewService(s).WithCost(bcrypt.MinCost),
		realtime.NewHub(nil),
		nil,
	)
	ts := httptest.NewServer(server.New(svc, testAPIKey, nil).Router())
	t.Cleanup(func() {
		svc.Hub().Close()
		ts.Close()
	})
	return ts
}

func newRemote(ts *httptest.Server) *backend.Remote {
	return backend.NewRemote(ts.URL, testAPIKey, &credential.Memory{}, nil)
}

func signedIn(t *testing.T, ts *httptest.Server, email string) (*backend.Remote, *model.User) {
	t.Helper()
	ctx := context.Background()

	r := newRemote(ts)
	_, err := r.SignUp(ctx, email, "secret1", nil)
	require.NoError(t, err)
	user, err := r.SignIn(ctx, email, "secret1")
	require.NoError(t, err)
	return r, user
}

func TestHealthNeedsNoKey(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + backend.PathHealth)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + backend.PathRest + "schedules")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body backend.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apperr.KindAuth, body.Kind)
	assert.Equal(t, "invalid API key", body.Message)
}

func TestUnknownTable(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+backend.PathRest+"todos", nil)
	req.Header.Set(backend.HeaderAPIKey, testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoteSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	r := newRemote(ts)

	user, err := r.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = r.SignIn(ctx, "nobody@example.com", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindAuth))
	assert.Equal(t, "invalid login credentials", apperr.Message(err))

	_, err = r.SignUp(ctx, "naomi@example.com", "123", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	created, err := r.SignUp(ctx, "naomi@example.com", "secret1", map[string]string{"full_name": "Naomi"})
	require.NoError(t, err)

	signedIn, err := r.SignIn(ctx, "naomi@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, signedIn.ID)

	current, err := r.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "Naomi", current.Metadata["full_name"])

	require.NoError(t, r.SignOut(ctx))
	current, err = r.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestRemoteWritesRequireSession(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	r := newRemote(ts)

	_, err := r.InsertSchedule(ctx, model.Schedule{Title: "x", Date: time.Now()})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

func TestRemoteScheduleFlowWithRealtime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ts := newTestServer(t)
	r, user := signedIn(t, ts, "ester@example.com")

	sub, err := r.Subscribe(ctx, realtime.ChannelSchedules, model.TableSchedules)
	require.NoError(t, err)
	defer sub.Close()

	created, err := r.InsertSchedule(ctx, model.Schedule{
		Title:       "Sunday Service",
		Description: "main hall",
		Date:        time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.UserID)

	select {
	case c := <-sub.Changes():
		assert.Equal(t, model.EventInsert, c.Type)
		var got model.Schedule
		require.NoError(t, json.Unmarshal(c.New, &got))
		assert.Equal(t, created.ID, got.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no realtime change received")
	}

	mine, err := r.ListSchedules(ctx, backend.ListOptions{OwnerID: user.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Sunday Service", mine[0].Title)

	require.NoError(t, r.DeleteSchedule(ctx, created.ID))

	select {
	case c := <-sub.Changes():
		assert.Equal(t, model.EventDelete, c.Type)
		var key model.RowKey
		require.NoError(t, json.Unmarshal(c.Old, &key))
		assert.Equal(t, created.ID, key.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no delete change received")
	}

	err = r.DeleteSchedule(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRemoteOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	alice, _ := signedIn(t, ts, "alice@example.com")
	bob, _ := signedIn(t, ts, "bob@example.com")

	q, err := alice.InsertQtCheck(ctx, model.QtCheck{
		ID:        "qt-1",
		Title:     "Psalm 1",
		WordCount: 2,
		QtCount:   1,
		Date:      time.Now(),
	})
	require.NoError(t, err)

	err = bob.DeleteQtCheck(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuth))

	q.QtCount = 5
	_, err = bob.UpdateQtCheck(ctx, *q)
	assert.True(t, apperr.Is(err, apperr.KindAuth))

	updated, err := alice.UpdateQtCheck(ctx, *q)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.QtCount)

	all, err := bob.ListQtChecks(ctx, backend.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRemoteSubscriptionEndsWhenServerCloses(t *testing.T) {
	s := testutil.NewTestStore(t)
	svc := backend.NewService(s, auth.NewService(s), realtime.NewHub(nil), nil)
	ts := httptest.NewServer(server.New(svc, "", nil).Router())
	defer ts.Close()

	r := backend.NewRemote(ts.URL, "", &credential.Memory{}, nil)
	sub, err := r.Subscribe(context.Background(), "c", model.TableQtCheck)
	require.NoError(t, err)

	svc.Hub().Close()

	select {
	case _, ok := <-sub.Changes():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not end")
	}
	assert.True(t, apperr.Is(sub.Err(), apperr.KindRealtime))
}

func TestRemoteStaleTokenIsCleared(t *testing.T) {
	ts := newTestServer(t)
	tokens := &credential.Memory{}
	require.NoError(t, tokens.Save("expired"))
	r := backend.NewRemote(ts.URL, testAPIKey, tokens, nil)

	user, err := r.GetUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	token, _ := tokens.Load()
	assert.Empty(t, token)
}

func TestRemoteGetUserKeepsTokenWhenUnreachable(t *testing.T) {
	ts := newTestServer(t)
	ts.Close()

	tokens := &credential.Memory{}
	require.NoError(t, tokens.Save("valid-token"))
	r := backend.NewRemote(ts.URL, testAPIKey, tokens, nil)

	user, err := r.GetUser(context.Background())
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperr.Is(err, apperr.KindRead))

	token, _ := tokens.Load()
	assert.Equal(t, "valid-token", token)
}

func TestRemoteGetUserKeepsTokenOnAPIKeyRejection(t *testing.T) {
	ts := newTestServer(t)

	tokens := &credential.Memory{}
	require.NoError(t, tokens.Save("valid-token"))
	r := backend.NewRemote(ts.URL, "wrong-key", tokens, nil)

	_, err := r.GetUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, "invalid API key", apperr.Message(err))

	token, _ := tokens.Load()
	assert.Equal(t, "valid-token", token)
}

func TestRemoteListLimit(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	r, _ := signedIn(t, ts, "hannah@example.com")

	base := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		_, err := r.InsertSchedule(ctx, model.Schedule{
			Title:     title,
			Date:      base,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	rows, err := r.ListSchedules(ctx, backend.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "third", rows[0].Title)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+backend.PathRest+"schedules?limit=-1", nil)
	req.Header.Set(backend.HeaderAPIKey, testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
