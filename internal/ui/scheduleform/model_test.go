package scheduleform

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/draft"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/ui"
)

type fakeInserter struct {
	rows []model.Schedule
	err  error
}

func (f *fakeInserter) InsertSchedule(_ context.Context, s model.Schedule) (*model.Schedule, error) {
	f.rows = append(f.rows, s)
	if f.err != nil {
		return nil, f.err
	}
	s.ID = "s-1"
	return &s, nil
}

var (
	user = &model.User{ID: "u-1", Email: "me@example.com"}
	now  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newForm(ins *fakeInserter) Model {
	m := New(ins, draft.DefaultOffset, time.UTC, keys.DefaultKeyMap(), 80, 24)
	m.now = func() time.Time { return now }
	m.Mount(user)
	return m
}

// lastMsg runs cmd and returns the final message of a batch.
func lastMsg(cmd tea.Cmd) tea.Msg {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		return batch[len(batch)-1]()
	}
	return msg
}

func TestSubmitWritesShiftedRow(t *testing.T) {
	ins := &fakeInserter{}
	m := newForm(ins)
	m.fb.title = "Worship"
	m.fb.description = "Main hall"
	m.fb.date = "2024-03-10 10:00"

	m, cmd := m.submit()
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting())

	_, again := m.submit()
	assert.Nil(t, again)

	msg := cmd()
	require.Len(t, ins.rows, 1)
	row := ins.rows[0]
	assert.Equal(t, "u-1", row.UserID)
	assert.Equal(t, time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC), row.Date.UTC())
	assert.Equal(t, now.Add(9*time.Hour), row.CreatedAt)

	m, cmd = m.Update(msg)
	assert.False(t, m.Submitting())
	assert.Empty(t, m.fb.title)
	assert.Equal(t, ui.NavigateMsg{To: "/schedule-view?success=true"}, lastMsg(cmd))
}

func TestInvalidDraftIssuesNoWrite(t *testing.T) {
	ins := &fakeInserter{}
	m := newForm(ins)
	m.fb.title = "Worship"
	m.fb.date = "2024-03-10 10:00"

	m, _ = m.submit()
	assert.Empty(t, ins.rows)
	assert.False(t, m.Submitting())
	require.True(t, m.alert.Open())
	assert.Equal(t, "please enter a description", m.alert.Message())
	assert.Equal(t, "Worship", m.fb.title)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.alert.Open())
}

func TestMissingDateIsRejected(t *testing.T) {
	ins := &fakeInserter{}
	m := newForm(ins)
	m.fb.title = "Worship"
	m.fb.description = "Main hall"

	m, _ = m.submit()
	assert.Empty(t, ins.rows)
	assert.Equal(t, "please choose a date", m.alert.Message())
}

func TestInsertFailureKeepsFields(t *testing.T) {
	ins := &fakeInserter{err: errors.New("connection refused")}
	m := newForm(ins)
	m.fb.title = "Worship"
	m.fb.description = "Main hall"
	m.fb.date = "2024-03-10 10:00"

	m, cmd := m.submit()
	m, _ = m.Update(cmd())

	assert.False(t, m.Submitting())
	require.True(t, m.alert.Open())
	assert.Equal(t, "could not save schedule", m.alert.Message())
	assert.Equal(t, "Worship", m.fb.title)
	assert.Equal(t, "Main hall", m.fb.description)
	assert.Equal(t, "2024-03-10 10:00", m.fb.date)
}

func TestSignedOutShowsLoginPrompt(t *testing.T) {
	m := New(&fakeInserter{}, draft.DefaultOffset, time.UTC, keys.DefaultKeyMap(), 80, 24)
	m.Mount(nil)
	assert.Contains(t, m.View(), "Please log in")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{To: ui.RouteLogin}, cmd())

	m.fb.title = "Worship"
	m.fb.description = "Main hall"
	m.fb.date = "2024-03-10 10:00"
	m, _ = m.submit()
	assert.Equal(t, "please log in first", m.alert.Message())
}
