package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/session"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
	"github.com/nhle/qtplanner/internal/ui/command"
)

func newApp(t *testing.T) (Model, *backend.Local) {
	t.Helper()
	client, err := backend.OpenLocal(":memory:", &credential.Memory{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	m := New(client, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), client
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestResolveRoute(t *testing.T) {
	v, q, err := resolveRoute("/qtcheck-view?success=true")
	require.NoError(t, err)
	assert.Equal(t, ViewQtChecks, v)
	assert.Equal(t, "true", q.Get("success"))

	v, _, err = resolveRoute("")
	require.NoError(t, err)
	assert.Equal(t, ViewHome, v)

	_, _, err = resolveRoute("/settings")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestNavigateMountsAndUnmountsLists(t *testing.T) {
	m, _ := newApp(t)

	m, _ = update(t, m, ui.NavigateMsg{To: "/schedule-view?success=true"})
	assert.Equal(t, ViewSchedules, m.currentView)
	assert.True(t, m.schedules.Mounted())
	assert.True(t, m.schedules.BannerVisible())

	m, _ = update(t, m, ui.NavigateMsg{To: ui.RouteQtCheckView})
	assert.Equal(t, ViewQtChecks, m.currentView)
	assert.False(t, m.schedules.Mounted())
	assert.True(t, m.qtChecks.Mounted())
	assert.False(t, m.qtChecks.BannerVisible())
}

func TestUnknownRouteReportsStatus(t *testing.T) {
	m, _ := newApp(t)

	m, cmd := update(t, m, ui.NavigateMsg{To: "/calendar"})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, ViewHome, m.currentView)
	assert.Equal(t, "not_found: no page at /calendar", m.status)
}

func TestSessionLoadedReachesPages(t *testing.T) {
	m, client := newApp(t)
	ctx := context.Background()
	_, err := client.SignUp(ctx, "me@example.com", "secret1", nil)
	require.NoError(t, err)
	_, err = client.SignIn(ctx, "me@example.com", "secret1")
	require.NoError(t, err)

	m, _ = update(t, m, m.session.Load()())
	require.NotNil(t, m.user)
	assert.Equal(t, "me@example.com", m.user.Email)
	assert.Contains(t, m.View(), "me@example.com")

	m, cmd := update(t, m, ui.SignOutMsg{})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Nil(t, m.user)
	assert.Equal(t, "Signed out.", m.notice)
}

func TestMyPageRemountsWhenUserChanges(t *testing.T) {
	m, _ := newApp(t)

	m, cmd := update(t, m, ui.NavigateMsg{To: ui.RouteMyPage})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please log in")

	m, cmd = update(t, m, session.LoadedMsg{User: &model.User{ID: "u-1", Email: "me@example.com"}})
	assert.NotNil(t, cmd)
	assert.True(t, m.myPage.Mounted())
}

func TestThemeToggleShowsNotice(t *testing.T) {
	theme.SetMode(theme.Dark)
	t.Cleanup(func() { theme.SetMode(theme.Dark) })

	m, _ := newApp(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("T")})
	require.NotNil(t, cmd)
	assert.Equal(t, theme.Light, theme.Current())
	assert.Equal(t, "Switched to light theme.", m.notice)

	stale := noticeExpiredMsg{seq: m.noticeSeq - 1}
	m, _ = update(t, m, stale)
	assert.NotEmpty(t, m.notice)

	m, _ = update(t, m, noticeExpiredMsg{seq: m.noticeSeq})
	assert.Empty(t, m.notice)
}

func TestCommandPalette(t *testing.T) {
	m, _ := newApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	assert.Equal(t, overlayCommand, m.overlay)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, overlayNone, m.overlay)

	m, _ = update(t, m, command.CommandMsg("/signup"))
	assert.Equal(t, ViewSignUp, m.currentView)

	m, cmd := update(t, m, command.CommandMsg("dance"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.status, "unknown command")
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newApp(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, overlayHelp, m.overlay)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, overlayNone, m.overlay)
}

func TestFormsCaptureGlobalKeys(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, session.LoadedMsg{User: &model.User{ID: "u-1"}})
	m, _ = update(t, m, ui.NavigateMsg{To: ui.RouteScheduleAdd})
	require.True(t, m.capturingInput())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, ViewScheduleAdd, m.currentView)
	assert.Equal(t, overlayNone, m.overlay)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewScheduleAdd, m.currentView)
}

func TestAuthPagesSwitchWhileTyping(t *testing.T) {
	m, _ := newApp(t)
	m, _ = update(t, m, ui.NavigateMsg{To: ui.RouteLogin})
	require.True(t, m.capturingInput())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, ViewSignUp, m.currentView)
}
