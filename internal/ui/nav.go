package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/apperr"
)

// Route paths.
const (
	RouteHome         = "/"
	RouteScheduleView = "/schedule-view"
	RouteScheduleAdd  = "/schedule-add"
	RouteQtCheckView  = "/qtcheck-view"
	RouteQtCheckAdd   = "/qtcheck-add"
	RouteMyPage       = "/my-page"
	RouteLogin        = "/login"
	RouteSignUp       = "/signup"
)

// SuccessQuery is appended to a list route after a successful insert.
const SuccessQuery = "?success=true"

// NavigateMsg asks the root model to switch to a route. To may carry a
// query string.
type NavigateMsg struct {
	To string
}

// Navigate returns a tea.Cmd that navigates to route.
func Navigate(to string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// NavigateAfter navigates to route once d has elapsed.
func NavigateAfter(d time.Duration, to string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return NavigateMsg{To: to} })
}

// SessionChangedMsg tells the root model to reload the current user after
// a sign-in or sign-out.
type SessionChangedMsg struct{}

// StatusMsg reports a failure on the status line. The same error is
// logged by whoever receives it.
type StatusMsg struct {
	Err error
}

// ReportError returns a tea.Cmd emitting err as a StatusMsg.
func ReportError(err error) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Err: err} }
}

// StatusText renders err as "kind: message" for the status line.
func StatusText(err error) string {
	if err == nil {
		return ""
	}
	return string(apperr.KindOf(err)) + ": " + apperr.Message(err)
}

// SignOutMsg asks the root model to end the session and return home.
type SignOutMsg struct{}
