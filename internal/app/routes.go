package app

import (
	"context"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/ui"
	"github.com/nhle/qtplanner/internal/ui/entrylist"
)

// ViewState represents the page currently mounted.
type ViewState int

const (
	ViewHome ViewState = iota
	ViewSchedules
	ViewScheduleAdd
	ViewQtChecks
	ViewQtCheckAdd
	ViewMyPage
	ViewLogin
	ViewSignUp
)

// routes maps each path to its page.
var routes = map[string]ViewState{
	ui.RouteHome:         ViewHome,
	ui.RouteScheduleView: ViewSchedules,
	ui.RouteScheduleAdd:  ViewScheduleAdd,
	ui.RouteQtCheckView:  ViewQtChecks,
	ui.RouteQtCheckAdd:   ViewQtCheckAdd,
	ui.RouteMyPage:       ViewMyPage,
	ui.RouteLogin:        ViewLogin,
	ui.RouteSignUp:       ViewSignUp,
}

var viewTitles = map[ViewState]string{
	ViewHome:        "Home",
	ViewSchedules:   "Schedules",
	ViewScheduleAdd: "Add schedule",
	ViewQtChecks:    "QT checks",
	ViewQtCheckAdd:  "Record QT",
	ViewMyPage:      "My page",
	ViewLogin:       "Log in",
	ViewSignUp:      "Sign up",
}

func (v ViewState) String() string {
	return viewTitles[v]
}

// resolveRoute splits a route such as "/qtcheck-view?success=true" into
// its page and query.
func resolveRoute(to string) (ViewState, url.Values, error) {
	u, err := url.Parse(to)
	if err != nil {
		return 0, nil, apperr.Validation(fmt.Sprintf("invalid route %q", to))
	}
	path := u.Path
	if path == "" {
		path = ui.RouteHome
	}
	v, ok := routes[path]
	if !ok {
		return 0, nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("no page at %s", path))
	}
	return v, u.Query(), nil
}

// navigate unmounts the current page and mounts the one at to.
func (m *Model) navigate(to string) tea.Cmd {
	v, query, err := resolveRoute(to)
	if err != nil {
		return ui.ReportError(err)
	}

	m.unmountCurrent()
	m.currentView = v
	m.route = to
	m.overlay = overlayNone
	m.status = ""

	switch v {
	case ViewSchedules:
		return m.schedules.Mount(query, m.user)
	case ViewQtChecks:
		return m.qtChecks.Mount(query, m.user)
	case ViewMyPage:
		return m.myPage.Mount(query, m.user)
	case ViewScheduleAdd:
		return tea.Batch(m.scheduleForm.Mount(m.user), m.session.Load())
	case ViewQtCheckAdd:
		return tea.Batch(m.qtForm.Mount(m.user), m.session.Load())
	case ViewLogin:
		return m.login.Mount()
	case ViewSignUp:
		return m.signup.Mount()
	}
	return nil
}

func (m *Model) unmountCurrent() {
	switch m.currentView {
	case ViewSchedules:
		m.schedules.Unmount()
	case ViewQtChecks:
		m.qtChecks.Unmount()
	case ViewMyPage:
		m.myPage.Unmount()
	}
}

func newScheduleList(c backend.Client, opts Options, k *keys.KeyMap) entrylist.Model[model.Schedule] {
	return entrylist.New(entrylist.Config[model.Schedule]{
		Title:     "Schedules",
		EmptyText: "No schedules yet.",
		Fetch: func(ctx context.Context, _ *model.User) ([]model.Schedule, error) {
			return c.ListSchedules(ctx, backend.ListOptions{})
		},
		Subscribe:      c.Subscribe,
		Channel:        realtime.ChannelSchedules,
		Table:          model.TableSchedules,
		Delete:         c.DeleteSchedule,
		NewRoute:       ui.RouteScheduleAdd,
		Location:       opts.Location,
		BannerDuration: opts.BannerDuration,
	}, k, 80, 24)
}

func newQtCheckList(c backend.Client, opts Options, k *keys.KeyMap) entrylist.Model[model.QtCheck] {
	return entrylist.New(entrylist.Config[model.QtCheck]{
		Title:     "QT Checks",
		EmptyText: "No QT checks yet.",
		Fetch: func(ctx context.Context, _ *model.User) ([]model.QtCheck, error) {
			return c.ListQtChecks(ctx, backend.ListOptions{})
		},
		Subscribe: c.Subscribe,
		Channel:   realtime.ChannelQtCheck,
		Table:     model.TableQtCheck,
		Delete:    c.DeleteQtCheck,
		Detail: func(q model.QtCheck) string {
			return fmt.Sprintf("words %d · QT %d", q.WordCount, q.QtCount)
		},
		NewRoute:       ui.RouteQtCheckAdd,
		Location:       opts.Location,
		BannerDuration: opts.BannerDuration,
	}, k, 80, 24)
}

// newMyPage lists the signed-in user's schedules. It has no live
// updates.
func newMyPage(c backend.Client, opts Options, k *keys.KeyMap) entrylist.Model[model.Schedule] {
	return entrylist.New(entrylist.Config[model.Schedule]{
		Title:     "My Page",
		EmptyText: "You have no schedules yet.",
		Fetch: func(ctx context.Context, u *model.User) ([]model.Schedule, error) {
			return c.ListSchedules(ctx, backend.ListOptions{OwnerID: u.ID})
		},
		Delete:         c.DeleteSchedule,
		NewRoute:       ui.RouteScheduleAdd,
		RequireUser:    true,
		Location:       opts.Location,
		BannerDuration: opts.BannerDuration,
	}, k, 80, 24)
}
