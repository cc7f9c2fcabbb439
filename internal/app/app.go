// Package app is the root Bubble Tea model: it routes between pages,
// owns the session, and draws the header and status bar.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/draft"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/session"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
	"github.com/nhle/qtplanner/internal/ui/authform"
	"github.com/nhle/qtplanner/internal/ui/command"
	"github.com/nhle/qtplanner/internal/ui/entrylist"
	helpview "github.com/nhle/qtplanner/internal/ui/help"
	"github.com/nhle/qtplanner/internal/ui/home"
	"github.com/nhle/qtplanner/internal/ui/qtform"
	"github.com/nhle/qtplanner/internal/ui/scheduleform"
)

// noticeDuration is how long transient notices stay on the status bar.
const noticeDuration = 2 * time.Second

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCommand
)

type signedOutMsg struct {
	err error
}

type noticeExpiredMsg struct {
	seq int
}

// Options configures the root model.
type Options struct {
	// StartRoute is the first page shown. Defaults to "/".
	StartRoute string

	Offset         draft.Offset
	Location       *time.Location
	BannerDuration time.Duration
	BackendLabel   string
	Logger         *slog.Logger
}

// Model is the root Bubble Tea model that manages routing, layout, and
// the session.
type Model struct {
	client  backend.Client
	session *session.Provider
	logger  *slog.Logger
	opts    Options
	keys    *keys.KeyMap
	layout  ui.Layout
	ready   bool

	currentView ViewState
	route       string
	overlay     overlay
	user        *model.User

	home         home.Model
	schedules    entrylist.Model[model.Schedule]
	qtChecks     entrylist.Model[model.QtCheck]
	myPage       entrylist.Model[model.Schedule]
	scheduleForm scheduleform.Model
	qtForm       qtform.Model
	login        authform.Model
	signup       authform.Model
	helpView     helpview.Model
	commandView  command.Model

	clock     time.Time
	status    string
	notice    string
	noticeSeq int
}

// New creates the root model over client.
func New(client backend.Client, opts Options) Model {
	if opts.StartRoute == "" {
		opts.StartRoute = ui.RouteHome
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.BannerDuration <= 0 {
		opts.BannerDuration = 3 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	k := keys.DefaultKeyMap()

	return Model{
		client:       client,
		session:      session.NewProvider(client),
		logger:       logger,
		opts:         opts,
		keys:         k,
		currentView:  ViewHome,
		route:        ui.RouteHome,
		home:         home.New(k, 80, 24),
		schedules:    newScheduleList(client, opts, k),
		qtChecks:     newQtCheckList(client, opts, k),
		myPage:       newMyPage(client, opts, k),
		scheduleForm: scheduleform.New(client, opts.Offset, opts.Location, k, 80, 24),
		qtForm:       qtform.New(client, opts.Offset, opts.Location, k, 80, 24),
		login:        authform.New(authform.ModeLogin, client, k, 80, 24),
		signup:       authform.New(authform.ModeSignUp, client, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		clock:        time.Now(),
	}
}

// Init loads the session, starts the clock, and opens the start route.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.session.Load(),
		ui.TickClock(),
		ui.Navigate(m.opts.StartRoute),
	)
}

// Update handles messages and dispatches to the active page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.home.SetSize(w, h)
		m.schedules.SetSize(w, h)
		m.qtChecks.SetSize(w, h)
		m.myPage.SetSize(w, h)
		m.scheduleForm.SetSize(w, h)
		m.qtForm.SetSize(w, h)
		m.login.SetSize(w, h)
		m.signup.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m.updateActiveView(msg)

	case ui.ClockMsg:
		m.clock = time.Time(msg)
		return m, ui.TickClock()

	case session.LoadedMsg:
		if msg.Err != nil {
			m.reportError(apperr.Wrap(apperr.KindAuth, "could not load session", msg.Err))
		}
		return m, m.setUser(msg.User)

	case ui.SessionChangedMsg:
		return m, m.session.Load()

	case ui.SignOutMsg:
		return m, m.signOut()

	case signedOutMsg:
		if msg.err != nil {
			m.reportError(msg.err)
			return m, nil
		}
		cmd := m.setUser(nil)
		return m, tea.Batch(cmd, m.showNotice("Signed out."), ui.Navigate(ui.RouteHome))

	case ui.NavigateMsg:
		return m, m.navigate(msg.To)

	case ui.StatusMsg:
		m.reportError(msg.Err)
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case command.CommandMsg:
		m.overlay = overlayNone
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.unmountCurrent()
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayCommand:
		if msg.String() == "esc" {
			m.overlay = overlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	case overlayHelp:
		switch msg.String() {
		case "?", "esc", "q":
			m.overlay = overlayNone
		}
		return m, nil
	}

	if m.capturingInput() {
		return m.updateActiveView(msg)
	}

	switch msg.String() {
	case "q":
		m.unmountCurrent()
		return m, tea.Quit
	case "?":
		m.overlay = overlayHelp
		return m, nil
	case ":":
		m.overlay = overlayCommand
		return m, m.commandView.Focus()
	case "T":
		return m, m.toggleTheme()
	case "esc":
		if m.currentView != ViewHome {
			return m, m.navigate(ui.RouteHome)
		}
		return m, nil
	}

	return m.updateActiveView(msg)
}

// capturingInput reports whether the active page needs every key, such as
// a form with focused inputs or a list in search mode.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewScheduleAdd, ViewQtCheckAdd:
		return m.user != nil
	case ViewLogin, ViewSignUp:
		return true
	case ViewSchedules:
		return m.schedules.Searching()
	case ViewQtChecks:
		return m.qtChecks.Searching()
	case ViewMyPage:
		return m.myPage.Searching()
	}
	return false
}

// updateActiveView dispatches the message to the mounted page.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewHome:
		m.home, cmd = m.home.Update(msg)
	case ViewSchedules:
		m.schedules, cmd = m.schedules.Update(msg)
	case ViewQtChecks:
		m.qtChecks, cmd = m.qtChecks.Update(msg)
	case ViewMyPage:
		m.myPage, cmd = m.myPage.Update(msg)
	case ViewScheduleAdd:
		m.scheduleForm, cmd = m.scheduleForm.Update(msg)
	case ViewQtCheckAdd:
		m.qtForm, cmd = m.qtForm.Update(msg)
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewSignUp:
		m.signup, cmd = m.signup.Update(msg)
	}

	return m, cmd
}

// setUser hands the session to every page. "My page" refetches when the
// user changes while it is mounted.
func (m *Model) setUser(u *model.User) tea.Cmd {
	changed := userID(m.user) != userID(u)
	m.user = u
	m.home.SetUser(u)
	m.schedules.SetUser(u)
	m.qtChecks.SetUser(u)
	m.myPage.SetUser(u)
	m.scheduleForm.SetUser(u)
	m.qtForm.SetUser(u)

	if changed && m.currentView == ViewMyPage {
		return m.navigate(m.route)
	}
	return nil
}

func userID(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func (m Model) signOut() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return signedOutMsg{err: c.SignOut(ctx)}
	}
}

// reportError logs err and shows it on the status bar.
func (m *Model) reportError(err error) {
	if err == nil {
		return
	}
	m.logger.Error("request failed",
		"kind", apperr.KindOf(err),
		"message", apperr.Message(err),
		"route", m.route,
		"err", err)
	m.status = ui.StatusText(err)
}

func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *Model) toggleTheme() tea.Cmd {
	mode := theme.Toggle()
	m.logger.Debug("theme switched", "mode", mode)
	return m.showNotice(fmt.Sprintf("Switched to %s theme.", mode))
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch {
	case strings.HasPrefix(cmd, "/"):
		return m.navigate(cmd)
	case cmd == command.WordTheme:
		return m.toggleTheme()
	case cmd == command.WordLogout:
		return m.signOut()
	case cmd == command.WordQuit:
		m.unmountCurrent()
		return tea.Quit
	default:
		return ui.ReportError(apperr.Validation(fmt.Sprintf("unknown command %q", cmd)))
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("QT Planner · "+m.currentView.String(), m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayCommand:
		return m.commandView.View()
	}

	switch m.currentView {
	case ViewSchedules:
		return m.schedules.View()
	case ViewQtChecks:
		return m.qtChecks.View()
	case ViewMyPage:
		return m.myPage.View()
	case ViewScheduleAdd:
		return m.scheduleForm.View()
	case ViewQtCheckAdd:
		return m.qtForm.View()
	case ViewLogin:
		return m.login.View()
	case ViewSignUp:
		return m.signup.View()
	default:
		return m.home.View()
	}
}

func (m Model) headerStatus() string {
	who := "signed out"
	if m.user != nil {
		who = m.user.Email
	}
	parts := []string{who, ui.FormatClock(m.clock, m.opts.Location), string(theme.Current())}
	if m.opts.BackendLabel != "" {
		parts = append([]string{m.opts.BackendLabel}, parts...)
	}
	return strings.Join(parts, " · ")
}

func (m Model) statusLine() string {
	if m.status != "" {
		return theme.ErrorStyle.Render(m.status)
	}
	if m.notice != "" {
		return theme.NoticeStyle.Render(m.notice)
	}
	return m.keyHints()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case overlayHelp:
		return "? close help | esc back"
	case overlayCommand:
		return "enter go | tab complete | esc close"
	}

	switch m.currentView {
	case ViewSchedules, ViewQtChecks, ViewMyPage:
		return "j/k move | / search | n new | d delete mine | esc home | : go | ? help | q quit"
	case ViewScheduleAdd:
		if m.user == nil {
			return "L log in | esc home"
		}
		return "tab next field | enter submit | esc home | ctrl+c quit"
	case ViewQtCheckAdd:
		if m.user == nil {
			return "L log in | esc home"
		}
		return "enter next | +/- >/< adjust counters | esc back | ctrl+c quit"
	case ViewLogin, ViewSignUp:
		return "enter submit | ctrl+o log in/sign up | esc home | ctrl+c quit"
	default:
		return "j/k move | enter open | T theme | : go | ? help | q quit"
	}
}
