// Package authform implements the log-in and sign-up pages.
package authform

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
)

// RedirectDelay is how long the success message shows before navigating.
const RedirectDelay = 2 * time.Second

const requestTimeout = 15 * time.Second

// Mode selects between log-in and sign-up.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignUp
)

// Authenticator is the identity half of backend.Client.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.User, error)
}

type resultMsg struct {
	mode Mode
	user *model.User
	err  error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	confirm  string
}

// Model is the Bubble Tea model for one auth page.
type Model struct {
	mode    Mode
	auth    Authenticator
	keys    *keys.KeyMap
	form    *huh.Form
	fb      *formBindings
	err     error
	success string
	loading bool
	width   int
	height  int
}

// New creates an auth page in the given mode.
func New(mode Mode, auth Authenticator, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   mode,
		auth:   auth,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Mount clears the page and starts the form.
func (m *Model) Mount() tea.Cmd {
	*m.fb = formBindings{}
	m.err = nil
	m.success = ""
	m.loading = false
	return m.restart()
}

// Err returns the error shown on the page, if any.
func (m Model) Err() error { return m.err }

// Success returns the confirmation shown after a successful request.
func (m Model) Success() string { return m.success }

// Update handles messages for the auth page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, m.restart()
		}
		return m.succeed()

	case tea.KeyMsg:
		if m.loading || m.success != "" {
			return m, nil
		}
		if key.Matches(msg, m.keys.Back) {
			return m, ui.Navigate(ui.RouteHome)
		}
		if key.Matches(msg, m.keys.SwitchAuth) {
			if m.mode == ModeSignUp {
				return m, ui.Navigate(ui.RouteLogin)
			}
			return m, ui.Navigate(ui.RouteSignUp)
		}
	}

	if m.form == nil || m.success != "" {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, ui.Navigate(ui.RouteHome)
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.mode == ModeSignUp && m.fb.password != m.fb.confirm {
		m.err = apperr.Validation("passwords do not match")
		return m, m.restart()
	}

	m.err = nil
	m.loading = true
	auth, mode := m.auth, m.mode
	email, password := m.fb.email, m.fb.password
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			u   *model.User
			err error
		)
		if mode == ModeSignUp {
			u, err = auth.SignUp(ctx, email, password, nil)
		} else {
			u, err = auth.SignIn(ctx, email, password)
		}
		return resultMsg{mode: mode, user: u, err: err}
	}
}

// succeed shows the confirmation and navigates after RedirectDelay.
func (m Model) succeed() (Model, tea.Cmd) {
	if m.mode == ModeSignUp {
		m.success = "Sign-up complete. Taking you to log in..."
		return m, ui.NavigateAfter(RedirectDelay, ui.RouteLogin)
	}
	m.success = "Logged in successfully."
	return m, tea.Batch(
		func() tea.Msg { return ui.SessionChangedMsg{} },
		ui.NavigateAfter(RedirectDelay, ui.RouteHome),
	)
}

// restart rebuilds the form from the current bindings.
func (m *Model) restart() tea.Cmd {
	fields := []huh.Field{
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&m.fb.email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password),
	}
	if m.mode == ModeSignUp {
		fields = append(fields, huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.confirm))
	}
	m.form = huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.formWidth()).
		WithShowHelp(true)
	return m.form.Init()
}

// View renders the auth page.
func (m Model) View() string {
	title := "Log in"
	alt := "No account? Press ctrl+o to sign up."
	if m.mode == ModeSignUp {
		title = "Sign up"
		alt = "Already registered? Press ctrl+o to log in."
	}

	parts := []string{theme.TitleStyle.Render(title)}
	switch {
	case m.success != "":
		parts = append(parts, theme.BannerStyle.Render(m.success))
	default:
		if m.form != nil {
			parts = append(parts, m.form.View())
		}
		if m.loading {
			parts = append(parts, theme.NoticeStyle.Render("Working..."))
		}
		if m.err != nil {
			parts = append(parts, theme.ErrorStyle.Render(apperr.Message(m.err)))
		}
		parts = append(parts, "", theme.HelpStyle.Render(alt))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}
