// Package home is the landing page: a menu of every page, adjusted to
// whether someone is signed in.
package home

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
)

// Entry is one menu line. An empty Route means sign out.
type Entry struct {
	Label string
	Route string
}

// Model is the home menu.
type Model struct {
	keys   *keys.KeyMap
	user   *model.User
	cursor int
	width  int
	height int
}

// New creates the home menu.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetUser swaps the session-dependent entries.
func (m *Model) SetUser(u *model.User) {
	m.user = u
	if n := len(m.Entries()); m.cursor >= n {
		m.cursor = n - 1
	}
}

// Entries returns the menu for the current session.
func (m Model) Entries() []Entry {
	entries := []Entry{
		{Label: "Schedules", Route: ui.RouteScheduleView},
		{Label: "Add a schedule", Route: ui.RouteScheduleAdd},
		{Label: "QT checks", Route: ui.RouteQtCheckView},
		{Label: "Record a QT check", Route: ui.RouteQtCheckAdd},
		{Label: "My page", Route: ui.RouteMyPage},
	}
	if m.user == nil {
		return append(entries,
			Entry{Label: "Log in", Route: ui.RouteLogin},
			Entry{Label: "Sign up", Route: ui.RouteSignUp},
		)
	}
	return append(entries, Entry{Label: "Log out"})
}

// Cursor returns the highlighted entry index.
func (m Model) Cursor() int { return m.cursor }

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the highlighted entry.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	entries := m.Entries()
	switch {
	case key.Matches(k, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(k, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(k, m.keys.Select):
		e := entries[m.cursor]
		if e.Route == "" {
			return m, func() tea.Msg { return ui.SignOutMsg{} }
		}
		return m, ui.Navigate(e.Route)
	case key.Matches(k, m.keys.Login):
		if m.user == nil {
			return m, ui.Navigate(ui.RouteLogin)
		}
	}
	return m, nil
}

// View renders the menu.
func (m Model) View() string {
	title := theme.TitleStyle.Render("QT Planner")

	greeting := "Not signed in."
	if m.user != nil {
		greeting = fmt.Sprintf("Signed in as %s", m.user.Email)
	}

	var b strings.Builder
	for i, e := range m.Entries() {
		line := e.Label
		if e.Route != "" {
			line = fmt.Sprintf("%-20s %s", e.Label, theme.DimmedStyle.Render(e.Route))
		}
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			theme.DimmedStyle.Render(greeting),
			"",
			b.String(),
		))
}

// SetSize updates the menu dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
