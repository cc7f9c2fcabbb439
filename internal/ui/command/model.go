package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
)

// CommandMsg is emitted when the user executes a command: a route path
// such as "/qtcheck-view", or one of the words in Words.
type CommandMsg string

// Command words understood besides route paths.
const (
	WordQuit   = "quit"
	WordLogout = "logout"
	WordTheme  = "theme"
)

// Routes lists the paths offered as completions.
var Routes = []string{
	ui.RouteHome,
	ui.RouteScheduleView,
	ui.RouteScheduleAdd,
	ui.RouteQtCheckView,
	ui.RouteQtCheckAdd,
	ui.RouteMyPage,
	ui.RouteLogin,
	ui.RouteSignUp,
}

// Words lists the non-route commands offered as completions.
var Words = []string{WordTheme, WordLogout, WordQuit}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "route or command, e.g. /schedule-view (tab completes)"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(append(append([]string{}, Routes...), Words...))
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := Normalize(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Normalize trims input and adds a leading slash to bare route names, so
// "my-page" and "/my-page" are the same command.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "/") {
		return s
	}
	lower := strings.ToLower(s)
	for _, w := range Words {
		if lower == w {
			return w
		}
	}
	if lower == "q" {
		return WordQuit
	}
	return "/" + s
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Go to")
	input := m.input.View()
	hint := theme.HelpStyle.Render(strings.Join(Routes, "  "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", hint)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
