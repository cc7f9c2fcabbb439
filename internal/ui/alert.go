package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/theme"
)

// Alert is a blocking modal message. While open it swallows every key
// except the ones that dismiss it.
type Alert struct {
	message string
	kind    apperr.Kind
	open    bool
}

// Show opens the alert for err.
func (a *Alert) Show(err error) {
	a.message = apperr.Message(err)
	a.kind = apperr.KindOf(err)
	a.open = true
}

// Open reports whether the alert is showing.
func (a Alert) Open() bool { return a.open }

// Message returns the text of the current alert.
func (a Alert) Message() string { return a.message }

// Update dismisses the alert on enter, esc, or space. It reports whether
// the alert consumed msg.
func (a *Alert) Update(msg tea.Msg) bool {
	if !a.open {
		return false
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc", " ":
			a.open = false
		}
		return true
	}
	return false
}

// View renders the alert box, or "" when closed.
func (a Alert) View(width int) string {
	if !a.open {
		return ""
	}
	title := theme.ErrorStyle.Render(alertTitle(a.kind))
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		a.message,
		"",
		theme.HelpStyle.Render("enter to dismiss"),
	)
	w := width - 8
	if w < 30 {
		w = 30
	}
	return theme.AlertStyle.Width(w).Render(body)
}

func alertTitle(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return "Please check the form"
	case apperr.KindAuth:
		return "Not signed in"
	default:
		return "Something went wrong"
	}
}
