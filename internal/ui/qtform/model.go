// Package qtform is the new-QT-check form: a huh stage for the text fields
// followed by a counter panel for word and QT counts.
package qtform

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/draft"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
)

const submitTimeout = 15 * time.Second

type stage int

const (
	stageFields stage = iota
	stageCounters
)

type counter int

const (
	counterWord counter = iota
	counterQt
)

type submittedMsg struct {
	created *model.QtCheck
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	date        string
	wordCount   draft.Counter
	qtCount     draft.Counter
}

// Model is the Bubble Tea model for the new-QT-check form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	stage      stage
	focus      counter
	ins        draft.QtCheckInserter
	keys       *keys.KeyMap
	user       *model.User
	offset     draft.Offset
	loc        *time.Location
	now        func() time.Time
	alert      ui.Alert
	submitting bool
	width      int
	height     int
}

// New creates a QT form writing through ins.
func New(ins draft.QtCheckInserter, offset draft.Offset, loc *time.Location, k *keys.KeyMap, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		ins:    ins,
		keys:   k,
		offset: offset,
		loc:    loc,
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// Mount clears every field and opens the text stage.
func (m *Model) Mount(user *model.User) tea.Cmd {
	*m.fb = formBindings{}
	m.user = user
	m.submitting = false
	m.alert = ui.Alert{}
	m.focus = counterWord
	return m.openFields()
}

// SetUser updates the signed-in account once the session has loaded.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// Submitting reports whether an insert is in flight.
func (m Model) Submitting() bool { return m.submitting }

// Counts returns the current word and QT counts.
func (m Model) Counts() (word, qt int) {
	return int(m.fb.wordCount), int(m.fb.qtCount)
}

// Update handles messages for the QT form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.alert.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.alert.Show(msg.err)
			return m, nil
		}
		return m, tea.Batch(m.Mount(m.user), ui.Navigate(ui.RouteQtCheckView+ui.SuccessQuery))

	case tea.KeyMsg:
		if m.user == nil {
			switch {
			case key.Matches(msg, m.keys.Login):
				return m, ui.Navigate(ui.RouteLogin)
			case key.Matches(msg, m.keys.Back):
				return m, ui.Navigate(ui.RouteHome)
			}
			return m, nil
		}
		if m.submitting {
			return m, nil
		}
		if m.stage == stageCounters {
			return m.handleCounterKeys(msg)
		}
		if key.Matches(msg, m.keys.Back) {
			return m, ui.Navigate(ui.RouteHome)
		}
	}

	if m.stage != stageFields || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if _, err := ui.ParseDateTime(m.fb.date, m.loc); err != nil {
			m.alert.Show(err)
			return m, m.openFields()
		}
		m.stage = stageCounters
		return m, nil
	}
	if m.form.State == huh.StateAborted {
		return m, ui.Navigate(ui.RouteHome)
	}

	return m, cmd
}

func (m Model) handleCounterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.openFields()
	case key.Matches(msg, m.keys.NextCounter):
		m.focus = 1 - m.focus
	case key.Matches(msg, m.keys.Inc):
		m.adjust(1)
	case key.Matches(msg, m.keys.Dec):
		m.adjust(-1)
	case key.Matches(msg, m.keys.IncFive):
		m.adjust(5)
	case key.Matches(msg, m.keys.DecFive):
		m.adjust(-5)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m, nil
}

func (m *Model) adjust(delta int) {
	if m.focus == counterWord {
		m.fb.wordCount = m.fb.wordCount.Adjust(delta)
		return
	}
	m.fb.qtCount = m.fb.qtCount.Adjust(delta)
}

// submit validates every field, counters included, and issues one insert.
func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	date, err := ui.ParseDateTime(m.fb.date, m.loc)
	if err != nil {
		m.alert.Show(err)
		return m, nil
	}
	d := draft.QtDraft{
		Title:       m.fb.title,
		Description: m.fb.description,
		Date:        date,
		WordCount:   m.fb.wordCount,
		QtCount:     m.fb.qtCount,
	}
	if err := d.Validate(m.user); err != nil {
		m.alert.Show(err)
		return m, nil
	}

	m.submitting = true
	ins, user, now, offset := m.ins, m.user, m.now(), m.offset
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		created, err := draft.SubmitQtCheck(ctx, ins, d, user, now, offset)
		return submittedMsg{created: created, err: err}
	}
}

// openFields rebuilds the text stage from the current bindings.
func (m *Model) openFields() tea.Cmd {
	m.stage = stageFields
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Passage or theme").
				Value(&m.fb.title),
			huh.NewText().
				Title("Description").
				Placeholder("What stood out today?").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD HH:MM").
				Value(&m.fb.date).
				Validate(ui.ValidateDateTime),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(true)
	return m.form.Init()
}

// View renders the QT form.
func (m Model) View() string {
	title := theme.TitleStyle.Render("New QT Check")

	if m.user == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			theme.CenteredStyle(m.width, m.height-2).Render(
				"Please log in to record a QT check.\n\nPress L to log in."))
	}
	if m.alert.Open() {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, m.alert.View(m.width)))
	}

	var content string
	if m.stage == stageCounters {
		content = m.renderCounters()
	} else if m.form != nil {
		content = m.form.View()
	}
	if m.submitting {
		content += "\n" + theme.NoticeStyle.Render("Saving...")
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + content)
}

func (m Model) renderCounters() string {
	summary := theme.DimmedStyle.Render(fmt.Sprintf("%s · %s", m.fb.title, m.fb.date))
	rows := []string{
		summary,
		"",
		m.renderCounter("Word count", m.fb.wordCount, m.focus == counterWord),
		m.renderCounter("QT count", m.fb.qtCount, m.focus == counterQt),
		"",
		theme.HelpStyle.Render("tab switch · + / - by 1 · > / < by 5 · enter submit · esc edit fields"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCounter(label string, c draft.Counter, focused bool) string {
	line := fmt.Sprintf("%-12s %s", label, theme.CounterStyle.Render(fmt.Sprintf("%4d", int(c))))
	if focused {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}
