package scheduleform

import (
	"context"
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

// submittedMsg carries the result of an insert.
type submittedMsg struct {
	created *model.Schedule
	err     error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	date        string
}

// Model is the Bubble Tea model for the new-schedule form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	ins        draft.ScheduleInserter
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

// New creates a schedule form writing through ins.
func New(ins draft.ScheduleInserter, offset draft.Offset, loc *time.Location, k *keys.KeyMap, width, height int) Model {
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

// Mount clears the fields and starts the form.
func (m *Model) Mount(user *model.User) tea.Cmd {
	*m.fb = formBindings{}
	m.user = user
	m.submitting = false
	m.alert = ui.Alert{}
	m.form = m.buildForm()
	return m.form.Init()
}

// SetUser updates the signed-in account once the session has loaded.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// Submitting reports whether an insert is in flight.
func (m Model) Submitting() bool { return m.submitting }

// Update handles messages for the schedule form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.alert.Update(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.alert.Show(msg.err)
			return m, m.restart()
		}
		return m, tea.Batch(m.Mount(m.user), ui.Navigate(ui.RouteScheduleView+ui.SuccessQuery))

	case tea.KeyMsg:
		if m.user == nil {
			if key.Matches(msg, m.keys.Login) {
				return m, ui.Navigate(ui.RouteLogin)
			}
			if key.Matches(msg, m.keys.Back) {
				return m, ui.Navigate(ui.RouteHome)
			}
			return m, nil
		}
		if m.submitting {
			return m, nil
		}
		if key.Matches(msg, m.keys.Back) {
			return m, ui.Navigate(ui.RouteHome)
		}
	}

	if m.form == nil {
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

// submit validates the fields and issues one insert. A failed
// validation reopens the form with the fields kept.
func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	date, err := ui.ParseDateTime(m.fb.date, m.loc)
	if err != nil {
		m.alert.Show(err)
		return m, m.restart()
	}
	d := draft.ScheduleDraft{
		Title:       m.fb.title,
		Description: m.fb.description,
		Date:        date,
	}
	if err := d.Validate(m.user); err != nil {
		m.alert.Show(err)
		return m, m.restart()
	}

	m.submitting = true
	ins, user, now, offset := m.ins, m.user, m.now(), m.offset
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		created, err := draft.SubmitSchedule(ctx, ins, d, user, now, offset)
		return submittedMsg{created: created, err: err}
	}
}

// restart rebuilds the form from the current bindings.
func (m *Model) restart() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// View renders the schedule form.
func (m Model) View() string {
	title := theme.TitleStyle.Render("New Schedule")

	if m.user == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			theme.CenteredStyle(m.width, m.height-2).Render(
				"Please log in to add a schedule.\n\nPress L to log in."))
	}
	if m.alert.Open() {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, m.alert.View(m.width)))
	}
	if m.form == nil {
		return ""
	}

	content := title + "\n" + m.form.View()
	if m.submitting {
		content += "\n" + theme.NoticeStyle.Render("Saving...")
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What is happening?").
				Value(&m.fb.title),
			huh.NewText().
				Title("Description").
				Placeholder("Where, who, what to bring...").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD HH:MM").
				Value(&m.fb.date).
				Validate(ui.ValidateDateTime),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(true)
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
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
