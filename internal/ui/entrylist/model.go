// Package entrylist renders a live list of entries: it fetches once per
// mount, follows the change feed while mounted, and filters locally.
package entrylist

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/feed"
	"github.com/nhle/qtplanner/internal/keys"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/theme"
	"github.com/nhle/qtplanner/internal/ui"
)

const requestTimeout = 15 * time.Second

// mounts hands out ids unique across every list instance, so a message
// from an earlier mount is never mistaken for a current one.
var mounts atomic.Int64

// Config binds a list to one collection.
type Config[T model.Row] struct {
	Title     string
	EmptyText string

	// Fetch loads the initial rows. user is nil when signed out.
	Fetch func(ctx context.Context, user *model.User) ([]T, error)

	// Subscribe opens the change feed. Leave nil, or Channel empty, for a
	// list without live updates.
	Subscribe func(ctx context.Context, channel string, table model.Table) (*realtime.Subscription, error)
	Channel   string
	Table     model.Table

	// Delete removes a row by id. Nil disables deletion.
	Delete func(ctx context.Context, id string) error

	// Detail renders extra per-row text, such as counters.
	Detail func(row T) string

	// NewRoute is where "n" navigates. Empty disables it.
	NewRoute string

	// RequireUser shows a log-in prompt instead of rows when signed out.
	RequireUser bool

	Location       *time.Location
	BannerDuration time.Duration
}

type fetchedMsg[T model.Row] struct {
	mount int64
	rows  []T
	err   error
}

type subscribedMsg struct {
	mount int64
	sub   *realtime.Subscription
	err   error
}

// feedMsg wraps a realtime.ChangeMsg or realtime.ClosedMsg with the mount
// that requested it.
type feedMsg struct {
	mount int64
	msg   tea.Msg
}

type deletedMsg struct {
	mount int64
	id    string
	err   error
}

type bannerExpiredMsg struct {
	mount int64
}

// Model is a list view over one collection.
type Model[T model.Row] struct {
	cfg         Config[T]
	keys        *keys.KeyMap
	list        list.Model
	searchInput textinput.Model
	searchMode  bool
	query       string

	reducer *feed.Reducer[T]
	user    *model.User
	mount   int64
	cancel  context.CancelFunc
	sub     *realtime.Subscription
	banner  bool

	width  int
	height int
}

// New creates an unmounted list.
func New[T model.Row](cfg Config[T], k *keys.KeyMap, width, height int) Model[T] {
	if cfg.EmptyText == "" {
		cfg.EmptyText = "No entries yet."
	}
	if cfg.BannerDuration <= 0 {
		cfg.BannerDuration = 3 * time.Second
	}

	l := list.New([]list.Item{}, ItemDelegate{loc: cfg.Location}, width, height-2)
	l.Title = cfg.Title
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("entry", "entries")

	si := textinput.New()
	si.Placeholder = "search title or description..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model[T]{
		cfg:         cfg,
		keys:        k,
		list:        l,
		searchInput: si,
		reducer:     feed.NewReducer[T](),
		width:       width,
		height:      height,
	}
}

// Mount starts a fresh lifecycle: it resets the rows, fetches once, and
// opens the change feed. query carries the route's query string.
func (m *Model[T]) Mount(query url.Values, user *model.User) tea.Cmd {
	m.Unmount()

	m.mount = mounts.Add(1)
	m.user = user
	m.reducer = feed.NewReducer[T]()
	m.query = ""
	m.searchMode = false
	m.searchInput.Reset()
	m.searchInput.Blur()
	m.refresh()

	var cmds []tea.Cmd
	if query.Get("success") == "true" {
		m.banner = true
		mount := m.mount
		cmds = append(cmds, tea.Tick(m.cfg.BannerDuration, func(time.Time) tea.Msg {
			return bannerExpiredMsg{mount: mount}
		}))
	}

	if m.cfg.RequireUser && user == nil {
		return tea.Batch(cmds...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	cmds = append(cmds, m.fetch(ctx))
	if m.cfg.Subscribe != nil && m.cfg.Channel != "" {
		cmds = append(cmds, m.subscribe(ctx))
	}
	return tea.Batch(cmds...)
}

// Unmount closes the change feed and drops every in-flight result.
func (m *Model[T]) Unmount() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.mount = 0
	m.banner = false
}

// Mounted reports whether the list is between Mount and Unmount.
func (m Model[T]) Mounted() bool { return m.mount != 0 }

// Subscribed reports whether the change feed is open.
func (m Model[T]) Subscribed() bool { return m.sub != nil }

// BannerVisible reports whether the success banner is showing.
func (m Model[T]) BannerVisible() bool { return m.banner }

// Searching reports whether the search input has focus.
func (m Model[T]) Searching() bool { return m.searchMode }

// State returns the render state of the list.
func (m Model[T]) State() feed.State {
	return feed.StateOf(m.reducer.Loaded(), m.reducer.Len())
}

// Visible returns the rows currently shown, after filtering.
func (m Model[T]) Visible() []T {
	return feed.Filter(m.reducer.Rows(), m.query)
}

// SetUser updates who owns "mine" rows.
func (m *Model[T]) SetUser(u *model.User) {
	m.user = u
	m.refresh()
}

// Init satisfies the sub-model shape; work starts at Mount.
func (m Model[T]) Init() tea.Cmd {
	return nil
}

// Update handles messages for the list view.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg[T]:
		if msg.mount != m.mount {
			return m, nil
		}
		if msg.err != nil {
			m.reducer.Snapshot(nil)
			m.refresh()
			return m, ui.ReportError(msg.err)
		}
		m.reducer.Snapshot(msg.rows)
		m.refresh()
		return m, nil

	case subscribedMsg:
		if msg.mount != m.mount {
			if msg.sub != nil {
				msg.sub.Close()
			}
			return m, nil
		}
		if msg.err != nil {
			return m, ui.ReportError(msg.err)
		}
		m.sub = msg.sub
		return m, m.wait()

	case feedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		return m.handleFeed(msg.msg)

	case deletedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		if msg.err != nil {
			return m, ui.ReportError(msg.err)
		}
		m.reducer.Delete(msg.id)
		m.refresh()
		return m, nil

	case bannerExpiredMsg:
		if msg.mount == m.mount {
			m.banner = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model[T]) handleFeed(msg tea.Msg) (Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case realtime.ChangeMsg:
		var report tea.Cmd
		if _, err := m.reducer.Apply(msg.Change); err != nil {
			report = ui.ReportError(apperr.Wrap(apperr.KindRealtime, "could not read a live update", err))
		}
		m.refresh()
		return m, tea.Batch(report, m.wait())

	case realtime.ClosedMsg:
		m.sub = nil
		if msg.Err != nil {
			return m, ui.ReportError(msg.Err)
		}
	}
	return m, nil
}

// handleSearchKeys filters on every keystroke. Enter keeps the query, esc
// clears it.
func (m Model[T]) handleSearchKeys(msg tea.KeyMsg) (Model[T], tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.query = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query = m.searchInput.Value()
	m.refresh()
	return m, cmd
}

func (m Model[T]) handleNormalKeys(msg tea.KeyMsg) (Model[T], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		if !m.reducer.Loaded() {
			return m, nil
		}
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.New):
		if m.cfg.NewRoute == "" {
			return m, nil
		}
		return m, ui.Navigate(m.cfg.NewRoute)

	case key.Matches(msg, m.keys.Login):
		if m.user == nil {
			return m, ui.Navigate(ui.RouteLogin)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model[T]) deleteSelected() (Model[T], tea.Cmd) {
	if m.cfg.Delete == nil {
		return m, nil
	}
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return m, nil
	}
	if m.user == nil {
		return m, ui.ReportError(apperr.New(apperr.KindAuth, "please log in first"))
	}
	if !it.Mine {
		return m, ui.ReportError(apperr.Validation("you can only delete your own entries"))
	}

	del := m.cfg.Delete
	mount := m.mount
	id := it.ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deletedMsg{mount: mount, id: id, err: del(ctx, id)}
	}
}

func (m Model[T]) fetch(ctx context.Context) tea.Cmd {
	fetch := m.cfg.Fetch
	mount := m.mount
	user := m.user
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		rows, err := fetch(ctx, user)
		return fetchedMsg[T]{mount: mount, rows: rows, err: err}
	}
}

// subscribe opens the feed under ctx, which Unmount cancels.
func (m Model[T]) subscribe(ctx context.Context) tea.Cmd {
	subscribe := m.cfg.Subscribe
	channel, table := m.cfg.Channel, m.cfg.Table
	mount := m.mount
	return func() tea.Msg {
		sub, err := subscribe(ctx, channel, table)
		return subscribedMsg{mount: mount, sub: sub, err: err}
	}
}

func (m Model[T]) wait() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	mount := m.mount
	next := m.sub.Wait()
	return func() tea.Msg {
		return feedMsg{mount: mount, msg: next()}
	}
}

// refresh rebuilds the list items from the reducer and the search query.
func (m *Model[T]) refresh() {
	rows := m.Visible()
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		detail := ""
		if m.cfg.Detail != nil {
			detail = m.cfg.Detail(row)
		}
		items[i] = newItem(row, detail, m.user)
	}
	m.list.SetItems(items)
}

// View renders the list view.
func (m Model[T]) View() string {
	header := theme.TitleStyle.Render(m.cfg.Title)
	if m.banner {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ",
			theme.BannerStyle.Render("✓ saved successfully"))
	}

	if m.cfg.RequireUser && m.user == nil {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			theme.CenteredStyle(m.width, m.height-2).Render(
				"Please log in to see your entries.\n\nPress L to log in."))
	}

	body := m.renderBody()
	if m.searchMode || m.query != "" {
		search := m.searchInput.View()
		if !m.searchMode {
			search = theme.DimmedStyle.Render(fmt.Sprintf("filter: %q (/ to edit)", m.query))
		}
		return lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.NewStyle().Padding(0, 1).Render(search), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model[T]) renderBody() string {
	style := theme.CenteredStyle(m.width, m.height-2)
	switch m.State() {
	case feed.Loading:
		return style.Render("Loading...")
	case feed.Empty:
		text := m.cfg.EmptyText
		if m.cfg.NewRoute != "" {
			text += "\n\nPress n to add one."
		}
		return style.Render(text)
	}
	if len(m.list.Items()) == 0 {
		return style.Render(fmt.Sprintf("Nothing matches %q.\nPress esc in search to clear.", m.query))
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
