package entrylist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/theme"
)

// Item wraps one row so it can be used in a bubbles/list.
type Item struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Detail      string
	Date        time.Time
	CreatedAt   time.Time
	Mine        bool
}

func newItem[T model.Row](row T, detail string, user *model.User) Item {
	return Item{
		ID:          row.GetID(),
		OwnerID:     row.GetOwnerID(),
		Title:       row.GetTitle(),
		Description: row.GetDescription(),
		Detail:      detail,
		Date:        row.GetDate(),
		CreatedAt:   row.GetCreatedAt(),
		Mine:        user != nil && row.GetOwnerID() == user.ID,
	}
}

// FilterValue returns the string used by the list's own filter, which is
// disabled in favour of feed.Filter.
func (i Item) FilterValue() string { return i.Title }

// ItemDelegate implements list.ItemDelegate for entries.
type ItemDelegate struct {
	loc *time.Location
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a title line followed by a date and description line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(Item)
	if !ok {
		return
	}

	title := it.Title
	if it.Mine {
		title += " " + theme.OwnerBadgeStyle.Render("mine")
	}
	if it.Detail != "" {
		title += "  " + theme.CounterStyle.Render(it.Detail)
	}

	parts := []string{theme.DateStyle.Render(formatDate(it.Date, d.loc))}
	if it.Description != "" {
		parts = append(parts, truncate(it.Description, m.Width()-24))
	}
	meta := theme.DimmedStyle.Render(strings.Join(parts, "  "))

	line := fmt.Sprintf("%s\n%s", title, meta)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "no date"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(model.DateTimeLayout)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
