package feed

import (
	"strings"

	"github.com/nhle/qtplanner/internal/model"
)

// Filter returns the rows whose title or description contains query,
// ignoring case. An empty query matches every row.
func Filter[T model.Row](rows []T, query string) []T {
	query = strings.ToLower(query)
	if query == "" {
		return rows
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.GetTitle()), query) ||
			strings.Contains(strings.ToLower(row.GetDescription()), query) {
			out = append(out, row)
		}
	}
	return out
}

// State is the render state of a list view.
type State int

const (
	Loading State = iota
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// StateOf picks the render state from the load flag and unfiltered row
// count.
func StateOf(loaded bool, total int) State {
	switch {
	case !loaded:
		return Loading
	case total == 0:
		return Empty
	default:
		return Populated
	}
}
