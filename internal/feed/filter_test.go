package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/model"
)

func TestFilterCaseInsensitiveTitle(t *testing.T) {
	rows := []model.Schedule{
		{ID: "1", Title: "Sunday Service"},
		{ID: "2", Title: "Bible Study"},
	}

	got := Filter(rows, "bible")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterMatchesDescription(t *testing.T) {
	rows := []model.QtCheck{
		{ID: "1", Title: "Morning", Description: "Read John 3"},
		{ID: "2", Title: "Evening", Description: "prayer"},
	}

	got := Filter(rows, "JOHN")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterEmptyQuery(t *testing.T) {
	rows := []model.Schedule{{ID: "1"}, {ID: "2"}}
	assert.Len(t, Filter(rows, ""), 2)
	assert.Empty(t, Filter(rows, "nothing matches"))
}

func TestFilterKeepsWhitespace(t *testing.T) {
	rows := []model.Schedule{
		{ID: "1", Title: "Bible Study"},
		{ID: "2", Title: "Choir", Description: "study hall"},
	}
	assert.Empty(t, Filter(rows, "study "))
	assert.Len(t, Filter(rows, "study h"), 1)
	assert.Len(t, Filter(rows, " "), 2)
	assert.Empty(t, Filter([]model.Schedule{{ID: "3", Title: "Retreat"}}, " "))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Loading, StateOf(false, 0))
	assert.Equal(t, Loading, StateOf(false, 3))
	assert.Equal(t, Empty, StateOf(true, 0))
	assert.Equal(t, Populated, StateOf(true, 2))
	assert.Equal(t, "empty", Empty.String())
}
