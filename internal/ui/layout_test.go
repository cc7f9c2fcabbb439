package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 22, l.ContentHeight())
	assert.Equal(t, 80, l.ContentWidth())
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 10)
	header := l.RenderHeader("qtplanner", "12:00")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.True(t, strings.Contains(header, "qtplanner"))
}

func TestFormatClock(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01 09:00:00", FormatClock(ts, seoul))
}
