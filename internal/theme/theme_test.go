package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	SetMode(Dark)
	t.Cleanup(func() { SetMode(Dark) })

	assert.Equal(t, Light, Toggle())
	assert.Equal(t, Light, Current())
	assert.False(t, lipgloss.HasDarkBackground())

	assert.Equal(t, Dark, Toggle())
	assert.True(t, lipgloss.HasDarkBackground())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Light, ParseMode(" Light "))
	assert.Equal(t, Dark, ParseMode("dark"))
	assert.Equal(t, Dark, ParseMode(""))
}
