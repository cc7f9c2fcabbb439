package theme

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Mode selects which half of every adaptive color pair is rendered.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

var (
	modeMu sync.Mutex
	mode   = Dark
)

// ParseMode maps a config value to a Mode. Anything but "light" is dark.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Light)) {
		return Light
	}
	return Dark
}

// SetMode switches the palette for all subsequent renders.
func SetMode(m Mode) {
	modeMu.Lock()
	defer modeMu.Unlock()
	mode = m
	lipgloss.SetHasDarkBackground(m == Dark)
}

// Current returns the active mode.
func Current() Mode {
	modeMu.Lock()
	defer modeMu.Unlock()
	return mode
}

// Toggle flips between dark and light and returns the new mode. The
// choice lives only for the current process.
func Toggle() Mode {
	next := Light
	if Current() == Light {
		next = Dark
	}
	SetMode(next)
	return next
}

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps bordered content areas such as help and the palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// TitleStyle renders view titles above content.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// DimmedStyle renders secondary text such as descriptions.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DateStyle renders entry dates.
var DateStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// OwnerBadgeStyle marks rows owned by the signed-in user.
var OwnerBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta)

// CounterStyle renders QT counters.
var CounterStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// BannerStyle renders transient success confirmations.
var BannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen).
	Padding(0, 1)

// ErrorStyle renders inline error text.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// AlertStyle frames a blocking alert that must be dismissed.
var AlertStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorRed)

// NoticeStyle renders short-lived status notices.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Italic(true)

// CenteredStyle returns a style that centers content in a width x height box.
func CenteredStyle(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(ColorGray)
}
