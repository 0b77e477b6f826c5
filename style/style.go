// Package style renders terminal text for the CLI with lipgloss.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reel-player/reel/color"
)

// Semantic colors of the CLI output.
var (
	ErrorColor  = lipgloss.Color("#f38ba8")
	AccentColor = lipgloss.Color("#cba6f7")
	TextColor   = lipgloss.Color("#cdd6f4")
	TrackColor  = lipgloss.Color("#45475a")
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer painting its input in c.
func Fg(c lipgloss.Color) func(string) string {
	s := New().Foreground(c)
	return func(text string) string { return s.Render(text) }
}

var (
	Faint = New().Faint(true).Render
	Bold  = New().Bold(true).Render
)

// ProgressBar draws percent (0 to 100) as a bar of width cells. Completed items are drawn green.
func ProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}

	filled := int(percent / 100 * float64(width))
	filled = max(0, min(width, filled))

	fill := color.Yellow
	if filled == width {
		fill = color.Green
	}

	return Fg(fill)(strings.Repeat("━", filled)) + Fg(TrackColor)(strings.Repeat("─", width-filled))
}
