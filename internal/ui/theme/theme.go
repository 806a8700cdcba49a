package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cardiofola/internal/risk"
)

// Color palette
var (
	Primary   = lipgloss.Color("#3498DB") // Blue
	Secondary = lipgloss.Color("#9B59B6") // Purple
	Normal    = lipgloss.Color("#27AE60") // Green
	Warning   = lipgloss.Color("#F39C12") // Amber
	Danger    = lipgloss.Color("#E74C3C") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Components
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(22)
)

// LevelColor maps a presentation level (normal, warning, danger) to a color.
func LevelColor(level string) color.Color {
	switch level {
	case "normal":
		return Normal
	case "warning":
		return Warning
	case "danger":
		return Danger
	default:
		return TextDim
	}
}

// TierColor is LevelColor for a risk tier.
func TierColor(t risk.Tier) color.Color {
	return LevelColor(t.Level())
}

// TierBadge renders a tier label in its level color.
func TierBadge(t risk.Tier) string {
	return lipgloss.NewStyle().
		Foreground(TierColor(t)).
		Bold(true).
		Render(t.String())
}
