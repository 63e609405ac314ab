package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/deadline-harvester/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorTeal    = lipgloss.AdaptiveColor{Dark: "#38D9A9", Light: "#2C7A7B"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

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

// ErrorBarStyle replaces the status bar while a harvest error is shown.
var ErrorBarStyle = StatusBarStyle.
	Background(ColorRed)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

var (
	DimmedStyle   = lipgloss.NewStyle().Foreground(ColorGray)
	DueDateStyle  = lipgloss.NewStyle().Foreground(ColorTeal)
	OverdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorOrange)
	EventStyle    = lipgloss.NewStyle().Foreground(ColorMagenta)
)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// CategoryStyle returns a color-coded badge style for a deadline category.
func CategoryStyle(c model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch c {
	case model.CategoryMedical:
		return base.Foreground(ColorRed)
	case model.CategoryAcademic:
		return base.Foreground(ColorBlue)
	case model.CategoryHousing:
		return base.Foreground(ColorOrange)
	case model.CategoryFinancial:
		return base.Foreground(ColorGreen)
	case model.CategoryOrientation:
		return base.Foreground(ColorMagenta)
	case model.CategoryAdministrative:
		return base.Foreground(ColorYellow)
	case model.CategoryRegistration:
		return base.Foreground(ColorTeal)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryBadge returns the three-letter label shown in lists.
func CategoryBadge(c model.Category) string {
	s := string(c)
	if len(s) > 3 {
		s = s[:3]
	}
	return CategoryStyle(c).Render(s)
}
