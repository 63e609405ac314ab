package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/deadline-harvester/internal/theme"
)

// Layout manages the header, content and status bar dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-line header and status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(0, l.Height-l.HeaderHeight-l.StatusBarHeight)
}

// RenderHeader renders the title on the left and the harvest state on
// the right, padded to the full width.
func (l Layout) RenderHeader(title, harvestState string) string {
	return l.spread(theme.HeaderStyle, title, harvestState)
}

// RenderStatusBar renders key hints, or an error in the error style.
func (l Layout) RenderStatusBar(hints string, isError bool) string {
	style := theme.StatusBarStyle
	if isError {
		style = theme.ErrorBarStyle
	}
	return l.spread(style, hints, "")
}

// spread places left and right on one line of the given style.
func (l Layout) spread(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := max(0, l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered))
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
