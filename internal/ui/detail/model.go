package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the deadline detail view component.
type Model struct {
	deadline *model.Deadline
	viewport viewport.Model
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	// j/k, pgup/pgdn scroll the description.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.deadline == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No deadline selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	d := m.deadline
	if d == nil {
		return ""
	}
	now := m.now()

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(d.Title))

	badges := []string{theme.CategoryStyle(d.Category).Render(string(d.Category))}
	if d.IsCritical {
		badges = append(badges, theme.CriticalStyle.Render("CRITICAL"))
	}
	if d.IsEvent {
		badges = append(badges, theme.EventStyle.Render("EVENT"))
	}
	if d.IsOverdue(now) {
		badges = append(badges, theme.OverdueStyle.Render("PAST"))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-10s", label+":")), valStyle.Render(value))
	}

	if d.StartDate != nil {
		sections = append(sections, row("Starts", d.StartDate.Format("Mon Jan 2, 2006")))
	}
	sections = append(sections, row("Due", fmt.Sprintf("%s (%s)",
		d.DueDate.Format("Mon Jan 2, 2006"), countdown(d.DueDate, now))))
	if d.URL != "" {
		sections = append(sections, row("Link", d.URL))
	}
	if d.AIEnhanced && d.RawTitle != d.Title {
		sections = append(sections, row("Source", d.RawTitle))
	}
	sections = append(sections, row("Updated", d.UpdatedAt.Local().Format("2006-01-02 15:04")))

	sep := lipgloss.NewStyle().Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
	sections = append(sections, "", sep, "")

	body := d.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(20, m.width-4)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func countdown(due, now time.Time) string {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case due.Before(now):
		return "passed"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// SetDeadline updates the deadline being displayed.
func (m *Model) SetDeadline(d model.Deadline) {
	m.deadline = &d
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.deadline != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
