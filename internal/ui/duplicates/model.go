// Package duplicates is the review screen for stored deadlines that look
// alike. Merging is requested from the parent; this view never writes.
package duplicates

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/theme"
)

// PairsLoadedMsg carries a fresh duplicate report.
type PairsLoadedMsg struct {
	Pairs []match.DuplicatePair
	Err   error
}

// MergeRequestMsg asks the parent to keep one deadline and delete the other.
type MergeRequestMsg struct {
	KeepID   int64
	RemoveID int64
}

// CloseMsg returns to the list.
type CloseMsg struct{}

// Model lists duplicate candidates with a cursor.
type Model struct {
	pairs  []match.DuplicatePair
	err    error
	cursor int
	keys   *keys.KeyMap
	width  int
	height int
}

func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Update handles messages for the review screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PairsLoadedMsg:
		m.pairs = msg.Pairs
		m.err = msg.Err
		if m.cursor >= len(m.pairs) {
			m.cursor = max(0, len(m.pairs)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.pairs)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.KeepFirst):
			return m, m.merge(false)
		case key.Matches(msg, m.keys.KeepSecond):
			return m, m.merge(true)
		}
	}
	return m, nil
}

func (m Model) merge(keepSecond bool) tea.Cmd {
	if len(m.pairs) == 0 {
		return nil
	}
	p := m.pairs[m.cursor]
	req := MergeRequestMsg{KeepID: p.First.ID, RemoveID: p.Second.ID}
	if keepSecond {
		req = MergeRequestMsg{KeepID: p.Second.ID, RemoveID: p.First.ID}
	}
	return func() tea.Msg { return req }
}

// View renders the pairs, two lines each.
func (m Model) View() string {
	center := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.err != nil {
		return center.Foreground(theme.ColorRed).Render("Could not scan for duplicates:\n" + m.err.Error())
	}
	if len(m.pairs) == 0 {
		return center.Render("No likely duplicates.")
	}

	lines := []string{theme.HeaderStyle.Render(fmt.Sprintf("Possible duplicates (%d)", len(m.pairs))), ""}
	for i, p := range m.pairs {
		block := lipgloss.JoinVertical(lipgloss.Left,
			"1 "+describe(p.First),
			"2 "+describe(p.Second),
		)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(block))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(block))
		}
	}
	return strings.Join(lines, "\n")
}

func describe(d model.Deadline) string {
	return fmt.Sprintf("#%d %s %s  %s",
		d.ID, theme.CategoryBadge(d.Category), d.Title,
		theme.DueDateStyle.Render(d.DueDate.Format("Jan 02, 2006")))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
