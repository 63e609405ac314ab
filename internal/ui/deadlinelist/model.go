package deadlinelist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/theme"
)

// Reader is the part of the store the list needs.
type Reader interface {
	ListDeadlines(ctx context.Context, activeOnly bool) ([]model.Deadline, error)
	SearchByTitlePrefix(ctx context.Context, prefix string) ([]model.Deadline, error)
}

// DeadlinesLoadedMsg is sent when deadlines have been loaded from the store.
type DeadlinesLoadedMsg struct {
	Deadlines []model.Deadline
	Err       error
}

// SelectedDeadlineMsg is sent when the user opens a deadline.
type SelectedDeadlineMsg struct {
	Deadline model.Deadline
}

// Filter narrows the loaded deadlines before display.
type Filter struct {
	// Category is empty for every category.
	Category     model.Category
	CriticalOnly bool
	Query        string
}

// Apply returns the deadlines that pass f, preserving order.
func (f Filter) Apply(in []model.Deadline) []model.Deadline {
	out := make([]model.Deadline, 0, len(in))
	for _, d := range in {
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.CriticalOnly && !d.IsCritical {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Summary describes the active filters, or "" when none are set.
func (f Filter) Summary(showAll bool) string {
	var parts []string
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("title %q", f.Query))
	}
	if f.Category != "" {
		parts = append(parts, string(f.Category))
	}
	if f.CriticalOnly {
		parts = append(parts, "critical")
	}
	if showAll {
		parts = append(parts, "including past")
	}
	return strings.Join(parts, ", ")
}

// Model is the main deadline list view component.
type Model struct {
	list        list.Model
	store       Reader
	keys        *keys.KeyMap
	filter      Filter
	showAll     bool
	categoryIdx int
	searchMode  bool
	searchInput textinput.Model
	loadErr     error
	width       int
	height      int
}

// New creates a new deadline list model.
func New(s Reader, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{now: time.Now}, width, height-2)
	l.Title = "Deadlines"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "title prefix..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		categoryIdx: -1,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of deadlines.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DeadlinesLoadedMsg:
		m.loadErr = msg.Err
		shown := m.filter.Apply(msg.Deadlines)
		items := make([]list.Item, len(shown))
		for i, d := range shown {
			items[i] = DeadlineItem{Deadline: d}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		return m, m.Load()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(DeadlineItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedDeadlineMsg{Deadline: item.Deadline}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.ToggleAll):
		m.showAll = !m.showAll
		return m, m.Load()

	case key.Matches(msg, m.keys.CycleCategory):
		m.cycleCategory()
		return m, m.Load()

	case key.Matches(msg, m.keys.CriticalOnly):
		m.filter.CriticalOnly = !m.filter.CriticalOnly
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// cycleCategory steps through every category and then back to all.
func (m *Model) cycleCategory() {
	m.categoryIdx++
	if m.categoryIdx >= len(model.Categories) {
		m.categoryIdx = -1
		m.filter.Category = ""
		return
	}
	m.filter.Category = model.Categories[m.categoryIdx]
}

// View renders the deadline list.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loadErr != nil:
		return style.Foreground(theme.ColorRed).Render("Could not load deadlines:\n" + m.loadErr.Error())
	case m.filter.Summary(false) != "":
		return style.Render("No matching deadlines.\nTry adjusting your filters.")
	default:
		return style.Render("No upcoming deadlines.\n\nPress r to harvest the source page.")
	}
}

// Load returns a tea.Cmd that queries the store with the current filter.
func (m Model) Load() tea.Cmd {
	s := m.store
	query := m.filter.Query
	activeOnly := !m.showAll
	return func() tea.Msg {
		ctx := context.Background()
		var (
			deadlines []model.Deadline
			err       error
		)
		if query != "" {
			deadlines, err = s.SearchByTitlePrefix(ctx, query)
		} else {
			deadlines, err = s.ListDeadlines(ctx, activeOnly)
		}
		return DeadlinesLoadedMsg{Deadlines: deadlines, Err: err}
	}
}

// Searching reports whether the search prompt has focus.
func (m Model) Searching() bool { return m.searchMode }

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	return m.filter.Summary(m.showAll)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
