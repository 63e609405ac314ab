// Package app is the terminal deadline browser: a Bubble Tea root model
// that routes between the list, detail, duplicate review and help views.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/source"
	appsync "github.com/nhle/deadline-harvester/internal/sync"
	"github.com/nhle/deadline-harvester/internal/ui"
	"github.com/nhle/deadline-harvester/internal/ui/deadlinelist"
	"github.com/nhle/deadline-harvester/internal/ui/detail"
	"github.com/nhle/deadline-harvester/internal/ui/duplicates"
	helpview "github.com/nhle/deadline-harvester/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewDuplicates
	ViewHelp
)

// Deps are the collaborators of the browser.
type Deps struct {
	Store  deadlinelist.Reader
	Engine *harvest.Engine

	// Trigger runs a harvest. Nil disables the refresh key.
	Trigger func(ctx context.Context) (*harvest.Result, error)
}

type harvestDoneMsg struct {
	result *harvest.Result
	err    error
}

type mergeDoneMsg struct {
	keep, remove int64
	err          error
}

// Model is the root Bubble Tea model.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	list       deadlinelist.Model
	detail     detail.Model
	duplicates duplicates.Model
	helpView   helpview.Model

	ready      bool
	harvesting bool
	lastResult *harvest.Result
	notice     string
	errMessage string
}

// New creates the root model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		deps:        d,
		currentView: ViewList,
		keys:        k,
		list:        deadlinelist.New(d.Store, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		duplicates:  duplicates.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the deadline list.
func (m Model) Init() tea.Cmd {
	return m.list.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.duplicates.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m, nil

	case harvestDoneMsg:
		m.harvesting = false
		m.lastResult = msg.result
		switch {
		case errors.Is(msg.err, appsync.ErrRunInProgress):
			m.notice = "a scheduled harvest is already running"
		case source.IsAuthError(msg.err):
			m.errMessage = msg.err.Error() + " (run: deadlines credential set)"
		case msg.err != nil:
			m.errMessage = "harvest failed: " + msg.err.Error()
		default:
			m.errMessage = ""
			m.notice = summarize(msg.result)
		}
		return m, m.list.Load()

	case mergeDoneMsg:
		if msg.err != nil {
			m.errMessage = fmt.Sprintf("merge failed: %v", msg.err)
		} else {
			m.errMessage = ""
			m.notice = fmt.Sprintf("kept #%d, removed #%d", msg.keep, msg.remove)
		}
		return m, tea.Batch(m.loadDuplicates(), m.list.Load())

	case deadlinelist.SelectedDeadlineMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetDeadline(msg.Deadline)
		return m, nil

	case detail.BackMsg, duplicates.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case duplicates.MergeRequestMsg:
		return m, m.merge(msg.KeepID, msg.RemoveID)

	case duplicates.PairsLoadedMsg:
		m.duplicates, _ = m.duplicates.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		searching := m.currentView == ViewList && m.list.Searching()
		if !searching && (m.currentView == ViewList || m.currentView == ViewHelp) {
			if model, cmd, handled := m.handleGlobalKey(msg); handled {
				return model, cmd
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that act outside the focused view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
		m.currentView = m.previousView
		return m, nil, true

	case m.currentView != ViewList:
		return m, nil, false

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Refresh):
		if m.harvesting || m.deps.Trigger == nil {
			return m, nil, true
		}
		m.harvesting = true
		m.notice = ""
		return m, m.harvest(), true

	case key.Matches(msg, m.keys.Duplicates):
		if m.deps.Engine == nil {
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewDuplicates
		return m, m.loadDuplicates(), true
	}
	return m, nil, false
}

func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewDuplicates:
		m.duplicates, cmd = m.duplicates.Update(msg)
	}
	return m, cmd
}

func (m Model) harvest() tea.Cmd {
	trigger := m.deps.Trigger
	return func() tea.Msg {
		res, err := trigger(context.Background())
		return harvestDoneMsg{result: res, err: err}
	}
}

func (m Model) loadDuplicates() tea.Cmd {
	engine := m.deps.Engine
	if engine == nil {
		return nil
	}
	return func() tea.Msg {
		pairs, err := engine.FindDuplicates(context.Background())
		return duplicates.PairsLoadedMsg{Pairs: pairs, Err: err}
	}
}

func (m Model) merge(keep, remove int64) tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		err := engine.Merge(context.Background(), keep, remove)
		return mergeDoneMsg{keep: keep, remove: remove, err: err}
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := m.layout.RenderHeader("Deadlines", m.harvestState())
	status := m.layout.RenderStatusBar(m.statusLine(), m.errMessage != "")
	return m.layout.RenderWithFrame(header, m.renderContent(), status)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewDuplicates:
		return m.duplicates.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.list.View()
	}
}

// harvestState describes the last or running harvest for the header.
func (m Model) harvestState() string {
	switch {
	case m.harvesting:
		return "harvesting..."
	case m.lastResult != nil:
		return "last harvest " + m.lastResult.FinishedAt.Local().Format("Jan 02 15:04")
	case m.deps.Trigger == nil:
		return "read-only"
	default:
		return "r to harvest"
	}
}

// statusLine returns the error, a notice, or key hints for the view.
func (m Model) statusLine() string {
	if m.errMessage != "" && m.currentView == ViewList {
		return m.errMessage
	}
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewDuplicates:
		return "j/k move | 1 keep first | 2 keep second | esc back"
	}
	if m.notice != "" {
		return m.notice
	}
	if f := m.list.FilterSummary(); f != "" {
		return "showing " + f
	}
	return "q quit | ? help | / search | r harvest | d duplicates | tab category | a all"
}

func summarize(r *harvest.Result) string {
	if r == nil {
		return "harvest finished"
	}
	return fmt.Sprintf("harvested %d candidates: %d added, %d updated, %d unchanged, %d failed",
		len(r.Candidates), r.Added, r.Updated, r.Skipped, r.Failed)
}
