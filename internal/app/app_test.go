package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/source"
	appsync "github.com/nhle/deadline-harvester/internal/sync"
	"github.com/nhle/deadline-harvester/internal/ui/duplicates"
	"github.com/nhle/deadline-harvester/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func newTestModel(t *testing.T, trigger func(context.Context) (*harvest.Result, error)) (Model, *harvest.Engine) {
	t.Helper()
	s := testutil.NewTestStore(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	engine := harvest.NewEngine(s, match.NewMatcher(match.Options{}), log)

	due := time.Now().Add(10 * 24 * time.Hour)
	for _, title := range []string{"Housing Application Deadline", "Housing Application Reminder"} {
		testutil.SeedDeadline(t, s, model.Deadline{RawTitle: title, Title: title, DueDate: due, Category: model.CategoryHousing})
	}

	return sized(New(Deps{Store: s, Engine: engine, Trigger: trigger})), engine
}

func TestRefreshTriggersHarvest(t *testing.T) {
	calls := 0
	m, _ := newTestModel(t, func(context.Context) (*harvest.Result, error) {
		calls++
		return &harvest.Result{Outcome: harvest.Outcome{Added: 3}, FinishedAt: time.Now()}, nil
	})

	next, cmd := m.Update(runes("r"))
	m = next.(Model)
	if !m.harvesting || cmd == nil {
		t.Fatal("refresh did not start a harvest")
	}
	if _, again := m.Update(runes("r")); again != nil {
		t.Error("second refresh while harvesting produced a command")
	}

	done := cmd()
	if calls != 1 {
		t.Fatalf("trigger called %d times", calls)
	}
	next, _ = m.Update(done)
	m = next.(Model)
	if m.harvesting {
		t.Error("still harvesting after result")
	}
	if !strings.Contains(m.statusLine(), "3 added") {
		t.Errorf("status line = %q", m.statusLine())
	}
	if !strings.HasPrefix(m.harvestState(), "last harvest") {
		t.Errorf("header state = %q", m.harvestState())
	}
}

func TestHarvestErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError string
		wantNote  string
	}{
		{"auth", &source.AuthError{SourceType: source.SourceTypeWeb, Message: "401"}, "credential set", ""},
		{"busy", appsync.ErrRunInProgress, "", "already running"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, nil)
			next, _ := m.Update(harvestDoneMsg{err: tt.err})
			m = next.(Model)
			if tt.wantError != "" && !strings.Contains(m.errMessage, tt.wantError) {
				t.Errorf("error message = %q", m.errMessage)
			}
			if tt.wantNote != "" && !strings.Contains(m.notice, tt.wantNote) {
				t.Errorf("notice = %q", m.notice)
			}
		})
	}
}

func TestRefreshWithoutTriggerIsReadOnly(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if _, cmd := m.Update(runes("r")); cmd != nil {
		t.Error("refresh without trigger produced a command")
	}
	if m.harvestState() != "read-only" {
		t.Errorf("header state = %q", m.harvestState())
	}
}

func TestDuplicateReviewMerges(t *testing.T) {
	m, engine := newTestModel(t, nil)

	next, cmd := m.Update(runes("d"))
	m = next.(Model)
	if m.currentView != ViewDuplicates || cmd == nil {
		t.Fatalf("view = %v, cmd nil = %v", m.currentView, cmd == nil)
	}
	loaded, ok := cmd().(duplicates.PairsLoadedMsg)
	if !ok || len(loaded.Pairs) != 1 {
		t.Fatalf("pairs = %+v", loaded)
	}
	next, _ = m.Update(loaded)
	m = next.(Model)

	next, cmd = m.Update(runes("1"))
	m = next.(Model)
	req, ok := cmd().(duplicates.MergeRequestMsg)
	if !ok {
		t.Fatal("keep-first did not request a merge")
	}
	next, cmd = m.Update(req)
	m = next.(Model)
	done := cmd()
	next, _ = m.Update(done)
	m = next.(Model)

	if m.errMessage != "" {
		t.Fatalf("merge error: %s", m.errMessage)
	}
	pairs, err := engine.FindDuplicates(context.Background())
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("%d pairs remain after merge", len(pairs))
	}
}

func TestSearchModeKeepsKeysLocal(t *testing.T) {
	m, _ := newTestModel(t, nil)
	next, _ := m.Update(runes("/"))
	m = next.(Model)

	_, cmd := m.Update(runes("q"))
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("typing q in the search prompt quit the app")
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	next, _ := m.Update(runes("?"))
	m = next.(Model)
	if m.currentView != ViewHelp {
		t.Fatalf("view = %v, want help", m.currentView)
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help view not rendered")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(Model).currentView != ViewList {
		t.Error("esc did not close help")
	}
}
