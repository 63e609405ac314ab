package duplicates

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/model"
)

func pairs() []match.DuplicatePair {
	due := time.Date(2025, time.June, 4, 23, 59, 59, 0, time.UTC)
	dl := func(id int64, title string) model.Deadline {
		return model.Deadline{ID: id, Title: title, DueDate: due, Category: model.CategoryHousing}
	}
	return []match.DuplicatePair{
		{First: dl(1, "Housing Application Deadline"), Second: dl(2, "Housing Application Reminder")},
		{First: dl(3, "Housing Deposit Payment Due"), Second: dl(5, "Housing Deposit Payment Final")},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMergeRequests(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(PairsLoadedMsg{Pairs: pairs()})

	tests := []struct {
		name string
		keys []tea.KeyMsg
		want MergeRequestMsg
	}{
		{"keep first of first pair", []tea.KeyMsg{runes("1")}, MergeRequestMsg{KeepID: 1, RemoveID: 2}},
		{"keep second of second pair", []tea.KeyMsg{runes("j"), runes("2")}, MergeRequestMsg{KeepID: 5, RemoveID: 3}},
		{"cursor stops at the end", []tea.KeyMsg{runes("j"), runes("j"), runes("j"), runes("1")}, MergeRequestMsg{KeepID: 3, RemoveID: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := m
			var cmd tea.Cmd
			for _, k := range tt.keys {
				cur, cmd = cur.Update(k)
			}
			if cmd == nil {
				t.Fatal("no command")
			}
			got, ok := cmd().(MergeRequestMsg)
			if !ok || got != tt.want {
				t.Errorf("msg = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeWithoutPairsIsNoop(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	if _, cmd := m.Update(runes("1")); cmd != nil {
		t.Error("merge with no pairs produced a command")
	}
}

func TestCursorClampedOnReload(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(PairsLoadedMsg{Pairs: pairs()})
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(PairsLoadedMsg{Pairs: pairs()[:1]})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrinking report", m.cursor)
	}
}

func TestView(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 24)
	if !strings.Contains(m.View(), "No likely duplicates") {
		t.Error("empty view missing placeholder")
	}

	m, _ = m.Update(PairsLoadedMsg{Pairs: pairs()})
	out := m.View()
	for _, want := range []string{"Possible duplicates (2)", "#1", "Housing Application Reminder", "#5"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = m.Update(PairsLoadedMsg{Err: errors.New("database is locked")})
	if !strings.Contains(m.View(), "database is locked") {
		t.Error("error not shown")
	}
}
