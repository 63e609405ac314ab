package deadlinelist

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/deadline-harvester/internal/keys"
	"github.com/nhle/deadline-harvester/internal/model"
)

type fakeReader struct {
	list       []model.Deadline
	activeOnly []bool
	prefixes   []string
}

func (f *fakeReader) ListDeadlines(_ context.Context, activeOnly bool) ([]model.Deadline, error) {
	f.activeOnly = append(f.activeOnly, activeOnly)
	return f.list, nil
}

func (f *fakeReader) SearchByTitlePrefix(_ context.Context, prefix string) ([]model.Deadline, error) {
	f.prefixes = append(f.prefixes, prefix)
	return f.list[:1], nil
}

func sample() []model.Deadline {
	due := time.Date(2025, time.June, 4, 23, 59, 59, 0, time.UTC)
	return []model.Deadline{
		{ID: 1, Title: "Immunization Records", Category: model.CategoryMedical, IsCritical: true, DueDate: due},
		{ID: 2, Title: "Housing Application", Category: model.CategoryHousing, IsCritical: true, DueDate: due},
		{ID: 3, Title: "Orientation Week", Category: model.CategoryOrientation, DueDate: due},
	}
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"none", Filter{}, []int64{1, 2, 3}},
		{"category", Filter{Category: model.CategoryHousing}, []int64{2}},
		{"critical", Filter{CriticalOnly: true}, []int64{1, 2}},
		{"both", Filter{Category: model.CategoryOrientation, CriticalOnly: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(sample())
			if len(got) != len(tt.want) {
				t.Fatalf("got %d deadlines, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.ID != tt.want[i] {
					t.Errorf("got[%d].ID = %d, want %d", i, d.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterSummary(t *testing.T) {
	if got := (Filter{}).Summary(false); got != "" {
		t.Errorf("empty summary = %q", got)
	}
	got := Filter{Category: model.CategoryHousing, CriticalOnly: true, Query: "hou"}.Summary(true)
	for _, want := range []string{`"hou"`, "Housing", "critical", "including past"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want string
	}{
		{now.Add(-time.Minute), "past"},
		{now.Add(30 * time.Minute), "due now"},
		{now.Add(90 * time.Minute), "in 1h"},
		{now.Add(5 * time.Hour), "in 5h"},
		{now.Add(30 * time.Hour), "in 1d"},
		{now.Add(3 * 24 * time.Hour), "in 3d"},
		{now.Add(21 * 24 * time.Hour), "in 3w"},
	}
	for _, tt := range tests {
		if got := Countdown(tt.due, now); got != tt.want {
			t.Errorf("Countdown(%s) = %q, want %q", tt.due.Sub(now), got, tt.want)
		}
	}
}

func TestLoadRespectsShowAllAndQuery(t *testing.T) {
	r := &fakeReader{list: sample()}
	m := New(r, keys.DefaultKeyMap(), 80, 24)

	msg := m.Load()().(DeadlinesLoadedMsg)
	if len(msg.Deadlines) != 3 || len(r.activeOnly) != 1 || !r.activeOnly[0] {
		t.Fatalf("initial load: %d deadlines, activeOnly calls %v", len(msg.Deadlines), r.activeOnly)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatal("toggling show-all produced no load command")
	}
	m.Load()()
	if got := r.activeOnly[len(r.activeOnly)-1]; got {
		t.Error("show-all load still requested active deadlines only")
	}

	m.filter.Query = "imm"
	msg = m.Load()().(DeadlinesLoadedMsg)
	if len(r.prefixes) != 1 || r.prefixes[0] != "imm" || len(msg.Deadlines) != 1 {
		t.Errorf("search prefixes = %v, got %d deadlines", r.prefixes, len(msg.Deadlines))
	}
}

func TestUpdateAppliesFilterToLoadedItems(t *testing.T) {
	m := New(&fakeReader{}, keys.DefaultKeyMap(), 80, 24)
	m.filter.CriticalOnly = true

	m, _ = m.Update(DeadlinesLoadedMsg{Deadlines: sample()})
	if got := len(m.list.Items()); got != 2 {
		t.Errorf("list has %d items, want 2", got)
	}
}

func TestCycleCategoryWrapsToAll(t *testing.T) {
	m := New(&fakeReader{}, keys.DefaultKeyMap(), 80, 24)
	for i := range model.Categories {
		m.cycleCategory()
		if m.filter.Category != model.Categories[i] {
			t.Fatalf("step %d category = %q", i, m.filter.Category)
		}
	}
	m.cycleCategory()
	if m.filter.Category != "" {
		t.Errorf("category after full cycle = %q, want all", m.filter.Category)
	}
}
