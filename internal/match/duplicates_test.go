package match

import (
	"testing"

	"github.com/nhle/deadline-harvester/internal/model"
)

func TestFindDuplicatePairs(t *testing.T) {
	records := []model.Deadline{
		{ID: 6, Title: "Room selection opens", Category: model.CategoryHousing},
		{ID: 1, Title: "Tuition payment due", Category: model.CategoryFinancial},
		{ID: 2, Title: "Tuition payment due", Category: model.CategoryFinancial},
		{ID: 3, Title: "Room selection closes", Category: model.CategoryHousing},
		{ID: 4, Title: "Room selection closes", Category: model.CategoryGeneral},
		{ID: 5, Title: "Short", Category: model.CategoryHousing},
		{ID: 7, Title: "Short", Category: model.CategoryHousing},
		{ID: 8, Title: "Shorter one", Category: model.CategoryHousing},
		{ID: 9, Title: "Shorter two", Category: model.CategoryHousing},
		{ID: 10, Title: "abcdef", Category: model.CategoryAcademic},
		{ID: 11, Title: "abcxyz", Category: model.CategoryAcademic},
	}

	got := FindDuplicatePairs(records)

	want := [][2]int64{
		{1, 2}, // Financial, exact title
		{3, 6}, // Housing, "Room selection closes" shares its first half
		{5, 7}, // Housing, "Short" exact even though short
		{8, 9}, // Housing, "Shorter one"/"Shorter two" share "Short"
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].First.ID != w[0] || got[i].Second.ID != w[1] {
			t.Errorf("pair %d = (%d, %d), want (%d, %d)", i, got[i].First.ID, got[i].Second.ID, w[0], w[1])
		}
	}
}

func TestFindDuplicatePairsEmpty(t *testing.T) {
	if got := FindDuplicatePairs(nil); len(got) != 0 {
		t.Errorf("got %d pairs from no records", len(got))
	}
}

func TestHalfPrefixMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Room selection opens", "Room selection closes", true},
		{"Room selection", "Room service desk", false},
		{"abcdefghij", "abcdefghij", false},
		{"Orientation week", "Orientation day", false},
	}

	for _, tt := range tests {
		if got := halfPrefixMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("halfPrefixMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
