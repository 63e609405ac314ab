package match

import (
	"strings"
	"testing"
)

func TestNormalizerTitle(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		title string
		want  string
	}{
		{"Submit Housing Application", "housing application"},
		{"Housing Application Due", "housing application"},
		{"Housing application due June 15", "housing application"},
		{"Orientation June 5 - June 13", "orientation"},
		{"Orientation week June 5–13", "orientation week"},
		{"Fall 2025 tuition payment", "fall tuition payment"},
		{"Reply by 5/30", "reply"},
		{"Move-in: Aug. 20th", "move-in"},
		{"  Final Transcript Due July 1, 2026!  ", "final transcript"},
		{"Deadline", ""},
	}

	for _, tt := range tests {
		if got := n.Title(tt.title); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestNormalizerCustomFiller(t *testing.T) {
	n := NewNormalizer("please")
	if got := n.Title("Please Submit Forms"); got != "submit forms" {
		t.Errorf("Title = %q, want %q", got, "submit forms")
	}
}

func TestStripDates(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pay by June 4", "pay"},
		{"Session 6/1 - 6/3 online", "session online"},
		{"Class of 2029", "class of"},
		{"No dates here", "no dates here"},
	}

	for _, tt := range tests {
		if got := collapse(StripDates(tt.in)); got != tt.want {
			t.Errorf("StripDates(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1},
		{"one empty", "", "Complete the form", 0},
		{"identical", "Complete the form", "complete THE form", 1},
		{"housing forms", "Complete the housing form", "Complete the housing preference form", 0.8},
		{"dates ignored", "Forms open June 1", "Forms open July 9", 1},
		{"disjoint", "alpha beta", "gamma delta", 0},
		{"half", "a b c", "a b d", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescriptionSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("DescriptionSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
