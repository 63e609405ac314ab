package extract

import (
	"testing"

	"github.com/nhle/deadline-harvester/internal/model"
)

func TestClassifierCategory(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	tests := []struct {
		text string
		want model.Category
	}{
		{"Tuition payment due", model.CategoryFinancial},
		{"Submit immunization records", model.CategoryMedical},
		{"Final transcript due", model.CategoryAcademic},
		{"Take the AP exam", model.CategoryAcademic},
		{"Housing application due June 15", model.CategoryHousing},
		{"Complete registration online", model.CategoryRegistration},
		{"Submit your application", model.CategoryRegistration},
		{"Arrival day for new students", model.CategoryOrientation},
		{"Update your emergency contact", model.CategoryAdministrative},
		{"Enjoy the summer", model.CategoryGeneral},
		// Medical is declared before Academic.
		{"Health exam", model.CategoryMedical},
	}

	for _, tt := range tests {
		if got := c.Category(tt.text); got != tt.want {
			t.Errorf("Category(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestClassifierIsCritical(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	tests := []struct {
		text string
		want bool
	}{
		{"tuition payment due", true},
		{"MANDATORY orientation session", true},
		{"Important: bring your ID", true},
		{"Optional welcome picnic", false},
	}

	for _, tt := range tests {
		if got := c.IsCritical(tt.text); got != tt.want {
			t.Errorf("IsCritical(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifierCustomLexicon(t *testing.T) {
	c := NewClassifier(Lexicon{
		Categories: []CategoryKeywords{
			{model.CategoryHousing, []string{"lease"}},
		},
		Critical: []string{"asap"},
	})

	if got := c.Category("Sign the lease"); got != model.CategoryHousing {
		t.Errorf("Category = %s, want Housing", got)
	}
	if got := c.Category("Tuition payment"); got != model.CategoryGeneral {
		t.Errorf("Category = %s, want General", got)
	}
	if !c.IsCritical("reply ASAP") {
		t.Error("expected custom critical keyword to match")
	}
}
