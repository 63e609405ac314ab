package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/model"
)

func newTestExtractor(opts Options) *Extractor {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewExtractor(NewDateParser(time.UTC), NewClassifier(DefaultLexicon()), opts, log)
}

func TestExtract(t *testing.T) {
	e := newTestExtractor(Options{BaseURL: "https://example.edu/firstyear/", Workers: 3})

	got, err := e.Extract(context.Background(), mustParse(t, samplePage), 2025)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Sections != 4 {
		t.Errorf("sections = %d, want 4", got.Sections)
	}
	if got.Items != 4 {
		t.Errorf("items = %d, want 4", got.Items)
	}
	if len(got.Failures) != 0 {
		t.Errorf("unexpected failures: %v", got.Failures)
	}

	want := []struct {
		title    string
		category model.Category
		event    bool
		url      string
	}{
		{"Reply to your offer by May 1", model.CategoryGeneral, false, "https://example.edu/reply"},
		{"Housing application due June 15", model.CategoryHousing, false, ""},
		{"Orientation week June 5 - June 13", model.CategoryOrientation, true, ""},
		{"Tuition payment due August 1", model.CategoryFinancial, false, ""},
	}
	if len(got.Candidates) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got.Candidates), len(want))
	}
	for i, w := range want {
		c := got.Candidates[i]
		if c.Title != w.title || c.RawTitle != w.title {
			t.Errorf("candidate %d: title = %q / raw %q, want %q", i, c.Title, c.RawTitle, w.title)
		}
		if c.Category != w.category {
			t.Errorf("candidate %d: category = %s, want %s", i, c.Category, w.category)
		}
		if c.IsEvent != w.event {
			t.Errorf("candidate %d: event = %v, want %v", i, c.IsEvent, w.event)
		}
		if c.URL != w.url {
			t.Errorf("candidate %d: url = %q, want %q", i, c.URL, w.url)
		}
	}

	housing := got.Candidates[1]
	if housing.Description != "Complete the housing form" {
		t.Errorf("description = %q", housing.Description)
	}
	if !housing.IsCritical {
		t.Error("housing item should be critical")
	}
}

func TestExtractNoMonthSections(t *testing.T) {
	e := newTestExtractor(Options{})
	doc := mustParse(t, `<html><body><h2>News</h2><ul><li>Something on June 4</li></ul></body></html>`)

	_, err := e.Extract(context.Background(), doc, 2025)
	if !IsSourceStructureError(err) {
		t.Fatalf("err = %v, want SourceStructureError", err)
	}
	var se *SourceStructureError
	if errors.As(err, &se) && se.Headings != 1 {
		t.Errorf("headings = %d, want 1", se.Headings)
	}
}

func TestExtractCancelled(t *testing.T) {
	e := newTestExtractor(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Extract(ctx, mustParse(t, samplePage), 2025); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExtractItemFailures(t *testing.T) {
	e := newTestExtractor(Options{})

	tests := []struct {
		text   string
		reason string
	}{
		{"June 4", "item too short"},
		{"Check your inbox for updates", "no valid date"},
		{"Deadline is June 31 this year", "no valid date"},
	}

	for _, tt := range tests {
		_, perr := e.ExtractItem(Item{Text: tt.text}, time.June, 2025)
		if perr == nil {
			t.Errorf("ExtractItem(%q) succeeded, want %q", tt.text, tt.reason)
			continue
		}
		if perr.Reason != tt.reason {
			t.Errorf("ExtractItem(%q) reason = %q, want %q", tt.text, perr.Reason, tt.reason)
		}
		if perr.Month != time.June {
			t.Errorf("month = %s, want June", perr.Month)
		}
	}
}

func TestExtractItemTitleRules(t *testing.T) {
	e := newTestExtractor(Options{DefaultTitle: "Important deadline"})

	long := strings.Repeat("word ", 30) + "due June 4"
	d, perr := e.ExtractItem(Item{Text: long}, time.June, 2025)
	if perr != nil {
		t.Fatalf("ExtractItem: %v", perr)
	}
	if n := len([]rune(d.Title)); n != 100 {
		t.Errorf("title length = %d, want 100", n)
	}
	if !strings.HasSuffix(d.Title, "...") {
		t.Errorf("title %q not truncated with ellipsis", d.Title)
	}

	// A date in a sentence of its own becomes the whole title.
	d, perr = e.ExtractItem(Item{Text: "Payment plan enrolment. June 4"}, time.June, 2025)
	if perr != nil {
		t.Fatalf("ExtractItem: %v", perr)
	}
	if d.Title != "June 4" {
		t.Errorf("title = %q, want June 4", d.Title)
	}
	if d.Description != "Payment plan enrolment" {
		t.Errorf("description = %q", d.Description)
	}
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		text, date  string
		title, desc string
	}{
		{"Pay tuition by June 4. Late fees apply!", "June 4", "Pay tuition by June 4", "Late fees apply"},
		{"First part. Second part", "June 4", "", "First part. Second part"},
		{"!!! June 4 !!!", "June 4", "June 4", ""},
	}

	for _, tt := range tests {
		title, desc := splitTitle(tt.text, tt.date)
		if title != tt.title || desc != tt.desc {
			t.Errorf("splitTitle(%q) = %q, %q; want %q, %q", tt.text, title, desc, tt.title, tt.desc)
		}
	}
}
