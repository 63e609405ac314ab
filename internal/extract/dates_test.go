package extract

import (
	"testing"
	"time"
)

func TestDateParserParse(t *testing.T) {
	utc := time.UTC
	p := NewDateParser(utc)

	tests := []struct {
		name      string
		text      string
		month     time.Month
		wantDue   time.Time
		wantStart *time.Time
		wantEvent bool
		wantText  string
	}{
		{
			name:     "month day",
			text:     "Medical forms due June 4",
			month:    time.June,
			wantDue:  time.Date(2025, time.June, 4, 23, 59, 59, 0, utc),
			wantText: "June 4",
		},
		{
			name:     "abbreviated month",
			text:     "Submit transcript by Aug 15",
			month:    time.June,
			wantDue:  time.Date(2025, time.August, 15, 23, 59, 59, 0, utc),
			wantText: "Aug 15",
		},
		{
			name:     "explicit year",
			text:     "Final transcript due July 1, 2026",
			month:    time.June,
			wantDue:  time.Date(2026, time.July, 1, 23, 59, 59, 0, utc),
			wantText: "July 1, 2026",
		},
		{
			name:      "range with hyphen",
			text:      "Orientation June 5 - June 13",
			month:     time.June,
			wantDue:   time.Date(2025, time.June, 13, 23, 59, 59, 0, utc),
			wantStart: ptr(time.Date(2025, time.June, 5, 0, 0, 0, 0, utc)),
			wantEvent: true,
			wantText:  "June 5 - June 13",
		},
		{
			name:      "range with en dash and no spaces",
			text:      "Move-in August 20–August 22",
			month:     time.August,
			wantDue:   time.Date(2025, time.August, 22, 23, 59, 59, 0, utc),
			wantStart: ptr(time.Date(2025, time.August, 20, 0, 0, 0, 0, utc)),
			wantEvent: true,
			wantText:  "August 20–August 22",
		},
		{
			name:      "range across new year",
			text:      "Winter break December 20 - January 3",
			month:     time.December,
			wantDue:   time.Date(2026, time.January, 3, 23, 59, 59, 0, utc),
			wantStart: ptr(time.Date(2025, time.December, 20, 0, 0, 0, 0, utc)),
			wantEvent: true,
			wantText:  "December 20 - January 3",
		},
		{
			name:     "unknown month word uses section month",
			text:     "Deposit due 15",
			month:    time.May,
			wantDue:  time.Date(2025, time.May, 15, 23, 59, 59, 0, utc),
			wantText: "due 15",
		},
		{
			name:     "invalid date skipped for next match",
			text:     "Not June 31 but July 2",
			month:    time.June,
			wantDue:  time.Date(2025, time.July, 2, 23, 59, 59, 0, utc),
			wantText: "July 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.text, tt.month, 2025)
			if !ok {
				t.Fatalf("Parse(%q) found no date", tt.text)
			}
			if !got.Due.Equal(tt.wantDue) {
				t.Errorf("due = %v, want %v", got.Due, tt.wantDue)
			}
			if got.IsEvent != tt.wantEvent {
				t.Errorf("event = %v, want %v", got.IsEvent, tt.wantEvent)
			}
			switch {
			case tt.wantStart == nil && got.Start != nil:
				t.Errorf("start = %v, want none", *got.Start)
			case tt.wantStart != nil && (got.Start == nil || !got.Start.Equal(*tt.wantStart)):
				t.Errorf("start = %v, want %v", got.Start, *tt.wantStart)
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestDateParserNoDate(t *testing.T) {
	p := NewDateParser(time.UTC)

	for _, text := range []string{
		"Check your email regularly",
		"June 31",
		"February 30 deadline",
	} {
		if dm, ok := p.Parse(text, time.June, 2025); ok {
			t.Errorf("Parse(%q) = %+v, want no match", text, dm)
		}
	}
}

func TestDateParserStartNotAfterDue(t *testing.T) {
	p := NewDateParser(time.UTC)
	dm, ok := p.Parse("Camp June 13 - June 13", time.June, 2025)
	if !ok {
		t.Fatal("expected a match")
	}
	if dm.Start == nil || dm.Start.After(dm.Due) {
		t.Errorf("start %v after due %v", dm.Start, dm.Due)
	}
}

func TestLegacyPatternsPreferMonthDay(t *testing.T) {
	p := NewDateParser(time.UTC, LegacyPatterns()...)
	dm, ok := p.Parse("Orientation June 5 - June 13", time.June, 2025)
	if !ok {
		t.Fatal("expected a match")
	}
	if dm.IsEvent || dm.Start != nil {
		t.Errorf("legacy order detected a range: %+v", dm)
	}
	if want := time.Date(2025, time.June, 5, 23, 59, 59, 0, time.UTC); !dm.Due.Equal(want) {
		t.Errorf("due = %v, want %v", dm.Due, want)
	}
}

func TestDateParserLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	p := NewDateParser(loc)
	dm, ok := p.Parse("Due June 4", time.June, 2025)
	if !ok {
		t.Fatal("expected a match")
	}
	if dm.Due.Location() != loc {
		t.Errorf("location = %v, want %v", dm.Due.Location(), loc)
	}
	if p.Location() != loc {
		t.Errorf("Location() = %v, want %v", p.Location(), loc)
	}
}

func ptr(t time.Time) *time.Time { return &t }
