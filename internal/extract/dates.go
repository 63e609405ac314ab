package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateMatch is the date information found in one item's text.
type DateMatch struct {
	Due     time.Time
	Start   *time.Time
	IsEvent bool

	// Text is the substring the winning pattern matched.
	Text string
}

// Interpreter turns the submatches of a pattern into a DateMatch. It
// returns an error when the groups do not form a valid calendar date.
type Interpreter func(groups []string, defaultMonth time.Month, year int, loc *time.Location) (DateMatch, error)

// DatePattern pairs a regular expression with the interpreter for its
// submatches.
type DatePattern struct {
	Name      string
	Regexp    *regexp.Regexp
	Interpret Interpreter
}

var (
	monthDayRe     = regexp.MustCompile(`(?i)(\w+)\s+(\d+)`)
	monthDayYearRe = regexp.MustCompile(`(?i)(\w+)\s+(\d+),?\s+(\d{4})`)
	rangeRe        = regexp.MustCompile(`(?i)(\w+)\s+(\d+)\s*[-–]\s*(\w+)\s+(\d+)`)
)

// MonthDayPattern matches "June 4": a single date in the default year.
func MonthDayPattern() DatePattern {
	return DatePattern{Name: "month_day", Regexp: monthDayRe, Interpret: interpretMonthDay}
}

// MonthDayYearPattern matches "June 4, 2025": a single date with an
// explicit year.
func MonthDayYearPattern() DatePattern {
	return DatePattern{Name: "month_day_year", Regexp: monthDayYearRe, Interpret: interpretMonthDayYear}
}

// RangePattern matches "June 5 - June 13" with a hyphen or en dash.
func RangePattern() DatePattern {
	return DatePattern{Name: "range", Regexp: rangeRe, Interpret: interpretRange}
}

// DefaultPatterns returns the patterns in priority order: ranges first,
// then explicit years, then bare month-day. Because the first pattern
// with any valid match wins, the more specific shapes must come first or
// the month-day pattern would claim their leading "Month Day".
func DefaultPatterns() []DatePattern {
	return []DatePattern{RangePattern(), MonthDayYearPattern(), MonthDayPattern()}
}

// LegacyPatterns returns the patterns in the order the first scraper
// declared them. With this order "Month Day" always wins, so ranges and
// explicit years are never detected.
func LegacyPatterns() []DatePattern {
	return []DatePattern{MonthDayPattern(), MonthDayYearPattern(), RangePattern()}
}

// DateParser extracts due dates and ranges from free text.
type DateParser struct {
	patterns []DatePattern
	loc      *time.Location
}

// NewDateParser builds a parser that constructs dates in loc. With no
// patterns, DefaultPatterns is used.
func NewDateParser(loc *time.Location, patterns ...DatePattern) *DateParser {
	if loc == nil {
		loc = time.Local
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &DateParser{patterns: append([]DatePattern(nil), patterns...), loc: loc}
}

// Location returns the zone dates are constructed in.
func (p *DateParser) Location() *time.Location {
	return p.loc
}

// Parse tries every pattern in priority order against the whole text and
// returns the first valid match. Within a pattern, matches are tried from
// left to right; invalid calendar dates are skipped.
func (p *DateParser) Parse(text string, defaultMonth time.Month, year int) (DateMatch, bool) {
	for _, pat := range p.patterns {
		for _, groups := range pat.Regexp.FindAllStringSubmatch(text, -1) {
			dm, err := pat.Interpret(groups[1:], defaultMonth, year, p.loc)
			if err != nil {
				continue
			}
			dm.Text = groups[0]
			return dm, true
		}
	}
	return DateMatch{}, false
}

func interpretMonthDay(groups []string, defaultMonth time.Month, year int, loc *time.Location) (DateMatch, error) {
	due, err := endOfDay(year, monthOr(groups[0], defaultMonth), groups[1], loc)
	if err != nil {
		return DateMatch{}, err
	}
	return DateMatch{Due: due}, nil
}

func interpretMonthDayYear(groups []string, defaultMonth time.Month, _ int, loc *time.Location) (DateMatch, error) {
	year, err := strconv.Atoi(groups[2])
	if err != nil {
		return DateMatch{}, fmt.Errorf("parsing year %q: %w", groups[2], err)
	}
	due, err := endOfDay(year, monthOr(groups[0], defaultMonth), groups[1], loc)
	if err != nil {
		return DateMatch{}, err
	}
	return DateMatch{Due: due}, nil
}

func interpretRange(groups []string, defaultMonth time.Month, year int, loc *time.Location) (DateMatch, error) {
	startDay, err := calendarDate(year, monthOr(groups[0], defaultMonth), groups[1], loc)
	if err != nil {
		return DateMatch{}, err
	}
	due, err := endOfDay(year, monthOr(groups[2], defaultMonth), groups[3], loc)
	if err != nil {
		return DateMatch{}, err
	}
	// "December 28 - January 3" ends in the following year.
	if due.Before(startDay) {
		due = due.AddDate(1, 0, 0)
	}
	return DateMatch{Due: due, Start: &startDay, IsEvent: true}, nil
}

// monthOr resolves a month word, falling back to def.
func monthOr(word string, def time.Month) time.Month {
	if m, ok := MonthFromName(word); ok {
		return m
	}
	return def
}

// calendarDate builds midnight of the given day, rejecting dates that
// time.Date would normalize (e.g. June 31).
func calendarDate(year int, month time.Month, dayText string, loc *time.Location) (time.Time, error) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", dayText, err)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if day < 1 || t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %d-%02d-%s", year, month, dayText)
	}
	return t, nil
}

// endOfDay returns 23:59:59 of the given day.
func endOfDay(year int, month time.Month, dayText string, loc *time.Location) (time.Time, error) {
	t, err := calendarDate(year, month, dayText, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc), nil
}
