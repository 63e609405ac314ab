package model

import (
	"strings"
	"time"
)

// Category is the fixed classification of a deadline.
type Category string

const (
	CategoryMedical        Category = "Medical"
	CategoryAcademic       Category = "Academic"
	CategoryHousing        Category = "Housing"
	CategoryFinancial      Category = "Financial"
	CategoryOrientation    Category = "Orientation"
	CategoryAdministrative Category = "Administrative"
	CategoryRegistration   Category = "Registration"
	CategoryGeneral        Category = "General"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryMedical,
	CategoryAcademic,
	CategoryHousing,
	CategoryFinancial,
	CategoryOrientation,
	CategoryAdministrative,
	CategoryRegistration,
	CategoryGeneral,
}

// ParseCategory maps a case-insensitive name to a Category.
// Unknown names map to CategoryGeneral.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c
		}
	}
	return CategoryGeneral
}

// Deadline is the canonical record for a harvested deadline or event.
type Deadline struct {
	// ID is assigned by the store on insert and never reused.
	ID int64 `json:"id"`

	// RawTitle is the title as derived from the source item. Matching
	// against later harvests always uses this value.
	RawTitle string `json:"raw_title"`

	// Title is the display title. It equals RawTitle unless an external
	// collaborator has rewritten it.
	Title string `json:"title"`

	// Description holds the remaining sentences of the source item.
	Description string `json:"description"`

	// StartDate is set only when the item described a date range.
	StartDate *time.Time `json:"start_date,omitempty"`

	// DueDate is the end of the range, or the single date at end of day.
	DueDate time.Time `json:"due_date"`

	Category   Category `json:"category"`
	IsCritical bool     `json:"is_critical"`

	// IsEvent is true only when a two-date range was detected.
	IsEvent bool `json:"is_event"`

	// URL is the first hyperlink found in the source item.
	URL string `json:"url,omitempty"`

	// AIEnhanced reports whether Title was rewritten after harvest.
	AIEnhanced bool `json:"ai_enhanced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchTitle returns the title used for duplicate detection.
func (d Deadline) MatchTitle() string {
	if d.RawTitle != "" {
		return d.RawTitle
	}
	return d.Title
}

// IsOverdue reports whether the due date has passed at now.
func (d Deadline) IsOverdue(now time.Time) bool {
	return d.DueDate.Before(now)
}

// HarvestRun records the outcome of one harvest pass.
type HarvestRun struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Added         int       `json:"added"`
	Updated       int       `json:"updated"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	ParseFailures int       `json:"parse_failures"`
	Candidates    int       `json:"candidates"`
	Error         string    `json:"error,omitempty"`
}
