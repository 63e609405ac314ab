package deadlinelist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/theme"
)

// DeadlineItem wraps a model.Deadline so it can be used in a bubbles/list.
type DeadlineItem struct {
	Deadline model.Deadline
}

// FilterValue returns the string used for fuzzy filtering.
func (i DeadlineItem) FilterValue() string { return i.Deadline.Title }

func (i DeadlineItem) Title() string { return i.Deadline.Title }

// Description returns a short summary line for the list.
func (i DeadlineItem) Description() string {
	return fmt.Sprintf("%s | %s", i.Deadline.Category, i.Deadline.DueDate.Format("Jan 02"))
}

// ItemDelegate implements list.ItemDelegate for rendering deadline rows.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single deadline line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(DeadlineItem)
	if !ok {
		return
	}
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}
	fmt.Fprint(w, renderLine(it.Deadline, now, index == m.Index()))
}

// renderLine formats one deadline: marker, category badge, title, dates
// and a countdown.
func renderLine(dl model.Deadline, now time.Time, selected bool) string {
	marker := "○"
	if dl.IsCritical {
		marker = theme.CriticalStyle.Render("!")
	}

	title := dl.Title
	if dl.AIEnhanced {
		title += " *"
	}

	when := dl.DueDate.Format("Jan 02")
	if dl.IsEvent && dl.StartDate != nil {
		when = theme.EventStyle.Render(dl.StartDate.Format("Jan 02") + " to " + dl.DueDate.Format("Jan 02"))
	} else {
		when = theme.DueDateStyle.Render(when)
	}

	countdown := theme.DimmedStyle.Render(Countdown(dl.DueDate, now))
	if dl.IsOverdue(now) {
		countdown = theme.OverdueStyle.Render("PAST")
	}

	line := fmt.Sprintf("%s %s %s  %s  %s",
		marker, theme.CategoryBadge(dl.Category), title, when, countdown)

	if dl.IsOverdue(now) {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// Countdown returns a human-friendly time remaining until due.
func Countdown(due, now time.Time) string {
	d := due.Sub(now)
	switch {
	case d < 0:
		return "past"
	case d < time.Hour:
		return "due now"
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "in 1h"
		}
		return fmt.Sprintf("in %dh", hrs)
	case d < 14*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "in 1d"
		}
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("in %dw", int(d.Hours()/24/7))
	}
}
