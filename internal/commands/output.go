package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/theme"
)

const dateLayout = "2006-01-02"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func flags(d model.Deadline) string {
	var f []string
	if d.IsCritical {
		f = append(f, "critical")
	}
	if d.IsEvent {
		f = append(f, "event")
	}
	if d.AIEnhanced {
		f = append(f, "rewritten")
	}
	return strings.Join(f, ",")
}

func when(d model.Deadline) string {
	if d.StartDate != nil {
		return d.StartDate.Format(dateLayout) + " to " + d.DueDate.Format(dateLayout)
	}
	return d.DueDate.Format(dateLayout)
}

func printDeadlines(w io.Writer, deadlines []model.Deadline) {
	if len(deadlines) == 0 {
		fmt.Fprintln(w, "No deadlines.")
		return
	}
	t := newTable("ID", "Due", "Category", "Title", "Flags")
	for _, d := range deadlines {
		t.Row(strconv.FormatInt(d.ID, 10), when(d), string(d.Category), d.Title, flags(d))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d deadline(s)\n", len(deadlines))
}

func printPairs(w io.Writer, pairs []match.DuplicatePair) {
	if len(pairs) == 0 {
		fmt.Fprintln(w, "No likely duplicates.")
		return
	}
	t := newTable("Keep?", "ID", "Due", "Category", "Title")
	for i, p := range pairs {
		for j, d := range []model.Deadline{p.First, p.Second} {
			label := ""
			if j == 0 {
				label = fmt.Sprintf("pair %d", i+1)
			}
			t.Row(label, strconv.FormatInt(d.ID, 10), d.DueDate.Format(dateLayout), string(d.Category), d.Title)
		}
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, "Merge a pair with: deadlines merge <keep-id> <remove-id>")
}

func printRuns(w io.Writer, runs []model.HarvestRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No harvest runs recorded.")
		return
	}
	t := newTable("Started", "Took", "Candidates", "Added", "Updated", "Skipped", "Failed", "Parse errors", "Error")
	for _, r := range runs {
		t.Row(
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(r.Candidates),
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.ParseFailures),
			r.Error,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
