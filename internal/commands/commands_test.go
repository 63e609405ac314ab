package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/deadline-harvester/internal/model"
)

const page = `<html><body>
<h3>June</h3>
<ul>
  <li>Housing application due June 15. Complete the housing form.</li>
  <li>Orientation week June 5 - June 13</li>
  <li>TBD</li>
</ul>
<h3>August</h3>
<ul>
  <li>Tuition payment due August 1. See the <a href="/bursar">bursar page</a>.</li>
</ul>
</body></html>`

// setup writes a page and a config pointing at it, and returns the
// config path.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pagePath := filepath.Join(dir, "dates.html")
	if err := os.WriteFile(pagePath, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`source:
  url: %s
  base_url: https://example.edu/dates
database:
  url: %s
harvest:
  timezone: UTC
log:
  level: error
`, pagePath, filepath.Join(dir, "deadlines.db"))

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("deadlines %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func listAll(t *testing.T, cfgPath string) []model.Deadline {
	t.Helper()
	var deadlines []model.Deadline
	if err := json.Unmarshal([]byte(mustExecute(t, cfgPath, "list", "--all", "--json")), &deadlines); err != nil {
		t.Fatalf("decoding list output: %v", err)
	}
	return deadlines
}

func TestScrapeListMerge(t *testing.T) {
	cfgPath := setup(t)

	out := mustExecute(t, cfgPath, "scrape")
	if !strings.Contains(out, "Harvested 3 candidate(s)") || !strings.Contains(out, "added:     3") {
		t.Errorf("first scrape output:\n%s", out)
	}

	out = mustExecute(t, cfgPath, "scrape")
	if !strings.Contains(out, "added:     0") || !strings.Contains(out, "unchanged: 3") {
		t.Errorf("second scrape output:\n%s", out)
	}

	deadlines := listAll(t, cfgPath)
	if len(deadlines) != 3 {
		t.Fatalf("stored %d deadlines, want 3", len(deadlines))
	}
	var bursar bool
	for _, d := range deadlines {
		if d.URL == "https://example.edu/bursar" {
			bursar = true
		}
	}
	if !bursar {
		t.Error("relative link not resolved against base_url")
	}

	keep, remove := deadlines[0].ID, deadlines[1].ID
	out = mustExecute(t, cfgPath, "merge", fmt.Sprint(keep), fmt.Sprint(remove), "--yes")
	if !strings.Contains(out, fmt.Sprintf("Kept #%d, removed #%d", keep, remove)) {
		t.Errorf("merge output: %s", out)
	}
	if got := len(listAll(t, cfgPath)); got != 2 {
		t.Errorf("after merge %d deadlines, want 2", got)
	}

	out = mustExecute(t, cfgPath, "runs")
	if strings.Contains(out, "No harvest runs") {
		t.Errorf("runs output:\n%s", out)
	}

	out = mustExecute(t, cfgPath, "search", "Tuition")
	if !strings.Contains(out, "1 deadline(s)") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	cfgPath := setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"upcoming zero days", []string{"upcoming", "--days", "0"}, "--days must be positive"},
		{"cleanup negative days", []string{"cleanup", "--days", "-1", "--yes"}, "must not be negative"},
		{"merge bad id", []string{"merge", "x", "2", "--yes"}, `invalid keep id "x"`},
		{"merge same id", []string{"merge", "1", "1", "--yes"}, "deadline 1"},
		{"search without prefix", []string{"search"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, cfgPath, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestScrapeWithoutSource(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("database:\n  url: %s\nlog:\n  level: error\n", filepath.Join(dir, "d.db"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, cfgPath, "scrape")
	if err == nil || !strings.Contains(err.Error(), "source.url is not set") {
		t.Errorf("err = %v", err)
	}
}

func TestCleanupUsesConfiguredDays(t *testing.T) {
	cfgPath := setup(t)
	mustExecute(t, cfgPath, "scrape")

	out := mustExecute(t, cfgPath, "cleanup", "--yes")
	if !strings.HasPrefix(out, "Removed ") {
		t.Errorf("cleanup output: %s", out)
	}
}
