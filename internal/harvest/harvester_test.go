package harvest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nhle/deadline-harvester/internal/extract"
	"github.com/nhle/deadline-harvester/internal/metrics"
	"github.com/nhle/deadline-harvester/internal/source"
	"github.com/nhle/deadline-harvester/tests/testutil"
)

const datesPage = `<html><body>
<h2>First-Year Important Dates</h2>
<h3>June</h3>
<ul>
  <li>Housing application due June 15. Complete the housing form.</li>
  <li>Orientation week June 5 - June 13</li>
  <li>TBD</li>
</ul>
<h3>August</h3>
<ul>
  <li>Tuition payment due August 1. See the <a href="/bursar">bursar page</a>.</li>
  <li>Check your email often</li>
</ul>
</body></html>`

func parseDoc(t *testing.T, page string) *source.Document {
	t.Helper()
	doc, err := source.Parse(strings.NewReader(page), "https://example.edu/dates",
		time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("parsing page: %v", err)
	}
	return doc
}

func newHarvester(t *testing.T) (*Harvester, *metrics.Metrics) {
	t.Helper()
	s := testutil.NewTestStore(t)
	m := metrics.New(prometheus.NewRegistry())
	h := NewHarvester(s, newEngine(s), Config{Workers: 2, Location: time.UTC}, m, quietLogger())
	return h, m
}

func TestHarvesterRun(t *testing.T) {
	ctx := context.Background()
	h, m := newHarvester(t)

	res, err := h.Run(ctx, parseDoc(t, datesPage))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Added != 3 || res.ParseFailures != 2 || len(res.Candidates) != 3 {
		t.Fatalf("result = %+v, want 3 added and 2 parse failures", res)
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Errorf("finished %v before started %v", res.FinishedAt, res.StartedAt)
	}

	tuition := res.Candidates[2]
	if tuition.URL != "https://example.edu/bursar" {
		t.Errorf("url = %q", tuition.URL)
	}
	if !tuition.DueDate.Equal(time.Date(2025, time.August, 1, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("due = %v", tuition.DueDate)
	}

	again, err := h.Run(ctx, parseDoc(t, datesPage))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Added != 0 || again.Updated != 0 || again.Skipped != 3 {
		t.Errorf("second result = %+v, want 3 skipped", again.Outcome)
	}
	if again.RunID == res.RunID {
		t.Error("runs share an id")
	}

	runs, err := h.store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(runs))
	}
	if got := promtest.ToFloat64(m.Runs.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok runs metric = %v, want 2", got)
	}
	if got := promtest.ToFloat64(m.Stored); got != 3 {
		t.Errorf("stored metric = %v, want 3", got)
	}
}

func TestHarvesterRunWithoutMonthSections(t *testing.T) {
	ctx := context.Background()
	h, m := newHarvester(t)

	res, err := h.Run(ctx, parseDoc(t, `<html><body><h2>Moved</h2><p>See the new site.</p></body></html>`))
	if !extract.IsSourceStructureError(err) {
		t.Fatalf("err = %v, want SourceStructureError", err)
	}
	if len(res.Candidates) != 0 {
		t.Errorf("got %d candidates", len(res.Candidates))
	}

	runs, _ := h.store.RecentRuns(ctx, 10)
	if len(runs) != 1 || runs[0].Error == "" {
		t.Errorf("failed run not recorded: %+v", runs)
	}
	if got := promtest.ToFloat64(m.Runs.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs metric = %v, want 1", got)
	}
}

type stubSource struct {
	doc *source.Document
	err error
}

func (s *stubSource) Type() source.SourceType { return source.SourceTypeWeb }

func (s *stubSource) ValidateConnection(context.Context) (string, error) { return "ok", nil }

func (s *stubSource) Fetch(context.Context) (*source.Document, error) { return s.doc, s.err }

func TestHarvesterRunSource(t *testing.T) {
	ctx := context.Background()
	h, _ := newHarvester(t)

	res, err := h.RunSource(ctx, &stubSource{doc: parseDoc(t, datesPage)})
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if res.Added != 3 {
		t.Errorf("added = %d, want 3", res.Added)
	}

	authErr := &source.AuthError{SourceType: source.SourceTypeWeb, Message: "401"}
	_, err = h.RunSource(ctx, &stubSource{err: authErr})
	if !source.IsAuthError(err) {
		t.Fatalf("err = %v, want an AuthError", err)
	}

	runs, _ := h.store.RecentRuns(ctx, 10)
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(runs))
	}
	var failed int
	for _, r := range runs {
		if r.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("%d failed runs recorded, want 1", failed)
	}
}

func TestHarvesterRecordsCancelledRun(t *testing.T) {
	h, _ := newHarvester(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Run(ctx, parseDoc(t, datesPage))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	runs, err := h.store.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("recorded %d runs, want 1", len(runs))
	}
}
