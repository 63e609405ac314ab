package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/extract"
	"github.com/nhle/deadline-harvester/internal/metrics"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/source"
	"github.com/nhle/deadline-harvester/internal/store"
)

// Result summarizes one harvest run.
type Result struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Outcome

	ParseFailures int `json:"parse_failures"`

	// Candidates are the deadlines extracted from the document, in
	// document order.
	Candidates []model.Deadline `json:"candidates"`
}

// Run converts r into the record kept in the run log.
func (r *Result) Run(err error) model.HarvestRun {
	run := model.HarvestRun{
		ID:            r.RunID.String(),
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Added:         r.Added,
		Updated:       r.Updated,
		Skipped:       r.Skipped,
		Failed:        r.Failed,
		ParseFailures: r.ParseFailures,
		Candidates:    len(r.Candidates),
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

// Config holds the tunables of a Harvester.
type Config struct {
	Workers      int
	DefaultTitle string
	Location     *time.Location
	Patterns     []extract.DatePattern
	Lexicon      *extract.Lexicon
}

// Harvester runs full passes: extract, match and write.
type Harvester struct {
	parser     *extract.DateParser
	classifier *extract.Classifier
	cfg        Config
	engine     *Engine
	store      store.Store
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewHarvester wires a Harvester. m may be nil.
func NewHarvester(s store.Store, engine *Engine, cfg Config, m *metrics.Metrics, log logrus.FieldLogger) *Harvester {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	lex := extract.DefaultLexicon()
	if cfg.Lexicon != nil {
		lex = *cfg.Lexicon
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Harvester{
		parser:     extract.NewDateParser(cfg.Location, cfg.Patterns...),
		classifier: extract.NewClassifier(lex),
		cfg:        cfg,
		engine:     engine,
		store:      s,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// Engine returns the engine used for writes.
func (h *Harvester) Engine() *Engine { return h.engine }

// RunSource fetches the current document from src and harvests it. A
// failed fetch is recorded as a failed run.
func (h *Harvester) RunSource(ctx context.Context, src source.Source) (*Result, error) {
	started := h.now()
	doc, err := src.Fetch(ctx)
	if err != nil {
		res := &Result{RunID: uuid.New(), StartedAt: started}
		err = fmt.Errorf("fetching %s document: %w", src.Type(), err)
		h.finish(ctx, res, err)
		return res, err
	}
	return h.run(ctx, doc, started)
}

// Run harvests an already parsed document.
func (h *Harvester) Run(ctx context.Context, doc *source.Document) (*Result, error) {
	return h.run(ctx, doc, h.now())
}

func (h *Harvester) run(ctx context.Context, doc *source.Document, started time.Time) (*Result, error) {
	res := &Result{RunID: uuid.New(), StartedAt: started}
	log := h.log.WithField("run_id", res.RunID.String())
	log.WithField("url", doc.URL).Info("harvest started")

	ext := extract.NewExtractor(h.parser, h.classifier, extract.Options{
		BaseURL:      doc.URL,
		DefaultTitle: h.cfg.DefaultTitle,
		Workers:      h.cfg.Workers,
	}, log)

	extraction, err := ext.Extract(ctx, doc.Root, doc.Year(h.cfg.Location))
	if err != nil {
		h.finish(ctx, res, err)
		return res, err
	}
	res.Candidates = extraction.Candidates
	res.ParseFailures = len(extraction.Failures)

	out, err := h.engine.Apply(ctx, extraction.Candidates)
	if out != nil {
		res.Outcome = *out
	}
	h.finish(ctx, res, err)
	return res, err
}

// finish stamps, logs and records a run. Recording survives a cancelled
// run context.
func (h *Harvester) finish(ctx context.Context, res *Result, runErr error) {
	res.FinishedAt = h.now()
	log := h.log.WithFields(logrus.Fields{
		"run_id":         res.RunID.String(),
		"added":          res.Added,
		"updated":        res.Updated,
		"skipped":        res.Skipped,
		"failed":         res.Failed,
		"parse_failures": res.ParseFailures,
		"candidates":     len(res.Candidates),
		"duration":       res.FinishedAt.Sub(res.StartedAt).String(),
	})
	if runErr != nil {
		log.WithError(runErr).Error("harvest failed")
	} else {
		log.Info("harvest finished")
	}

	h.metrics.RecordRun(res.FinishedAt.Sub(res.StartedAt).Seconds(),
		res.Added, res.Updated, res.Skipped, res.Failed, res.ParseFailures, runErr)
	if runErr == nil {
		h.metrics.SetStored(res.Stored)
	}

	if err := h.store.RecordRun(context.WithoutCancel(ctx), res.Run(runErr)); err != nil {
		log.WithError(err).Warn("failed to record harvest run")
	}
}
