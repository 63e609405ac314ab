package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/deadline-harvester/internal/model"
)

const (
	defaultMinItemLength = 10
	maxTitleRunes        = 100
	maxDescriptionRunes  = 500
)

// sentenceSplit separates an item into sentences.
var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Options configures an Extractor.
type Options struct {
	// BaseURL resolves relative item links.
	BaseURL string

	// DefaultTitle is used when no sentence holds the date.
	DefaultTitle string

	// Workers bounds how many items are parsed concurrently.
	Workers int

	// MinItemLength is the shortest item text considered.
	MinItemLength int
}

// Extraction is the outcome of extracting one document.
type Extraction struct {
	Sections   int
	Items      int
	Candidates []model.Deadline
	Failures   []*ParseError
}

// Extractor builds candidate deadlines from a parsed document.
type Extractor struct {
	parser     *DateParser
	classifier *Classifier
	opts       Options
	base       *url.URL
	log        logrus.FieldLogger
}

// NewExtractor wires a parser and a classifier into an Extractor.
func NewExtractor(parser *DateParser, classifier *Classifier, opts Options, log logrus.FieldLogger) *Extractor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MinItemLength <= 0 {
		opts.MinItemLength = defaultMinItemLength
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = "Deadline"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := &Extractor{parser: parser, classifier: classifier, opts: opts, log: log}
	if opts.BaseURL != "" {
		if u, err := url.Parse(opts.BaseURL); err == nil {
			e.base = u
		}
	}
	return e
}

// job is one item queued for parsing, with its slot in the output.
type job struct {
	index int
	month time.Month
	item  Item
}

type outcome struct {
	deadline *model.Deadline
	failure  *ParseError
}

// Extract walks the month sections of doc and parses every item in
// parallel. Output order follows document order. If doc has no month
// sections, a *SourceStructureError is returned.
func (e *Extractor) Extract(ctx context.Context, doc *html.Node, year int) (*Extraction, error) {
	var jobs []job
	sections := 0
	for sec := range Sections(doc) {
		sections++
		if len(sec.Items) == 0 {
			e.log.WithField("month", sec.Month.String()).Debug("month section has no list")
		}
		for _, item := range sec.Items {
			jobs = append(jobs, job{index: len(jobs), month: sec.Month, item: item})
		}
	}

	if sections == 0 {
		return nil, &SourceStructureError{Headings: len(headingSelector.MatchAll(doc))}
	}

	outcomes := make([]outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, perr := e.ExtractItem(j.item, j.month, year)
			if perr != nil {
				outcomes[j.index] = outcome{failure: perr}
				return nil
			}
			outcomes[j.index] = outcome{deadline: &d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Extraction{Sections: sections, Items: len(jobs)}
	for _, o := range outcomes {
		switch {
		case o.deadline != nil:
			result.Candidates = append(result.Candidates, *o.deadline)
		case o.failure != nil:
			e.log.WithFields(logrus.Fields{
				"month":  o.failure.Month.String(),
				"reason": o.failure.Reason,
			}).Debug("skipping item")
			result.Failures = append(result.Failures, o.failure)
		}
	}
	return result, nil
}

// ExtractItem turns one list item into a candidate deadline.
func (e *Extractor) ExtractItem(item Item, month time.Month, year int) (model.Deadline, *ParseError) {
	text := strings.TrimSpace(item.Text)
	if len([]rune(text)) < e.opts.MinItemLength {
		return model.Deadline{}, &ParseError{Month: month, Text: text, Reason: "item too short"}
	}

	dm, ok := e.parser.Parse(text, month, year)
	if !ok {
		return model.Deadline{}, &ParseError{Month: month, Text: text, Reason: "no valid date"}
	}

	title, description := splitTitle(text, dm.Text)
	if title == "" {
		title = e.opts.DefaultTitle
	}

	return model.Deadline{
		RawTitle:    title,
		Title:       title,
		Description: description,
		StartDate:   dm.Start,
		DueDate:     dm.Due,
		Category:    e.classifier.Category(text),
		IsCritical:  e.classifier.IsCritical(text),
		IsEvent:     dm.IsEvent,
		URL:         e.resolve(item.Href),
	}, nil
}

// resolve makes href absolute against the base URL.
func (e *Extractor) resolve(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if e.base == nil {
		return ref.String()
	}
	return e.base.ResolveReference(ref).String()
}

// splitTitle uses the sentence holding the date as the title and joins
// the remaining sentences into the description.
func splitTitle(text, dateText string) (string, string) {
	var title string
	var rest []string
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if dateText != "" && strings.Contains(sentence, dateText) {
			title = sentence
			continue
		}
		rest = append(rest, sentence)
	}
	return truncate(title, maxTitleRunes), truncate(strings.Join(rest, ". "), maxDescriptionRunes)
}

// truncate shortens s to max runes, ending with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
