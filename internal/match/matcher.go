package match

import (
	"time"

	"github.com/nhle/deadline-harvester/internal/model"
)

// VerdictKind classifies a candidate against the snapshot.
type VerdictKind int

const (
	New VerdictKind = iota
	Recurring
	ExactDuplicate
)

func (k VerdictKind) String() string {
	switch k {
	case Recurring:
		return "recurring"
	case ExactDuplicate:
		return "exact_duplicate"
	default:
		return "new"
	}
}

// Verdict is the matcher's decision for one candidate. ExistingID is
// zero for New.
type Verdict struct {
	Kind       VerdictKind
	ExistingID int64
	Similarity float64
}

const (
	DefaultSimilarityThreshold = 0.8
	DefaultDuplicateWindow     = 7 * 24 * time.Hour
)

// Options tunes a Matcher.
type Options struct {
	SimilarityThreshold float64
	DuplicateWindow     time.Duration
	Normalizer          *Normalizer
}

// Matcher decides whether a candidate is new. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	threshold float64
	window    time.Duration
	norm      *Normalizer
}

// NewMatcher returns a Matcher, filling zero options with defaults.
func NewMatcher(opts Options) *Matcher {
	m := &Matcher{
		threshold: opts.SimilarityThreshold,
		window:    opts.DuplicateWindow,
		norm:      opts.Normalizer,
	}
	if m.threshold <= 0 || m.threshold > 1 {
		m.threshold = DefaultSimilarityThreshold
	}
	if m.window <= 0 {
		m.window = DefaultDuplicateWindow
	}
	if m.norm == nil {
		m.norm = NewNormalizer()
	}
	return m
}

// Normalizer returns the title normalizer in use.
func (m *Matcher) Normalizer() *Normalizer { return m.norm }

// Match compares c against every record of snap. A recurrence wins over
// an exact duplicate; among several records of the same kind the lowest
// id wins.
func (m *Matcher) Match(c model.Deadline, snap *Snapshot) Verdict {
	title := m.norm.Title(c.MatchTitle())

	var dup *Verdict
	for _, existing := range snap.Records() {
		if existing.Category != c.Category {
			continue
		}

		if title != "" && m.norm.Title(existing.MatchTitle()) == title {
			sim := DescriptionSimilarity(c.Description, existing.Description)
			if sim >= m.threshold {
				return Verdict{Kind: Recurring, ExistingID: existing.ID, Similarity: sim}
			}
		}

		if dup == nil && existing.MatchTitle() == c.MatchTitle() && within(existing.DueDate, c.DueDate, m.window) {
			dup = &Verdict{Kind: ExactDuplicate, ExistingID: existing.ID}
		}
	}

	if dup != nil {
		return *dup
	}
	return Verdict{Kind: New}
}

func within(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
