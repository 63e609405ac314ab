// Package harvest merges extracted deadlines into the store and runs
// whole harvest passes.
package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/match"
	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/store"
)

// Outcome counts what Apply did with each candidate.
type Outcome struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`

	// Stored is the number of deadlines known after the last write.
	Stored int `json:"stored"`

	Errors []error `json:"-"`
}

// Engine applies candidates to the store. All writes, including the
// administrative operations, go through one lock so only a single writer
// touches the store at a time.
type Engine struct {
	store   store.Store
	matcher *match.Matcher
	log     logrus.FieldLogger
	now     func() time.Time

	mu sync.Mutex
}

// NewEngine creates an Engine over s.
func NewEngine(s store.Store, m *match.Matcher, log logrus.FieldLogger) *Engine {
	if m == nil {
		m = match.NewMatcher(match.Options{})
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{store: s, matcher: m, log: log, now: time.Now}
}

// Apply matches each candidate, in order, against a snapshot of the
// store taken at the start of the call, and writes the result:
//
//   - New candidates are inserted and join the snapshot, so a later
//     candidate of the same call cannot also be new.
//   - Recurring or duplicate candidates replace the stored record only
//     when their due date is strictly later; otherwise they are skipped.
//
// A store failure for one candidate is counted and logged and does not
// stop the others. Cancellation is checked between candidates; writes
// already made are kept and the partial Outcome is returned with the
// context error.
func (e *Engine) Apply(ctx context.Context, candidates []model.Deadline) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.ListDeadlines(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	snap := match.NewSnapshot(existing)

	out := &Outcome{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			out.Stored = snap.Len()
			return out, err
		}
		e.applyOne(ctx, c, snap, out)
	}
	out.Stored = snap.Len()
	return out, nil
}

func (e *Engine) applyOne(ctx context.Context, c model.Deadline, snap *match.Snapshot, out *Outcome) {
	v := e.matcher.Match(c, snap)
	log := e.log.WithFields(logrus.Fields{
		"title":   c.MatchTitle(),
		"verdict": v.Kind.String(),
	})

	if v.Kind == match.New {
		now := e.now()
		id, err := e.store.InsertDeadline(ctx, c)
		if err != nil {
			e.fail(out, log, &PersistenceError{Op: "insert", Title: c.MatchTitle(), Err: err})
			return
		}
		c.ID = id
		c.CreatedAt, c.UpdatedAt = now, now
		snap.Add(c)
		out.Added++
		log.WithField("deadline_id", id).Info("added deadline")
		return
	}

	old, ok := snap.Get(v.ExistingID)
	if !ok {
		e.fail(out, log, &PersistenceError{Op: "update", Title: c.MatchTitle(), Err: store.ErrNotFound})
		return
	}
	log = log.WithField("deadline_id", old.ID)

	if !c.DueDate.After(old.DueDate) {
		out.Skipped++
		log.Debug("stored due date is not earlier; skipping")
		return
	}

	c.ID = old.ID
	c.CreatedAt = old.CreatedAt
	c.AIEnhanced = false
	if err := e.store.UpdateDeadline(ctx, old.ID, c); err != nil {
		e.fail(out, log, &PersistenceError{Op: "update", Title: c.MatchTitle(), Err: err})
		return
	}
	c.UpdatedAt = e.now()
	snap.Replace(c)
	out.Updated++
	log.WithFields(logrus.Fields{
		"old_due": old.DueDate,
		"new_due": c.DueDate,
	}).Info("updated deadline")
}

func (e *Engine) fail(out *Outcome, log logrus.FieldLogger, err *PersistenceError) {
	out.Failed++
	out.Errors = append(out.Errors, err)
	log.WithError(err).Error("failed to persist deadline")
}

// FindDuplicates reports stored deadlines that look alike, for manual
// review. Nothing is changed.
func (e *Engine) FindDuplicates(ctx context.Context) ([]match.DuplicatePair, error) {
	all, err := e.store.ListDeadlines(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing deadlines: %w", err)
	}
	return match.FindDuplicatePairs(all), nil
}

// Merge keeps keepID and deletes removeID. Both must exist.
func (e *Engine) Merge(ctx context.Context, keepID, removeID int64) error {
	if keepID == removeID {
		return ErrSameDeadline
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range []int64{keepID, removeID} {
		if _, err := e.store.GetDeadline(ctx, id); err != nil {
			return fmt.Errorf("looking up deadline %d: %w", id, err)
		}
	}
	if err := e.store.DeleteDeadline(ctx, removeID); err != nil {
		return fmt.Errorf("deleting deadline %d: %w", removeID, err)
	}

	e.log.WithFields(logrus.Fields{
		"kept":    keepID,
		"removed": removeID,
	}).Info("merged deadlines")
	return nil
}

// Cleanup deletes deadlines whose due date is more than days in the past
// and returns how many were removed.
func (e *Engine) Cleanup(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("cleanup days must not be negative, got %d", days)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().AddDate(0, 0, -days)
	n, err := e.store.DeleteDueBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting deadlines due before %s: %w", cutoff.Format(time.DateOnly), err)
	}

	e.log.WithFields(logrus.Fields{
		"days":    days,
		"removed": n,
	}).Info("cleaned up old deadlines")
	return n, nil
}
