package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/deadline-harvester/internal/model"
)

// ErrNotFound is returned when a deadline id does not exist.
var ErrNotFound = errors.New("deadline not found")

// Store defines the persistence contract for harvested deadlines and the
// harvest run log.
type Store interface {
	// === Deadlines ===

	// ListDeadlines returns all deadlines ordered by due date. With
	// activeOnly set, only deadlines due in the future are returned.
	ListDeadlines(ctx context.Context, activeOnly bool) ([]model.Deadline, error)
	SearchByTitlePrefix(ctx context.Context, prefix string) ([]model.Deadline, error)
	GetDeadline(ctx context.Context, id int64) (*model.Deadline, error)

	// InsertDeadline stores d and returns the assigned id. CreatedAt and
	// UpdatedAt are set by the store.
	InsertDeadline(ctx context.Context, d model.Deadline) (int64, error)

	// UpdateDeadline overwrites the content fields of the deadline with
	// the given id and bumps UpdatedAt. ID and CreatedAt are preserved.
	UpdateDeadline(ctx context.Context, id int64, d model.Deadline) error
	DeleteDeadline(ctx context.Context, id int64) error

	// DeleteDueBefore removes every deadline due before cutoff and
	// returns how many were removed.
	DeleteDueBefore(ctx context.Context, cutoff time.Time) (int, error)

	// UpcomingDeadlines returns deadlines due within the window starting
	// at from, plus events whose start date falls in that window.
	UpcomingDeadlines(ctx context.Context, from time.Time, within time.Duration) ([]model.Deadline, error)

	// SetEnhancedTitle replaces the display title and marks it enhanced.
	SetEnhancedTitle(ctx context.Context, id int64, title string) error

	// === Harvest runs ===

	RecordRun(ctx context.Context, run model.HarvestRun) error
	RecentRuns(ctx context.Context, limit int) ([]model.HarvestRun, error)
}
