package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/deadline-harvester/internal/model"
	"github.com/nhle/deadline-harvester/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedDeadline inserts d into s and returns it with the assigned id.
func SeedDeadline(t *testing.T, s store.Store, d model.Deadline) model.Deadline {
	t.Helper()

	if d.Category == "" {
		d.Category = model.CategoryGeneral
	}
	id, err := s.InsertDeadline(context.Background(), d)
	if err != nil {
		t.Fatalf("seeding deadline %q: %v", d.Title, err)
	}
	d.ID = id
	return d
}

// Date returns the given calendar day at 23:59:59 in loc.
func Date(loc *time.Location, year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 0, loc)
}
