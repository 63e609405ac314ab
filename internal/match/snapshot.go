package match

import (
	"cmp"
	"slices"

	"github.com/nhle/deadline-harvester/internal/model"
)

// Snapshot is the set of stored deadlines a run matches against, kept
// in ascending id order. It is not safe for concurrent use; a run owns
// its snapshot.
type Snapshot struct {
	records []model.Deadline
}

// NewSnapshot copies records into a Snapshot.
func NewSnapshot(records []model.Deadline) *Snapshot {
	s := &Snapshot{records: slices.Clone(records)}
	slices.SortFunc(s.records, func(a, b model.Deadline) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return s
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Records returns the records in id order. The slice must not be modified.
func (s *Snapshot) Records() []model.Deadline { return s.records }

// Get returns the record with the given id.
func (s *Snapshot) Get(id int64) (model.Deadline, bool) {
	i, ok := s.find(id)
	if !ok {
		return model.Deadline{}, false
	}
	return s.records[i], true
}

// Add inserts d, keeping id order.
func (s *Snapshot) Add(d model.Deadline) {
	i, ok := s.find(d.ID)
	if ok {
		s.records[i] = d
		return
	}
	s.records = slices.Insert(s.records, i, d)
}

// Replace swaps in d for the record with the same id. It reports false
// when no such record exists.
func (s *Snapshot) Replace(d model.Deadline) bool {
	i, ok := s.find(d.ID)
	if !ok {
		return false
	}
	s.records[i] = d
	return true
}

func (s *Snapshot) find(id int64) (int, bool) {
	return slices.BinarySearchFunc(s.records, id, func(d model.Deadline, id int64) int {
		return cmp.Compare(d.ID, id)
	})
}
