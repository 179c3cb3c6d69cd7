package memory

import (
	"context"
	"strconv"
	"sync"

	"savings/internal/core"
	"savings/internal/records"
)

// Store keeps snapshots in process memory, most recent date first.
type Store struct {
	mu    sync.Mutex
	items []core.SavingsRecord
	newID func() string
}

var _ records.Store = (*Store)(nil)

// New returns a store seeded with the fixture snapshots, under ids "1" and "2".
func New() *Store {
	s := NewEmpty()
	for i, in := range core.Fixtures() {
		s.insert(core.NewRecord(strconv.Itoa(i+1), in))
	}
	return s
}

// NewEmpty returns a store without any snapshot.
func NewEmpty() *Store {
	return &Store{newID: records.NewID}
}

// Add stores the snapshot and keeps the collection ordered.
func (s *Store) Add(_ context.Context, in core.RecordInput) (core.SavingsRecord, error) {
	rec := core.NewRecord(s.newID(), in)
	s.insert(rec)
	return rec, nil
}

func (s *Store) insert(rec core.SavingsRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec)
	core.SortByDateDesc(s.items)
}

// Delete removes the snapshot with the given id, if present.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// List returns a copy of the ordered collection.
func (s *Store) List(_ context.Context) ([]core.SavingsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SavingsRecord(nil), s.items...), nil
}

// LatestRates returns the first snapshot's rates or the defaults when empty.
func (s *Store) LatestRates(_ context.Context) (core.Rates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return core.DefaultRates(), nil
	}
	return core.RatesOf(s.items[0]), nil
}
