// Package memory provides in-process InventoryCatalog and Ledger
// implementations for tests and dev mode.
package memory

import (
	"context"
	"sync"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// Store holds a fixed catalog and a prepending in-memory ledger. It
// implements both booking.InventoryCatalog and booking.Ledger.
type Store struct {
	mu        sync.RWMutex
	resources []booking.Resource
	records   []booking.Record
}

func NewStore(resources []booking.Resource) *Store {
	return &Store{resources: resources}
}

// SetInventory replaces the catalog. Visible to subsequent reads only;
// an Inventory already handed out is immutable.
func (s *Store) SetInventory(resources []booking.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = resources
}

func (s *Store) ReadInventory(_ context.Context) (*booking.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return booking.NewInventory(s.resources), nil
}

// ReadAll returns committed bookings most recent first.
func (s *Store) ReadAll(_ context.Context) ([]booking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append prepends the record so the newest booking is read first.
func (s *Store) Append(_ context.Context, rec booking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]booking.Record{rec}, s.records...)
	return nil
}

// =============================================================================
// FAILING STORE - For exercising external-source error paths
// =============================================================================

// Failing wraps a Store and fails every call with the given error once
// armed. Used by tests to drive SourceError handling.
type Failing struct {
	*Store
	mu  sync.Mutex
	err error
}

func NewFailing(inner *Store) *Failing {
	return &Failing{Store: inner}
}

// Fail arms (or, with nil, disarms) the failure.
func (f *Failing) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *Failing) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Failing) ReadInventory(ctx context.Context) (*booking.Inventory, error) {
	if err := f.failure(); err != nil {
		return nil, err
	}
	return f.Store.ReadInventory(ctx)
}

func (f *Failing) ReadAll(ctx context.Context) ([]booking.Record, error) {
	if err := f.failure(); err != nil {
		return nil, err
	}
	return f.Store.ReadAll(ctx)
}

func (f *Failing) Append(ctx context.Context, rec booking.Record) error {
	if err := f.failure(); err != nil {
		return err
	}
	return f.Store.Append(ctx, rec)
}
