package dataset

import (
	"sync"
	"sync/atomic"
)

// LoaderFunc produces a table. Load is the production implementation.
type LoaderFunc func(path string) (*Table, error)

// Store memoizes a dataset for the life of the process. Successful loads are published
// as an immutable snapshot; failed loads are not cached so the next caller retries.
type Store struct {
	path   string
	loader LoaderFunc

	mu       sync.Mutex
	snapshot atomic.Pointer[Table]
	loads    atomic.Int64
}

// NewStore creates a store that reads path with Load on first use.
func NewStore(path string) *Store {
	return NewStoreWithLoader(path, Load)
}

// NewStoreWithLoader creates a store backed by a custom loader.
func NewStoreWithLoader(path string, loader LoaderFunc) *Store {
	return &Store{path: path, loader: loader}
}

// NewStaticStore wraps an already-built table.
func NewStaticStore(t *Table) *Store {
	s := &Store{path: t.Path, loader: func(string) (*Table, error) { return t, nil }}
	s.snapshot.Store(t)
	return s
}

// Path returns the dataset location.
func (s *Store) Path() string {
	return s.path
}

// Table returns the memoized table, loading it if needed. Concurrent first callers
// wait for a single load.
func (s *Store) Table() (*Table, error) {
	if t := s.snapshot.Load(); t != nil {
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.snapshot.Load(); t != nil {
		return t, nil
	}
	return s.loadLocked()
}

// Reload discards the snapshot and reads the dataset again. On failure the previous
// snapshot is kept.
func (s *Store) Reload() (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Loaded reports whether a snapshot is available without triggering a load.
func (s *Store) Loaded() bool {
	return s.snapshot.Load() != nil
}

// Loads returns how many times the underlying loader ran.
func (s *Store) Loads() int64 {
	return s.loads.Load()
}

func (s *Store) loadLocked() (*Table, error) {
	s.loads.Add(1)
	t, err := s.loader(s.path)
	if err != nil {
		return nil, err
	}
	s.snapshot.Store(t)
	return t, nil
}

var (
	defaultStore atomic.Pointer[Store]
	defaultMu    sync.Mutex
)

// Default returns the process-wide store, creating it from path on first use.
func Default(path string) *Store {
	if s := defaultStore.Load(); s != nil {
		return s
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if s := defaultStore.Load(); s != nil {
		return s
	}
	s := NewStore(path)
	defaultStore.Store(s)
	return s
}

// SetDefault replaces the process-wide store. Passing nil clears it.
func SetDefault(s *Store) {
	defaultStore.Store(s)
}
