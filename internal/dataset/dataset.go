// Package dataset holds the explicitly constructed data context: the table
// loaded once from a path and replaced only by an explicit Reload.
package dataset

import (
	"fmt"
	"sync"
	"time"

	"github.com/pable/footstats/internal/loader"
	"github.com/pable/footstats/internal/model"
)

// Source is a loaded table bound to its path. Readers get an immutable
// table; Reload swaps it atomically and only on success.
type Source struct {
	path string

	mu       sync.RWMutex
	table    *model.Table
	loadedAt time.Time
}

// Open loads path and returns the Source.
func Open(path string) (*Source, error) {
	s := &Source{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromTable wraps an already loaded table.
func FromTable(path string, t *model.Table) *Source {
	return &Source{path: path, table: t, loadedAt: time.Now()}
}

// Table returns the current table.
func (s *Source) Table() *model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Path returns the dataset path.
func (s *Source) Path() string { return s.path }

// LoadedAt returns when the current table was loaded.
func (s *Source) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload re-reads the path. On failure the previous table stays in place.
func (s *Source) Reload() error {
	t, err := loader.Load(s.path)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	s.mu.Lock()
	s.table = t
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}
