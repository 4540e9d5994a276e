// Package memory is an in-process storage backend. Data lives for the
// lifetime of the process.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"moneytracker/internal/storage"
)

// SeedFile is the optional file NewFromDir preloads into the transactions
// slot.
const SeedFile = "seed_transactions.json"

type Store struct {
	mu     sync.Mutex
	slots  map[string]string
	closed bool
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{slots: make(map[string]string)}
}

// NewFromDir returns a store whose transactions slot holds the contents of
// base/seed_transactions.json, when that file exists and is not blank.
func NewFromDir(base string) *Store {
	s := New()
	data, err := os.ReadFile(filepath.Join(base, SeedFile))
	if err != nil {
		return s
	}
	if raw := strings.TrimSpace(string(data)); raw != "" {
		s.slots[storage.TransactionsKey] = raw
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, storage.ErrClosed
	}
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.slots[key] = value
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Keys returns the occupied slot names.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.slots))
	for k := range s.slots {
		out = append(out, k)
	}
	return out
}
