// Package memstore is a non-durable Persister for tests and ephemeral hosts.
package memstore

import (
	"context"
	"errors"
	"sync"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
)

var _ ports.Persister = (*Store)(nil)

var ErrClosed = errors.New("memstore: closed")

type Store struct {
	mu       sync.Mutex
	snapshot []domain.Task
	saved    bool
	saves    int
	closed   bool

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

func New() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return nil, ports.ErrNoSnapshot
	}
	return cloneAll(s.snapshot), nil
}

func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.snapshot = cloneAll(tasks)
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many successful writes happened.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close rejects later saves; the snapshot stays readable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneAll(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
