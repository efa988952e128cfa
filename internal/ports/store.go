package ports

import (
	"context"
	"errors"
	"taskboard/internal/domain"
)

// ErrNoSnapshot is returned by Persister.Load when nothing was ever saved.
var ErrNoSnapshot = errors.New("no persisted snapshot")

// Persister stores the whole task collection at once.
type Persister interface {
	Load(ctx context.Context) ([]domain.Task, error)
	Save(ctx context.Context, tasks []domain.Task) error
	Close() error
}

type StreamSource interface {
	Fetch(ctx context.Context) ([]domain.StreamItem, error)
}

type Scheduler interface {
	// sweeps the task collection until ctx is done
	Run(ctx context.Context) error
}
