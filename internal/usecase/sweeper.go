package usecase

import (
	"context"
	"taskboard/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
)

var _ ports.Scheduler = (*Sweeper)(nil)

type Sweeper struct {
	Store    *TaskStore
	Interval time.Duration
}

func NewSweeper(store *TaskStore, interval time.Duration) *Sweeper {
	return &Sweeper{Store: store, Interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		s.Once(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Start runs the sweeper in the background until ctx is done. The returned
// func blocks until the loop, including any sweep in progress, has returned.
func (s *Sweeper) Start(ctx context.Context) (wait func() error) {
	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		err = s.Run(ctx)
	}()
	return func() error {
		<-done
		return err
	}
}

// Once runs a single sweep and returns how many tasks expired.
func (s *Sweeper) Once(ctx context.Context) int {
	expired := s.Store.Sweep(ctx)
	for _, t := range expired {
		log.Ctx(ctx).Info().
			Str("id", t.ID).
			Str("reason", string(t.ExpiredReason)).
			Msgf("task %q expired", t.Title)
	}
	return len(expired)
}
