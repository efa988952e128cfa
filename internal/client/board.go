package client

import (
	"context"
	"sync"
	"taskboard/internal/domain"
	"taskboard/internal/lifecycle"
	"time"

	"github.com/rs/zerolog/log"
)

// Lister is the part of Client the board needs.
type Lister interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
}

// Summary counts tasks per status.
type Summary struct {
	Total    int
	ByStatus map[domain.Status]int
}

// Board mirrors the server's task list and re-derives expiry locally. Local
// expiry is advisory and never written back; the next poll overwrites it.
type Board struct {
	src              Lister
	thresholdMinutes int
	pollInterval     time.Duration
	evalInterval     time.Duration
	now              func() time.Time

	// OnExpire is called for every task the local evaluation expires.
	OnExpire func(domain.Task)

	mu    sync.Mutex
	tasks []domain.Task
}

type BoardOption func(*Board)

func WithBoardClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

func WithIntervals(poll, evaluate time.Duration) BoardOption {
	return func(b *Board) {
		b.pollInterval = poll
		b.evalInterval = evaluate
	}
}

func NewBoard(src Lister, thresholdMinutes int, opts ...BoardOption) *Board {
	b := &Board{
		src:              src,
		thresholdMinutes: thresholdMinutes,
		pollInterval:     30 * time.Second,
		evalInterval:     60 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Refresh replaces the local list with the server's and evaluates it.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.src.ListTasks(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()

	b.Evaluate(b.now())
	return nil
}

// Evaluate applies the lifecycle rule to the local copy and returns the ids
// that changed.
func (b *Board) Evaluate(now time.Time) []string {
	b.mu.Lock()
	var (
		ids     []string
		expired []domain.Task
	)
	for i := range b.tasks {
		if lifecycle.Apply(&b.tasks[i], now, b.thresholdMinutes) {
			ids = append(ids, b.tasks[i].ID)
			expired = append(expired, b.tasks[i].Clone())
		}
	}
	b.mu.Unlock()

	if b.OnExpire != nil {
		for _, t := range expired {
			b.OnExpire(t)
		}
	}
	return ids
}

// Tasks returns the tasks in the given column, or all of them when status is
// empty.
func (b *Board) Tasks(status domain.Status) []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []domain.Task
	for _, t := range b.tasks {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (b *Board) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Summary{Total: len(b.tasks), ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		s.ByStatus[st] = 0
	}
	for _, t := range b.tasks {
		s.ByStatus[t.Status]++
	}
	return s
}

// Run polls and evaluates on independent tickers until ctx is done. A failed
// poll keeps the previous list.
func (b *Board) Run(ctx context.Context) error {
	if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.Ctx(ctx).Warn().Err(err).Msg("initial refresh failed")
	}

	poll := time.NewTicker(b.pollInterval)
	defer poll.Stop()
	eval := time.NewTicker(b.evalInterval)
	defer eval.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Ctx(ctx).Warn().Err(err).Msg("refresh failed")
			}
		case <-eval.C:
			b.Evaluate(b.now())
		}
	}
}
