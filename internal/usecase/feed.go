package usecase

import (
	"context"
	"math/rand/v2"
	"sync"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
)

var _ ports.StreamSource = (*Feed)(nil)

var mockStreams = []domain.StreamItem{
	{
		ID:       "stream1",
		Title:    "Building a React App from Scratch",
		Author:   "CodeMaster",
		Viewers:  1243,
		Category: "Programming",
		Tags:     []string{"react", "javascript", "webdev"},
	},
	{
		ID:       "stream2",
		Title:    "Database Design Best Practices",
		Author:   "DataGuru",
		Viewers:  895,
		Category: "Programming",
		Tags:     []string{"database", "sql", "architecture"},
	},
	{
		ID:       "stream3",
		Title:    "DevOps Pipeline Automation",
		Author:   "CloudNinja",
		Viewers:  674,
		Category: "DevOps",
		Tags:     []string{"ci/cd", "docker", "kubernetes"},
	},
}

// Feed simulates a live streaming API: it is slow, fails now and then, and
// reports jittered viewer counts.
type Feed struct {
	Delay       time.Duration
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFeed(delay time.Duration, failureRate float64, rng *rand.Rand) *Feed {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Feed{Delay: delay, FailureRate: failureRate, rng: rng}
}

func (f *Feed) Fetch(ctx context.Context) ([]domain.StreamItem, error) {
	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rng.Float64() < f.FailureRate {
		log.Ctx(ctx).Warn().Msg("streaming feed failed")
		return nil, domain.ErrUpstream
	}

	items := make([]domain.StreamItem, len(mockStreams))
	for i, s := range mockStreams {
		items[i] = s.Clone()
		items[i].Viewers = int(float64(s.Viewers) * (0.9 + f.rng.Float64()*0.2))
	}
	return items, nil
}
