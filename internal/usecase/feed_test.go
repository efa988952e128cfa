package usecase

import (
	"context"
	"errors"
	"math/rand/v2"
	"taskboard/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_Fetch(t *testing.T) {
	feed := NewFeed(0, 0, rand.New(rand.NewPCG(1, 2)))

	items, err := feed.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, len(mockStreams))

	for i, it := range items {
		base := mockStreams[i]
		assert.Equal(t, base.ID, it.ID)
		assert.GreaterOrEqual(t, it.Viewers, int(float64(base.Viewers)*0.9))
		assert.LessOrEqual(t, it.Viewers, int(float64(base.Viewers)*1.1))
	}
}

func TestFeed_DoesNotShareTags(t *testing.T) {
	feed := NewFeed(0, 0, nil)

	items, err := feed.Fetch(context.Background())
	require.NoError(t, err)
	items[0].Tags[0] = "mutated"

	assert.Equal(t, "react", mockStreams[0].Tags[0])
}

func TestFeed_AlwaysFails(t *testing.T) {
	feed := NewFeed(0, 1, nil)

	_, err := feed.Fetch(context.Background())
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestFeed_DelayHonorsContext(t *testing.T) {
	feed := NewFeed(time.Hour, 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := feed.Fetch(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
