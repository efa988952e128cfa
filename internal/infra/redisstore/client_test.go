package redisstore

import (
	"context"
	"errors"
	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(config.Redis{Addr: mr.Addr(), TasksKey: "taskboard:tasks"})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestConnect(t *testing.T) {
	c, _ := newTestClient(t)
	require.NoError(t, c.Connect(context.Background()))
}

func TestConnect_Unreachable(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}

func TestLoad_Empty(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Load(context.Background())
	assert.True(t, errors.Is(err, ports.ErrNoSnapshot))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	created := time.Date(2025, 4, 2, 14, 0, 0, 0, time.UTC)
	in := []domain.Task{{
		ID:        "r1",
		Title:     "in redis",
		Status:    domain.StatusInProgress,
		Priority:  domain.PriorityLow,
		CreatedAt: created,
		UpdatedAt: created,
		DueDate:   created.Add(time.Hour),
		Duration:  domain.IntPtr(45),
	}}

	require.NoError(t, c.Save(ctx, in))
	assert.True(t, mr.Exists("taskboard:tasks"))

	out, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_EmptyCollectionIsASnapshot(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, nil))

	out, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}
