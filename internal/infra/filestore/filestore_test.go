package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []domain.Task {
	created := time.Date(2025, 1, 15, 8, 0, 0, 500, time.UTC)
	return []domain.Task{
		{
			ID:          "a",
			Title:       "first",
			Description: "desc",
			Status:      domain.StatusExpired,
			Priority:    domain.PriorityHigh,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
			DueDate:     created.Add(24 * time.Hour),
			Duration:    domain.IntPtr(30),

			ExpiredReason: domain.ReasonPastDue,
		},
		{
			ID:        "b",
			Title:     "second",
			Status:    domain.StatusTodo,
			Priority:  domain.PriorityMedium,
			CreatedAt: created,
			UpdatedAt: created,
			DueDate:   created.Add(72 * time.Hour),
		},
	}
}

func TestLoad_NoFile(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, ports.ErrNoSnapshot))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "data"))
	ctx := context.Background()
	in := sampleTasks()

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_EmptyWritesArray(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(context.Background(), nil))

	b, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))

	out, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSave_ISOTimestamps(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(context.Background(), sampleTasks()[:1]))

	b, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"createdAt": "2025-01-15T08:00:00.0000005Z"`)
}

func TestLoad_LegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"id":"1","title":"old","description":"","status":"Timeout","priority":"Low",
		"createdAt":"2024-06-01T10:00:00.000Z","updatedAt":"2024-06-02T10:00:00.000Z","dueDate":"2024-06-03T10:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(legacy), 0o644))

	out, err := New(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.StatusExpired, out[0].Status)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), out[0].CreatedAt)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	_, err := New(dir).Load(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrNoSnapshot))
}
