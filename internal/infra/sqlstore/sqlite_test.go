package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"taskboard/internal/usecase"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func assertTaskEqual(t *testing.T, want, got domain.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Priority, got.Priority)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
	assert.True(t, want.DueDate.Equal(got.DueDate), "dueDate %s != %s", want.DueDate, got.DueDate)
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, want.ExpiredReason, got.ExpiredReason)
	assert.Equal(t, want.StreamingData, got.StreamingData)
}

func TestLoad_FreshDatabase(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, ports.ErrNoSnapshot))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	in := []domain.Task{
		{
			ID:            "z",
			Title:         "inserted first",
			Status:        domain.StatusExpired,
			Priority:      domain.PriorityHigh,
			CreatedAt:     created,
			UpdatedAt:     created.Add(time.Minute),
			DueDate:       created.Add(-time.Hour),
			ExpiredReason: domain.ReasonPastDue,
			StreamingData: []domain.StreamItem{{ID: "stream1", Viewers: 100, Tags: []string{"go"}}},
		},
		{
			ID:          "a",
			Title:       "inserted second",
			Description: "with duration",
			Status:      domain.StatusTodo,
			Priority:    domain.PriorityMedium,
			CreatedAt:   created,
			UpdatedAt:   created,
			DueDate:     created.Add(24 * time.Hour),
			Duration:    domain.IntPtr(15),
		},
	}

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assertTaskEqual(t, in[0], out[0])
	assertTaskEqual(t, in[1], out[1])
}

func TestSave_ReplacesRows(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	task := func(id string) domain.Task {
		return domain.Task{ID: id, Title: id, Status: domain.StatusTodo, Priority: domain.PriorityLow, CreatedAt: now, UpdatedAt: now, DueDate: now}
	}

	require.NoError(t, s.Save(ctx, []domain.Task{task("1"), task("2"), task("3")}))
	require.NoError(t, s.Save(ctx, []domain.Task{task("3")}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "3", out[0].ID)

	require.NoError(t, s.Save(ctx, nil))
	out, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReopen_NotFresh(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := New(dsn)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, nil))
	require.NoError(t, s.Close())

	s, err = New(dsn)
	require.NoError(t, err)
	defer s.Close()

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSharedFile_SecondStoreSeesFirstSave(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	a, err := New(dsn)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(dsn)
	require.NoError(t, err)
	defer b.Close()

	_, err = a.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrNoSnapshot)

	require.NoError(t, b.Save(ctx, []domain.Task{
		{ID: "b1", Title: "from b", Status: domain.StatusTodo, Priority: domain.PriorityLow, CreatedAt: now, UpdatedAt: now, DueDate: now},
	}))

	out, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].ID)
}

func TestSharedFile_ReloadingStoresKeepEachOthersTasks(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	pa, err := New(dsn)
	require.NoError(t, err)
	defer pa.Close()
	pb, err := New(dsn)
	require.NoError(t, err)
	defer pb.Close()

	storeA := usecase.NewTaskStore(ctx, pa, usecase.WithReload(true))
	storeB := usecase.NewTaskStore(ctx, pb, usecase.WithReload(true))

	_, err = storeB.Create(ctx, domain.NewTask{Title: "from B"})
	require.NoError(t, err)
	_, err = storeA.Create(ctx, domain.NewTask{Title: "from A"})
	require.NoError(t, err)

	for _, s := range []*usecase.TaskStore{storeA, storeB} {
		tasks, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "from B", tasks[0].Title)
		assert.Equal(t, "from A", tasks[1].Title)
	}
}

func TestNew_LegacyTableCountsAsSnapshot(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taskRow{}))
	require.NoError(t, db.Create(&taskRow{ID: "old", Title: "old", Status: "To Do", Priority: "High", CreatedAt: now, UpdatedAt: now, DueDate: now}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	s, err := New(dsn)
	require.NoError(t, err)
	defer s.Close()

	out, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.StatusTodo, out[0].Status)
}
