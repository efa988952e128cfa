// Package filestore persists the task collection as a single JSON array that is
// rewritten wholesale on every save.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"taskboard/internal/domain"
	"taskboard/internal/ports"

	"github.com/rs/zerolog/log"
)

const FileName = "tasks.json"

var _ ports.Persister = (*Store)(nil)

type Store struct {
	Path string
}

func New(dataDir string) *Store {
	path := filepath.Join(dataDir, FileName)
	log.Info().Msgf("persisting tasks to %s", path)
	return &Store{Path: path}
}

func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return tasks, nil
}

// Save writes to a temp file and renames it over the old one so a crash
// mid-write never leaves a truncated array behind.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
