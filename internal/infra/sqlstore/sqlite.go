package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"taskboard/internal/domain"
	"taskboard/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ ports.Persister = (*Store)(nil)

type taskRow struct {
	ID            string `gorm:"primaryKey"`
	Position      int    `gorm:"index"`
	Title         string `gorm:"not null"`
	Description   string
	Status        string `gorm:"index"`
	Priority      string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
	DueDate       time.Time
	Duration      *int
	ExpiredReason string
	StreamingData string
}

func (taskRow) TableName() string { return "tasks" }

// snapshotRow is written by every Save. Its absence means the table has
// never been saved, even by another process sharing the file.
type snapshotRow struct {
	ID      int `gorm:"primaryKey;autoIncrement:false"`
	SavedAt time.Time
	Tasks   int
}

func (snapshotRow) TableName() string { return "snapshot" }

// Store keeps one row per task; Position preserves insertion order.
type Store struct {
	db *gorm.DB
}

func New(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}

	// in-memory databases vanish when the last connection closes
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// other processes may hold the write lock while they save
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// tables from before the marker existed already hold a snapshot
	legacy := db.Migrator().HasTable(&taskRow{}) && !db.Migrator().HasTable(&snapshotRow{})
	if err := db.AutoMigrate(&taskRow{}, &snapshotRow{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	if legacy {
		if err := db.Create(&snapshotRow{ID: 1, SavedAt: time.Now().UTC()}).Error; err != nil {
			return nil, fmt.Errorf("mark legacy snapshot: %w", err)
		}
	}

	log.Info().Str("dsn", dsn).Msg("sqlite task store ready")
	return &Store{db: db}, nil
}

// Load reads the marker and the rows in one transaction so a concurrent Save
// from another process is seen whole or not at all.
func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var saved int64
		if err := tx.Model(&snapshotRow{}).Count(&saved).Error; err != nil {
			return err
		}
		if saved == 0 {
			return ports.ErrNoSnapshot
		}
		return tx.Order("position asc").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", r.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Save replaces every row in one transaction.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	rows := make([]taskRow, 0, len(tasks))
	for i, t := range tasks {
		r, err := fromDomain(i, t)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&taskRow{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
		return tx.Save(&snapshotRow{ID: 1, SavedAt: time.Now().UTC(), Tasks: len(rows)}).Error
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromDomain(pos int, t domain.Task) (taskRow, error) {
	r := taskRow{
		ID:            t.ID,
		Position:      pos,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		DueDate:       t.DueDate,
		Duration:      t.Duration,
		ExpiredReason: string(t.ExpiredReason),
	}
	if len(t.StreamingData) > 0 {
		b, err := json.Marshal(t.StreamingData)
		if err != nil {
			return taskRow{}, err
		}
		r.StreamingData = string(b)
	}
	return r, nil
}

func (r taskRow) toDomain() (domain.Task, error) {
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return domain.Task{}, err
	}
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.Task{}, err
	}

	t := domain.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Status:        status,
		Priority:      priority,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DueDate:       r.DueDate,
		Duration:      r.Duration,
		ExpiredReason: domain.ExpiryReason(r.ExpiredReason),
	}
	if r.StreamingData != "" {
		if err := json.Unmarshal([]byte(r.StreamingData), &t.StreamingData); err != nil {
			return domain.Task{}, err
		}
	}
	return t, nil
}
