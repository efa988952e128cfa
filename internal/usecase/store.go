package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"taskboard/internal/domain"
	"taskboard/internal/lifecycle"
	"taskboard/internal/ports"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxTitleLen       = 60
	maxDescriptionLen = 1000
)

type Option func(*TaskStore)

func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

func WithThreshold(minutes int) Option {
	return func(s *TaskStore) { s.thresholdMinutes = minutes }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *TaskStore) { s.newID = gen }
}

// WithSeed creates sample tasks when the persister has never been written.
func WithSeed(seed bool) Option {
	return func(s *TaskStore) { s.seed = seed }
}

// WithReload re-reads the persister before every operation. Use it when
// another process writes to the same backend.
func WithReload(reload bool) Option {
	return func(s *TaskStore) { s.reload = reload }
}

// TaskStore owns the task collection. The in-memory slice is authoritative;
// the persister is written after every mutation on a best-effort basis.
type TaskStore struct {
	mu    sync.Mutex
	tasks []domain.Task
	p     ports.Persister

	thresholdMinutes int
	now              func() time.Time
	newID            func() string
	seed             bool
	reload           bool
}

func NewTaskStore(ctx context.Context, p ports.Persister, opts ...Option) *TaskStore {
	s := &TaskStore{
		p:                p,
		thresholdMinutes: lifecycle.DefaultThresholdMinutes,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	tasks, err := p.Load(ctx)
	switch {
	case errors.Is(err, ports.ErrNoSnapshot):
		if s.seed {
			s.tasks = sampleTasks(s.now(), s.newID)
			s.persist(ctx)
		}
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Msg("failed to load tasks, starting empty")
	default:
		s.tasks = tasks
	}

	log.Ctx(ctx).Info().Int("tasks", len(s.tasks)).Int("threshold_minutes", s.thresholdMinutes).Msg("task store ready")
	return s
}

func (s *TaskStore) ThresholdMinutes() int { return s.thresholdMinutes }

func (s *TaskStore) Create(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return domain.Task{}, err
	}
	if err := validateDescription(in.Description); err != nil {
		return domain.Task{}, err
	}
	if err := validateDuration(in.Duration); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	now := s.now()
	t := domain.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     now.Add(lifecycle.Threshold(s.thresholdMinutes)),
	}
	if in.Priority != nil && *in.Priority != "" {
		t.Priority = *in.Priority
	}
	if in.Duration != nil {
		t.Duration = domain.IntPtr(*in.Duration)
	}
	if in.Status != nil && *in.Status != "" {
		t.Status = *in.Status
		if t.Status == domain.StatusExpired {
			t.ExpiredReason = domain.ReasonManual
		}
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
		if t.DueDate.Before(now) {
			t.Status = domain.StatusExpired
			t.ExpiredReason = domain.ReasonPastDue
		}
	}

	s.tasks = append(s.tasks, t)
	s.persist(ctx)

	log.Ctx(ctx).Info().Str("id", t.ID).Str("status", string(t.Status)).Msg("task created")
	return t.Clone(), nil
}

// FindAll sweeps first so the result reflects expiry at the time of the call.
func (s *TaskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	s.sweep(ctx)

	out := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (s *TaskStore) FindByID(ctx context.Context, id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, &domain.NotFoundError{ID: id}
	}
	return s.tasks[i].Clone(), nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return domain.Task{}, err
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return domain.Task{}, err
		}
	}
	if err := validateDuration(patch.Duration); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, &domain.NotFoundError{ID: id}
	}

	now := s.now()
	t := s.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil && *patch.Priority != "" {
		t.Priority = *patch.Priority
	}
	if patch.Duration != nil {
		t.Duration = domain.IntPtr(*patch.Duration)
	}
	if patch.Status != nil && *patch.Status != "" {
		t.Status = *patch.Status
		t.ExpiredReason = domain.ReasonNone
		if t.Status == domain.StatusExpired {
			t.ExpiredReason = domain.ReasonManual
		}
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
		if t.DueDate.Before(now) && t.Status != domain.StatusDone {
			t.Status = domain.StatusExpired
			t.ExpiredReason = domain.ReasonPastDue
		}
	}
	t.UpdatedAt = now

	s.tasks[i] = t
	s.persist(ctx)

	log.Ctx(ctx).Info().Str("id", t.ID).Str("status", string(t.Status)).Msg("task updated")
	return t.Clone(), nil
}

// AttachStreaming stores a feed snapshot on the task.
func (s *TaskStore) AttachStreaming(ctx context.Context, id string, items []domain.StreamItem) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return domain.Task{}, &domain.NotFoundError{ID: id}
	}

	t := s.tasks[i]
	t.StreamingData = make([]domain.StreamItem, len(items))
	for j, it := range items {
		t.StreamingData[j] = it.Clone()
	}
	t.UpdatedAt = s.now()

	s.tasks[i] = t
	s.persist(ctx)
	return t.Clone(), nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx)

	log.Ctx(ctx).Info().Str("id", id).Msg("task deleted")
	return true, nil
}

// Sweep expires every task the lifecycle rule fires for and returns them.
func (s *TaskStore) Sweep(ctx context.Context) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	return s.sweep(ctx)
}

func (s *TaskStore) sweep(ctx context.Context) []domain.Task {
	now := s.now()

	var expired []domain.Task
	for i := range s.tasks {
		if lifecycle.Apply(&s.tasks[i], now, s.thresholdMinutes) {
			expired = append(expired, s.tasks[i].Clone())
		}
	}

	if len(expired) > 0 {
		s.persist(ctx)
	}
	return expired
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persist never fails the caller; durability is best effort.
func (s *TaskStore) persist(ctx context.Context) {
	snapshot := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		snapshot[i] = t.Clone()
	}

	if err := s.p.Save(ctx, snapshot); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		log.Ctx(ctx).Error().Err(err).Int("tasks", len(snapshot)).Msg("failed to save tasks")
	}
}

func (s *TaskStore) refresh(ctx context.Context) {
	if !s.reload {
		return
	}

	tasks, err := s.p.Load(ctx)
	switch {
	case errors.Is(err, ports.ErrNoSnapshot):
	case err != nil:
		log.Ctx(ctx).Warn().Err(err).Msg("failed to reload tasks, keeping in-memory copy")
	default:
		s.tasks = tasks
	}
}

func validateTitle(title string) error {
	if title == "" {
		return &domain.ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return &domain.ValidationError{Field: "title", Message: fmt.Sprintf("Title cannot be more than %d characters", maxTitleLen)}
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return &domain.ValidationError{Field: "description", Message: fmt.Sprintf("Description cannot be more than %d characters", maxDescriptionLen)}
	}
	return nil
}

func validateDuration(d *int) error {
	if d != nil && *d <= 0 {
		return &domain.ValidationError{Field: "duration", Message: "Duration must be a positive number of minutes"}
	}
	return nil
}

func sampleTasks(now time.Time, newID func() string) []domain.Task {
	day := 24 * time.Hour
	return []domain.Task{
		{
			ID:          newID(),
			Title:       "Complete project setup",
			Description: "Initialize repository and create project structure",
			Status:      domain.StatusDone,
			Priority:    domain.PriorityMedium,
			CreatedAt:   now.Add(-3 * day),
			UpdatedAt:   now.Add(-2 * day),
			DueDate:     now.Add(day),
			Duration:    domain.IntPtr(120),
		},
		{
			ID:          newID(),
			Title:       "Implement user authentication",
			Description: "Add login and registration functionality",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityHigh,
			CreatedAt:   now.Add(-2 * day),
			UpdatedAt:   now.Add(-1 * day),
			DueDate:     now.Add(7 * day),
			Duration:    domain.IntPtr(180),
		},
	}
}
