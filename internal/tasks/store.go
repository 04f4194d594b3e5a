// Package tasks tracks long-running import jobs in memory. Task state is
// intentionally not persisted: a restart forfeits progress reporting for
// jobs that were in flight, never the imported data itself.
package tasks

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vodworks/catalog-backend/internal/logger"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// maxErrors bounds the per-task error list so a pathological import can't
// grow task state without limit. Later errors are counted, not stored.
const maxErrors = 50

// Task is a point-in-time snapshot of one job. Get returns copies, so
// callers can hand a Task to a JSON encoder without racing the worker.
type Task struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Total           int `json:"total"`
	Processed       int `json:"processed"`
	Imported        int `json:"imported"`
	Duplicates      int `json:"duplicates"`
	SkippedExisting int `json:"skipped_existing"`
	Failed          int `json:"failed"`

	EpisodeStatus   Status `json:"episode_generation_status,omitempty"`
	EpisodeProgress int    `json:"episode_generation_progress"`

	Message     string   `json:"message,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	ErrorsTotal int      `json:"errors_total"`
}

type Store struct {
	mu    sync.Mutex
	tasks map[string]*Task
	ttl   time.Duration
	log   *logger.Logger
}

// NewStore creates a task store whose finished tasks expire after ttl.
func NewStore(ttl time.Duration, baseLog *logger.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		tasks: make(map[string]*Task),
		ttl:   ttl,
		log:   baseLog.With("component", "TaskStore"),
	}
}

// Create registers a new pending task and returns its id.
func (s *Store) Create(kind string) string {
	id := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.tasks[id] = &Task{
		ID:        id,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Get returns a snapshot of one task.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return snapshot(t), true
}

// Update applies a mutation under the store lock. Progress is clamped to
// 0..100 and UpdatedAt refreshed. Unknown ids are ignored (the task may
// have expired while its worker was still running).
func (s *Store) Update(id string, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return
	}
	fn(t)
	if t.EpisodeProgress < 0 {
		t.EpisodeProgress = 0
	}
	if t.EpisodeProgress > 100 {
		t.EpisodeProgress = 100
	}
	t.UpdatedAt = time.Now()
}

// AddError appends to the task's bounded error list.
func (s *Store) AddError(id, msg string) {
	s.Update(id, func(t *Task) {
		t.ErrorsTotal++
		if len(t.Errors) < maxErrors {
			t.Errors = append(t.Errors, msg)
		}
	})
}

func snapshot(t *Task) Task {
	out := *t
	if t.Errors != nil {
		out.Errors = make([]string, len(t.Errors))
		copy(out.Errors, t.Errors)
	}
	return out
}

// sweepLocked drops finished tasks older than the ttl. Running tasks are
// kept regardless of age.
func (s *Store) sweepLocked(now time.Time) {
	for id, t := range s.tasks {
		if t.Status != StatusCompleted && t.Status != StatusFailed {
			continue
		}
		if now.Sub(t.UpdatedAt) > s.ttl {
			delete(s.tasks, id)
			s.log.Debug("expired task", "task_id", id, "kind", t.Kind)
		}
	}
}
