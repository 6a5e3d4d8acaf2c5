package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/lunchbot/internal/menu"
)

// RunStatus is the state of a single lunch run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusSkipped   RunStatus = "skipped"
	StatusDryRun    RunStatus = "dry_run"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run tracks one pass of the pipeline for a date.
type Run struct {
	mu sync.Mutex

	ID     string
	Date   string
	DryRun bool

	Status RunStatus
	Phase  string

	CreatedAt time.Time
	UpdatedAt time.Time

	sections  int
	dropped   []menu.DroppedBlock
	message   string
	triggered []string
	errors    []string
}

func newRun(id string, day time.Time, dryRun bool) *Run {
	now := time.Now()
	return &Run{
		ID:        id,
		Date:      day.Format(time.DateOnly),
		DryRun:    dryRun,
		Status:    StatusRunning,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.UpdatedAt = time.Now()
}

// SetReport records what the run extracted and rendered.
func (r *Run) SetReport(rep *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = len(rep.Sections)
	r.dropped = rep.Dropped
	r.message = rep.Text
	r.UpdatedAt = time.Now()
}

// AddTriggered records a keyword whose trigger fired.
func (r *Run) AddTriggered(keyword string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggered = append(r.triggered, keyword)
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string              `json:"run_id"`
	Date      string              `json:"date"`
	DryRun    bool                `json:"dry_run"`
	Status    RunStatus           `json:"status"`
	Phase     string              `json:"phase"`
	Sections  int                 `json:"sections"`
	Dropped   []menu.DroppedBlock `json:"dropped_blocks"`
	Message   string              `json:"message"`
	Triggered []string            `json:"triggered"`
	Errors    []string            `json:"errors"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run. Slices are never nil.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunSnapshot{
		ID:        r.ID,
		Date:      r.Date,
		DryRun:    r.DryRun,
		Status:    r.Status,
		Phase:     r.Phase,
		Sections:  r.sections,
		Dropped:   append([]menu.DroppedBlock{}, r.dropped...),
		Message:   r.message,
		Triggered: append([]string{}, r.triggered...),
		Errors:    append([]string{}, r.errors...),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Len returns the number of tracked runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Cleanup removes runs not updated within the TTL.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		expired := now.Sub(run.UpdatedAt) > s.ttl
		run.mu.Unlock()
		if expired {
			delete(s.runs, id)
		}
	}
}
