package pipeline

import (
	"sync"
	"time"

	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/skeleton"
)

// RunStatus represents the state of a document assembly run.
type RunStatus string

const (
	StatusPending  RunStatus = "pending"
	StatusRunning  RunStatus = "running"
	StatusCooldown RunStatus = "cooldown"
	StatusMerged   RunStatus = "merged"
	StatusDone     RunStatus = "done"
	StatusError    RunStatus = "error"
)

// Run tracks the state of one document assembly from submission to artifact.
type Run struct {
	mu sync.Mutex

	ID string `json:"run_id"`

	Status       RunStatus `json:"status"`
	CurrentStage string    `json:"current_stage"`

	Progress Progress `json:"progress"`

	ArtifactPath string    `json:"artifact_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Internal: not serialized.
	skeleton *skeleton.ProjectSkeleton
	stages   *content.StageContentMap
	audit    []string
	errors   []string
}

// Progress tracks stage execution progress.
type Progress struct {
	TotalStages     int      `json:"total_stages"`
	StagesCompleted int      `json:"stages_completed"`
	Audit           []string `json:"audit"`
	Errors          []string `json:"errors"`
}

// NewRun creates a pending run for a validated skeleton.
func NewRun(sk *skeleton.ProjectSkeleton, totalStages int) *Run {
	now := time.Now()
	return &Run{
		ID:        newRunID(),
		Status:    StatusPending,
		Progress:  Progress{TotalStages: totalStages},
		CreatedAt: now,
		UpdatedAt: now,
		skeleton:  sk,
		stages:    content.NewStageContentMap(),
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.CurrentStage = stage
	r.UpdatedAt = time.Now()
}

// AddError records a fatal or stage-level error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// AddAudit records a non-fatal repair or substitution note.
func (r *Run) AddAudit(note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audit = append(r.audit, note)
	r.Progress.Audit = r.audit
	r.UpdatedAt = time.Now()
}

// StageCompleted stores a stage's parsed content and bumps the counter.
func (r *Run) StageCompleted(stageID string, rec content.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages.Put(stageID, rec)
	r.Progress.StagesCompleted++
	r.UpdatedAt = time.Now()
}

// SetArtifact records the rendered artifact's path.
func (r *Run) SetArtifact(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ArtifactPath = path
	r.UpdatedAt = time.Now()
}

// Skeleton returns the run's form data.
func (r *Run) Skeleton() *skeleton.ProjectSkeleton {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skeleton
}

// Stages returns the accumulated stage content.
func (r *Run) Stages() *content.StageContentMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stages
}

// lastUpdate reads UpdatedAt under the run's lock.
func (r *Run) lastUpdate() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.UpdatedAt
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID           string    `json:"run_id"`
	Status       RunStatus `json:"status"`
	CurrentStage string    `json:"current_stage"`
	Progress     Progress  `json:"progress"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	audit := r.Progress.Audit
	if audit == nil {
		audit = []string{}
	}
	errs := r.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return RunSnapshot{
		ID:           r.ID,
		Status:       r.Status,
		CurrentStage: r.CurrentStage,
		Progress: Progress{
			TotalStages:     r.Progress.TotalStages,
			StagesCompleted: r.Progress.StagesCompleted,
			Audit:           audit,
			Errors:          errs,
		},
		ArtifactPath: r.ArtifactPath,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
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

// Cleanup removes expired runs. Timestamps are read through lastUpdate
// because workers keep mutating runs while the store scans.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		if now.Sub(run.lastUpdate()) > s.ttl {
			delete(s.runs, id)
		}
	}
}
