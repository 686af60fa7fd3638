package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/types"
)

// Runner executes the analysis for one job. Satisfied by *analysis.Pipeline.
type Runner interface {
	Run(ctx context.Context, d *artifact.Descriptor, tasks []types.TaskType, pers persona.Persona) (*analysis.Outcome, error)
}

// job is the manager-owned record for one analysis job. One job per
// artifact-and-trigger; never shared across artifacts.
type job struct {
	id         uuid.UUID
	descriptor *artifact.Descriptor
	persona    persona.Persona
	tasks      []types.TaskType

	state   State
	outcome *analysis.Outcome
	// errorDetail holds the cause when the run itself errored rather than
	// settling per-task results.
	errorDetail string
	cancelled   bool
	createdAt   time.Time
	updatedAt   time.Time
}

// JobView is an immutable snapshot of a job handed to callers.
type JobView struct {
	ID                  uuid.UUID                              `json:"id"`
	ArtifactRef         string                                 `json:"artifact_ref"`
	OwnerID             uuid.UUID                              `json:"owner_id"`
	Persona             persona.ID                             `json:"persona"`
	Tasks               []types.TaskType                       `json:"tasks"`
	State               State                                  `json:"state"`
	Results             map[types.TaskType]*analysis.TaskResult `json:"results,omitempty"`
	AggregateConfidence *float64                                `json:"aggregate_confidence,omitempty"`
	ErrorDetail         string                                  `json:"error_detail,omitempty"`
	CreatedAt           time.Time                               `json:"created_at"`
	UpdatedAt           time.Time                               `json:"updated_at"`
}

// Manager owns all live analysis jobs for the process. A UI session may hold
// many concurrent jobs (one per artwork in a bulk portfolio analysis), each
// independently addressable by its id.
type Manager struct {
	runner   Runner
	recorder Recorder
	log      *logging.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*job
}

// NewManager builds a manager. recorder may be nil; nothing is then persisted
// beyond process memory.
func NewManager(runner Runner, recorder Recorder, log *logging.Logger) *Manager {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		runner:   runner,
		recorder: recorder,
		log:      log,
		jobs:     make(map[uuid.UUID]*job),
	}
}

// Start creates a job for the artifact and dispatches its tasks. The returned
// view reflects the dispatched state; callers poll Get for settlement.
func (m *Manager) Start(ctx context.Context, d *artifact.Descriptor, tasks []types.TaskType, pers persona.Persona) (*JobView, error) {
	if err := d.Validate(); err != nil {
		return nil, types.NewCodedError(types.CodeInvalidInput, "invalid artifact", err)
	}
	if len(tasks) == 0 {
		tasks = types.AllTasks()
	}
	// Mirrors the pipeline's pre-I/O validation: anything the pipeline would
	// reject is rejected here, before a job ever exists.
	seen := make(map[types.TaskType]bool, len(tasks))
	for _, task := range tasks {
		if !types.ValidTask(task) {
			return nil, types.NewCodedError(types.CodeInvalidInput, "unknown task type: "+string(task), nil)
		}
		if seen[task] {
			return nil, types.NewCodedError(types.CodeInvalidInput, "duplicate task type: "+string(task), nil)
		}
		seen[task] = true
	}

	now := time.Now()
	j := &job{
		id:         uuid.New(),
		descriptor: d,
		persona:    pers,
		tasks:      tasks,
		state:      StateIdle,
		createdAt:  now,
		updatedAt:  now,
	}

	m.mu.Lock()
	m.jobs[j.id] = j
	m.mu.Unlock()

	if err := m.recorder.RecordCreated(ctx, m.snapshot(j)); err != nil {
		m.log.Warn("failed to persist job creation", "job", j.id, "error", err)
	}

	m.transition(j, StateDispatched)
	go m.execute(j)

	return m.Get(j.id)
}

// execute runs the job's tasks and settles the terminal state. It runs on a
// background context so the job outlives the HTTP request that started it.
func (m *Manager) execute(j *job) {
	m.transition(j, StateRunning)

	m.mu.RLock()
	cancelled := j.cancelled
	m.mu.RUnlock()
	if cancelled {
		return
	}

	outcome, err := m.runner.Run(context.Background(), j.descriptor, j.tasks, j.persona)

	// Completion boundary: this is where cancellation is honored. In-flight
	// provider calls were not aborted; their results are discarded here.
	m.mu.Lock()
	if j.cancelled || j.state.Terminal() {
		m.mu.Unlock()
		m.log.Info("discarding results of cancelled job", "job", j.id)
		return
	}
	if err != nil {
		j.state = StateFailed
		j.errorDetail = err.Error()
		j.updatedAt = time.Now()
	} else {
		j.outcome = outcome
		j.state = stateForVerdict(outcome.Verdict)
		j.updatedAt = time.Now()
	}
	view := m.snapshotLocked(j)
	m.mu.Unlock()

	if err != nil {
		m.log.Error("job execution failed", "job", j.id, "error", err)
	}
	if rerr := m.recorder.RecordSettled(context.Background(), view); rerr != nil {
		m.log.Warn("failed to persist job settlement", "job", j.id, "error", rerr)
	}
	m.log.Info("job settled", "job", j.id, "state", view.State)
}

// Get returns a snapshot of a job.
func (m *Manager) Get(id uuid.UUID) (*JobView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return m.snapshotLocked(j), nil
}

// Cancel marks a dispatched or running job as cancelled. The cancellation is
// cooperative: in-flight provider calls finish, but their results are
// discarded at the completion boundary and no metadata is ever produced.
func (m *Manager) Cancel(id uuid.UUID) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("job not found: %s", id)
	}
	if j.state.Terminal() {
		m.mu.Unlock()
		return types.NewCodedError(types.CodeInvalidInput,
			fmt.Sprintf("job %s already settled as %s", id, j.state), nil)
	}
	j.cancelled = true
	j.state = StateCancelled
	j.updatedAt = time.Now()
	view := m.snapshotLocked(j)
	m.mu.Unlock()

	if err := m.recorder.RecordSettled(context.Background(), view); err != nil {
		m.log.Warn("failed to persist job cancellation", "job", id, "error", err)
	}
	return nil
}

// Retry starts a new job covering only the named task types of a partially
// failed job. Terminal states are write-once, so a retry never mutates the
// original job; it produces a fresh one over the same artifact and persona.
func (m *Manager) Retry(ctx context.Context, id uuid.UUID, tasks []types.TaskType) (*JobView, error) {
	m.mu.RLock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("job not found: %s", id)
	}
	if j.state != StatePartial && j.state != StateFailed {
		m.mu.RUnlock()
		return nil, types.NewCodedError(types.CodeInvalidInput,
			fmt.Sprintf("job %s is %s; only partial or failed jobs can be retried", id, j.state), nil)
	}
	failed := make(map[types.TaskType]bool)
	if j.outcome != nil {
		for _, task := range j.outcome.Failed() {
			failed[task] = true
		}
	} else {
		for _, task := range j.tasks {
			failed[task] = true
		}
	}
	descriptor := j.descriptor
	pers := j.persona
	m.mu.RUnlock()

	for _, task := range tasks {
		if !failed[task] {
			return nil, types.NewCodedError(types.CodeInvalidInput,
				fmt.Sprintf("task %s did not fail in job %s", task, id), nil)
		}
	}

	return m.Start(ctx, descriptor, tasks, pers)
}

// Owner returns the owner id of the job's artifact, for ownership checks at
// the authorization boundary.
func (m *Manager) Owner(id uuid.UUID) (uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return uuid.Nil, fmt.Errorf("job not found: %s", id)
	}
	return j.descriptor.OwnerID, nil
}

// transition moves a non-terminal job to a new state. Attempts to leave a
// terminal state are no-ops, never overwrites.
func (m *Manager) transition(j *job, next State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.state.Terminal() {
		return
	}
	j.state = next
	j.updatedAt = time.Now()
}

func (m *Manager) snapshot(j *job) *JobView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(j)
}

// snapshotLocked builds a caller-safe copy. Callers must hold at least the
// read lock.
func (m *Manager) snapshotLocked(j *job) *JobView {
	view := &JobView{
		ID:          j.id,
		ArtifactRef: j.descriptor.Ref,
		OwnerID:     j.descriptor.OwnerID,
		Persona:     j.persona.ID,
		Tasks:       append([]types.TaskType(nil), j.tasks...),
		State:       j.state,
		ErrorDetail: j.errorDetail,
		CreatedAt:   j.createdAt,
		UpdatedAt:   j.updatedAt,
	}
	// Results are only exposed once the job has settled; the delivery
	// contract is job-level, not per-task trickle.
	if j.state.Terminal() && j.outcome != nil {
		view.Results = j.outcome.Results
		view.AggregateConfidence = j.outcome.AggregateConfidence
	}
	return view
}

// Outcome returns the settled outcome of a terminal job. Callers needing the
// full per-task detail (metadata building) use this instead of JobView.
func (m *Manager) Outcome(id uuid.UUID) (*analysis.Outcome, State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, "", fmt.Errorf("job not found: %s", id)
	}
	return j.outcome, j.state, nil
}
