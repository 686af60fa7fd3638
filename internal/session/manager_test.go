package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/types"
)

// fakeRunner produces a canned outcome per run, optionally blocking until
// released so tests can observe intermediate states.
type fakeRunner struct {
	mu      sync.Mutex
	outcome *analysis.Outcome
	err     error
	block   chan struct{}
	runs    int
	tasks   [][]types.TaskType
}

func (f *fakeRunner) Run(_ context.Context, _ *artifact.Descriptor, tasks []types.TaskType, _ persona.Persona) (*analysis.Outcome, error) {
	f.mu.Lock()
	f.runs++
	f.tasks = append(f.tasks, tasks)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func completeOutcome() *analysis.Outcome {
	conf := 0.8
	return &analysis.Outcome{
		Verdict: analysis.VerdictComplete,
		Results: map[types.TaskType]*analysis.TaskResult{
			types.TaskDescription: {Task: types.TaskDescription, Succeeded: true, Text: "A seascape.", Confidence: 0.8},
		},
		AggregateConfidence: &conf,
	}
}

func partialOutcome() *analysis.Outcome {
	conf := 0.8
	return &analysis.Outcome{
		Verdict: analysis.VerdictPartial,
		Results: map[types.TaskType]*analysis.TaskResult{
			types.TaskDescription: {Task: types.TaskDescription, Succeeded: true, Text: "A seascape.", Confidence: 0.8},
			types.TaskKeywords:    {Task: types.TaskKeywords, ErrorKind: types.CodeProviderUnavailable, ErrorDetail: "both providers failed"},
		},
		AggregateConfidence: &conf,
	}
}

func sessionDescriptor() *artifact.Descriptor {
	return &artifact.Descriptor{
		Ref:     "artwork-7",
		Kind:    artifact.KindArtwork,
		Title:   "Tidal Study",
		Text:    "A layered seascape.",
		OwnerID: uuid.New(),
	}
}

func waitTerminal(t *testing.T, m *Manager, id uuid.UUID) *JobView {
	t.Helper()
	var view *JobView
	require.Eventually(t, func() bool {
		v, err := m.Get(id)
		if err != nil {
			return false
		}
		view = v
		return v.State.Terminal()
	}, time.Second, time.Millisecond)
	return view
}

func TestStart_SettlesComplete(t *testing.T) {
	runner := &fakeRunner{outcome: completeOutcome(), block: make(chan struct{})}
	m := NewManager(runner, nil, nil)

	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(types.RoleVerifiedArtist))
	require.NoError(t, err)
	assert.Equal(t, types.AllTasks(), view.Tasks)
	assert.Nil(t, view.Results, "results must not be exposed before settlement")
	close(runner.block)

	settled := waitTerminal(t, m, view.ID)
	assert.Equal(t, StateComplete, settled.State)
	require.NotNil(t, settled.Results)
	assert.Equal(t, "A seascape.", settled.Results[types.TaskDescription].Text)
	require.NotNil(t, settled.AggregateConfidence)
	assert.InDelta(t, 0.8, *settled.AggregateConfidence, 1e-9)
}

func TestStart_SettlesPartialAndFailed(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: partialOutcome()}, nil, nil)
	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)
	assert.Equal(t, StatePartial, waitTerminal(t, m, view.ID).State)

	failedOutcome := &analysis.Outcome{
		Verdict: analysis.VerdictFailed,
		Results: map[types.TaskType]*analysis.TaskResult{
			types.TaskStyle: {Task: types.TaskStyle, ErrorKind: types.CodeProviderUnavailable},
		},
	}
	m2 := NewManager(&fakeRunner{outcome: failedOutcome}, nil, nil)
	view2, err := m2.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)
	settled := waitTerminal(t, m2, view2.ID)
	assert.Equal(t, StateFailed, settled.State)
	assert.Nil(t, settled.AggregateConfidence)
}

func TestStart_RejectsInvalidInput(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: completeOutcome()}, nil, nil)

	_, err := m.Start(context.Background(), &artifact.Descriptor{}, nil, persona.Resolve(""))
	require.Error(t, err)

	_, err = m.Start(context.Background(), sessionDescriptor(), []types.TaskType{"sentiment"}, persona.Resolve(""))
	require.Error(t, err)
	var coded *types.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, types.CodeInvalidInput, coded.Code)
}

func TestStart_RejectsDuplicateTasksBeforeDispatch(t *testing.T) {
	runner := &fakeRunner{outcome: completeOutcome()}
	m := NewManager(runner, nil, nil)

	_, err := m.Start(context.Background(), sessionDescriptor(),
		[]types.TaskType{types.TaskStyle, types.TaskStyle}, persona.Resolve(""))
	require.Error(t, err)

	var coded *types.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, types.CodeInvalidInput, coded.Code)

	// Rejected before a job exists: nothing was dispatched.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, runner.runCount())
}

func TestExecute_RunnerErrorIsRecorded(t *testing.T) {
	runner := &fakeRunner{err: types.NewCodedError(types.CodeInvalidInput, "invalid artifact", nil)}
	m := NewManager(runner, nil, nil)

	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)

	settled := waitTerminal(t, m, view.ID)
	assert.Equal(t, StateFailed, settled.State)
	assert.Contains(t, settled.ErrorDetail, "invalid artifact")
}

// recordingRecorder captures lifecycle events for inspection.
type recordingRecorder struct {
	mu      sync.Mutex
	created []State
	settled []State
}

func (r *recordingRecorder) RecordCreated(_ context.Context, view *JobView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, view.State)
	return nil
}

func (r *recordingRecorder) RecordSettled(_ context.Context, view *JobView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = append(r.settled, view.State)
	return nil
}

func TestStart_JobIsCreatedIdleThenDispatched(t *testing.T) {
	recorder := &recordingRecorder{}
	m := NewManager(&fakeRunner{outcome: completeOutcome()}, recorder, nil)

	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)

	recorder.mu.Lock()
	created := append([]State(nil), recorder.created...)
	recorder.mu.Unlock()
	require.Len(t, created, 1)
	assert.Equal(t, StateIdle, created[0])

	// By the time Start returns, the job has been handed to the executor.
	assert.Contains(t, []State{StateDispatched, StateRunning, StateComplete}, view.State)
	waitTerminal(t, m, view.ID)
}

func TestCancel_DiscardsLateResults(t *testing.T) {
	runner := &fakeRunner{outcome: completeOutcome(), block: make(chan struct{})}
	m := NewManager(runner, nil, nil)

	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)

	// Wait until the runner is actually in flight, then cancel.
	require.Eventually(t, func() bool { return runner.runCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, m.Cancel(view.ID))

	cancelled, err := m.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, cancelled.State)

	// Release the in-flight run; its results must be discarded.
	close(runner.block)
	time.Sleep(10 * time.Millisecond)

	after, err := m.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, after.State)
	assert.Nil(t, after.Results)

	outcome, state, err := m.Outcome(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, state)
	assert.Nil(t, outcome)
}

func TestCancel_TerminalJobRejected(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: completeOutcome()}, nil, nil)
	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)
	waitTerminal(t, m, view.ID)

	err = m.Cancel(view.ID)
	require.Error(t, err)
	var coded *types.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, types.CodeInvalidInput, coded.Code)

	// The terminal state was not overwritten.
	after, err := m.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, after.State)
}

func TestCancel_UnknownJob(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: completeOutcome()}, nil, nil)
	assert.Error(t, m.Cancel(uuid.New()))
}

func TestRetry_CreatesNewJobForFailedTasks(t *testing.T) {
	runner := &fakeRunner{outcome: partialOutcome()}
	m := NewManager(runner, nil, nil)

	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(types.RoleCollector))
	require.NoError(t, err)
	waitTerminal(t, m, view.ID)

	retried, err := m.Retry(context.Background(), view.ID, []types.TaskType{types.TaskKeywords})
	require.NoError(t, err)
	assert.NotEqual(t, view.ID, retried.ID, "retry must produce a fresh job")
	assert.Equal(t, []types.TaskType{types.TaskKeywords}, retried.Tasks)
	assert.Equal(t, view.ArtifactRef, retried.ArtifactRef)
	assert.Equal(t, view.Persona, retried.Persona)

	waitTerminal(t, m, retried.ID)

	// The original job's terminal state is untouched.
	original, err := m.Get(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePartial, original.State)
}

func TestRetry_RejectsSucceededTask(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: partialOutcome()}, nil, nil)
	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)
	waitTerminal(t, m, view.ID)

	_, err = m.Retry(context.Background(), view.ID, []types.TaskType{types.TaskDescription})
	require.Error(t, err)
	var coded *types.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, types.CodeInvalidInput, coded.Code)
}

func TestRetry_RejectsNonRetryableStates(t *testing.T) {
	runner := &fakeRunner{outcome: completeOutcome(), block: make(chan struct{})}
	m := NewManager(runner, nil, nil)
	view, err := m.Start(context.Background(), sessionDescriptor(), nil, persona.Resolve(""))
	require.NoError(t, err)

	// Still running: not retryable.
	_, err = m.Retry(context.Background(), view.ID, []types.TaskType{types.TaskDescription})
	require.Error(t, err)

	close(runner.block)
	waitTerminal(t, m, view.ID)

	// Complete: not retryable either.
	_, err = m.Retry(context.Background(), view.ID, []types.TaskType{types.TaskDescription})
	require.Error(t, err)
}

func TestOwner(t *testing.T) {
	m := NewManager(&fakeRunner{outcome: completeOutcome()}, nil, nil)
	d := sessionDescriptor()
	view, err := m.Start(context.Background(), d, nil, persona.Resolve(""))
	require.NoError(t, err)

	owner, err := m.Owner(view.ID)
	require.NoError(t, err)
	assert.Equal(t, d.OwnerID, owner)

	_, err = m.Owner(uuid.New())
	assert.Error(t, err)
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateDispatched.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateComplete.Terminal())
	assert.True(t, StatePartial.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
}
