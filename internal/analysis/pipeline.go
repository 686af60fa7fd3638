package analysis

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/gateway"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/prompt"
	"github.com/marisol/atelier/internal/types"
)

// Generator is the outbound generation capability the pipeline dispatches
// through. Satisfied by *gateway.Gateway; tests inject fakes.
type Generator interface {
	Generate(ctx context.Context, req *gateway.GenerationRequest) (*gateway.GenerationResult, error)
}

// Pipeline turns one artifact and a set of task types into settled task
// results. Tasks are independent and run concurrently; one task's failure
// never aborts its siblings.
type Pipeline struct {
	gen Generator
	log *logging.Logger
}

// New builds a pipeline over a generator.
func New(gen Generator, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{gen: gen, log: log}
}

// Run dispatches one generation call per task type and waits for all of them
// to settle before returning. Validation failures (bad descriptor, empty or
// unknown task set) are rejected before any I/O.
func (p *Pipeline) Run(ctx context.Context, d *artifact.Descriptor, tasks []types.TaskType, pers persona.Persona) (*Outcome, error) {
	if err := d.Validate(); err != nil {
		return nil, types.NewCodedError(types.CodeInvalidInput, "invalid artifact", err)
	}
	if len(tasks) == 0 {
		return nil, types.NewCodedError(types.CodeInvalidInput, "no task types requested", nil)
	}
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

	results := make(map[types.TaskType]*TaskResult, len(tasks))
	var mu sync.Mutex

	// Join-only group: every task records its own outcome, so the group
	// itself never returns an error and no task short-circuits another.
	g, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			r := p.runTask(groupCtx, task, d, pers)
			mu.Lock()
			results[task] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	outcome := buildOutcome(results)
	p.log.Info("analysis settled",
		"artifact", d.Ref, "verdict", outcome.Verdict,
		"succeeded", len(outcome.Succeeded()), "failed", len(outcome.Failed()))
	return outcome, nil
}

// runTask executes a single task end to end: prompt construction, persona
// framing, one gateway call, output normalization. Never panics or returns;
// all failure modes settle into the TaskResult.
func (p *Pipeline) runTask(ctx context.Context, task types.TaskType, d *artifact.Descriptor, pers persona.Persona) *TaskResult {
	pr, err := prompt.Build(task, d)
	if err != nil {
		return failedResult(task, err)
	}

	// Persona shapes tone only; the factual instructions come from the
	// catalog unchanged.
	framed := pers.Framing + "\n\n" + pr.Instruction

	req := &gateway.GenerationRequest{
		Task:        task,
		Prompt:      framed,
		Temperature: pr.Temperature,
		Persona:     pers.ID,
		ArtifactRef: d.Ref,
	}

	gen, err := p.gen.Generate(ctx, req)
	if err != nil {
		return failedResult(task, err)
	}

	result := &TaskResult{
		Task:         task,
		Succeeded:    true,
		Confidence:   gen.Confidence,
		ProviderUsed: gen.ProviderUsed,
		FallbackUsed: gen.FallbackUsed,
		Model:        gen.Model,
		Prompt:       framed,
		Temperature:  pr.Temperature,
	}

	switch pr.Shape {
	case prompt.ShapeTagList:
		tags, err := NormalizeTags(gen.Text)
		if err != nil {
			return failedResult(task, types.NewCodedError(types.CodeUnexpectedError, "output normalization failed", err))
		}
		result.Tags = tags
	default:
		text, err := NormalizeProse(gen.Text)
		if err != nil {
			return failedResult(task, types.NewCodedError(types.CodeUnexpectedError, "output normalization failed", err))
		}
		result.Text = text
	}

	return result
}

// failedResult settles a task as failed with a distinguishable error kind.
func failedResult(task types.TaskType, err error) *TaskResult {
	kind := types.CodeUnexpectedError
	var coded *types.CodedError
	if errors.As(err, &coded) {
		kind = coded.Code
	}
	return &TaskResult{
		Task:        task,
		ErrorKind:   kind,
		ErrorDetail: err.Error(),
	}
}
