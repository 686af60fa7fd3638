// Package analysis runs the per-artifact analysis pipeline: one concurrent
// generation call per task type, normalized into typed results.
package analysis

import (
	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/types"
)

// Verdict is the terminal classification of a finished set of tasks.
type Verdict string

// Verdicts.
const (
	VerdictComplete Verdict = "complete"
	VerdictPartial  Verdict = "partial"
	VerdictFailed   Verdict = "failed"
)

// TaskResult is the settled outcome of a single task. Immutable once
// produced. Exactly one of (Text/Tags) is populated for successes depending
// on the task's output shape; ErrorKind/ErrorDetail are set for failures.
type TaskResult struct {
	Task         types.TaskType  `json:"task"`
	Succeeded    bool            `json:"succeeded"`
	Text         string          `json:"text,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Confidence   float64         `json:"confidence,omitempty"`
	ProviderUsed llm.Provider    `json:"provider_used,omitempty"`
	FallbackUsed bool            `json:"fallback_used,omitempty"`
	Model        string          `json:"model,omitempty"`
	Prompt       string          `json:"-"`
	Temperature  float32         `json:"-"`
	ErrorKind    types.ErrorCode `json:"error_kind,omitempty"`
	ErrorDetail  string          `json:"error_detail,omitempty"`
}

// Outcome aggregates the settled results of every dispatched task. It is only
// built after all tasks have settled; AggregateConfidence is nil until then
// and remains nil when no task succeeded.
type Outcome struct {
	Verdict             Verdict                         `json:"verdict"`
	Results             map[types.TaskType]*TaskResult  `json:"results"`
	AggregateConfidence *float64                        `json:"aggregate_confidence,omitempty"`
}

// Succeeded returns the task types that succeeded.
func (o *Outcome) Succeeded() []types.TaskType {
	var out []types.TaskType
	for task, r := range o.Results {
		if r.Succeeded {
			out = append(out, task)
		}
	}
	return out
}

// Failed returns the task types that failed.
func (o *Outcome) Failed() []types.TaskType {
	var out []types.TaskType
	for task, r := range o.Results {
		if !r.Succeeded {
			out = append(out, task)
		}
	}
	return out
}

// buildOutcome classifies settled results and computes the aggregate
// confidence as the mean over succeeded tasks only.
func buildOutcome(results map[types.TaskType]*TaskResult) *Outcome {
	out := &Outcome{Results: results}

	var sum float64
	var succeeded int
	for _, r := range results {
		if r.Succeeded {
			sum += r.Confidence
			succeeded++
		}
	}

	switch {
	case succeeded == 0:
		out.Verdict = VerdictFailed
	case succeeded == len(results):
		out.Verdict = VerdictComplete
	default:
		out.Verdict = VerdictPartial
	}

	if succeeded > 0 {
		mean := sum / float64(succeeded)
		out.AggregateConfidence = &mean
	}
	return out
}
