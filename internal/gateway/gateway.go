// Package gateway executes generation requests against the configured
// providers, with at most one fallback hop.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/settings"
	"github.com/marisol/atelier/internal/types"
)

// GenerationRequest is one outbound generation call. Constructed fresh per
// call and never mutated after dispatch.
type GenerationRequest struct {
	Task        types.TaskType
	Prompt      string
	Temperature float32
	Persona     persona.ID
	ArtifactRef string
}

// GenerationResult is the tagged outcome of a successful generation call.
// It always names the provider that actually produced the text.
type GenerationResult struct {
	Task         types.TaskType
	Text         string
	Confidence   float64
	ProviderUsed llm.Provider
	FallbackUsed bool
	Model        string
}

// errClientSetup marks failures building a provider client (missing key,
// SDK init). These count toward the fallback hop like transient errors do.
var errClientSetup = errors.New("provider client setup failed")

// Gateway routes generation requests to the primary provider and retries
// exactly once against the fallback when the primary fails transiently.
type Gateway struct {
	settings settings.Reader
	clients  ClientRegistry
	timeout  time.Duration
	log      *logging.Logger
}

// New builds a gateway. The settings reader is expected to be the TTL cache;
// a stale read for one call is acceptable.
func New(settingsReader settings.Reader, clients ClientRegistry, timeout time.Duration, log *logging.Logger) *Gateway {
	if log == nil {
		log = logging.NewNop()
	}
	return &Gateway{settings: settingsReader, clients: clients, timeout: timeout, log: log}
}

// Generate executes one generation request. The retry budget is exactly one
// fallback hop; exhaustion surfaces PROVIDER_UNAVAILABLE and is never retried
// further at this layer.
func (g *Gateway) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	s, err := g.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	text, model, primaryErr := g.attempt(ctx, s.PrimaryProvider, req)
	if primaryErr == nil {
		return &GenerationResult{
			Task:         req.Task,
			Text:         text,
			Confidence:   confidenceFor(text),
			ProviderUsed: s.PrimaryProvider,
			Model:        model,
		}, nil
	}

	if !s.HasFallback() || !eligibleForFallback(primaryErr) {
		return nil, types.NewCodedError(types.CodeProviderUnavailable,
			fmt.Sprintf("provider %s failed for task %s", s.PrimaryProvider, req.Task), primaryErr)
	}

	g.log.Warn("primary provider failed, attempting fallback",
		"task", req.Task, "primary", s.PrimaryProvider, "fallback", s.FallbackProvider, "error", primaryErr)

	text, model, fallbackErr := g.attempt(ctx, s.FallbackProvider, req)
	if fallbackErr == nil {
		return &GenerationResult{
			Task:         req.Task,
			Text:         text,
			Confidence:   confidenceFor(text),
			ProviderUsed: s.FallbackProvider,
			FallbackUsed: true,
			Model:        model,
		}, nil
	}

	return nil, types.NewCodedError(types.CodeProviderUnavailable,
		fmt.Sprintf("both providers failed for task %s", req.Task),
		errors.Join(primaryErr, fallbackErr))
}

// attempt runs a single generation call against one provider under the
// per-call timeout.
func (g *Gateway) attempt(ctx context.Context, provider llm.Provider, req *GenerationRequest) (text, model string, err error) {
	client, err := g.clients.ClientFor(ctx, provider)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", errClientSetup, provider, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err = client.GenerateContent(callCtx, req.Prompt, req.Temperature)
	if err != nil {
		return "", "", err
	}
	return text, client.Model(), nil
}

// eligibleForFallback reports whether an attempt error consumes the single
// fallback hop rather than failing the call outright.
func eligibleForFallback(err error) bool {
	return llm.IsTransient(err) || errors.Is(err, errClientSetup)
}

// confidenceFor is a deterministic stand-in for provider confidence, which
// neither backend reports. Longer outputs score higher, clamped to
// [0.5, 0.95].
func confidenceFor(text string) float64 {
	c := 0.5 + float64(len(text))/1000.0
	if c > 0.95 {
		c = 0.95
	}
	return c
}
