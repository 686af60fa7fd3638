// Package content defines the contract between the orchestration core and
// content-creation collaborators: the finalized AgentMetadata package and the
// artwork posting boundary.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/schemas"
	"github.com/marisol/atelier/internal/types"
)

// GenerationInfo records how the content was produced.
type GenerationInfo struct {
	Prompt     string            `json:"prompt"`
	Parameters map[string]string `json:"parameters"`
}

// Accessibility carries the accessibility metadata required before
// AI-authored content may be posted.
type Accessibility struct {
	AltText     string `json:"alt_text"`
	Description string `json:"description"`
}

// AgentMetadata is the only representation handed to content-creation
// collaborators. It is built in one shot from a complete analysis outcome and
// is never partially populated.
type AgentMetadata struct {
	Confidence    float64        `json:"confidence"`
	Model         string         `json:"model"`
	Generation    GenerationInfo `json:"generation"`
	Accessibility Accessibility  `json:"accessibility"`
}

// maxAltTextLen is the accessibility guidance ceiling for alt text.
const maxAltTextLen = 125

// BuildMetadata assembles AgentMetadata from a fully complete outcome.
// Anything short of complete is rejected: partial jobs must never cross the
// content-creation boundary. The result is schema-validated before return.
func BuildMetadata(outcome *analysis.Outcome) (*AgentMetadata, error) {
	if outcome == nil {
		return nil, types.NewCodedError(types.CodeAccessibilityError, "no analysis outcome available", nil)
	}
	if outcome.Verdict != analysis.VerdictComplete {
		return nil, types.NewCodedError(types.CodeAccessibilityError,
			fmt.Sprintf("analysis is %s; metadata requires a complete outcome", outcome.Verdict), nil)
	}
	if outcome.AggregateConfidence == nil {
		return nil, types.NewCodedError(types.CodeAccessibilityError, "aggregate confidence is undefined", nil)
	}

	description := outcome.Results[types.TaskDescription]
	if description == nil || !description.Succeeded || description.Text == "" {
		return nil, types.NewCodedError(types.CodeAccessibilityError, "description result is missing", nil)
	}

	altText := ""
	if alt := outcome.Results[types.TaskAltText]; alt != nil && alt.Succeeded {
		altText = alt.Text
	}
	if altText == "" {
		altText = deriveAltText(description.Text)
	}
	if altText == "" {
		return nil, types.NewCodedError(types.CodeAccessibilityError, "could not derive alt text", nil)
	}

	meta := &AgentMetadata{
		Confidence: *outcome.AggregateConfidence,
		Model:      description.Model,
		Generation: GenerationInfo{
			Prompt: description.Prompt,
			Parameters: map[string]string{
				"temperature": fmt.Sprintf("%.1f", description.Temperature),
				"provider":    string(description.ProviderUsed),
			},
		},
		Accessibility: Accessibility{
			AltText:     altText,
			Description: description.Text,
		},
	}

	if err := validateMetadata(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// validateMetadata checks the finished package against the agent metadata
// JSON schema before it crosses the boundary.
func validateMetadata(meta *AgentMetadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return types.NewCodedError(types.CodeUnexpectedError, "failed to marshal metadata", err)
	}
	if err := schemas.ValidateAgentMetadata(string(payload)); err != nil {
		return types.NewCodedError(types.CodeAccessibilityError, "metadata failed schema validation", err)
	}
	return nil
}

// deriveAltText truncates a description to alt-text length on a sentence
// boundary where possible, else a word boundary.
func deriveAltText(description string) string {
	text := strings.TrimSpace(description)
	if text == "" {
		return ""
	}
	if len(text) <= maxAltTextLen {
		return text
	}

	cut := text[:maxAltTextLen]
	if idx := strings.LastIndexAny(cut, ".!?"); idx > 0 {
		return strings.TrimSpace(cut[:idx+1])
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
