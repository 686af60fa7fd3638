package types

import (
	"github.com/go-playground/validator/v10"
)

// AnalyzeRequest starts an analysis job for a single artifact. Tasks defaults
// to the full task set when empty.
type AnalyzeRequest struct {
	ArtifactRef string   `json:"artifact_ref" validate:"required,min=1"`
	Kind        string   `json:"kind" validate:"omitempty,oneof=artwork bio"`
	Title       string   `json:"title,omitempty"`
	Medium      string   `json:"medium,omitempty"`
	Text        string   `json:"text" validate:"required,min=1"`
	Tasks       []string `json:"tasks,omitempty" validate:"omitempty,dive,min=1"`
}

// RetryRequest re-runs only the named (previously failed) task types of a job.
type RetryRequest struct {
	Tasks []string `json:"tasks" validate:"required,min=1,dive,min=1"`
}

// UpdateProviderSettingsRequest is the admin write of the active provider
// settings record.
type UpdateProviderSettingsRequest struct {
	PrimaryProvider  string `json:"primary_provider" validate:"required,oneof=chatgpt gemini"`
	FallbackProvider string `json:"fallback_provider,omitempty" validate:"omitempty,oneof=chatgpt gemini"`
}

// PostArtworkRequest is the agent-path request to post an AI-authored artwork
// record under the reserved system profile.
type PostArtworkRequest struct {
	Title     string   `json:"title" validate:"required,min=1"`
	Images    []string `json:"images" validate:"required,min=1,dive,url"`
	AIContext string   `json:"ai_context" validate:"required,min=1"`
	Tags      []string `json:"tags,omitempty"`
	JobID     string   `json:"job_id" validate:"required,uuid"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RetryRequest using the validator.
func (r *RetryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateProviderSettingsRequest using the validator.
func (r *UpdateProviderSettingsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PostArtworkRequest using the validator.
func (r *PostArtworkRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
