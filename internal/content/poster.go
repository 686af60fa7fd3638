package content

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/types"
)

// PostArtworkParams is the payload handed to the artwork CRUD collaborator
// when posting an AI-authored record. Metadata must be fully populated; the
// builder guarantees that by construction.
type PostArtworkParams struct {
	Title           string                                  `json:"title"`
	Images          []string                                `json:"images"`
	Description     string                                  `json:"description,omitempty"`
	Tags            []string                                `json:"tags,omitempty"`
	AIGenerated     bool                                    `json:"ai_generated"`
	AIContext       string                                  `json:"ai_context"`
	AnalysisResults map[types.TaskType]*analysis.TaskResult `json:"analysis_results,omitempty"`
	Metadata        *AgentMetadata                          `json:"metadata"`
}

// Validate rejects payloads before any I/O.
func (p *PostArtworkParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return types.NewCodedError(types.CodeInvalidInput, "title is required", nil)
	}
	if len(p.Images) == 0 {
		return types.NewCodedError(types.CodeImageProcessing, "at least one image is required", nil)
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img) == "" {
			return types.NewCodedError(types.CodeImageProcessing, "image reference is empty", nil)
		}
	}
	if !p.AIGenerated {
		return types.NewCodedError(types.CodeInvalidInput, "agent postings must be marked ai_generated", nil)
	}
	if p.Metadata == nil {
		return types.NewCodedError(types.CodeAccessibilityError, "agent metadata is required", nil)
	}
	return nil
}

// Poster is the content-creation collaborator boundary.
type Poster interface {
	PostArtwork(ctx context.Context, profileID uuid.UUID, params *PostArtworkParams) (uuid.UUID, error)
}

// PgPoster writes AI-authored artwork records to the artworks table.
type PgPoster struct {
	pool *pgxpool.Pool
}

// NewPgPoster wraps an existing connection pool.
func NewPgPoster(pool *pgxpool.Pool) *PgPoster {
	return &PgPoster{pool: pool}
}

// PostArtwork inserts the artwork under the given (system) profile id and
// returns the new record id.
func (p *PgPoster) PostArtwork(ctx context.Context, profileID uuid.UUID, params *PostArtworkParams) (uuid.UUID, error) {
	if err := params.Validate(); err != nil {
		return uuid.Nil, err
	}

	metadataJSON, err := json.Marshal(params.Metadata)
	if err != nil {
		return uuid.Nil, types.NewCodedError(types.CodeUnexpectedError, "failed to marshal metadata", err)
	}

	var resultsJSON []byte
	if params.AnalysisResults != nil {
		resultsJSON, err = json.Marshal(params.AnalysisResults)
		if err != nil {
			return uuid.Nil, types.NewCodedError(types.CodeUnexpectedError, "failed to marshal analysis results", err)
		}
	}

	var id uuid.UUID
	err = p.pool.QueryRow(ctx,
		`INSERT INTO artworks (profile_id, title, images, description, tags, ai_generated, ai_context, analysis_results, agent_metadata)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8)
		 RETURNING id`,
		profileID, params.Title, params.Images, params.Description, params.Tags,
		params.AIContext, resultsJSON, metadataJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, types.NewCodedError(types.CodeDatabaseError, "failed to post artwork", err)
	}
	return id, nil
}
