// Package settings manages the single admin-mutable provider settings record
// and its read-through cache.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/types"
)

// Settings is the active provider configuration. Exactly one record exists;
// the fixed primary key enforces that.
type Settings struct {
	PrimaryProvider  llm.Provider `json:"primary_provider"`
	FallbackProvider llm.Provider `json:"fallback_provider,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// HasFallback reports whether a usable fallback is configured: set, valid,
// and different from the primary.
func (s *Settings) HasFallback() bool {
	return s.FallbackProvider != "" &&
		llm.ValidProvider(s.FallbackProvider) &&
		s.FallbackProvider != s.PrimaryProvider
}

// Validate enforces the settings invariants before a write.
func (s *Settings) Validate() error {
	if !llm.ValidProvider(s.PrimaryProvider) {
		return types.NewCodedError(types.CodeInvalidInput,
			fmt.Sprintf("unknown primary provider: %s", s.PrimaryProvider), nil)
	}
	if s.FallbackProvider != "" {
		if !llm.ValidProvider(s.FallbackProvider) {
			return types.NewCodedError(types.CodeInvalidInput,
				fmt.Sprintf("unknown fallback provider: %s", s.FallbackProvider), nil)
		}
		if s.FallbackProvider == s.PrimaryProvider {
			return types.NewCodedError(types.CodeInvalidInput,
				"fallback provider must differ from primary provider", nil)
		}
	}
	return nil
}

// Reader is the read side of the settings record. The gateway depends on this
// interface, not on the concrete store.
type Reader interface {
	Get(ctx context.Context) (*Settings, error)
}

// Store persists the settings record in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get loads the active settings record. A missing row yields the default
// configuration (gemini primary, no fallback) rather than an error, so a
// fresh deployment works before any admin write.
func (s *Store) Get(ctx context.Context) (*Settings, error) {
	var out Settings
	var fallback *string
	err := s.pool.QueryRow(ctx,
		`SELECT primary_provider, fallback_provider, updated_at
		 FROM provider_settings WHERE id = 1`,
	).Scan(&out.PrimaryProvider, &fallback, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Settings{PrimaryProvider: llm.ProviderGemini}, nil
	}
	if err != nil {
		return nil, types.NewCodedError(types.CodeDatabaseError, "failed to load provider settings", err)
	}
	if fallback != nil {
		out.FallbackProvider = llm.Provider(*fallback)
	}
	return &out, nil
}

// Update writes the settings record, enforcing the fallback invariant.
func (s *Store) Update(ctx context.Context, in *Settings) error {
	if err := in.Validate(); err != nil {
		return err
	}

	var fallback *string
	if in.FallbackProvider != "" {
		f := string(in.FallbackProvider)
		fallback = &f
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO provider_settings (id, primary_provider, fallback_provider, updated_at)
		 VALUES (1, $1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET primary_provider = $1, fallback_provider = $2, updated_at = NOW()`,
		string(in.PrimaryProvider), fallback,
	)
	if err != nil {
		return types.NewCodedError(types.CodeDatabaseError, "failed to update provider settings", err)
	}
	return nil
}
