package gateway

import (
	"context"
	"sync"

	"github.com/marisol/atelier/internal/llm"
)

// ClientRegistry resolves a provider name to a live client. Tests inject
// fakes through this interface.
type ClientRegistry interface {
	ClientFor(ctx context.Context, provider llm.Provider) (llm.Client, error)
}

// Registry lazily constructs and caches one client per provider from the
// configured credentials.
type Registry struct {
	creds llm.Credentials

	mu      sync.Mutex
	clients map[llm.Provider]llm.Client
}

// NewRegistry builds a registry over the given credentials.
func NewRegistry(creds llm.Credentials) *Registry {
	return &Registry{
		creds:   creds,
		clients: make(map[llm.Provider]llm.Client),
	}
}

// ClientFor returns the cached client for a provider, constructing it on
// first use. Construction failures are not cached; a later call retries.
func (r *Registry) ClientFor(ctx context.Context, provider llm.Provider) (llm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[provider]; ok {
		return client, nil
	}

	client, err := llm.NewClient(ctx, provider, r.creds)
	if err != nil {
		return nil, err
	}
	r.clients[provider] = client
	return client, nil
}

// Close releases all constructed clients.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for provider, client := range r.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, provider)
	}
	return firstErr
}
