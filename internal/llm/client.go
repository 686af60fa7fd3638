// Package llm provides provider client abstractions for outbound generation
// calls. The rest of the system treats a provider as an opaque capability:
// a prompt and temperature go in, text comes out.
package llm

import (
	"context"
	"fmt"
)

// Provider identifies an external AI backend.
type Provider string

// Supported providers.
const (
	ProviderChatGPT Provider = "chatgpt"
	ProviderGemini  Provider = "gemini"
)

// ValidProvider reports whether p is a supported provider name.
func ValidProvider(p Provider) bool {
	return p == ProviderChatGPT || p == ProviderGemini
}

// Client is an abstraction over a single AI provider backend.
type Client interface {
	// Provider returns the provider this client talks to.
	Provider() Provider
	// Model returns the underlying model name used for generation.
	Model() string
	// GenerateContent generates text for a prompt at the given temperature.
	GenerateContent(ctx context.Context, prompt string, temperature float32) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// Credentials holds per-provider API keys.
type Credentials struct {
	GeminiAPIKey string
	OpenAIAPIKey string
}

// NewClient creates a client for the named provider.
func NewClient(ctx context.Context, provider Provider, creds Credentials) (Client, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, creds.GeminiAPIKey)
	case ProviderChatGPT:
		return NewChatGPTClient(creds.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
