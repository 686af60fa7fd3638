package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"empty output", ErrEmptyOutput, true},
		{"wrapped empty output", fmt.Errorf("call failed: %w", ErrEmptyOutput), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"google 429", &googleapi.Error{Code: 429}, true},
		{"google 503", &googleapi.Error{Code: 503}, true},
		{"google 400", &googleapi.Error{Code: 400}, false},
		{"google 401", &googleapi.Error{Code: 401}, false},
		{"rate limit text", errors.New("Rate limit exceeded, try again later"), true},
		{"timeout text", errors.New("request timeout while waiting for response"), true},
		{"bad credentials", errors.New("invalid API key"), false},
		{"malformed request", errors.New("invalid request payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestValidProvider(t *testing.T) {
	assert.True(t, ValidProvider(ProviderGemini))
	assert.True(t, ValidProvider(ProviderChatGPT))
	assert.False(t, ValidProvider("claude"))
	assert.False(t, ValidProvider(""))
}
