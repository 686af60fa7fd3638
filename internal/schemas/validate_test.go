package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMetadata = `{
	"confidence": 0.82,
	"model": "gemini-2.5-flash",
	"generation": {
		"prompt": "Describe the artwork.",
		"parameters": {"temperature": "0.7", "provider": "gemini"}
	},
	"accessibility": {
		"alt_text": "Oil painting of dark waves under a stormy sky.",
		"description": "A brooding seascape built from layered impasto."
	}
}`

func TestValidateAgentMetadata_Valid(t *testing.T) {
	assert.NoError(t, ValidateAgentMetadata(validMetadata))
}

func TestValidateAgentMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing accessibility", `{"confidence": 0.8, "model": "m", "generation": {"prompt": "p", "parameters": {}}}`},
		{"confidence out of range", `{"confidence": 1.5, "model": "m", "generation": {"prompt": "p", "parameters": {}}, "accessibility": {"alt_text": "a", "description": "d"}}`},
		{"empty alt text", `{"confidence": 0.8, "model": "m", "generation": {"prompt": "p", "parameters": {}}, "accessibility": {"alt_text": "", "description": "d"}}`},
		{"empty model", `{"confidence": 0.8, "model": "", "generation": {"prompt": "p", "parameters": {}}, "accessibility": {"alt_text": "a", "description": "d"}}`},
		{"unknown property", `{"confidence": 0.8, "model": "m", "extra": true, "generation": {"prompt": "p", "parameters": {}}, "accessibility": {"alt_text": "a", "description": "d"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAgentMetadata(tt.payload)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateAgentMetadata(`{not json`)
	require.Error(t, err)
	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}
