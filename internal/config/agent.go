package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// AgentConfig holds the machine-to-machine agent credentials. The token is a
// shared secret presented as a bearer token; the system profile id is the
// reserved profile AI-authored content is posted under.
type AgentConfig struct {
	Token           string
	SystemProfileID uuid.UUID
}

// NewAgentConfig reads AGENT_TOKEN and SYSTEM_PROFILE_ID from the environment.
// Both are required for the agent posting path.
func NewAgentConfig() (*AgentConfig, error) {
	token := os.Getenv("AGENT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("AGENT_TOKEN is required but not set")
	}

	profileStr := os.Getenv("SYSTEM_PROFILE_ID")
	if profileStr == "" {
		return nil, fmt.Errorf("SYSTEM_PROFILE_ID is required but not set")
	}
	profileID, err := uuid.Parse(profileStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYSTEM_PROFILE_ID: %w", err)
	}

	return &AgentConfig{Token: token, SystemProfileID: profileID}, nil
}
