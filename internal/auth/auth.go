// Package auth implements the authorization guard: which principals may
// invoke generation, change provider settings, or post AI-authored content.
//
// Failure is always explicit; there is no default-allow path anywhere in
// this package.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/marisol/atelier/internal/types"
)

// Action is an operation a principal may be entitled to perform.
type Action string

// Guarded actions.
const (
	ActionRunAnalysis      Action = "run_analysis"
	ActionReadSettings     Action = "read_settings"
	ActionWriteSettings    Action = "write_settings"
	ActionPostAgentArtwork Action = "post_agent_artwork"
)

// PrincipalKind discriminates the Principal union.
type PrincipalKind string

// Principal kinds.
const (
	KindEndUser PrincipalKind = "end_user"
	KindAdmin   PrincipalKind = "admin"
	KindAgent   PrincipalKind = "agent"
)

// Principal is the tagged union of caller identities. Exactly the fields for
// its kind are populated.
type Principal struct {
	Kind      PrincipalKind
	SessionID string
	UserID    uuid.UUID
	Role      types.Role
	// TokenHash identifies an agent principal without retaining the secret.
	TokenHash string
}

// EndUser builds an end-user principal from a validated session token.
func EndUser(sessionID string, userID uuid.UUID, role types.Role) Principal {
	return Principal{Kind: KindEndUser, SessionID: sessionID, UserID: userID, Role: role}
}

// Admin builds an admin principal from a validated session token.
func Admin(sessionID string, userID uuid.UUID) Principal {
	return Principal{Kind: KindAdmin, SessionID: sessionID, UserID: userID, Role: types.RoleAdmin}
}

// Agent builds an agent principal from an already-verified bearer token.
func Agent(token string) Principal {
	sum := sha256.Sum256([]byte(token))
	return Principal{Kind: KindAgent, TokenHash: hex.EncodeToString(sum[:])}
}

// errUnauthorized builds the uniform denial error.
func errUnauthorized(msg string) error {
	return types.NewCodedError(types.CodeUnauthorized, msg, nil)
}

// Authorize checks that a principal is entitled to an action. Admin role is
// re-checked on every call; decisions are never cached across requests.
func Authorize(p Principal, action Action) error {
	switch p.Kind {
	case KindEndUser:
		if action == ActionRunAnalysis {
			return nil
		}
		return errUnauthorized("end users may only run analysis on their own artifacts")
	case KindAdmin:
		if p.Role != types.RoleAdmin {
			return errUnauthorized("admin principal lost the admin role")
		}
		switch action {
		case ActionReadSettings, ActionWriteSettings, ActionRunAnalysis:
			return nil
		}
		return errUnauthorized("admins may not perform agent actions")
	case KindAgent:
		if action == ActionPostAgentArtwork {
			return nil
		}
		return errUnauthorized("agent tokens may only post AI-authored content")
	}
	return errUnauthorized("unknown principal kind")
}

// VerifyAgentToken checks an Authorization header value against the
// configured agent secret. The scheme must be exactly "Bearer <token>" and
// the comparison is constant-time over the full secret; anything malformed
// fails closed.
func VerifyAgentToken(authHeader, configured string) (Principal, error) {
	if configured == "" {
		return Principal{}, errUnauthorized("agent token is not configured")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return Principal{}, errUnauthorized("malformed authorization header")
	}
	token := authHeader[len(prefix):]
	if token == "" {
		return Principal{}, errUnauthorized("empty bearer token")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(configured)) != 1 {
		return Principal{}, errUnauthorized("invalid agent token")
	}
	return Agent(token), nil
}
