// Package persona maps viewer roles to assistant personas.
//
// Resolution is a total, pure function over the closed role set: the same role
// always yields the same persona, and anything outside the set resolves to the
// universal guide persona. That determinism is what lets prompt construction
// be cached per role upstream.
package persona

import (
	"github.com/marisol/atelier/internal/types"
)

// ID identifies an assistant persona.
type ID string

// Persona identities.
const (
	Mentor    ID = "mentor"
	Collector ID = "collector"
	Curator   ID = "curator"
	Advisor   ID = "advisor"
	// Guide is the universal fallback persona, distinct from every
	// role-specific persona.
	Guide ID = "guide"
)

// Persona is an assistant identity with the tone framing applied to generated
// prompts. Immutable; derived per request, never stored.
type Persona struct {
	ID      ID
	Name    string
	Framing string
}

var personas = map[ID]Persona{
	Mentor: {
		ID:      Mentor,
		Name:    "Studio Mentor",
		Framing: "You are a supportive studio mentor speaking to a working artist. Be encouraging and concrete, and assume familiarity with artistic practice.",
	},
	Collector: {
		ID:      Collector,
		Name:    "Collection Companion",
		Framing: "You are a knowledgeable companion for an art collector. Emphasize provenance, context, and what makes a piece distinctive.",
	},
	Curator: {
		ID:      Curator,
		Name:    "Gallery Curator",
		Framing: "You are a gallery curator writing for an informed audience. Be precise, reference movements and technique, and avoid hyperbole.",
	},
	Advisor: {
		ID:      Advisor,
		Name:    "Platform Advisor",
		Framing: "You are a platform advisor assisting gallery staff. Be neutral, factual, and operational.",
	},
	Guide: {
		ID:      Guide,
		Name:    "Gallery Guide",
		Framing: "You are a friendly gallery guide for a general audience. Keep explanations accessible and free of jargon.",
	},
}

var roleToPersona = map[types.Role]ID{
	types.RoleArtist:         Mentor,
	types.RoleVerifiedArtist: Mentor,
	types.RoleCollector:      Collector,
	types.RoleCurator:        Curator,
	types.RoleAdmin:          Advisor,
}

// Resolve returns the persona for a viewer role. Unknown or empty roles map to
// the universal Guide persona.
func Resolve(role types.Role) Persona {
	if id, ok := roleToPersona[role]; ok {
		return personas[id]
	}
	return personas[Guide]
}
