// Package types provides shared type definitions used throughout the atelier orchestration service.
package types

// Role is the viewer role attached to an end-user session by the storefront's
// auth backend. The closed set below is what the persona resolver dispatches on;
// unknown values are valid input and resolve to the universal persona.
type Role string

// Supported viewer roles.
const (
	RoleArtist         Role = "artist"
	RoleVerifiedArtist Role = "verified_artist"
	RoleCollector      Role = "collector"
	RoleCurator        Role = "curator"
	RoleAdmin          Role = "admin"
)

// TaskType is one analysis dimension with its own prompt template and
// temperature class.
type TaskType string

// Supported analysis task types.
const (
	TaskDescription TaskType = "description"
	TaskStyle       TaskType = "style"
	TaskTechniques  TaskType = "techniques"
	TaskKeywords    TaskType = "keywords"
	TaskAltText     TaskType = "alt_text"
)

// AllTasks returns the full set of task types for a complete artwork analysis.
func AllTasks() []TaskType {
	return []TaskType{TaskDescription, TaskStyle, TaskTechniques, TaskKeywords, TaskAltText}
}

// ValidTask reports whether t is a known task type.
func ValidTask(t TaskType) bool {
	switch t {
	case TaskDescription, TaskStyle, TaskTechniques, TaskKeywords, TaskAltText:
		return true
	}
	return false
}
