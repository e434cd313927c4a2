package models

import "fmt"

// ScopeKind distinguishes the hierarchy partitions the portal exposes.
type ScopeKind string

const (
	ScopeLibrary   ScopeKind = "library"
	ScopeUserFiles ScopeKind = "user-files"
	ScopePublic    ScopeKind = "public-documents"
)

// Scope identifies one partition of the hierarchy. Trees are never merged
// across scopes; switching scope invalidates every cached node.
type Scope struct {
	Kind ScopeKind
	// ID is the library id for ScopeLibrary, the user id for
	// ScopeUserFiles, and empty for ScopePublic.
	ID string
}

// String returns a stable identifier usable in logs and cache keys.
func (s Scope) String() string {
	if s.ID == "" {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

// Equal reports whether two scopes identify the same partition.
func (s Scope) Equal(other Scope) bool {
	return s.Kind == other.Kind && s.ID == other.ID
}
