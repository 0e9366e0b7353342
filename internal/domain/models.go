// Package domain defines the core entities of the office admin backend.
// These models are independent of the storage backends and represent the
// canonical data structures used by services and handlers.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a server-generated opaque identifier: two random UUIDv4
// values in hex form joined by a dash. User secrets use the same format.
func NewID() string {
	return hexUUID() + "-" + hexUUID()
}

func hexUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ============================================================
// Ownership scope
// ============================================================

// Scope restricts store reads to the records a principal may see.
type Scope struct {
	OwnerID string
	All     bool
}

// ScopeOf returns the visibility scope of a principal. Superusers see all rows.
func ScopeOf(u *User) Scope {
	return Scope{OwnerID: u.ID, All: u.IsSuperuser}
}

// Allows reports whether a record created by owner is visible in the scope.
func (s Scope) Allows(owner string) bool {
	return s.All || s.OwnerID == owner
}

// ============================================================
// Generic API responses
// ============================================================

// MessageResponse is the confirmation body returned by mutations.
type MessageResponse struct {
	Message string `json:"message"`
}
