package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Role is a permission tag carried by an authenticated user.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleRenter Role = "RENTER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole converts a case-insensitive token to a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleOwner, RoleRenter, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// HasRole reports whether roles contains want.
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether roles contains at least one of wants.
func HasAnyRole(roles []Role, wants ...Role) bool {
	for _, w := range wants {
		if HasRole(roles, w) {
			return true
		}
	}
	return false
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	ID    uuid.UUID
	Roles []Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c Caller) IsAdmin() bool { return HasRole(c.Roles, RoleAdmin) }

// IsOwnerOrAdmin is the authorization predicate for mutating a resource:
// the caller must own it or be an administrator.
func IsOwnerOrAdmin(resourceOwnerID, callerID uuid.UUID, callerRoles []Role) bool {
	if HasRole(callerRoles, RoleAdmin) {
		return true
	}
	return resourceOwnerID != uuid.Nil && resourceOwnerID == callerID
}
