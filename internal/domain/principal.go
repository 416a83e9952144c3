package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleOwner:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.rank() > 0
}

// Includes reports whether r carries every capability of required
// (admin ⊇ owner ⊇ user).
func (r Role) Includes(required Role) bool {
	return r.Valid() && r.rank() >= required.rank()
}

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// Principal is the actor performing a request. The zero value is anonymous.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil && p.Role.Valid()
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}

// Anonymous is the principal of a request without credentials.
var Anonymous = Principal{}
