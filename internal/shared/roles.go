package shared

import "fmt"

// Role is the closed set of coarse access classes. Anything outside the
// three declared constants is rejected at parse time.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

// AllRoles returns every valid role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleEmployee}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleHR, RoleEmployee:
		return Role(raw), nil
	}
	return "", fmt.Errorf("shared: unknown role %q", raw)
}

// In reports whether the role is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
