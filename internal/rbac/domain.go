package rbac

import (
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Permission represents an atomic named capability. The key is its identity
// and follows the resource:action convention.
type Permission struct {
	Key         string    `json:"key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RolePermission ties a permission to one of the fixed roles.
type RolePermission struct {
	Role          shared.Role `json:"role"`
	PermissionKey string      `json:"permissionKey"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// RoleGrants groups the permissions granted to a single role.
type RoleGrants struct {
	Role        shared.Role  `json:"role"`
	Permissions []Permission `json:"permissions"`
}
