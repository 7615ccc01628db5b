package auth

import (
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Status is the lifecycle state of a principal.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Principal represents an authenticated identity. PasswordHash is excluded
// from every serialized form.
type Principal struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         shared.Role `json:"role"`
	Status       Status      `json:"status"`
	PasswordHash string      `json:"-"`
	Department   string      `json:"department,omitempty"`
	Position     string      `json:"position,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Active reports whether the principal may authenticate.
func (p *Principal) Active() bool {
	return p != nil && p.Status == StatusActive
}
