package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates a correct credential for a suspended
	// account. Never shown to end users; the HTTP boundary collapses it into
	// the generic invalid-credentials message.
	ErrAccountInactive = errors.New("account inactive")
	// ErrUnauthorized indicates a request without a resolvable principal.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a principal whose role is not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation such as a duplicate email.
	ErrConflict = errors.New("conflict")
)
