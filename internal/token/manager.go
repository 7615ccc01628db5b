// Package token issues and validates the stateless signed session tokens
// that stand in for server-side sessions. Validation is purely
// cryptographic: no store lookup happens here, so a bad signature is
// rejected before any I/O.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

var (
	// ErrExpired indicates the token lifetime has elapsed. The boundary is
	// inclusive: a token whose expiry equals the current instant is expired.
	ErrExpired = errors.New("token: expired")
	// ErrInvalidSignature indicates the token was not signed with the
	// server's current secret.
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrMalformed indicates the token could not be decoded into well-formed
	// claims.
	ErrMalformed = errors.New("token: malformed")
)

// Claims is the typed payload embedded in a session token.
type Claims struct {
	PrincipalID int64
	Role        shared.Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a process-wide secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager constructs a Manager. The secret must be non-empty; startup
// fails loudly otherwise rather than running without authorization.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret required")
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL exposes the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for the given principal. Tokens are not
// renewed on use; the lifetime is fixed from issuance and a fresh login
// issues a fresh token.
func (m *Manager) Issue(principalID int64, role shared.Role) (string, error) {
	issuedAt := m.now().UTC()
	claims := jwtClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principalID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate verifies signature and expiry and decodes the claims. Unknown
// roles and missing fields are rejected as malformed rather than trusted.
func (m *Manager) Validate(raw string) (Claims, error) {
	var parsed jwtClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSignature
		default:
			return Claims{}, ErrMalformed
		}
	}

	principalID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	role, err := shared.ParseRole(parsed.Role)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	claims := Claims{
		PrincipalID: principalID,
		Role:        role,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

// WithClock overrides the time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}
