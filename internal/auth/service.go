package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
)

// DefaultBcryptCost matches the work factor used for existing stored hashes.
const DefaultBcryptCost = 10

// Service wraps authentication business rules.
type Service struct {
	repo       Repository
	tokens     *token.Manager
	audit      shared.AuditRecorder
	logger     *slog.Logger
	bcryptCost int
}

// NewService constructs a new Service. The audit recorder may be nil.
func NewService(repo Repository, tokens *token.Manager, audit shared.AuditRecorder, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = DefaultBcryptCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, audit: audit, logger: logger, bcryptCost: bcryptCost}
}

// NormalizeEmail trims whitespace and case-folds so lookups never miss on
// capitalization. Lookups are case-sensitive without this.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// Verify validates email/password credentials. Unknown emails and wrong
// passwords produce the same generic failure so responses cannot be used to
// enumerate accounts. A correct credential on a suspended account fails with
// the distinct ErrAccountInactive for operators; the HTTP boundary still
// collapses it into the generic message.
func (s *Service) Verify(ctx context.Context, email, password string) (*Principal, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" || password == "" {
		return nil, shared.ErrInvalidCredentials
	}

	principal, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("credential lookup", slog.Any("error", err))
		}
		s.recordAudit(ctx, 0, "login.failed", "user", normalized, map[string]any{"reason": "unknown email"})
		return nil, shared.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		s.recordAudit(ctx, principal.ID, "login.failed", "user", normalized, map[string]any{"reason": "bad password"})
		return nil, shared.ErrInvalidCredentials
	}

	if !principal.Active() {
		s.logger.Warn("login attempt on inactive account", slog.Int64("principal_id", principal.ID))
		s.recordAudit(ctx, principal.ID, "login.failed", "user", normalized, map[string]any{"reason": "inactive"})
		return nil, shared.ErrAccountInactive
	}

	s.recordAudit(ctx, principal.ID, "login.success", "user", normalized, nil)
	return principal, nil
}

// Register creates a principal with the default employee role and active
// status. Duplicate emails, in any case variant, fail with ErrConflict and
// leave the existing record untouched.
func (s *Service) Register(ctx context.Context, email, name, password string) (*Principal, error) {
	email = strings.TrimSpace(email)
	normalized := NormalizeEmail(email)

	if _, err := s.repo.FindByEmail(ctx, normalized); err == nil {
		return nil, shared.ErrConflict
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	principal, err := s.repo.Create(ctx, email, strings.TrimSpace(name), string(hash), shared.RoleEmployee, StatusActive)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, principal.ID, "user.registered", "user", normalized, nil)
	return principal, nil
}

// IssueToken creates a session token for the principal.
func (s *Service) IssueToken(principal *Principal) (string, error) {
	return s.tokens.Issue(principal.ID, principal.Role)
}

// ResolveFromToken resolves the current principal from a raw session token.
// The signature is checked before any store I/O; on success the principal is
// loaded fresh so status reflects the store, not the token. Any failure
// yields nil, never an error, because this runs on the request path.
func (s *Service) ResolveFromToken(ctx context.Context, raw string) *Principal {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil
	}
	principal, err := s.ResolveByID(ctx, claims.PrincipalID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("resolve principal", slog.Any("error", err))
		}
		return nil
	}
	if !principal.Active() {
		return nil
	}
	return principal
}

// ResolveByID loads the full principal record, including the employee
// profile, fresh from the store.
func (s *Service) ResolveByID(ctx context.Context, id int64) (*Principal, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.NewAuditLog(actorID, action, entity, entityID, meta)); err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
