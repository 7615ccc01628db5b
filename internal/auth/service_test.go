package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

type stubRepo struct {
	byEmail map[string]*auth.Principal
	byID    map[int64]*auth.Principal
	created []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, normalizedEmail string) (*auth.Principal, error) {
	if p, ok := s.byEmail[normalizedEmail]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.Principal, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, email, name, passwordHash string, role shared.Role, status auth.Status) (*auth.Principal, error) {
	s.created = append(s.created, email)
	return &auth.Principal{ID: int64(len(s.created)), Email: email, Name: name, Role: role, Status: status, PasswordHash: passwordHash}, nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func newService(t *testing.T, repo *stubRepo) *auth.Service {
	t.Helper()
	tokens, err := token.NewManager("service-test-secret", time.Hour)
	require.NoError(t, err)
	return auth.NewService(repo, tokens, nil, nil, bcrypt.MinCost)
}

func TestVerifyUnknownEmail(t *testing.T) {
	svc := newService(t, &stubRepo{})
	_, err := svc.Verify(context.Background(), "ghost@hrm.local", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyWrongPassword(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local": {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive, PasswordHash: hashFor(t, "correct")},
	}}
	svc := newService(t, repo)
	_, err := svc.Verify(context.Background(), "admin@hrm.local", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyCaseInsensitiveEmail(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local": {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive, PasswordHash: hashFor(t, "correct")},
	}}
	svc := newService(t, repo)

	principal, err := svc.Verify(context.Background(), "  Admin@Hrm.Local ", "correct")
	require.NoError(t, err)
	require.Equal(t, int64(1), principal.ID)
}

func TestVerifySuspendedAccount(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"hr@hrm.local": {ID: 2, Email: "hr@hrm.local", Role: shared.RoleHR, Status: auth.StatusSuspended, PasswordHash: hashFor(t, "correct")},
	}}
	svc := newService(t, repo)

	// Correct password still fails, with the internal-only distinct error.
	_, err := svc.Verify(context.Background(), "hr@hrm.local", "correct")
	require.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestVerifyEmptyInputs(t *testing.T) {
	svc := newService(t, &stubRepo{})
	_, err := svc.Verify(context.Background(), "", "")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmailAnyCase(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local": {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive},
	}}
	svc := newService(t, repo)

	_, err := svc.Register(context.Background(), "ADMIN@HRM.LOCAL", "Dup", "password123")
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Empty(t, repo.created, "existing principal must not be altered")
}

func TestRegisterDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(t, repo)

	principal, err := svc.Register(context.Background(), "new@hrm.local", "New Hire", "password123")
	require.NoError(t, err)
	require.Equal(t, shared.RoleEmployee, principal.Role)
	require.Equal(t, auth.StatusActive, principal.Status)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte("password123")))
}

func TestResolveFromTokenSuspendedPrincipal(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*auth.Principal{
		3: {ID: 3, Email: "emp@hrm.local", Role: shared.RoleEmployee, Status: auth.StatusSuspended},
	}}
	tokens, err := token.NewManager("resolve-secret", time.Hour)
	require.NoError(t, err)
	svc := auth.NewService(repo, tokens, nil, nil, bcrypt.MinCost)

	// Token predates the suspension; resolution must still deny.
	raw, err := tokens.Issue(3, shared.RoleEmployee)
	require.NoError(t, err)
	require.Nil(t, svc.ResolveFromToken(context.Background(), raw))
}

func TestResolveFromTokenFresh(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*auth.Principal{
		4: {ID: 4, Email: "emp@hrm.local", Role: shared.RoleHR, Status: auth.StatusActive, Department: "People Ops"},
	}}
	tokens, err := token.NewManager("resolve-secret", time.Hour)
	require.NoError(t, err)
	svc := auth.NewService(repo, tokens, nil, nil, bcrypt.MinCost)

	raw, err := tokens.Issue(4, shared.RoleHR)
	require.NoError(t, err)

	principal := svc.ResolveFromToken(context.Background(), raw)
	require.NotNil(t, principal)
	require.Equal(t, "People Ops", principal.Department)
}

func TestResolveFromTokenInvalid(t *testing.T) {
	tokens, err := token.NewManager("resolve-secret", time.Hour)
	require.NoError(t, err)
	svc := auth.NewService(&stubRepo{}, tokens, nil, nil, bcrypt.MinCost)
	require.Nil(t, svc.ResolveFromToken(context.Background(), "not-a-token"))
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "admin@hrm.local", auth.NormalizeEmail("  Admin@Hrm.Local "))
	require.Equal(t, "", auth.NormalizeEmail("   "))
}
