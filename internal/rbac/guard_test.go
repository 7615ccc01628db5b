package rbac_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/rbac"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

type stubResolver struct {
	principals map[int64]*auth.Principal
	err        error
}

func (s *stubResolver) ResolveByID(ctx context.Context, id int64) (*auth.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.principals[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func newGuard(t *testing.T, resolver *stubResolver) (rbac.Guard, *token.Manager) {
	t.Helper()
	tokens, err := token.NewManager("guard-test-secret", time.Hour)
	require.NoError(t, err)
	return rbac.Guard{Resolver: resolver, Tokens: tokens}, tokens
}

func requestWithToken(t *testing.T, tokens *token.Manager, id int64, role shared.Role) *http.Request {
	t.Helper()
	raw, err := tokens.Issue(id, role)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/hr/employees", nil)
	req.AddCookie(&http.Cookie{Name: shared.SessionCookie, Value: raw})
	return req
}

func TestRequirePrincipalNoCookie(t *testing.T) {
	guard, _ := newGuard(t, &stubResolver{})
	req := httptest.NewRequest(http.MethodGet, "/api/hr/employees", nil)

	_, err := guard.RequirePrincipal(req, shared.RoleHR)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRequirePrincipalInvalidToken(t *testing.T) {
	guard, _ := newGuard(t, &stubResolver{})
	req := httptest.NewRequest(http.MethodGet, "/api/hr/employees", nil)
	req.AddCookie(&http.Cookie{Name: shared.SessionCookie, Value: "tampered"})

	_, err := guard.RequirePrincipal(req, shared.RoleHR)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRequirePrincipalSuspendedDeniedDespiteValidToken(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		5: {ID: 5, Role: shared.RoleHR, Status: auth.StatusSuspended},
	}}
	guard, tokens := newGuard(t, resolver)

	// The token is cryptographically valid and unexpired; the fresh store
	// state still wins.
	req := requestWithToken(t, tokens, 5, shared.RoleHR)
	_, err := guard.RequirePrincipal(req, shared.RoleHR)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRequirePrincipalWrongRole(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		6: {ID: 6, Role: shared.RoleEmployee, Status: auth.StatusActive},
	}}
	guard, tokens := newGuard(t, resolver)

	req := requestWithToken(t, tokens, 6, shared.RoleEmployee)
	_, err := guard.RequirePrincipal(req, shared.RoleAdmin, shared.RoleHR)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRequirePrincipalStoreFailureFailsClosed(t *testing.T) {
	resolver := &stubResolver{err: errors.New("connection refused")}
	guard, tokens := newGuard(t, resolver)

	req := requestWithToken(t, tokens, 7, shared.RoleAdmin)
	_, err := guard.RequirePrincipal(req, shared.RoleAdmin)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRequirePrincipalSuccess(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		8: {ID: 8, Email: "hr@hrm.local", Role: shared.RoleHR, Status: auth.StatusActive},
	}}
	guard, tokens := newGuard(t, resolver)

	req := requestWithToken(t, tokens, 8, shared.RoleHR)
	principal, err := guard.RequirePrincipal(req, shared.RoleAdmin, shared.RoleHR)
	require.NoError(t, err)
	require.Equal(t, int64(8), principal.ID)
}

func TestRequirePrincipalAnyRoleWhenUnrestricted(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		9: {ID: 9, Role: shared.RoleEmployee, Status: auth.StatusActive},
	}}
	guard, tokens := newGuard(t, resolver)

	req := requestWithToken(t, tokens, 9, shared.RoleEmployee)
	principal, err := guard.RequirePrincipal(req)
	require.NoError(t, err)
	require.Equal(t, shared.RoleEmployee, principal.Role)
}

func TestRequireMiddlewarePutsPrincipalInContext(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		10: {ID: 10, Role: shared.RoleAdmin, Status: auth.StatusActive},
	}}
	guard, tokens := newGuard(t, resolver)

	var seen *auth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	guard.Require(shared.RoleAdmin)(next).ServeHTTP(rec, requestWithToken(t, tokens, 10, shared.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, int64(10), seen.ID)
}

func TestRequireMiddlewareStatusCodes(t *testing.T) {
	resolver := &stubResolver{principals: map[int64]*auth.Principal{
		11: {ID: 11, Role: shared.RoleEmployee, Status: auth.StatusActive},
	}}
	guard, tokens := newGuard(t, resolver)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := guard.Require(shared.RoleAdmin)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/permissions", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithToken(t, tokens, 11, shared.RoleEmployee))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePrincipalReusesResolvedPrincipal(t *testing.T) {
	resolver := &stubResolver{err: errors.New("store must not be hit")}
	guard, _ := newGuard(t, resolver)

	principal := &auth.Principal{ID: 12, Role: shared.RoleHR, Status: auth.StatusActive}
	req := httptest.NewRequest(http.MethodGet, "/api/hr/employees", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))

	got, err := guard.RequirePrincipal(req, shared.RoleHR)
	require.NoError(t, err)
	require.Same(t, principal, got)
}
