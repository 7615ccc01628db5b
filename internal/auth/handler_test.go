package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

func newAuthRouter(t *testing.T, repo *stubRepo) chi.Router {
	t.Helper()
	handler := auth.NewHandler(nil, newService(t, repo), false, time.Hour, nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local": {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive, PasswordHash: hashFor(t, "correct-horse")},
	}}
	router := newAuthRouter(t, repo)

	rec := postJSON(t, router, "/login", `{"email":"Admin@Hrm.Local","password":"correct-horse"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookie := findCookie(t, rec, shared.SessionCookie)
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestLoginGenericFailureBody(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local":     {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive, PasswordHash: hashFor(t, "correct-horse")},
		"suspended@hrm.local": {ID: 2, Email: "suspended@hrm.local", Role: shared.RoleHR, Status: auth.StatusSuspended, PasswordHash: hashFor(t, "correct-horse")},
	}}
	router := newAuthRouter(t, repo)

	// Unknown email, wrong password and suspended account are
	// indistinguishable from the outside.
	cases := []string{
		`{"email":"ghost@hrm.local","password":"whatever"}`,
		`{"email":"admin@hrm.local","password":"wrong"}`,
		`{"email":"suspended@hrm.local","password":"correct-horse"}`,
	}
	var bodies []httpx.ProblemDetail
	for _, body := range cases {
		rec := postJSON(t, router, "/login", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var problem httpx.ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		bodies = append(bodies, problem)
	}
	for _, problem := range bodies {
		require.Equal(t, "invalid credentials", problem.Detail)
		require.Equal(t, bodies[0], problem)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	router := newAuthRouter(t, &stubRepo{})
	rec := postJSON(t, router, "/login", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newAuthRouter(t, &stubRepo{})

	rec := postJSON(t, router, "/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookie := findCookie(t, rec, shared.SessionCookie)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}

func TestRegisterCreatedResponseOmitsHash(t *testing.T) {
	repo := &stubRepo{}
	router := newAuthRouter(t, repo)

	rec := postJSON(t, router, "/register", `{"email":"new@hrm.local","name":"New Hire","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "new@hrm.local", payload["email"])
	require.Equal(t, string(shared.RoleEmployee), payload["role"])
	require.NotContains(t, rec.Body.String(), "passwordHash")
	require.NotContains(t, rec.Body.String(), "password123")
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.Principal{
		"admin@hrm.local": {ID: 1, Email: "admin@hrm.local", Role: shared.RoleAdmin, Status: auth.StatusActive},
	}}
	router := newAuthRouter(t, repo)

	rec := postJSON(t, router, "/register", `{"email":"ADMIN@hrm.local","name":"Dup","password":"password123"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "email already registered", problem.Detail)
}

func TestRegisterShortPassword(t *testing.T) {
	router := newAuthRouter(t, &stubRepo{})
	rec := postJSON(t, router, "/register", `{"email":"new@hrm.local","name":"New Hire","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
