// Package gate implements the request-level authorization gateway: a
// longest-prefix route table deciding which roles may enter a class of
// endpoints, enforced before any handler logic runs.
package gate

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
)

// Rule maps a route prefix to the set of roles allowed past it.
type Rule struct {
	Prefix string
	Roles  []shared.Role
}

// Table is an immutable, longest-prefix-first route authorization table.
// Build it once at startup and inject it; it is read-only afterwards.
type Table struct {
	rules []Rule
}

// NewTable constructs a Table, ordering rules so the longest prefix wins.
func NewTable(rules []Rule) Table {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})
	return Table{rules: ordered}
}

// DefaultRules mirrors the panel layout: the admin panel is admin-only, the
// HR panel opens to admin and hr, the employee panel to every role.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/admin", Roles: []shared.Role{shared.RoleAdmin}},
		{Prefix: "/hr", Roles: []shared.Role{shared.RoleAdmin, shared.RoleHR}},
		{Prefix: "/employee", Roles: []shared.Role{shared.RoleAdmin, shared.RoleHR, shared.RoleEmployee}},
		{Prefix: "/api/admin", Roles: []shared.Role{shared.RoleAdmin}},
		{Prefix: "/api/hr", Roles: []shared.Role{shared.RoleAdmin, shared.RoleHR}},
		{Prefix: "/api/employee", Roles: []shared.Role{shared.RoleAdmin, shared.RoleHR, shared.RoleEmployee}},
	}
}

// Match finds the longest prefix covering the path. Prefixes match on
// segment boundaries so /admin does not capture /administrator.
func (t Table) Match(path string) (Rule, bool) {
	for _, rule := range t.rules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule, true
		}
	}
	return Rule{}, false
}

// DenialRecorder counts gateway denials for observability.
type DenialRecorder interface {
	AuthzDenial(reason string)
}

// Gateway intercepts every request and applies the route table. It checks
// only the role embedded in the validated token: a coarse, store-free fast
// path whose staleness is bounded by the token lifetime. The route-level
// guard behind it re-resolves from the store.
type Gateway struct {
	Table     Table
	Tokens    *token.Manager
	LoginPath string
	// SplitStatus switches the denied responses from the classic
	// redirect-everything behavior to 401 for missing/invalid sessions and
	// 403 for disallowed roles.
	SplitStatus bool
	Logger      *slog.Logger
	Denials     DenialRecorder
}

// Middleware enforces the table on every inbound request. Unmatched paths
// pass through untouched.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule, ok := g.Table.Match(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(shared.SessionCookie)
		if err != nil {
			g.deny(w, r, "no_session", http.StatusUnauthorized)
			return
		}
		claims, err := g.Tokens.Validate(cookie.Value)
		if err != nil {
			g.deny(w, r, "invalid_token", http.StatusUnauthorized)
			return
		}
		if !claims.Role.In(rule.Roles...) {
			g.deny(w, r, "role_denied", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(token.ContextWithClaims(r.Context(), claims)))
	})
}

func (g *Gateway) deny(w http.ResponseWriter, r *http.Request, reason string, status int) {
	if g.Denials != nil {
		g.Denials.AuthzDenial(reason)
	}
	if g.Logger != nil {
		g.Logger.Info("gateway denied request",
			slog.String("path", r.URL.Path),
			slog.String("reason", reason))
	}
	if g.SplitStatus {
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
}

func (g *Gateway) loginPath() string {
	if g.LoginPath == "" {
		return "/login"
	}
	return g.LoginPath
}
