package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
)

// PrincipalResolver loads the current principal record from the store.
type PrincipalResolver interface {
	ResolveByID(ctx context.Context, id int64) (*auth.Principal, error)
}

// Guard asserts role requirements inside protected handlers, as defense in
// depth behind the gateway. Unlike the gateway it never trusts the role
// embedded in the token: the principal is re-resolved from the store on
// every check, so suspensions and role changes apply without waiting for
// token expiry.
type Guard struct {
	Resolver PrincipalResolver
	Tokens   *token.Manager
	Logger   *slog.Logger
}

// RequirePrincipal resolves the request's principal and asserts its role is
// one of the allowed roles (any role when none are given). Store failures
// deny: access is never granted on an unanswerable authorization question.
func (g Guard) RequirePrincipal(r *http.Request, roles ...shared.Role) (*auth.Principal, error) {
	ctx := r.Context()

	// An enclosing guard on the same request already resolved fresh state.
	if principal := auth.PrincipalFromContext(ctx); principal != nil {
		return g.check(principal, roles)
	}

	claims, ok := token.ClaimsFromContext(ctx)
	if !ok {
		cookie, err := r.Cookie(shared.SessionCookie)
		if err != nil {
			return nil, shared.ErrUnauthorized
		}
		claims, err = g.Tokens.Validate(cookie.Value)
		if err != nil {
			return nil, shared.ErrUnauthorized
		}
	}

	principal, err := g.Resolver.ResolveByID(ctx, claims.PrincipalID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			g.logError("resolve principal", err)
		}
		return nil, shared.ErrUnauthorized
	}
	if !principal.Active() {
		return nil, shared.ErrUnauthorized
	}
	return g.check(principal, roles)
}

// Require wraps a handler with a role assertion. The resolved principal is
// stored in the request context so the handler needs no second lookup.
func (g Guard) Require(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := g.RequirePrincipal(r, roles...)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func (g Guard) check(principal *auth.Principal, roles []shared.Role) (*auth.Principal, error) {
	if len(roles) > 0 && !principal.Role.In(roles...) {
		return nil, shared.ErrForbidden
	}
	return principal, nil
}

func (g Guard) logError(msg string, err error) {
	if g.Logger != nil {
		g.Logger.Error(msg, slog.Any("error", err))
	}
}
