package employees

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/rbac"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// PermissionChecker answers fine-grained capability questions beyond the
// coarse role gate.
type PermissionChecker interface {
	Has(ctx context.Context, role shared.Role, key string) (bool, error)
}

// Handler exposes the protected employee read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Guard
	perms   PermissionChecker
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard, perms PermissionChecker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, perms: perms}
}

// MountHRRoutes registers the HR-facing listing endpoints.
func (h *Handler) MountHRRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(shared.RoleAdmin, shared.RoleHR))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
}

// MountEmployeeRoutes registers the self-service endpoints open to any role.
func (h *Handler) MountEmployeeRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require())
		r.Get("/profile", h.profile)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if !h.allow(w, r, principal, shared.PermEmployeesRead) {
		return
	}
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if !h.allow(w, r, principal, shared.PermEmployeesRead) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	emp, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	emp, err := h.service.ProfileForUser(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

// allow enforces the fine-grained permission on top of the role gate.
// Admins hold every capability implicitly; an unanswerable check denies.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, principal *auth.Principal, permission string) bool {
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return false
	}
	if principal.Role == shared.RoleAdmin {
		return true
	}
	ok, err := h.perms.Has(r.Context(), principal.Role, permission)
	if err != nil {
		h.logger.Error("permission check", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return false
	}
	if !ok {
		httpx.RespondError(w, shared.ErrForbidden)
		return false
	}
	return true
}
