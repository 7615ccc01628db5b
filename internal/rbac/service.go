package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Service is the permission store: a queryable, runtime-mutable mapping from
// the fixed roles to permission keys.
type Service struct {
	repo   Repository
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewService constructs a Service. The cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Has reports whether the role holds the permission. Pure read; concurrent
// identical checks collapse into a single store query.
func (s *Service) Has(ctx context.Context, role shared.Role, key string) (bool, error) {
	keys, err := s.roleKeys(ctx, role)
	if err != nil {
		return false, err
	}
	for _, granted := range keys {
		if granted == key {
			return true, nil
		}
	}
	return false, nil
}

// Grant attaches a permission to a role. Idempotent: granting an
// already-granted pair is a no-op.
func (s *Service) Grant(ctx context.Context, role shared.Role, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("rbac: permission key required")
	}
	if err := s.repo.Grant(ctx, role, key); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Revoke detaches a permission from a role. Revoking an absent pair is a
// no-op, not an error.
func (s *Service) Revoke(ctx context.Context, role shared.Role, key string) error {
	if err := s.repo.Revoke(ctx, role, strings.TrimSpace(key)); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ListForRole returns the permissions granted to a role.
func (s *Service) ListForRole(ctx context.Context, role shared.Role) ([]Permission, error) {
	return s.repo.ListForRole(ctx, role)
}

// ListGrouped returns grants for every role, for the management surface.
func (s *Service) ListGrouped(ctx context.Context) ([]RoleGrants, error) {
	grouped := make([]RoleGrants, 0, 3)
	for _, role := range shared.AllRoles() {
		perms, err := s.repo.ListForRole(ctx, role)
		if err != nil {
			return nil, err
		}
		grouped = append(grouped, RoleGrants{Role: role, Permissions: perms})
	}
	return grouped, nil
}

// CreatePermission registers a new permission entity.
func (s *Service) CreatePermission(ctx context.Context, key, description string) (Permission, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Permission{}, errors.New("rbac: permission key required")
	}
	return s.repo.CreatePermission(ctx, key, description)
}

// DeletePermission removes a permission and its grants.
func (s *Service) DeletePermission(ctx context.Context, key string) error {
	if err := s.repo.DeletePermission(ctx, strings.TrimSpace(key)); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ListPermissions returns all permissions ordered by key.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) roleKeys(ctx context.Context, role shared.Role) ([]string, error) {
	result, err, _ := s.group.Do("role:"+string(role), func() (any, error) {
		var keys []string
		err := s.cacheFetch(ctx, &keys, role)
		return keys, err
	})
	if err != nil {
		return nil, err
	}
	keys, _ := result.([]string)
	return keys, nil
}

func (s *Service) cacheFetch(ctx context.Context, dest *[]string, role shared.Role) error {
	loader := func(ctx context.Context) (any, error) {
		return s.repo.RoleKeys(ctx, role)
	}
	if s.cache == nil {
		keys, err := s.repo.RoleKeys(ctx, role)
		if err != nil {
			return err
		}
		*dest = keys
		return nil
	}
	return s.cache.FetchJSON(ctx, dest, loader, "rbac", "role", string(role))
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("rbac cache bump", slog.Any("error", err))
	}
}
