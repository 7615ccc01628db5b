package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Repository defines persistence operations for the permission store.
type Repository interface {
	CreatePermission(ctx context.Context, key, description string) (Permission, error)
	DeletePermission(ctx context.Context, key string) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	ListForRole(ctx context.Context, role shared.Role) ([]Permission, error)
	RoleKeys(ctx context.Context, role shared.Role) ([]string, error)
	Grant(ctx context.Context, role shared.Role, key string) error
	Revoke(ctx context.Context, role shared.Role, key string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreatePermission inserts a new permission. Duplicate keys surface as
// ErrConflict.
func (r *PGRepository) CreatePermission(ctx context.Context, key, description string) (Permission, error) {
	perm := Permission{Key: strings.TrimSpace(key), Description: strings.TrimSpace(description)}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (key, description)
		VALUES ($1, $2)
		RETURNING created_at`, perm.Key, perm.Description)
	if err := row.Scan(&perm.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Permission{}, shared.ErrConflict
		}
		return Permission{}, err
	}
	return perm, nil
}

// DeletePermission removes a permission and, via FK cascade, its grants.
func (r *PGRepository) DeletePermission(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListPermissions returns all permissions ordered by key.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, description, created_at FROM permissions ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// ListForRole returns the permissions granted to a role, ordered by key.
func (r *PGRepository) ListForRole(ctx context.Context, role shared.Role) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.key, p.description, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.key = rp.permission_key
		WHERE rp.role = $1
		ORDER BY p.key`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// RoleKeys returns just the permission keys granted to a role.
func (r *PGRepository) RoleKeys(ctx context.Context, role shared.Role) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission_key FROM role_permissions WHERE role = $1`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	keys := make([]string, 0, 8)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Grant attaches a permission to a role. Granting an existing pair is a
// no-op; granting an unknown permission key fails with ErrNotFound.
func (r *PGRepository) Grant(ctx context.Context, role shared.Role, key string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role, permission_key)
		VALUES ($1, $2)
		ON CONFLICT (role, permission_key) DO NOTHING`, string(role), key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// Revoke detaches a permission from a role. Revoking an absent pair is a
// no-op.
func (r *PGRepository) Revoke(ctx context.Context, role shared.Role, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_permissions WHERE role = $1 AND permission_key = $2`, string(role), key)
	return err
}

func collectPermissions(rows pgx.Rows) ([]Permission, error) {
	perms := make([]Permission, 0, 16)
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.Key, &perm.Description, &perm.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
