package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, normalizedEmail string) (*Principal, error)
	FindByID(ctx context.Context, id int64) (*Principal, error)
	Create(ctx context.Context, email, name, passwordHash string, role shared.Role, status Status) (*Principal, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a principal by normalized email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, normalizedEmail string) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, role, status, password_hash, created_at, updated_at
		FROM users
		WHERE lower(email) = $1`, normalizedEmail)
	return scanPrincipal(row)
}

// FindByID fetches a principal by ID together with the department/position
// profile when the user has an employee record.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.status, u.password_hash, u.created_at, u.updated_at,
		       d.name, p.title
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE u.id = $1`, id)

	var principal Principal
	var role, status string
	var department, position pgtype.Text
	err := row.Scan(&principal.ID, &principal.Email, &principal.Name, &role, &status,
		&principal.PasswordHash, &principal.CreatedAt, &principal.UpdatedAt, &department, &position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	principal.Role = shared.Role(role)
	principal.Status = Status(status)
	principal.Department = department.String
	principal.Position = position.String
	return &principal, nil
}

// Create inserts a new principal. Duplicate emails surface as ErrConflict.
func (r *PGRepository) Create(ctx context.Context, email, name, passwordHash string, role shared.Role, status Status) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`, email, name, string(role), string(status), passwordHash)

	principal := Principal{
		Email:        email,
		Name:         name,
		Role:         role,
		Status:       status,
		PasswordHash: passwordHash,
	}
	if err := row.Scan(&principal.ID, &principal.CreatedAt, &principal.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return &principal, nil
}

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var principal Principal
	var role, status string
	err := row.Scan(&principal.ID, &principal.Email, &principal.Name, &role, &status,
		&principal.PasswordHash, &principal.CreatedAt, &principal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	principal.Role = shared.Role(role)
	principal.Status = Status(status)
	return &principal, nil
}

var _ Repository = (*PGRepository)(nil)
