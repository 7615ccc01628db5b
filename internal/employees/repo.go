package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	GetByUserID(ctx context.Context, userID int64) (Employee, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `
	SELECT e.id, e.user_id, u.name, u.email, d.name, p.title, e.hired_at
	FROM employees e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN positions p ON p.id = e.position_id`

// List returns all employees ordered by id.
func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, employeeColumns+` ORDER BY e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var all []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, emp)
	}
	return all, rows.Err()
}

// GetByID fetches a single employee.
func (r *Repository) GetByID(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, employeeColumns+` WHERE e.id = $1`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return emp, err
}

// GetByUserID fetches the employee profile for a user account.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, employeeColumns+` WHERE e.user_id = $1`, userID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return emp, err
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var department, position pgtype.Text
	if err := row.Scan(&emp.ID, &emp.UserID, &emp.Name, &emp.Email, &department, &position, &emp.HiredAt); err != nil {
		return Employee{}, err
	}
	emp.Department = department.String
	emp.Position = position.String
	return emp, nil
}

var _ RepositoryPort = (*Repository)(nil)
