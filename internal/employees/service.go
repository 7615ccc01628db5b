package employees

import "context"

// Service handles employee read logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx)
}

// Get returns one employee by id.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileForUser returns the employee profile attached to a user account.
func (s *Service) ProfileForUser(ctx context.Context, userID int64) (Employee, error) {
	return s.repo.GetByUserID(ctx, userID)
}
