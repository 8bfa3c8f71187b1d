package service

import (
	"context"

	"github.com/avoronov/bankadmin/internal/models"
)

// AdminOverviewRepository defines the aggregate queries required by the
// admin service.
type AdminOverviewRepository interface {
	Overview(ctx context.Context) (users, accounts, balanceCents int64, err error)
}

// UserAdminRepository defines the user management operations required by
// the admin service.
type UserAdminRepository interface {
	List(ctx context.Context) ([]models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Overview aggregates the counters shown on the admin dashboard.
type Overview struct {
	// Users is the total number of registered users.
	Users int64
	// Accounts is the total number of open accounts.
	Accounts int64
	// BalanceCents is the sum of all account balances.
	BalanceCents int64
}

// AdminService implements the back-office operations.
type AdminService struct {
	overview AdminOverviewRepository
	users    UserAdminRepository
}

// NewAdminService constructs a new AdminService using the provided repositories.
func NewAdminService(overview AdminOverviewRepository, users UserAdminRepository) *AdminService {
	return &AdminService{overview: overview, users: users}
}

// Overview returns the dashboard counters.
func (s *AdminService) Overview(ctx context.Context) (Overview, error) {
	users, accounts, balance, err := s.overview.Overview(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Users: users, Accounts: accounts, BalanceCents: balance}, nil
}

// ListUsers returns every registered user.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// SetUserActive activates or deactivates a user account.
func (s *AdminService) SetUserActive(ctx context.Context, id int64, active bool) error {
	return s.users.SetActive(ctx, id, active)
}
