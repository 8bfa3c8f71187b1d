package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avoronov/bankadmin/internal/models"
)

const statementLimit = 50

var (
	// ErrInvalidAmount is returned when a movement amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAccountNotFound is returned when an account number does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotAccountOwner is returned when a user operates on an account
	// they do not own.
	ErrNotAccountOwner = errors.New("account belongs to another user")
)

// AccountRepository defines the account lookups required by the bank service.
type AccountRepository interface {
	ByUser(ctx context.Context, userID int64) ([]models.Account, error)
	ByNumber(ctx context.Context, number string) (*models.Account, error)
}

// TransactionRepository defines the money-movement operations required by
// the bank service. Implementations must make each movement atomic.
type TransactionRepository interface {
	Deposit(ctx context.Context, accountID, amount int64, reference, note string) (*models.Transaction, error)
	Withdraw(ctx context.Context, accountID, amount int64, reference, note string) (*models.Transaction, error)
	Transfer(ctx context.Context, fromID, toID, amount int64, reference, note string) (*models.Transaction, error)
	ByAccount(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error)
	Recent(ctx context.Context, limit int) ([]models.Transaction, error)
}

// BankService implements deposits, withdrawals, transfers and statements on
// top of the account and transaction repositories.
type BankService struct {
	accounts  AccountRepository
	movements TransactionRepository
}

// NewBankService constructs a new BankService using the provided repositories.
func NewBankService(accounts AccountRepository, movements TransactionRepository) *BankService {
	return &BankService{accounts: accounts, movements: movements}
}

// Accounts returns every account owned by the given user.
func (s *BankService) Accounts(ctx context.Context, userID int64) ([]models.Account, error) {
	return s.accounts.ByUser(ctx, userID)
}

// Deposit credits the named account, which must belong to userID.
func (s *BankService) Deposit(ctx context.Context, userID int64, number string, amount int64, note string) (*models.Transaction, error) {
	account, err := s.ownedAccount(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.movements.Deposit(ctx, account.ID, amount, uuid.NewString(), note)
}

// Withdraw debits the named account, which must belong to userID.
func (s *BankService) Withdraw(ctx context.Context, userID int64, number string, amount int64, note string) (*models.Transaction, error) {
	account, err := s.ownedAccount(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.movements.Withdraw(ctx, account.ID, amount, uuid.NewString(), note)
}

// Transfer moves money from an account owned by userID to any other
// account identified by number.
func (s *BankService) Transfer(ctx context.Context, userID int64, fromNumber, toNumber string, amount int64, note string) (*models.Transaction, error) {
	from, err := s.ownedAccount(ctx, userID, fromNumber)
	if err != nil {
		return nil, err
	}
	to, err := s.accounts.ByNumber(ctx, toNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.movements.Transfer(ctx, from.ID, to.ID, amount, uuid.NewString(), note)
}

// Statement returns the recent movements of the named account, which must
// belong to userID.
func (s *BankService) Statement(ctx context.Context, userID int64, number string) ([]models.Transaction, error) {
	account, err := s.ownedAccount(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	return s.movements.ByAccount(ctx, account.ID, statementLimit)
}

// RecentActivity returns the latest movements across all accounts for the
// admin pages.
func (s *BankService) RecentActivity(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.movements.Recent(ctx, limit)
}

func (s *BankService) ownedAccount(ctx context.Context, userID int64, number string) (*models.Account, error) {
	account, err := s.accounts.ByNumber(ctx, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account.UserID != userID {
		return nil, ErrNotAccountOwner
	}
	return account, nil
}
