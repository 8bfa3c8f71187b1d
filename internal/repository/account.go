package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avoronov/bankadmin/internal/models"
)

// PostgresAccountRepository implements account persistence against a
// PostgreSQL database.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository with the given database connection.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// Create opens a new zero-balance account for the given user.
func (r *PostgresAccountRepository) Create(ctx context.Context, userID int64, number string) (*models.Account, error) {
	account := &models.Account{UserID: userID, Number: number}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (user_id, number)
		VALUES ($1, $2)
		RETURNING id, balance_cents, created_at
	`, userID, number).Scan(&account.ID, &account.BalanceCents, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// ByUser returns every account owned by the given user, oldest first.
func (r *PostgresAccountRepository) ByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, number, balance_cents, created_at
		FROM accounts WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("accounts by user: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Number, &a.BalanceCents, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ByNumber fetches an account by its externally visible number.
// sql.ErrNoRows is passed through when no such account exists.
func (r *PostgresAccountRepository) ByNumber(ctx context.Context, number string) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, number, balance_cents, created_at
		FROM accounts WHERE number = $1
	`, number).Scan(&a.ID, &a.UserID, &a.Number, &a.BalanceCents, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
