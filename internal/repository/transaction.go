package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/avoronov/bankadmin/internal/models"
)

// PostgresTransactionRepository implements money movements and transaction
// history against a PostgreSQL database. Every movement runs inside a single
// SQL transaction and is rolled back on any failure.
type PostgresTransactionRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresTransactionRepository creates a new PostgresTransactionRepository
// with the given database connection.
func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{DB: db}
}

// Deposit credits an account and records the movement.
//
//	ctx:       context for cancellation and deadlines
//	accountID: account to credit
//	amount:    amount in cents, must be positive
//	reference: unique external identifier of the movement
//	note:      optional free-form description
func (r *PostgresTransactionRepository) Deposit(ctx context.Context, accountID, amount int64, reference, note string) (*models.Transaction, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1 WHERE id = $2
	`, amount, accountID)
	if err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, sql.ErrNoRows
	}

	movement, err := insertMovement(ctx, tx, models.Transaction{
		Reference:   reference,
		ToAccountID: &accountID,
		Kind:        models.KindDeposit,
		AmountCents: amount,
		Note:        note,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return movement, nil
}

// Withdraw debits an account and records the movement. Returns
// ErrInsufficientFunds when the balance cannot cover the amount.
func (r *PostgresTransactionRepository) Withdraw(ctx context.Context, accountID, amount int64, reference, note string) (*models.Transaction, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `
		SELECT balance_cents FROM accounts WHERE id = $1 FOR UPDATE
	`, accountID).Scan(&balance)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents - $1 WHERE id = $2
	`, amount, accountID); err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}

	movement, err := insertMovement(ctx, tx, models.Transaction{
		Reference:     reference,
		FromAccountID: &accountID,
		Kind:          models.KindWithdrawal,
		AmountCents:   amount,
		Note:          note,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return movement, nil
}

// Transfer atomically moves money between two accounts. Both rows are
// locked in id order to keep concurrent opposite transfers deadlock-free.
// Returns ErrInsufficientFunds when the source cannot cover the amount and
// ErrSameAccount when both sides name the same account.
func (r *PostgresTransactionRepository) Transfer(ctx context.Context, fromID, toID, amount int64, reference, note string) (*models.Transaction, error) {
	if fromID == toID {
		return nil, ErrSameAccount
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, balance_cents FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE
	`, pq.Array([]int64{fromID, toID}))
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}

	balances := make(map[int64]int64, 2)
	for rows.Next() {
		var id, balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan: %w", err)
		}
		balances[id] = balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	if len(balances) != 2 {
		return nil, sql.ErrNoRows
	}
	if balances[fromID] < amount {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents - $1 WHERE id = $2
	`, amount, fromID); err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1 WHERE id = $2
	`, amount, toID); err != nil {
		return nil, fmt.Errorf("credit account: %w", err)
	}

	movement, err := insertMovement(ctx, tx, models.Transaction{
		Reference:     reference,
		FromAccountID: &fromID,
		ToAccountID:   &toID,
		Kind:          models.KindTransfer,
		AmountCents:   amount,
		Note:          note,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return movement, nil
}

// ByAccount returns the most recent movements touching the given account,
// newest first, capped at limit.
func (r *PostgresTransactionRepository) ByAccount(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, reference, from_account_id, to_account_id, kind, amount_cents, note, created_at
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("transactions by account: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// Recent returns the most recent movements across all accounts, newest
// first, capped at limit.
func (r *PostgresTransactionRepository) Recent(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, reference, from_account_id, to_account_id, kind, amount_cents, note, created_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func insertMovement(ctx context.Context, tx *sql.Tx, movement models.Transaction) (*models.Transaction, error) {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (reference, from_account_id, to_account_id, kind, amount_cents, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, movement.Reference, movement.FromAccountID, movement.ToAccountID,
		movement.Kind, movement.AmountCents, movement.Note,
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return &movement, nil
}

func scanMovements(rows *sql.Rows) ([]models.Transaction, error) {
	var movements []models.Transaction
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(&m.ID, &m.Reference, &m.FromAccountID, &m.ToAccountID, &m.Kind, &m.AmountCents, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
