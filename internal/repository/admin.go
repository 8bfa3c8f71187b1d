package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avoronov/bankadmin/internal/models"
)

// PostgresAdminRepository implements administrator persistence against a
// PostgreSQL database.
type PostgresAdminRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository with the given database connection.
func NewPostgresAdminRepository(db *sql.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{DB: db}
}

// Create inserts a new administrator row and returns the stored record.
func (r *PostgresAdminRepository) Create(ctx context.Context, username, email string, passwordHash []byte) (*models.Admin, error) {
	admin := &models.Admin{Username: username, Email: email, PasswordHash: passwordHash}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO admins (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, username, email, string(passwordHash)).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

// ByID fetches an administrator by primary key. sql.ErrNoRows is passed
// through when no such administrator exists.
func (r *PostgresAdminRepository) ByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM admins WHERE id = $1
	`, id))
}

// ByUsername fetches an administrator by login name. sql.ErrNoRows is
// passed through when no such administrator exists.
func (r *PostgresAdminRepository) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM admins WHERE username = $1
	`, username))
}

// Overview returns aggregate counters for the admin dashboard: number of
// users, number of accounts and the total balance held across all accounts.
func (r *PostgresAdminRepository) Overview(ctx context.Context) (users, accounts, balanceCents int64, err error) {
	err = r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COALESCE(SUM(balance_cents), 0) FROM accounts)
	`).Scan(&users, &accounts, &balanceCents)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("overview: %w", err)
	}
	return users, accounts, balanceCents, nil
}

func (r *PostgresAdminRepository) scanOne(row *sql.Row) (*models.Admin, error) {
	var a models.Admin
	var hash string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &hash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = []byte(hash)
	return &a, nil
}
