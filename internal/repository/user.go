// Package repository provides persistence implementations for the banking
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avoronov/bankadmin/internal/models"
)

// PostgresUserRepository implements user persistence against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Create inserts a new user row and returns the stored record.
func (r *PostgresUserRepository) Create(ctx context.Context, username, email string, passwordHash []byte) (*models.User, error) {
	user := &models.User{Username: username, Email: email, PasswordHash: passwordHash, Active: true}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, username, email, string(passwordHash)).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ByID fetches a user by primary key. sql.ErrNoRows is passed through when
// no such user exists.
func (r *PostgresUserRepository) ByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, active, deactivated_at, created_at
		FROM users WHERE id = $1
	`, id))
}

// ByUsername fetches a user by login name. sql.ErrNoRows is passed through
// when no such user exists.
func (r *PostgresUserRepository) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, active, deactivated_at, created_at
		FROM users WHERE username = $1
	`, username))
}

// Exists reports whether a user with the given username or email is
// already registered.
func (r *PostgresUserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	return exists, err
}

// List returns every user ordered by registration time, newest first.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, email, password_hash, active, deactivated_at, created_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var hash string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &hash, &u.Active, &u.DeactivatedAt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		u.PasswordHash = []byte(hash)
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetActive flips the active flag. Deactivation stamps deactivated_at so
// the purger can measure retention; reactivation clears it.
func (r *PostgresUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		   SET active = $2,
		       deactivated_at = CASE WHEN $2 THEN NULL ELSE now() END
		 WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	var hash string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &hash, &u.Active, &u.DeactivatedAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = []byte(hash)
	return &u, nil
}
