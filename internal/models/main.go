// Package models defines the core data structures for principals,
// accounts and money movements.
package models

import (
	"strconv"
	"time"
)

// AdminSessionPrefix marks session identifiers belonging to administrators.
// User identifiers carry no prefix and are plain decimal ids.
const AdminSessionPrefix = "admin_"

// Principal is an authenticated entity resolvable from a session identifier.
type Principal interface {
	// SessionID returns the identifier stored in the session cookie.
	SessionID() string
	// DisplayName returns the name shown in page headers.
	DisplayName() string
	// IsAdmin reports whether the principal is an administrator.
	IsAdmin() bool
}

// User represents a banking customer.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// Email is the contact address of the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Active is false once an administrator deactivates the user.
	Active bool
	// DeactivatedAt is set when Active flips to false.
	DeactivatedAt *time.Time
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// SessionID returns the bare decimal id used as the session identifier.
func (u *User) SessionID() string { return strconv.FormatInt(u.ID, 10) }

// DisplayName returns the username.
func (u *User) DisplayName() string { return u.Username }

// IsAdmin always returns false for users.
func (u *User) IsAdmin() bool { return false }

// Admin represents a back-office administrator.
type Admin struct {
	// ID is the unique identifier for the administrator.
	ID int64
	// Username is the login name of the administrator.
	Username string
	// Email is the contact address of the administrator.
	Email string
	// PasswordHash is the bcrypt hash of the administrator's password.
	PasswordHash []byte
	// CreatedAt is the creation time of the record.
	CreatedAt time.Time
}

// SessionID returns the prefixed identifier ("admin_<id>") used in sessions.
func (a *Admin) SessionID() string {
	return AdminSessionPrefix + strconv.FormatInt(a.ID, 10)
}

// DisplayName returns the username.
func (a *Admin) DisplayName() string { return a.Username }

// IsAdmin always returns true for administrators.
func (a *Admin) IsAdmin() bool { return true }

// Account is a money container owned by a single user.
type Account struct {
	// ID is the unique identifier for the account.
	ID int64
	// UserID is the owning user.
	UserID int64
	// Number is the externally visible account number.
	Number string
	// BalanceCents is the current balance in integer cents.
	BalanceCents int64
	// CreatedAt is the opening time of the account.
	CreatedAt time.Time
}

// TransactionKind defines the set of valid money-movement kinds.
type TransactionKind string

const (
	// KindDeposit represents money entering an account from outside.
	KindDeposit TransactionKind = "deposit"
	// KindWithdrawal represents money leaving an account to outside.
	KindWithdrawal TransactionKind = "withdrawal"
	// KindTransfer represents money moving between two accounts.
	KindTransfer TransactionKind = "transfer"
)

// Transaction is an immutable record of a completed money movement.
type Transaction struct {
	// ID is the unique identifier for the transaction.
	ID int64
	// Reference is the externally visible UUID of the transaction.
	Reference string
	// FromAccountID is the debited account, nil for deposits.
	FromAccountID *int64
	// ToAccountID is the credited account, nil for withdrawals.
	ToAccountID *int64
	// Kind is the movement kind.
	Kind TransactionKind
	// AmountCents is the moved amount in integer cents, always positive.
	AmountCents int64
	// Note is an optional free-form description.
	Note string
	// CreatedAt is the completion time.
	CreatedAt time.Time
}
