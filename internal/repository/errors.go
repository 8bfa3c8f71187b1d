package repository

import "errors"

// ErrInsufficientFunds is returned when a debit would push an account
// balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSameAccount is returned when a transfer names the same account on
// both sides.
var ErrSameAccount = errors.New("transfer within the same account")
