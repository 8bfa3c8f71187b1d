package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/avoronov/bankadmin/internal/middleware"
	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/repository"
	"github.com/avoronov/bankadmin/internal/service"
	"github.com/avoronov/bankadmin/internal/session"
)

// BankService defines the banking operations required by the user pages.
type BankService interface {
	Accounts(ctx context.Context, userID int64) ([]models.Account, error)
	Deposit(ctx context.Context, userID int64, number string, amount int64, note string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID int64, number string, amount int64, note string) (*models.Transaction, error)
	Transfer(ctx context.Context, userID int64, fromNumber, toNumber string, amount int64, note string) (*models.Transaction, error)
	Statement(ctx context.Context, userID int64, number string) ([]models.Transaction, error)
}

// UserHandler serves the customer-facing pages.
type UserHandler struct {
	// Bank performs the money movements.
	Bank BankService
	// Sessions carries the flash messages.
	Sessions *session.Manager
	// Renderer draws the HTML pages.
	Renderer *Renderer
}

// Dashboard shows the user's accounts and balances.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	accounts, err := h.Bank.Accounts(r.Context(), user.ID)
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.Renderer.Render(w, r, "user/dashboard.html", http.StatusOK, map[string]any{
		"Title":    "Dashboard",
		"Accounts": accounts,
	})
}

// TransferForm renders the transfer page.
func (h *UserHandler) TransferForm(w http.ResponseWriter, r *http.Request) {
	h.renderMoneyForm(w, r, "user/transfer.html", "Transfer money")
}

// Transfer moves money from one of the user's accounts to any account.
func (h *UserHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", "/user/transfer")
		return
	}
	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		h.flashAndRedirect(w, r, "Enter a valid amount.", "/user/transfer")
		return
	}

	_, err = h.Bank.Transfer(r.Context(), user.ID,
		strings.TrimSpace(r.FormValue("from")),
		strings.TrimSpace(r.FormValue("to")),
		amount,
		strings.TrimSpace(r.FormValue("note")),
	)
	if err != nil {
		h.flashMovementError(w, r, err, "/user/transfer")
		return
	}
	h.flashAndRedirect(w, r, "Transfer completed.", "/user/dashboard")
}

// DepositForm renders the deposit page.
func (h *UserHandler) DepositForm(w http.ResponseWriter, r *http.Request) {
	h.renderMoneyForm(w, r, "user/deposit.html", "Deposit")
}

// Deposit credits one of the user's accounts.
func (h *UserHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, "/user/deposit", "Deposit completed.", h.Bank.Deposit)
}

// WithdrawForm renders the withdrawal page.
func (h *UserHandler) WithdrawForm(w http.ResponseWriter, r *http.Request) {
	h.renderMoneyForm(w, r, "user/withdraw.html", "Withdraw")
}

// Withdraw debits one of the user's accounts.
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, "/user/withdraw", "Withdrawal completed.", h.Bank.Withdraw)
}

// Transactions shows the statement of one of the user's accounts. The
// account is selected with the "account" query parameter and defaults to
// the user's first account.
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	number := strings.TrimSpace(r.URL.Query().Get("account"))
	accounts, err := h.Bank.Accounts(r.Context(), user.ID)
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	if number == "" {
		if len(accounts) == 0 {
			h.Renderer.Render(w, r, "user/transactions.html", http.StatusOK, map[string]any{
				"Title": "Transactions",
			})
			return
		}
		number = accounts[0].Number
	}

	statement, err := h.Bank.Statement(r.Context(), user.ID, number)
	switch {
	case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrNotAccountOwner):
		h.Renderer.NotFound(w, r)
		return
	case err != nil:
		h.Renderer.ServerError(w, r)
		return
	}

	h.Renderer.Render(w, r, "user/transactions.html", http.StatusOK, map[string]any{
		"Title":     "Transactions",
		"Accounts":  accounts,
		"Account":   number,
		"Movements": statement,
	})
}

type movementFunc func(ctx context.Context, userID int64, number string, amount int64, note string) (*models.Transaction, error)

func (h *UserHandler) handleMovement(w http.ResponseWriter, r *http.Request, formURL, success string, move movementFunc) {
	user := middleware.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", formURL)
		return
	}
	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		h.flashAndRedirect(w, r, "Enter a valid amount.", formURL)
		return
	}

	_, err = move(r.Context(), user.ID,
		strings.TrimSpace(r.FormValue("account")),
		amount,
		strings.TrimSpace(r.FormValue("note")),
	)
	if err != nil {
		h.flashMovementError(w, r, err, formURL)
		return
	}
	h.flashAndRedirect(w, r, success, "/user/dashboard")
}

func (h *UserHandler) renderMoneyForm(w http.ResponseWriter, r *http.Request, page, title string) {
	user := middleware.UserFromContext(r.Context())
	accounts, err := h.Bank.Accounts(r.Context(), user.ID)
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.Renderer.Render(w, r, page, http.StatusOK, map[string]any{
		"Title":    title,
		"Accounts": accounts,
	})
}

func (h *UserHandler) flashMovementError(w http.ResponseWriter, r *http.Request, err error, formURL string) {
	switch {
	case errors.Is(err, repository.ErrInsufficientFunds):
		h.flashAndRedirect(w, r, "Insufficient funds.", formURL)
	case errors.Is(err, repository.ErrSameAccount):
		h.flashAndRedirect(w, r, "Choose two different accounts.", formURL)
	case errors.Is(err, service.ErrAccountNotFound):
		h.flashAndRedirect(w, r, "No such account.", formURL)
	case errors.Is(err, service.ErrNotAccountOwner):
		h.flashAndRedirect(w, r, "You can only move money from your own accounts.", formURL)
	case errors.Is(err, service.ErrInvalidAmount):
		h.flashAndRedirect(w, r, "Enter a valid amount.", formURL)
	default:
		h.Renderer.ServerError(w, r)
	}
}

func (h *UserHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	_ = h.Sessions.AddFlash(w, r, message)
	http.Redirect(w, r, target, http.StatusFound)
}

// parseAmount converts a decimal money string ("12.50") to integer cents.
// Dollars and cents are parsed as integers so no precision is lost;
// exponent notation, signs and more than two decimal places are rejected.
func parseAmount(raw string) (int64, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(raw), ".")
	if whole == "" || whole[0] == '-' || whole[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 || frac[0] == '-' || frac[0] == '+' {
			return 0, strconv.ErrSyntax
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, err
		}
		if len(frac) == 1 {
			cents *= 10
		}
	}

	if dollars > (math.MaxInt64-cents)/100 {
		return 0, strconv.ErrRange
	}
	return dollars*100 + cents, nil
}
