package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/service"
	"github.com/avoronov/bankadmin/internal/session"
)

const recentActivityLimit = 20

// AdminService defines the back-office operations required by the admin
// pages.
type AdminService interface {
	Overview(ctx context.Context) (service.Overview, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) error
}

// ActivityService lists recent money movements across all accounts.
type ActivityService interface {
	RecentActivity(ctx context.Context, limit int) ([]models.Transaction, error)
}

// AdminHandler serves the back-office pages.
type AdminHandler struct {
	// Admin performs the user-management operations.
	Admin AdminService
	// Activity lists recent transactions.
	Activity ActivityService
	// Sessions carries the flash messages.
	Sessions *session.Manager
	// Renderer draws the HTML pages.
	Renderer *Renderer
}

// Dashboard shows aggregate counters and the latest activity.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Admin.Overview(r.Context())
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	recent, err := h.Activity.RecentActivity(r.Context(), recentActivityLimit)
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.Renderer.Render(w, r, "admin/dashboard.html", http.StatusOK, map[string]any{
		"Title":    "Admin dashboard",
		"Overview": overview,
		"Recent":   recent,
	})
}

// Users lists every registered user with their status.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.ListUsers(r.Context())
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.Renderer.Render(w, r, "admin/users.html", http.StatusOK, map[string]any{
		"Title": "Users",
		"Users": users,
	})
}

// SetUserActive activates or deactivates a user. The target state comes
// from the "active" form value.
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Renderer.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", "/admin/users")
		return
	}
	active := r.FormValue("active") == "1"

	if err := h.Admin.SetUserActive(r.Context(), id, active); err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	if active {
		h.flashAndRedirect(w, r, "User activated.", "/admin/users")
		return
	}
	h.flashAndRedirect(w, r, "User deactivated.", "/admin/users")
}

// Transactions lists the most recent movements across all accounts.
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	recent, err := h.Activity.RecentActivity(r.Context(), 100)
	if err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.Renderer.Render(w, r, "admin/transactions.html", http.StatusOK, map[string]any{
		"Title":     "All transactions",
		"Movements": recent,
	})
}

func (h *AdminHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	_ = h.Sessions.AddFlash(w, r, message)
	http.Redirect(w, r, target, http.StatusFound)
}
