package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/service"
	"github.com/avoronov/bankadmin/internal/session"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	// RegisterUser creates a user with an opening account.
	RegisterUser(ctx context.Context, username, email, password string) (*models.User, error)
	// AuthenticateUser verifies a user login.
	AuthenticateUser(ctx context.Context, username, password string) (*models.User, error)
	// AuthenticateAdmin verifies an administrator login.
	AuthenticateAdmin(ctx context.Context, username, password string) (*models.Admin, error)
}

// AuthHandler handles the login chooser, user and admin login, registration
// and logout.
type AuthHandler struct {
	// Auth performs the underlying authentication operations.
	Auth AuthService
	// Sessions issues and clears login sessions.
	Sessions *session.Manager
	// Renderer draws the HTML pages.
	Renderer *Renderer
}

// Choose renders the landing page asking whether to log in as a user or an
// administrator.
func (h *AuthHandler) Choose(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "auth/choose.html", http.StatusOK, map[string]any{
		"Title": "Sign in",
	})
}

// LoginForm renders the user login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "auth/login.html", http.StatusOK, map[string]any{
		"Title": "User login",
	})
}

// Login verifies user credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", "/auth/login")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.Auth.AuthenticateUser(r.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.flashAndRedirect(w, r, "Invalid username or password.", "/auth/login")
		return
	case errors.Is(err, service.ErrUserInactive):
		h.flashAndRedirect(w, r, "This account has been deactivated.", "/auth/login")
		return
	case err != nil:
		h.Renderer.ServerError(w, r)
		return
	}

	if err := h.Sessions.SetPrincipal(w, r, user.SessionID()); err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	http.Redirect(w, r, "/user/dashboard", http.StatusFound)
}

// RegisterForm renders the user registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "auth/register.html", http.StatusOK, map[string]any{
		"Title": "Create account",
	})
}

// Register creates a new user with an opening account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", "/auth/register")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if password != r.FormValue("confirm") {
		h.flashAndRedirect(w, r, "Passwords do not match.", "/auth/register")
		return
	}

	_, err := h.Auth.RegisterUser(r.Context(), username, email, password)
	switch {
	case errors.Is(err, service.ErrUserExists):
		h.flashAndRedirect(w, r, "That username or email is already taken.", "/auth/register")
		return
	case err != nil:
		h.flashAndRedirect(w, r, err.Error(), "/auth/register")
		return
	}

	h.flashAndRedirect(w, r, "Account created. Please log in.", "/auth/login")
}

// AdminLoginForm renders the administrator login page.
func (h *AuthHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "auth/admin_login.html", http.StatusOK, map[string]any{
		"Title": "Administrator login",
	})
}

// AdminLogin verifies administrator credentials and opens a session.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "Invalid form submission.", "/auth/admin/login")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	admin, err := h.Auth.AuthenticateAdmin(r.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.flashAndRedirect(w, r, "Invalid username or password.", "/auth/admin/login")
		return
	case err != nil:
		h.Renderer.ServerError(w, r)
		return
	}

	if err := h.Sessions.SetPrincipal(w, r, admin.SessionID()); err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

// Logout clears the session and returns to the login chooser.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Renderer.ServerError(w, r)
		return
	}
	h.flashAndRedirect(w, r, "You have been logged out.", "/auth/choose")
}

func (h *AuthHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	_ = h.Sessions.AddFlash(w, r, message)
	http.Redirect(w, r, target, http.StatusFound)
}
