package http

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/avoronov/bankadmin/internal/middleware"
	"github.com/avoronov/bankadmin/internal/session"
)

// RouterDeps bundles everything NewRouter wires together.
type RouterDeps struct {
	// Auth, User and Admin are the three route-group handlers.
	Auth  *AuthHandler
	User  *UserHandler
	Admin *AdminHandler

	// Renderer draws the 404 and 500 pages.
	Renderer *Renderer
	// Sessions backs the auth middleware redirects.
	Sessions *session.Manager
	// Loader resolves session identifiers to principals.
	Loader middleware.PrincipalLoader
	// Logger feeds the request-logging middleware.
	Logger *zap.Logger

	// StaticDir is served under /static when non-empty.
	StaticDir string

	// SecretKey signs CSRF tokens when CSRFEnabled is set. Tokens carry
	// no expiry of their own; the cookie lives with the browser session.
	SecretKey    string
	CSRFEnabled  bool
	CookieSecure bool
}

// NewRouter constructs the HTTP handler serving the whole application.
//
// Routes:
//
//	GET  /          302 to the login chooser
//	/auth/...       login chooser, user/admin login, registration, logout
//	/user/...       dashboard, transfer, deposit, withdraw, statement (users only)
//	/admin/...      dashboard, user management, transactions (admins only)
//
// Unknown paths render the dedicated 404 page; panics render the 500 page.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(deps.Logger))
	r.Use(middleware.WithRecovery(deps.Logger, deps.Renderer.ServerError))
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(chiMiddleware.RedirectSlashes)

	if deps.CSRFEnabled {
		key := sha256.Sum256([]byte("csrf:" + deps.SecretKey))
		r.Use(csrf.Protect(key[:],
			csrf.Secure(deps.CookieSecure),
			csrf.Path("/"),
			csrf.MaxAge(0),
		))
	}

	if deps.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	// Landing page always hands over to the login chooser.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth/choose", http.StatusFound)
	})

	// Repeated credential guessing is throttled per client IP.
	loginLimit := httprate.LimitByIP(10, time.Minute)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/choose", deps.Auth.Choose)
		r.Get("/login", deps.Auth.LoginForm)
		r.With(loginLimit).Post("/login", deps.Auth.Login)
		r.Get("/register", deps.Auth.RegisterForm)
		r.Post("/register", deps.Auth.Register)
		r.Get("/admin/login", deps.Auth.AdminLoginForm)
		r.With(loginLimit).Post("/admin/login", deps.Auth.AdminLogin)
		r.Post("/logout", deps.Auth.Logout)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.RequireUser(deps.Sessions, deps.Loader))
		r.Get("/dashboard", deps.User.Dashboard)
		r.Get("/transfer", deps.User.TransferForm)
		r.Post("/transfer", deps.User.Transfer)
		r.Get("/deposit", deps.User.DepositForm)
		r.Post("/deposit", deps.User.Deposit)
		r.Get("/withdraw", deps.User.WithdrawForm)
		r.Post("/withdraw", deps.User.Withdraw)
		r.Get("/transactions", deps.User.Transactions)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(deps.Sessions, deps.Loader))
		r.Get("/dashboard", deps.Admin.Dashboard)
		r.Get("/users", deps.Admin.Users)
		r.Post("/users/{id}/active", deps.Admin.SetUserActive)
		r.Get("/transactions", deps.Admin.Transactions)
	})

	r.NotFound(deps.Renderer.NotFound)

	return r
}
