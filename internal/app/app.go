// Package app assembles the banking administration application: it wires
// configuration, persistence, sessions and handlers into a ready-to-serve
// HTTP application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/avoronov/bankadmin/internal/config"
	"github.com/avoronov/bankadmin/internal/db"
	"github.com/avoronov/bankadmin/internal/repository"
	handler "github.com/avoronov/bankadmin/internal/server/handler/http"
	"github.com/avoronov/bankadmin/internal/service"
	"github.com/avoronov/bankadmin/internal/session"
)

// App is a fully wired application ready to be served.
type App struct {
	// Handler is the root HTTP handler.
	Handler http.Handler
	// Sessions is the cookie session manager.
	Sessions *session.Manager
	// Auth resolves principals and seeds the default admin.
	Auth *service.AuthService
}

// New builds the application from a configuration and an open database
// handle. On every call it ensures the schema exists and seeds the default
// administrator if absent; either failing aborts the factory.
func New(cfg *config.Options, database *sql.DB, logger *zap.Logger) (*App, error) {
	// Instance directory creation failures are indistinguishable from the
	// directory already existing and are swallowed either way.
	_ = os.MkdirAll(cfg.InstanceDir, 0o755)

	sessions := session.NewManager(
		cfg.SecretKey,
		cfg.SessionLifetime,
		cfg.CookieHTTPOnly,
		cfg.CookieSecure,
		cfg.CookieSameSite(),
	)

	users := repository.NewPostgresUserRepository(database)
	admins := repository.NewPostgresAdminRepository(database)
	accounts := repository.NewPostgresAccountRepository(database)
	movements := repository.NewPostgresTransactionRepository(database)

	auth := service.NewAuthService(users, admins, accounts)
	bank := service.NewBankService(accounts, movements)
	admin := service.NewAdminService(admins, users)

	if err := db.EnsureSchema(database); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := auth.SeedDefaultAdmin(context.Background()); err != nil {
		return nil, fmt.Errorf("seed default admin: %w", err)
	}

	renderer := handler.NewRenderer(cfg.TemplateDir, sessions)
	router := handler.NewRouter(handler.RouterDeps{
		Auth:         &handler.AuthHandler{Auth: auth, Sessions: sessions, Renderer: renderer},
		User:         &handler.UserHandler{Bank: bank, Sessions: sessions, Renderer: renderer},
		Admin:        &handler.AdminHandler{Admin: admin, Activity: bank, Sessions: sessions, Renderer: renderer},
		Renderer:     renderer,
		Sessions:     sessions,
		Loader:       auth,
		Logger:       logger,
		StaticDir:    cfg.StaticDir,
		SecretKey:    cfg.SecretKey,
		CSRFEnabled:  cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
	})

	return &App{Handler: router, Sessions: sessions, Auth: auth}, nil
}
