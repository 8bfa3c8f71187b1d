// Package main initializes and starts the banking administration server,
// setting up configuration, logging, the database connection, the
// application factory and graceful shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/avoronov/bankadmin/internal/app"
	"github.com/avoronov/bankadmin/internal/config"
	"github.com/avoronov/bankadmin/internal/db"
	"github.com/avoronov/bankadmin/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cmpOr mirrors cmp.Or for strings; cmp.Or requires Go 1.22 and the
// local toolchain is 1.21.
func cmpOr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("a", "", "listen address override (ip:port)")
	flag.Parse()

	fmt.Printf("Build version: %s\n", cmpOr(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmpOr(buildDate, "N/A"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Address = *addr
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	database, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	defer database.Close()

	application, err := app.New(cfg, database, log)
	if err != nil {
		log.Fatal("cannot build application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db.StartDeactivatedUserPurger(ctx, database, cfg.PurgeInterval, cfg.PurgeRetention, log)

	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           application.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
