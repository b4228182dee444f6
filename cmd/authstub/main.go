// Command authstub serves the auth endpoints the gateway depends on, for
// local development and end-to-end runs without the real banking backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/congo-pay/dashgate/internal/authstub"
	"github.com/congo-pay/dashgate/internal/config"
	"github.com/congo-pay/dashgate/internal/infra"
	"github.com/congo-pay/dashgate/internal/logging"
	"github.com/congo-pay/dashgate/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAuthStub()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, "authstub", "development")
	ctx := context.Background()

	var repo authstub.Repository = authstub.NewMemoryRepository()
	if cfg.DatabaseURL != "" {
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgRepo := authstub.NewPostgresRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Error("ensure schema", "error", err)
			os.Exit(1)
		}
		repo = pgRepo
	}

	accounts := authstub.NewService(repo)
	if cfg.AdminEmail != "" {
		if _, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("seed admin", "error", err)
			os.Exit(1)
		}
		logger.Info("admin account ready", "email", cfg.AdminEmail)
	}

	app := fiber.New(fiber.Config{AppName: "authstub"})
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(logger))
	authstub.NewHandler(accounts, authstub.NewTokens(cfg.JWTSecret, cfg.TokenTTL), logger).Mount(app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Address())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
