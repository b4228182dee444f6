package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/dashgate/internal/config"
	"github.com/congo-pay/dashgate/internal/guard"
	"github.com/congo-pay/dashgate/internal/middleware"
	"github.com/congo-pay/dashgate/internal/session"
	"github.com/congo-pay/dashgate/internal/storage"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Storage  storage.Backend
	Sessions *session.Registry
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Metrics  *prometheus.Registry
	Logger   *slog.Logger
}

// Setup configures middlewares and all gateway routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Storage == nil || d.Sessions == nil {
		return fmt.Errorf("storage and session registry are required")
	}
	if !d.Cfg.IsDev() && d.Cache == nil && d.Cfg.StorageBackend == config.StorageRedis {
		return fmt.Errorf("redis is required when STORAGE_BACKEND=%s", d.Cfg.StorageBackend)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.BrowserID(d.Cfg.SessionCookie, !d.Cfg.IsDev()))
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Metrics())

	RegisterHealthRoutes(app, d)
	if d.Metrics != nil {
		RegisterMetricsRoute(app, d.Metrics)
	}

	resolve := func(c *fiber.Ctx) *session.Session {
		browserID := middleware.BrowserIDFrom(c)
		if middleware.BrowserIssued(c) {
			return d.Sessions.Detached(c.UserContext(), browserID)
		}
		return d.Sessions.Get(c.UserContext(), browserID)
	}

	RegisterPageRoutes(app, resolve, d.Logger)
	RegisterSessionRoutes(app, resolve, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit), d.Logger)
	RegisterProxyRoutes(app, d)
	return nil
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
			message = fe.Message
		} else if logger != nil {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}

// guards builds the Dashboard and Admin guard handlers.
func guards(resolve guard.Resolver, logger *slog.Logger) (dashboard, admin fiber.Handler) {
	return guard.Middleware(guard.Dashboard, resolve, logger), guard.Middleware(guard.Admin, resolve, logger)
}
