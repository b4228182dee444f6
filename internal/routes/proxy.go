package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/congo-pay/dashgate/internal/middleware"
)

// proxiedPrefixes are forwarded verbatim to the banking backend.
var proxiedPrefixes = []string{"/api/banking", "/api/transactions", "/api/users", "/api/flights"}

// RegisterProxyRoutes forwards the banking API to the backend with the
// browser's stored token attached.
func RegisterProxyRoutes(app *fiber.App, d Deps) {
	handlers := []fiber.Handler{middleware.BearerFromStorage(d.Storage, d.Cfg.SessionCookie, d.Logger)}
	if d.Cache != nil {
		handlers = append(handlers, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	handlers = append(handlers, forward(d.Cfg.BackendURL, d.Cfg.BackendTimeout, d.Logger))

	for _, prefix := range proxiedPrefixes {
		app.All(prefix, handlers...)
		app.All(prefix+"/*", handlers...)
	}
}

func forward(baseURL string, timeout time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := proxy.DoTimeout(c, baseURL+c.OriginalURL(), timeout); err != nil {
			logger.Warn("backend proxy failed", slog.String("path", c.Path()), slog.Any("error", err))
			return fiber.NewError(http.StatusBadGateway, "backend unavailable")
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}
