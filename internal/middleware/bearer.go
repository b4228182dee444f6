package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/session"
	"github.com/congo-pay/dashgate/internal/storage"
)

// BearerFromStorage attaches the browser's stored token to requests bound
// for the backend, unless the caller already sent its own Authorization
// header. The browser cookie is stripped so it never leaves the gateway.
func BearerFromStorage(backend storage.Backend, cookieName string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		headers := &c.Request().Header
		if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderAuthorization)), "bearer ") {
			if browserID := BrowserIDFrom(c); browserID != "" {
				token, ok, err := backend.Scope(browserID).Get(c.UserContext(), session.TokenKey)
				if err != nil {
					logger.Warn("read token for proxy", slog.String("browser_id", browserID), slog.Any("error", err))
				} else if ok && token != "" {
					headers.Set(fiber.HeaderAuthorization, "Bearer "+token)
				}
			}
		}
		headers.DelCookie(cookieName)
		return c.Next()
	}
}
