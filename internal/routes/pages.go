package routes

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/guard"
	"github.com/congo-pay/dashgate/internal/identity"
)

// RegisterPageRoutes wires the public pages and the guarded dashboard and
// admin trees. Pages are returned as descriptors; rendering happens client side.
func RegisterPageRoutes(app *fiber.App, resolve guard.Resolver, logger *slog.Logger) {
	app.Get(guard.LoginPath, publicPage("login"))
	app.Get("/register", publicPage("register"))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(guard.DashboardPath, http.StatusFound)
	})

	dashboardGuard, adminGuard := guards(resolve, logger)

	dashboard := app.Group(guard.DashboardPath, dashboardGuard)
	dashboard.Use("/admin", adminGuard)
	dashboard.Get("/", guardedPage)
	dashboard.Get("/*", guardedPage)

	admin := app.Group(guard.AdminPath, dashboardGuard, adminGuard)
	admin.Get("/", guardedPage)
	admin.Get("/*", guardedPage)
}

func publicPage(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"page": name})
	}
}

func guardedPage(c *fiber.Ctx) error {
	user, _ := c.Locals(guard.UserLocal).(identity.User)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"page": pageName(c.Path()),
		"user": user,
	})
}

// pageName turns /dashboard/accounts into "dashboard/accounts".
func pageName(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "dashboard"
	}
	return name
}
