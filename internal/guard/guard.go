package guard

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/metrics"
	"github.com/congo-pay/dashgate/internal/session"
)

// Navigation targets used by the guards and the session endpoints.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	AdminPath     = "/admin"
)

// UserLocal is the fiber local under which a granted request carries its user.
const UserLocal = "session_user"

// Kind selects which gate a guard enforces.
type Kind string

const (
	Dashboard Kind = "dashboard"
	Admin     Kind = "admin"
)

// State is where a request ends up in the guard state machine.
type State string

const (
	Checking               State = "checking"
	DeniedNoSession        State = "denied_no_session"
	DeniedInsufficientRole State = "denied_insufficient_role"
	Granted                State = "granted"
)

// Decision is the result of evaluating a guard.
type Decision struct {
	State    State
	Redirect string
}

// Evaluate maps a session snapshot to a guard decision. It holds no state
// of its own; only a fresh session can bring a browser back to Checking.
func Evaluate(kind Kind, snap session.Snapshot) Decision {
	switch {
	case snap.Loading:
		return Decision{State: Checking}
	case snap.User == nil:
		return Decision{State: DeniedNoSession, Redirect: LoginPath}
	case kind == Admin && !snap.User.IsAdmin:
		return Decision{State: DeniedInsufficientRole, Redirect: DashboardPath}
	default:
		return Decision{State: Granted}
	}
}

// Resolver finds the session of the browser behind a request.
type Resolver func(c *fiber.Ctx) *session.Session

// Middleware gates the routes behind it. While the session is loading it
// renders a placeholder, denials redirect, and granted requests continue
// with the user stored under UserLocal.
func Middleware(kind Kind, resolve Resolver, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := resolve(c).Snapshot()
		decision := Evaluate(kind, snap)
		metrics.GuardDecisions.WithLabelValues(string(kind), string(decision.State)).Inc()

		switch decision.State {
		case Checking:
			c.Set("Refresh", "1")
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Status(http.StatusOK).JSON(fiber.Map{"status": "loading"})
		case Granted:
			c.Locals(UserLocal, *snap.User)
			return c.Next()
		default:
			if logger != nil {
				logger.Debug("guard redirect",
					slog.String("guard", string(kind)),
					slog.String("state", string(decision.State)),
					slog.String("path", c.Path()),
					slog.String("to", decision.Redirect),
				)
			}
			return c.Redirect(decision.Redirect, http.StatusFound)
		}
	}
}
