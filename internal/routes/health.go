package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/congo-pay/dashgate/internal/metrics"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"storage": "ok"}
		healthy := true
		if err := d.Storage.Ping(ctx); err != nil {
			status["storage"] = err.Error()
			healthy = false
		}
		if d.DB != nil {
			status["postgres"] = "ok"
			if err := d.DB.Ping(ctx); err != nil {
				status["postgres"] = err.Error()
				healthy = false
			}
		}
		if d.Cache != nil {
			status["redis"] = "ok"
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				status["redis"] = err.Error()
				healthy = false
			}
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"sessions":  d.Sessions.Len(),
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(app *fiber.App, registry *prometheus.Registry) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(registry)))
}
