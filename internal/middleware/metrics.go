package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/metrics"
)

// Metrics records request counts and latencies by route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		metrics.RequestCount.WithLabelValues(labels...).Inc()
		metrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
