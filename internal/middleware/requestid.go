package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDLocal is the fiber local holding the request identifier.
const RequestIDLocal = requestIDHeader

// RequestID makes sure every request carries an identifier, echoing the
// caller's when present.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(RequestIDLocal, reqID)
		return c.Next()
	}
}
