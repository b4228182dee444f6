package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BrowserIDLocal is the fiber local holding the browser identifier.
const BrowserIDLocal = "browser_id"

// BrowserIssuedLocal is set when the identifier was minted for this request.
const BrowserIssuedLocal = "browser_issued"

const browserCookieMaxAge = 400 * 24 * time.Hour

// BrowserID identifies the browser behind a request by an opaque cookie,
// issuing a new one when it is missing or malformed.
func BrowserID(cookieName string, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(browserCookieMaxAge.Seconds()),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			c.Locals(BrowserIssuedLocal, true)
		}
		c.Locals(BrowserIDLocal, id)
		return c.Next()
	}
}

// BrowserIDFrom returns the identifier stored by BrowserID.
func BrowserIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(BrowserIDLocal).(string)
	return id
}

// BrowserIssued reports whether the browser arrived without a valid cookie.
// Such a browser has nothing stored yet.
func BrowserIssued(c *fiber.Ctx) bool {
	issued, _ := c.Locals(BrowserIssuedLocal).(bool)
	return issued
}
