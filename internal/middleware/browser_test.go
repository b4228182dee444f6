package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestBrowserIDIssuesCookie(t *testing.T) {
	app := fiber.New()
	app.Use(BrowserID("dash_sid", true))
	issued := false
	app.Get("/", func(c *fiber.Ctx) error {
		issued = BrowserIssued(c)
		return c.SendString(BrowserIDFrom(c))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	cookie := resp.Header.Get(fiber.HeaderSetCookie)
	if !strings.HasPrefix(cookie, "dash_sid=") {
		t.Fatalf("expected browser cookie, got %q", cookie)
	}
	for _, attr := range []string{"HttpOnly", "secure", "SameSite=Lax"} {
		if !strings.Contains(strings.ToLower(cookie), strings.ToLower(attr)) {
			t.Fatalf("expected %s in %q", attr, cookie)
		}
	}
	if !issued {
		t.Fatalf("expected a minted id to be flagged as issued")
	}
}

func TestBrowserIDKeepsValidCookie(t *testing.T) {
	app := fiber.New()
	app.Use(BrowserID("dash_sid", false))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(BrowserIDFrom(c)) })

	id := uuid.NewString()
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderCookie, "dash_sid="+id)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(fiber.HeaderSetCookie) != "" {
		t.Fatalf("valid cookie must not be reissued")
	}
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	if string(buf[:n]) != id {
		t.Fatalf("expected browser id %s, got %s", id, buf[:n])
	}
}

func TestBrowserIDReplacesForgedCookie(t *testing.T) {
	app := fiber.New()
	app.Use(BrowserID("dash_sid", false))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(BrowserIDFrom(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderCookie, "dash_sid=../../etc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(fiber.HeaderSetCookie) == "" {
		t.Fatalf("malformed cookie must be replaced")
	}
}
