package routes

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/authclient"
	"github.com/congo-pay/dashgate/internal/logging"
	"github.com/congo-pay/dashgate/internal/session"
)

func TestSessionErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"missing credentials", session.ErrMissingCredentials, http.StatusBadRequest, session.ErrMissingCredentials.Error()},
		{"invalid email", fmt.Errorf("register: %w", session.ErrInvalidEmail), http.StatusBadRequest, "register: " + session.ErrInvalidEmail.Error()},
		{"disposed", session.ErrDisposed, http.StatusConflict, "session ended, retry the request"},
		{"backend rejection", &authclient.Error{Op: "login", Status: http.StatusUnauthorized, Message: "Invalid email or password"}, http.StatusUnauthorized, "Invalid email or password"},
		{"backend conflict", &authclient.Error{Op: "register", Status: http.StatusConflict, Message: "taken"}, http.StatusConflict, "taken"},
		{"backend outage keeps message", &authclient.Error{Op: "login", Status: http.StatusServiceUnavailable, Message: "Service Unavailable"}, http.StatusBadGateway, "Service Unavailable"},
		{"backend body message", fmt.Errorf("login: %w", &authclient.Error{Op: "login", Status: http.StatusInternalServerError, Message: "database is down"}), http.StatusBadGateway, "database is down"},
		{"transport", &authclient.Error{Op: "login", Err: errors.New("dial tcp: refused"), Message: "dial tcp: refused"}, http.StatusBadGateway, "authentication service unavailable"},
		{"unknown", errors.New("boom"), http.StatusBadGateway, "authentication service unavailable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var fe *fiber.Error
			if !errors.As(sessionError(tc.err, logging.Discard()), &fe) {
				t.Fatalf("expected *fiber.Error")
			}
			if fe.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, fe.Code)
			}
			if fe.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, fe.Message)
			}
		})
	}
}

func TestPageName(t *testing.T) {
	cases := map[string]string{
		"/dashboard":          "dashboard",
		"/dashboard/":         "dashboard",
		"/dashboard/accounts": "dashboard/accounts",
		"/admin":              "admin",
		"/":                   "dashboard",
	}
	for in, want := range cases {
		if got := pageName(in); got != want {
			t.Fatalf("pageName(%q) = %q, want %q", in, got, want)
		}
	}
}
