package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/authclient"
	"github.com/congo-pay/dashgate/internal/guard"
	"github.com/congo-pay/dashgate/internal/session"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Password    string `json:"password"`
}

// RegisterSessionRoutes wires the sign-in, sign-up and sign-out endpoints.
func RegisterSessionRoutes(app *fiber.App, resolve guard.Resolver, rateLimiter fiber.Handler, logger *slog.Logger) {
	group := app.Group("/session")

	group.Get("/", func(c *fiber.Ctx) error {
		snap := resolve(c).Snapshot()
		return c.JSON(fiber.Map{"user": snap.User, "loading": snap.Loading})
	})

	group.Post("/login", rateLimiter, func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		identifier := req.Identifier
		if identifier == "" {
			identifier = req.Email
		}
		res, err := resolve(c).Login(c.UserContext(), identifier, req.Password)
		if err != nil {
			return sessionError(err, logger)
		}
		redirect := guard.DashboardPath
		if res.Admin {
			redirect = guard.AdminPath
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"user": res.User, "redirect": redirect})
	})

	group.Post("/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		res, err := resolve(c).Register(c.UserContext(), session.RegisterInput{
			Name:        req.Name,
			Email:       req.Email,
			CountryCode: req.CountryCode,
			Password:    req.Password,
		})
		if err != nil {
			return sessionError(err, logger)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"user": res.User, "redirect": guard.DashboardPath})
	})

	group.Post("/logout", func(c *fiber.Ctx) error {
		resolve(c).Logout(c.UserContext())
		return c.Status(http.StatusOK).JSON(fiber.Map{"redirect": guard.LoginPath})
	})
}

// sessionError maps session and backend failures to HTTP errors. Backend
// rejections keep their status and message. Backend failures become a bad
// gateway that still carries the backend's message.
func sessionError(err error, logger *slog.Logger) error {
	switch {
	case errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, session.ErrMissingName),
		errors.Is(err, session.ErrInvalidEmail):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrDisposed):
		return fiber.NewError(http.StatusConflict, "session ended, retry the request")
	}
	var apiErr *authclient.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return fiber.NewError(apiErr.Status, apiErr.Message)
	}
	if logger != nil {
		logger.Error("auth backend call failed", slog.Any("error", err))
	}
	if apiErr != nil && apiErr.Status != 0 && apiErr.Message != "" {
		return fiber.NewError(http.StatusBadGateway, apiErr.Message)
	}
	return fiber.NewError(http.StatusBadGateway, "authentication service unavailable")
}
