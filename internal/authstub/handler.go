package authstub

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the auth endpoints the gateway consumes.
type Handler struct {
	accounts *Service
	tokens   *Tokens
	logger   *slog.Logger
}

// NewHandler constructs the stub's HTTP handler.
func NewHandler(accounts *Service, tokens *Tokens, logger *slog.Logger) *Handler {
	return &Handler{accounts: accounts, tokens: tokens, logger: logger}
}

// Mount registers the auth routes on r.
func (h *Handler) Mount(r fiber.Router) {
	group := r.Group("/api/auth")
	group.Post("/login", h.Login)
	group.Post("/register", h.Register)
	group.Post("/verify-token", h.VerifyToken)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Country   string `json:"country"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// userResponse mirrors the document shape of the production backend, which
// identifies users by _id.
type userResponse struct {
	ID        string          `json:"_id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	KYCStatus string          `json:"kycStatus"`
	Account   accountResponse `json:"account"`
}

type accountResponse struct {
	Number   string `json:"accountNumber"`
	Type     string `json:"accountType"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

func toResponse(a Account) userResponse {
	return userResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		KYCStatus: a.KYCStatus,
		Account:   accountResponse{Number: a.AccountNumber, Type: "checking", Currency: "USD", Balance: "0.00"},
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// Login validates credentials and returns a token with the user.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	account, err := h.accounts.Authenticate(c.UserContext(), req.Identifier, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		h.logger.Error("authenticate", slog.Any("error", err))
		return fail(c, http.StatusInternalServerError, "login failed")
	}
	return h.issue(c, http.StatusOK, account)
}

// Register creates an account and returns its first token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	account, err := h.accounts.Register(c.UserContext(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Country:   strings.ToUpper(req.Country),
	})
	if errors.Is(err, ErrExists) {
		return fail(c, http.StatusConflict, "An account with this email or username already exists")
	}
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	h.logger.Info("authstub.register completed", slog.String("user_id", account.ID), slog.String("email", account.Email))
	return h.issue(c, http.StatusCreated, account)
}

// VerifyToken resolves a token to its user.
func (h *Handler) VerifyToken(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	claims, err := h.tokens.Parse(req.Token)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid or expired token")
	}
	account, err := h.accounts.Find(c.UserContext(), claims.Subject)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "User no longer exists")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": toResponse(account)})
}

func (h *Handler) issue(c *fiber.Ctx, status int, account Account) error {
	token, err := h.tokens.Issue(account)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}
	return c.Status(status).JSON(fiber.Map{"token": token, "user": toResponse(account)})
}
