package authclient

import (
	"net/http"
	"strings"

	"github.com/congo-pay/dashgate/internal/identity"
)

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token string
	User  identity.User
}

// RegisterRequest is the registration payload expected by the auth backend.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Country   string `json:"country"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  *identity.User `json:"user"`
}

func (r authResponse) result(op string) (AuthResult, error) {
	if strings.TrimSpace(r.Token) == "" {
		return AuthResult{}, &Error{Op: op, Status: http.StatusOK, Message: "authentication service returned no token"}
	}
	if r.User == nil {
		return AuthResult{}, &Error{Op: op, Status: http.StatusOK, Message: "authentication service returned no user"}
	}
	return AuthResult{Token: r.Token, User: *r.User}, nil
}

type verifyResponse struct {
	User *identity.User `json:"user"`
}
