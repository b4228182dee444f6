package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/congo-pay/dashgate/internal/authclient"
)

// RegisterInput is what the signup form collects. CountryCode and Password
// are optional.
type RegisterInput struct {
	Name        string
	Email       string
	CountryCode string
	Password    string
}

var (
	ErrMissingName  = errors.New("name is required")
	ErrInvalidEmail = errors.New("a valid email address is required")
)

func (in RegisterInput) request() (authclient.RegisterRequest, error) {
	first, last := SplitName(in.Name)
	if first == "" {
		return authclient.RegisterRequest{}, ErrMissingName
	}
	email := strings.TrimSpace(in.Email)
	username, ok := UsernameFromEmail(email)
	if !ok {
		return authclient.RegisterRequest{}, ErrInvalidEmail
	}
	password := in.Password
	if password == "" {
		password = defaultPassword()
	}
	country := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	if country == "" {
		country = defaultCountry
	}
	return authclient.RegisterRequest{
		FirstName: first,
		LastName:  last,
		Username:  username,
		Email:     email,
		Password:  password,
		Country:   country,
	}, nil
}

// SplitName takes the first word as the first name and the rest as the last name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// UsernameFromEmail returns the local part of an address.
func UsernameFromEmail(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return email[:at], true
}

// defaultPassword stands in when the form leaves the password empty. The
// account stays reachable through the issued token until the user sets one.
func defaultPassword() string {
	return uuid.NewString()
}
