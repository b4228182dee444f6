package authstub

import "time"

const (
	roleUser  = "user"
	roleAdmin = "admin"

	kycPending = "pending"
)

// Account is a user record held by the stub.
type Account struct {
	ID            string
	FirstName     string
	LastName      string
	Username      string
	Email         string
	Country       string
	Role          string
	KYCStatus     string
	AccountNumber string
	PasswordHash  []byte
	CreatedAt     time.Time
}

// RegisterInput is the registration payload accepted by the stub.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Country   string
}
