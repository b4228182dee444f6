package identity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoleAdmin is the role string the backend uses for administrators.
const RoleAdmin = "admin"

// User is the identity projection returned by the auth backend. It is treated
// as a value object and replaced wholesale on login, register and verify.
type User struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Username  string          `json:"username,omitempty"`
	Email     string          `json:"email"`
	Role      string          `json:"role,omitempty"`
	IsAdmin   bool            `json:"isAdmin"`
	KYCStatus string          `json:"kycStatus,omitempty"`
	Account   *AccountSummary `json:"account,omitempty"`
	Wallets   []Wallet        `json:"wallets,omitempty"`
}

// AccountSummary is the primary bank account shown on the dashboard.
type AccountSummary struct {
	Number   string          `json:"accountNumber,omitempty"`
	Type     string          `json:"accountType,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// Wallet is a crypto wallet attached to the user.
type Wallet struct {
	Currency string          `json:"currency"`
	Address  string          `json:"address,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// Normalize returns a copy with the canonical id filled from the alternate
// _id field and the admin flag folded from both role representations.
func (u User) Normalize() User {
	if u.ID == "" {
		u.ID = u.LegacyID
	}
	u.LegacyID = ""
	u.IsAdmin = u.IsAdmin || u.Role == RoleAdmin
	if u.Name == "" {
		u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if len(u.Wallets) > 0 {
		u.Wallets = append([]Wallet(nil), u.Wallets...)
	}
	if u.Account != nil {
		account := *u.Account
		u.Account = &account
	}
	return u
}
