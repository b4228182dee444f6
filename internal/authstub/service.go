package authstub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// ErrInvalidCredentials hides whether the identifier or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages stub accounts.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a regular user with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	return s.create(ctx, in, roleUser)
}

// EnsureAdmin creates an administrator unless the email is already registered.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (Account, error) {
	if existing, err := s.repo.FindByIdentifier(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}
	username, _, _ := strings.Cut(email, "@")
	return s.create(ctx, RegisterInput{
		FirstName: "Admin",
		LastName:  "User",
		Username:  username,
		Email:     email,
		Password:  password,
		Country:   "US",
	}, roleAdmin)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (Account, error) {
	if strings.TrimSpace(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return Account{}, errors.New("a valid email is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return Account{}, errors.New("first name is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return Account{}, errors.New("username is required")
	}
	if len(in.Password) < minPasswordLength {
		return Account{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	id := uuid.New()
	account := Account{
		ID:            id.String(),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Username:      strings.TrimSpace(in.Username),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Country:       in.Country,
		Role:          role,
		KYCStatus:     kycPending,
		AccountNumber: accountNumber(id),
		PasswordHash:  hash,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Authenticate checks an email-or-username and password pair.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (Account, error) {
	account, err := s.repo.FindByIdentifier(ctx, strings.TrimSpace(identifier))
	if errors.Is(err, ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Find returns the account with the given id.
func (s *Service) Find(ctx context.Context, id string) (Account, error) {
	return s.repo.FindByID(ctx, id)
}

func accountNumber(id uuid.UUID) string {
	digits := make([]byte, 0, 10)
	for _, b := range id[:10] {
		digits = append(digits, '0'+b%10)
	}
	return string(digits)
}
