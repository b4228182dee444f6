package authstub

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{FirstName: "Jane", LastName: "Doe", Username: "jane", Email: "Jane@X.com", Password: "secret1", Country: "US"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Role != roleUser {
		t.Fatalf("expected user role, got %s", account.Role)
	}
	if len(account.AccountNumber) != 10 {
		t.Fatalf("expected 10 digit account number, got %q", account.AccountNumber)
	}

	for _, identifier := range []string{"jane@x.com", "jane"} {
		if _, err := svc.Authenticate(ctx, identifier, "secret1"); err != nil {
			t.Fatalf("authenticate %s: %v", identifier, err)
		}
	}

	if _, err := svc.Authenticate(ctx, "jane", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	in := RegisterInput{FirstName: "Jane", Username: "jane", Email: "jane@x.com", Password: "secret1"}

	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestRegisterValidatesPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Register(context.Background(), RegisterInput{FirstName: "J", Username: "j", Email: "j@x.com", Password: "123"}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "admin@bank.test", "admin-pass")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if first.Role != roleAdmin {
		t.Fatalf("expected admin role, got %s", first.Role)
	}
	second, err := svc.EnsureAdmin(ctx, "admin@bank.test", "admin-pass")
	if err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing admin to be reused")
	}
}
