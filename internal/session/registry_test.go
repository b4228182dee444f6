package session

import (
	"context"
	"testing"
	"time"

	"github.com/congo-pay/dashgate/internal/identity"
	"github.com/congo-pay/dashgate/internal/storage"
)

func TestRegistryReusesSessionPerBrowser(t *testing.T) {
	reg := NewRegistry(newFakeAuth(), storage.NewMemory(), nil, time.Minute)

	a := reg.Get(context.Background(), "browser-a")
	if a.Loading() {
		t.Fatalf("registry must return an initialized session to its creator")
	}
	if again := reg.Get(context.Background(), "browser-a"); again != a {
		t.Fatalf("expected the same session for the same browser")
	}
	if b := reg.Get(context.Background(), "browser-b"); b == a {
		t.Fatalf("expected distinct sessions per browser")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", reg.Len())
	}
}

func TestRegistryRestoresFromStorageAfterEviction(t *testing.T) {
	auth := newFakeAuth()
	auth.addAccount("a@b.com", "tok-user", identity.User{ID: "u-1"})
	backend := storage.NewMemory()
	reg := NewRegistry(auth, backend, nil, time.Minute)

	s := reg.Get(context.Background(), "browser-a")
	if _, err := s.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if n := reg.Sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry after sweep")
	}

	restored := reg.Get(context.Background(), "browser-a")
	if restored == s {
		t.Fatalf("expected a fresh session after eviction")
	}
	if user, ok := restored.User(); !ok || user.ID != "u-1" {
		t.Fatalf("expected user restored from storage, got %+v ok=%v", user, ok)
	}
}

func TestRegistryDetachedSessionsAreNotKept(t *testing.T) {
	auth := newFakeAuth()
	auth.addAccount("a@b.com", "tok-user", identity.User{ID: "u-1"})
	reg := NewRegistry(auth, storage.NewMemory(), nil, time.Minute)

	for i := 0; i < 10; i++ {
		s := reg.Detached(context.Background(), "fresh")
		if s.Loading() {
			t.Fatalf("detached session must be initialized")
		}
	}
	if reg.Len() != 0 {
		t.Fatalf("expected no registry entries, got %d", reg.Len())
	}

	s := reg.Detached(context.Background(), "fresh")
	if _, err := s.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	kept := reg.Get(context.Background(), "fresh")
	if user, ok := kept.User(); !ok || user.ID != "u-1" {
		t.Fatalf("expected login on a detached session to persist, got %+v ok=%v", user, ok)
	}
}

func TestRegistrySweepKeepsActiveSessions(t *testing.T) {
	reg := NewRegistry(newFakeAuth(), storage.NewMemory(), nil, time.Minute)
	reg.Get(context.Background(), "browser-a")

	if n := reg.Sweep(time.Now().Add(30 * time.Second)); n != 0 {
		t.Fatalf("expected no eviction, got %d", n)
	}
}

func TestRegistryDisposeDiscardsInFlight(t *testing.T) {
	auth := newFakeAuth()
	auth.addAccount("a@b.com", "tok-user", identity.User{ID: "u-1"})
	gate := make(chan struct{})
	auth.gates["a@b.com"] = gate
	reg := NewRegistry(auth, storage.NewMemory(), nil, 0)

	s := reg.Get(context.Background(), "browser-a")
	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "a@b.com", "secret")
		done <- err
	}()
	reg.Dispose("browser-a")
	close(gate)

	if err := <-done; err != ErrDisposed {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}

func TestRegistryInitializationIgnoresCallerCancellation(t *testing.T) {
	auth := newFakeAuth()
	auth.users["tok-1"] = identity.User{ID: "u-1"}
	backend := storage.NewMemory()
	backend.Scope("browser-a").Set(context.Background(), TokenKey, "tok-1")
	reg := NewRegistry(auth, backend, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := reg.Get(ctx, "browser-a")
	if _, ok := s.User(); !ok {
		t.Fatalf("cancelled request context must not sign the browser out")
	}
}
