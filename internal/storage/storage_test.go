package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedis(client, ttl), mr
}

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	a := backend.Scope("browser-a")
	b := backend.Scope("browser-b")

	if _, ok, err := a.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected empty storage, got ok=%v err=%v", ok, err)
	}

	if err := a.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := a.Set(ctx, "userId", "u-1"); err != nil {
		t.Fatalf("set user id: %v", err)
	}

	value, ok, err := a.Get(ctx, "token")
	if err != nil || !ok || value != "tok-1" {
		t.Fatalf("expected tok-1, got %q ok=%v err=%v", value, ok, err)
	}

	if _, ok, _ := b.Get(ctx, "token"); ok {
		t.Fatalf("browser-b must not see browser-a values")
	}

	if err := a.Remove(ctx, "token", "userId"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := a.Get(ctx, "token"); ok {
		t.Fatalf("token should be removed")
	}
	if _, ok, _ := a.Get(ctx, "userId"); ok {
		t.Fatalf("user id should be removed")
	}

	if err := b.Remove(ctx, "token"); err != nil {
		t.Fatalf("removing absent key should succeed: %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestRedisBackend(t *testing.T) {
	backend, _ := setupRedis(t, time.Hour)
	exerciseBackend(t, backend)
}

func TestRedisBackendExpiresIdleBrowsers(t *testing.T) {
	backend, mr := setupRedis(t, time.Minute)
	ctx := context.Background()
	scope := backend.Scope("browser-a")

	if err := scope.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "browser-a"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %s", ttl)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := scope.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected expired value, got ok=%v err=%v", ok, err)
	}
}

func TestScopeRequiresBrowserID(t *testing.T) {
	scope := NewMemory().Scope("")
	if err := scope.Set(context.Background(), "token", "x"); err != ErrEmptyBrowserID {
		t.Fatalf("expected ErrEmptyBrowserID, got %v", err)
	}
}
