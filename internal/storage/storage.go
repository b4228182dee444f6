package storage

import (
	"context"
	"errors"
)

// ErrEmptyBrowserID is returned when a scope is requested without a browser identifier.
var ErrEmptyBrowserID = errors.New("browser id is required")

// Storage is the key/value area owned by a single browser, the server-side
// counterpart of the browser's local storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Backend hands out per-browser storage areas.
type Backend interface {
	Scope(browserID string) Storage
	Ping(ctx context.Context) error
}
