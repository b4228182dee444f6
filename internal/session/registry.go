package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/congo-pay/dashgate/internal/metrics"
	"github.com/congo-pay/dashgate/internal/storage"
)

const initTimeout = 10 * time.Second

// Registry holds one Session per browser. A session evicted for idleness
// is rebuilt from persisted storage on the browser's next request.
type Registry struct {
	auth    Authenticator
	backend storage.Backend
	logger  *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewRegistry builds a registry. A non-positive idleTTL disables eviction.
func NewRegistry(auth Authenticator, backend storage.Backend, logger *slog.Logger, idleTTL time.Duration) *Registry {
	return &Registry{
		auth:    auth,
		backend: backend,
		logger:  logger,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the browser's session, creating and initializing it on first
// use. Callers racing the creator receive the same session, possibly still
// loading.
func (r *Registry) Get(ctx context.Context, browserID string) *Session {
	r.mu.Lock()
	if e, ok := r.entries[browserID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.session
	}
	s := New(r.auth, r.backend.Scope(browserID), r.logger)
	r.entries[browserID] = &entry{session: s, lastSeen: r.now()}
	metrics.ActiveSessions.Set(float64(len(r.entries)))
	r.mu.Unlock()

	// A client hanging up mid-check must not read as a rejected token.
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()
	s.Initialize(initCtx)
	return s
}

// Detached returns an initialized session for the browser without keeping
// it in the registry. Writes still reach the browser's storage, so the next
// Get rebuilds the same state. Used for browsers that were only just issued
// an identifier, which would otherwise each hold an entry until swept.
func (r *Registry) Detached(ctx context.Context, browserID string) *Session {
	s := New(r.auth, r.backend.Scope(browserID), r.logger)
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initTimeout)
	defer cancel()
	s.Initialize(initCtx)
	return s
}

// Dispose drops the browser's in-memory session. Persisted storage is kept.
func (r *Registry) Dispose(browserID string) {
	r.mu.Lock()
	e, ok := r.entries[browserID]
	if ok {
		delete(r.entries, browserID)
		metrics.ActiveSessions.Set(float64(len(r.entries)))
	}
	r.mu.Unlock()
	if ok {
		e.session.Dispose()
	}
}

// Sweep disposes sessions idle for longer than the idle TTL and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	var stale []*Session
	r.mu.Lock()
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.idleTTL {
			stale = append(stale, e.session)
			delete(r.entries, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.entries)))
	r.mu.Unlock()

	for _, s := range stale {
		s.Dispose()
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 && r.logger != nil {
				r.logger.Debug("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close disposes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()
	for _, e := range entries {
		e.session.Dispose()
	}
}
