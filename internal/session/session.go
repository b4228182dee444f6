package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/congo-pay/dashgate/internal/authclient"
	"github.com/congo-pay/dashgate/internal/identity"
	"github.com/congo-pay/dashgate/internal/logging"
	"github.com/congo-pay/dashgate/internal/metrics"
	"github.com/congo-pay/dashgate/internal/storage"
)

const (
	// TokenKey holds the bearer token in browser storage.
	TokenKey = "token"
	// UserIDKey mirrors the signed-in user's id. It is only a hint.
	UserIDKey = "userId"

	defaultCountry = "US"
)

var (
	// ErrMissingCredentials is returned when login is attempted without an identifier or password.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrDisposed is returned when an operation completes after the session was disposed.
	ErrDisposed = errors.New("session disposed")
)

// Authenticator is the subset of the auth backend the session relies on.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (authclient.AuthResult, error)
	Register(ctx context.Context, req authclient.RegisterRequest) (authclient.AuthResult, error)
	VerifyToken(ctx context.Context, token string) (identity.User, error)
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	User    *identity.User `json:"user"`
	Loading bool           `json:"loading"`
}

// Result describes a successful login or registration. Admin tells the
// caller which landing page applies; the session never navigates itself.
type Result struct {
	User  identity.User
	Admin bool
}

// Session tracks who is signed in for one browser.
type Session struct {
	auth   Authenticator
	store  storage.Storage
	logger *slog.Logger

	initOnce sync.Once

	mu       sync.RWMutex
	user     *identity.User
	loading  bool
	disposed bool
}

// New creates a session in the loading state. Call Initialize to resolve it.
func New(auth Authenticator, store storage.Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{auth: auth, store: store, logger: logger, loading: true}
}

// Initialize resolves any persisted token into a user. It runs at most once
// and never fails: verification problems leave the session signed out.
func (s *Session) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		s.initialize(ctx)
	})
}

func (s *Session) initialize(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("read stored token", slog.Any("error", err))
		s.clear(ctx)
		metrics.SessionOperations.WithLabelValues("initialize", "error").Inc()
		return
	}
	if !ok || token == "" {
		s.setUser(nil)
		metrics.SessionOperations.WithLabelValues("initialize", "anonymous").Inc()
		return
	}

	user, err := s.auth.VerifyToken(ctx, token)
	if err != nil {
		s.logger.Debug("stored token rejected", slog.Any("error", err))
		s.clear(ctx)
		metrics.SessionOperations.WithLabelValues("initialize", "rejected").Inc()
		return
	}

	normalized := user.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	if err := s.store.Set(ctx, UserIDKey, normalized.ID); err != nil {
		s.logger.Warn("refresh stored user id", slog.Any("error", err))
	}
	s.user = &normalized
	metrics.SessionOperations.WithLabelValues("initialize", "restored").Inc()
}

// Login authenticates against the backend. On failure the session is left
// exactly as it was.
func (s *Session) Login(ctx context.Context, identifier, password string) (Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		metrics.SessionOperations.WithLabelValues("login", "invalid").Inc()
		return Result{}, ErrMissingCredentials
	}

	res, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		metrics.SessionOperations.WithLabelValues("login", "failure").Inc()
		return Result{}, err
	}

	user, err := s.adopt(ctx, res)
	if err != nil {
		metrics.SessionOperations.WithLabelValues("login", "error").Inc()
		return Result{}, err
	}
	metrics.SessionOperations.WithLabelValues("login", "success").Inc()
	s.logger.Info("session signed in", slog.String("user_id", user.ID), slog.Bool("admin", user.IsAdmin))
	return Result{User: user, Admin: user.IsAdmin}, nil
}

// Register creates an account and signs it in. Registration never lands on
// the admin area, whatever role the backend reports.
func (s *Session) Register(ctx context.Context, input RegisterInput) (Result, error) {
	req, err := input.request()
	if err != nil {
		metrics.SessionOperations.WithLabelValues("register", "invalid").Inc()
		return Result{}, err
	}

	res, err := s.auth.Register(ctx, req)
	if err != nil {
		metrics.SessionOperations.WithLabelValues("register", "failure").Inc()
		return Result{}, err
	}

	user, err := s.adopt(ctx, res)
	if err != nil {
		metrics.SessionOperations.WithLabelValues("register", "error").Inc()
		return Result{}, err
	}
	metrics.SessionOperations.WithLabelValues("register", "success").Inc()
	s.logger.Info("session registered", slog.String("user_id", user.ID))
	return Result{User: user, Admin: false}, nil
}

// Logout signs the browser out. It cannot fail; storage errors are logged.
// An in-flight Login is not cancelled and will still land when it resolves.
func (s *Session) Logout(ctx context.Context) {
	s.clear(ctx)
	metrics.SessionOperations.WithLabelValues("logout", "success").Inc()
}

// Dispose ends the session's lifecycle. Results of requests still in flight
// are discarded instead of being applied.
func (s *Session) Dispose() {
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}

// Snapshot returns the current user and loading flag.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// User returns the signed-in user, if any.
func (s *Session) User() (identity.User, bool) {
	snap := s.Snapshot()
	if snap.User == nil {
		return identity.User{}, false
	}
	return *snap.User, true
}

// Loading reports whether the initial token check is still running.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// adopt persists the token and mirrored id and replaces the user. Storage
// and user are updated under one lock so the last response to resolve wins
// as a whole.
func (s *Session) adopt(ctx context.Context, res authclient.AuthResult) (identity.User, error) {
	user := res.User.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return identity.User{}, ErrDisposed
	}
	if err := s.store.Set(ctx, TokenKey, res.Token); err != nil {
		return identity.User{}, fmt.Errorf("store token: %w", err)
	}
	if err := s.store.Set(ctx, UserIDKey, user.ID); err != nil {
		// The previous token is gone at this point, so the previous user cannot stay.
		if rmErr := s.store.Remove(ctx, TokenKey, UserIDKey); rmErr != nil {
			s.logger.Warn("roll back stored token", slog.Any("error", rmErr))
		}
		s.user = nil
		return identity.User{}, fmt.Errorf("store user id: %w", err)
	}
	s.user = &user
	return user, nil
}

func (s *Session) clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := s.store.Remove(ctx, TokenKey, UserIDKey); err != nil {
		s.logger.Warn("clear stored session", slog.Any("error", err))
	}
}

func (s *Session) setUser(u *identity.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
