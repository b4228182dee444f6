package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/dashgate/internal/authclient"
	"github.com/congo-pay/dashgate/internal/config"
	"github.com/congo-pay/dashgate/internal/infra"
	"github.com/congo-pay/dashgate/internal/metrics"
	"github.com/congo-pay/dashgate/internal/routes"
	"github.com/congo-pay/dashgate/internal/session"
	"github.com/congo-pay/dashgate/internal/storage"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	sessions *session.Registry
	stop     context.CancelFunc
	logger   *slog.Logger
}

// New instantiates the gateway: browser storage, the auth client, the
// session registry and the routes on top of them.
func New(ctx context.Context, cfg config.Config, conns *infra.Connections, logger *slog.Logger) (*Server, error) {
	backend, err := NewStorage(ctx, cfg, conns)
	if err != nil {
		return nil, err
	}

	auth, err := authclient.New(cfg.BackendURL, authclient.Options{Timeout: cfg.AuthTimeout, Logger: logger})
	if err != nil {
		return nil, err
	}
	sessions := session.NewRegistry(auth, backend, logger, cfg.SessionIdleTTL)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: routes.ErrorHandler(logger),
	})

	if err := routes.Setup(app, routes.Deps{
		Cfg:      cfg,
		Storage:  backend,
		Sessions: sessions,
		DB:       conns.DB,
		Cache:    conns.Cache,
		Metrics:  metrics.NewRegistry(),
		Logger:   logger,
	}); err != nil {
		return nil, err
	}

	runCtx, stop := context.WithCancel(context.Background())
	go sessions.Run(runCtx, sweepInterval(cfg.SessionIdleTTL))

	return &Server{app: app, cfg: cfg, sessions: sessions, stop: stop, logger: logger}, nil
}

// NewStorage selects the browser storage backend named by the configuration.
func NewStorage(ctx context.Context, cfg config.Config, conns *infra.Connections) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		if conns.Cache == nil {
			return nil, fmt.Errorf("redis storage selected without a redis connection")
		}
		return storage.NewRedis(conns.Cache, cfg.StorageTTL), nil
	case config.StoragePostgres:
		if conns.DB == nil {
			return nil, fmt.Errorf("postgres storage selected without a database connection")
		}
		backend := storage.NewPostgres(conns.DB)
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return storage.NewMemory(), nil
	}
}

func sweepInterval(idleTTL time.Duration) time.Duration {
	interval := idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// App exposes the underlying Fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	s.logger.Info("gateway listening", slog.String("addr", s.cfg.Address()), slog.String("storage", s.cfg.StorageBackend))
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and drops in-memory sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	err := s.app.ShutdownWithContext(ctx)
	s.sessions.Close()
	return err
}
