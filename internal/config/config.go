package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppName        = "DashGate"
	defaultAppEnv         = "development"
	defaultPort           = "3000"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultAuthTimeout    = 15 * time.Second
	defaultBackendTimeout = 30 * time.Second
	defaultSessionCookie  = "dash_sid"
	defaultSessionIdleTTL = 30 * time.Minute
	defaultStorageTTL     = 30 * 24 * time.Hour
	defaultLoginRateLimit = 5

	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config captures gateway runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	BackendURL     string
	AuthTimeout    time.Duration
	BackendTimeout time.Duration
	StorageBackend string
	DatabaseURL    string
	RedisURL       string
	SessionCookie  string
	SessionIdleTTL time.Duration
	StorageTTL     time.Duration
	LoginRateLimit int
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_NAME", defaultAppName)
	v.SetDefault("APP_ENV", defaultAppEnv)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("AUTH_TIMEOUT", defaultAuthTimeout)
	v.SetDefault("BACKEND_TIMEOUT", defaultBackendTimeout)
	v.SetDefault("SESSION_COOKIE", defaultSessionCookie)
	v.SetDefault("SESSION_IDLE_TTL", defaultSessionIdleTTL)
	v.SetDefault("STORAGE_TTL", defaultStorageTTL)
	v.SetDefault("LOGIN_RATE_LIMIT", defaultLoginRateLimit)
	return v
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	v := newViper()

	cfg := Config{
		AppName:        v.GetString("APP_NAME"),
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		BackendURL:     strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		AuthTimeout:    v.GetDuration("AUTH_TIMEOUT"),
		BackendTimeout: v.GetDuration("BACKEND_TIMEOUT"),
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		RedisURL:       v.GetString("REDIS_URL"),
		SessionCookie:  v.GetString("SESSION_COOKIE"),
		SessionIdleTTL: v.GetDuration("SESSION_IDLE_TTL"),
		StorageTTL:     v.GetDuration("STORAGE_TTL"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = secondsOrDuration(v, shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = secondsOrDuration(v, idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("BACKEND_URL must be set")
	}
	if u, err := url.Parse(cfg.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid BACKEND_URL %q", cfg.BackendURL)
	}

	if cfg.StorageBackend == "" {
		cfg.StorageBackend = inferStorage(cfg)
	}
	switch cfg.StorageBackend {
	case StorageMemory:
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=memory is only allowed when APP_ENV is a development environment")
		}
	case StorageRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set for STORAGE_BACKEND=redis")
		}
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set for STORAGE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the gateway runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func inferStorage(cfg Config) string {
	switch {
	case cfg.RedisURL != "":
		return StorageRedis
	case cfg.DatabaseURL != "":
		return StoragePostgres
	default:
		return StorageMemory
	}
}

func secondsOrDuration(v *viper.Viper, secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if raw := v.GetString(secondsKey); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if raw := v.GetString(durationKey); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}
