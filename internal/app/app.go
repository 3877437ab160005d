// ABOUTME: Wires configuration, storage backend, repositories and services into one App
// ABOUTME: Restores the persisted session so callers can attach it to their context

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/2389/schoolbook/internal/admin"
	"github.com/2389/schoolbook/internal/attendance"
	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/chat"
	"github.com/2389/schoolbook/internal/classlog"
	"github.com/2389/schoolbook/internal/config"
	"github.com/2389/schoolbook/internal/records"
	"github.com/2389/schoolbook/internal/store"
	"github.com/2389/schoolbook/internal/students"
)

// App holds every service over one store.
type App struct {
	Config *config.Config
	Repos  *records.Repositories

	Auth       *auth.Service
	Admin      *admin.Service
	Students   *students.Service
	Attendance *attendance.Service
	ClassLogs  *classlog.Service
	Chat       *chat.Service

	store  store.Store
	logger *slog.Logger
}

// OpenStore opens the backend selected by cfg. SCHOOLBOOK_DB_PATH overrides
// the SQLite path.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	dbPath := cfg.Path
	if envPath := os.Getenv("SCHOOLBOOK_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	var s store.Store
	var err error
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err = store.NewSQLiteStoreWithDriver(store.DriverModernc, dbPath)
	case config.BackendSQLite3:
		s, err = store.NewSQLiteStoreWithDriver(store.DriverMattn, dbPath)
	case config.BackendMemory:
		s = store.NewMemoryStore()
	case config.BackendRedis:
		s, err = store.NewRedisStore(ctx, store.RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Prefix:      cfg.Redis.Prefix,
			DialTimeout: cfg.Redis.DialTimeout,
		})
	case config.BackendPostgres:
		s, err = store.NewPostgresStore(ctx, cfg.Postgres.URL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New opens the configured store and builds the services. When
// school.seed_demo is set the demo students are written into an empty store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a := NewWithStore(cfg, s, logger)

	if cfg.School.SeedDemo {
		if _, err := a.Repos.SeedDemo(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	return a, nil
}

// NewWithStore builds the services over an already opened store.
func NewWithStore(cfg *config.Config, s store.Store, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	repos := records.New(s, logger)
	return &App{
		Config:     cfg,
		Repos:      repos,
		Auth:       auth.NewService(repos, logger),
		Admin:      admin.New(repos, logger),
		Students:   students.NewService(repos, logger),
		Attendance: attendance.NewService(repos, logger),
		ClassLogs:  classlog.NewService(repos, logger),
		Chat:       chat.NewService(repos, logger),
		store:      s,
		logger:     logger.With("component", "app"),
	}
}

// Session loads the persisted principal and attaches it to ctx. The
// returned principal is nil when nobody is signed in.
func (a *App) Session(ctx context.Context) (context.Context, *auth.Principal, error) {
	p, err := a.Auth.Current(ctx)
	if err != nil {
		return ctx, nil, fmt.Errorf("loading session: %w", err)
	}
	if p == nil {
		return ctx, nil, nil
	}
	return auth.WithPrincipal(ctx, p), p, nil
}

// Close releases the store.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}
	a.logger.Debug("store closed")
	return nil
}
