package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/adapters/file"
	"github.com/aretw0/landsketch/internal/config"
	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/aretw0/landsketch/pkg/adapters/redis"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/observability"
	"github.com/aretw0/landsketch/pkg/persistence/middleware"
	"github.com/aretw0/landsketch/pkg/ports"
	"github.com/aretw0/landsketch/pkg/session"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	EnvFile    string
	Endpoint   string
	Store      string
	Debug      bool
}

// App is everything a command needs once configuration is resolved.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   ports.KVStore
	Metrics *observability.Metrics

	// Out receives user-facing notifications.
	Out io.Writer

	closeStore func() error
}

// Setup loads .env, the config file and flag overrides, then opens the store.
func Setup(ctx context.Context, opts Options) (*App, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.Store != "" {
		cfg.Store.Driver = opts.Store
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Metrics:    observability.NewMetrics(),
		Out:        os.Stderr,
		closeStore: closeStore,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

// OpenStore builds the configured session store, sealed with AES-GCM when an
// encryption key is configured.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (ports.KVStore, func() error, error) {
	enc, err := cfg.Encryption()
	if err != nil {
		return nil, nil, err
	}

	store, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if enc == nil {
		return store, closeFn, nil
	}

	mw, err := middleware.NewEncryptionMiddleware(*enc)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return middleware.Chain(store, mw), closeFn, nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (ports.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), noop, nil
	case config.DriverFile:
		return file.New(cfg.Path), noop, nil
	case config.DriverRedis:
		ttl, err := cfg.Redis.TTLDuration()
		if err != nil {
			return nil, nil, err
		}
		opts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.Redis.Addr, err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// Hooks combines metrics and logging hooks.
func (a *App) Hooks() domain.LifecycleHooks {
	return a.Metrics.Hooks().Merge(observability.LoggingHooks(a.Logger))
}

// NewStudio builds a mounted studio configured from the app. The studio
// reports to a.Out and writes results to store.
func (a *App) NewStudio(store ports.KVStore, opts ...landsketch.Option) (*landsketch.Studio, error) {
	endpoint, err := a.Config.SearchURL()
	if err != nil {
		return nil, err
	}

	base := []landsketch.Option{
		landsketch.WithEndpoint(endpoint),
		landsketch.WithStore(store),
		landsketch.WithCanvasSize(a.Config.Canvas.Width, a.Config.Canvas.Height),
		landsketch.WithLogger(a.Logger),
		landsketch.WithLifecycleHooks(a.Hooks()),
		landsketch.WithNotifier(NewNotifier(a.Out)),
	}

	studio, err := landsketch.New(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing studio: %w", err)
	}
	studio.Mount()
	return studio, nil
}

// Manager builds a session manager whose studios come from NewStudio.
func (a *App) Manager() *session.Manager {
	return session.NewManager(a.Store,
		session.WithLogger(a.Logger),
		session.WithFactory(func(_ string, store ports.KVStore) (*landsketch.Studio, error) {
			return a.NewStudio(store)
		}),
	)
}

// createLogger maps the configured level; --debug always wins.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}
