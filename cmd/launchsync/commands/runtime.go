package commands

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/launchsync/config"
	"github.com/viant/launchsync/engine"
	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launch/memory"
	"github.com/viant/launchsync/launchsync"
	"github.com/viant/launchsync/remote"
)

// appRuntime owns the handles a command works with. The application root
// builds them explicitly; nothing is a process-wide singleton.
type appRuntime struct {
	cfg         *config.Config
	db          launch.Database
	registry    *prometheus.Registry
	coordinator *launchsync.Coordinator
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Logger()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (launch.Database, error) {
	storeOpts := []launch.Option{launch.WithOrder(launch.Past, cfg.Sync.Order())}
	switch cfg.Database.Backend {
	case "memory":
		logger.Debug("using in-memory cache", logger.KeyBackend, cfg.Database.Backend)
		return memory.New(storeOpts...), nil
	case "sqlite":
		conn, err := engine.OpenFile(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		db, err := launch.NewSQLiteDatabase(conn, storeOpts...)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		logger.Debug("opened cache", logger.KeyBackend, cfg.Database.Backend, logger.KeyPath, cfg.Database.Path)
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database backend %q", cfg.Database.Backend)
}

func newRuntime(opts *rootOptions) (*appRuntime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.Remote.BaseURL,
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithUserAgent(cfg.Remote.UserAgent),
	)
	registry := prometheus.NewRegistry()
	coordinator, err := launchsync.New(db, client, cfg.Sync.Coordinator(),
		launchsync.WithMetrics(launchsync.NewMetrics(registry)))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &appRuntime{cfg: cfg, db: db, registry: registry, coordinator: coordinator}, nil
}

func (rt *appRuntime) Close() error {
	return rt.db.Close()
}
