package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/http"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    *repos.Set
	Services Services
	Server   *http.Server
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration from configPath (or BRANDLENS_CONFIG) and wires
// every client, service and handler.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{ServiceName: cfg.ServiceName})
	var metrics *observability.Metrics
	if observability.Enabled() {
		metrics = observability.Init(log)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := repos.NewSet(clients.DB, log)
	serviceset := wireServices(ctx, log, cfg, clients, reposet)
	handlerset := wireHandlers(log, clients, serviceset)

	return &App{
		Log:          log,
		DB:           clients.DB,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireServer(log, cfg, handlerset, metrics),
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background collectors. Safe to call once.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}
}

// RunServer serves the HTTP API until ctx is done.
func (a *App) RunServer(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	a.Log.Info("Serving HTTP", "addr", a.Cfg.Addr())
	return a.Server.Run(ctx, a.Cfg.Addr())
}

// RunWorker polls the Temporal task queue until ctx is done.
func (a *App) RunWorker(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Clients.TemporalCfg, a.Services.Activities)
	if err != nil {
		return err
	}
	a.Start(ctx)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	a.Log.Info("Temporal worker stopping")
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx := context.Background()
	a.Clients.Close(ctx)
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
