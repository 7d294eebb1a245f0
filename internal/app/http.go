package app

import (
	"context"

	"github.com/yungbote/brandlens-backend/internal/http"
	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/temporalx/pipeline"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Profile    *httpH.ProfileHandler
	Prompt     *httpH.PromptHandler
	Scan       *httpH.ScanHandler
	Correction *httpH.CorrectionHandler
}

func wireHandlers(log *logger.Logger, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")

	// Discovery and scans run inline unless a Temporal client is configured.
	var starter httpH.WorkflowStarter
	if clients.Temporal != nil {
		starter = pipeline.NewStarter(clients.Temporal, clients.TemporalCfg.TaskQueue)
	}

	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	if clients.Neo4j != nil && clients.Neo4j.Driver != nil {
		checks["neo4j"] = func(ctx context.Context) error { return clients.Neo4j.Driver.VerifyConnectivity(ctx) }
	}

	return Handlers{
		Health:     httpH.NewHealthHandler(checks),
		Profile:    httpH.NewProfileHandler(log, services.Discovery, services.Profiles, starter),
		Prompt:     httpH.NewPromptHandler(services.Prompts),
		Scan:       httpH.NewScanHandler(services.Scanner, starter),
		Correction: httpH.NewCorrectionHandler(services.Corrections),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		ProfileHandler:    handlers.Profile,
		PromptHandler:     handlers.Prompt,
		ScanHandler:       handlers.Scan,
		CorrectionHandler: handlers.Correction,
		HealthHandler:     handlers.Health,
	})
}
