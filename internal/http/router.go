package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brandlens-backend/internal/http/middleware"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	ProfileHandler    *httpH.ProfileHandler
	PromptHandler     *httpH.PromptHandler
	ScanHandler       *httpH.ScanHandler
	CorrectionHandler *httpH.CorrectionHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Profiles
		if cfg.ProfileHandler != nil {
			api.POST("/profiles/discover", cfg.ProfileHandler.Discover)
			api.GET("/profiles/:id", cfg.ProfileHandler.GetProfile)
			api.PUT("/profiles/:id/claims", cfg.ProfileHandler.ReplaceClaims)
			api.PUT("/profiles/:id/risk-factors", cfg.ProfileHandler.SetRiskFactors)
		}

		// Prompts
		if cfg.PromptHandler != nil {
			api.POST("/profiles/:id/prompts/generate", cfg.PromptHandler.Generate)
		}

		// Scans
		if cfg.ScanHandler != nil {
			api.POST("/profiles/:id/scans", cfg.ScanHandler.StartScan)
			api.GET("/profiles/:id/scans", cfg.ScanHandler.ListScans)
			api.GET("/scans/:id", cfg.ScanHandler.GetScan)
			api.GET("/scans/:id/compare/:otherId", cfg.ScanHandler.Compare)
		}

		// Corrections
		if cfg.CorrectionHandler != nil {
			api.POST("/insights/:id/corrections", cfg.CorrectionHandler.GenerateForInsight)
			api.POST("/scans/:id/corrections", cfg.CorrectionHandler.GenerateForScan)
			api.POST("/profiles/:id/corrections", cfg.CorrectionHandler.CreateManual)
			api.GET("/profiles/:id/corrections", cfg.CorrectionHandler.List)
			api.GET("/profiles/:id/corrections/funnel", cfg.CorrectionHandler.Funnel)
			api.GET("/corrections/:id", cfg.CorrectionHandler.Get)
			api.POST("/corrections/:id/transition", cfg.CorrectionHandler.Transition)
			api.POST("/corrections/:id/verify", cfg.CorrectionHandler.Verify)
		}
	}

	return r
}
