package app

import (
	"context"

	"github.com/yungbote/brandlens-backend/internal/agents/audience"
	"github.com/yungbote/brandlens-backend/internal/agents/competitor"
	"github.com/yungbote/brandlens-backend/internal/agents/correction"
	"github.com/yungbote/brandlens-backend/internal/agents/crawl"
	"github.com/yungbote/brandlens-backend/internal/agents/identity"
	"github.com/yungbote/brandlens-backend/internal/agents/product"
	"github.com/yungbote/brandlens-backend/internal/data/graph"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/modules/corrections"
	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/profiles"
	"github.com/yungbote/brandlens-backend/internal/modules/promptgen"
	"github.com/yungbote/brandlens-backend/internal/platform/envutil"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/temporalx/pipeline"
)

type Services struct {
	Discovery   *discovery.Orchestrator
	Prompts     *promptgen.Service
	Scanner     *perception.Scanner
	Corrections *corrections.Service
	Profiles    *profiles.Service
	Activities  *pipeline.Activities
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, clients Clients, rs *repos.Set) Services {
	log.Info("Wiring services...")

	orch := discovery.New(discovery.Deps{
		Log:         log,
		Repos:       rs,
		Crawler:     crawl.New(log, clients.Fetcher),
		Identity:    identity.New(log, clients.LLM),
		Competitors: competitor.New(log, clients.LLM),
		Products:    product.New(log, clients.LLM, clients.Fetcher),
		Audience:    audience.New(log, clients.LLM, clients.Fetcher),
		Graph:       graph.NewCompetitorGraphSync(clients.Neo4j, log),
		PageTimeout: cfg.AudiencePageTimeout(),
		Defaults:    cfg.Discovery,
	})

	prompts := promptgen.NewService(log, rs)
	scanner := perception.NewScanner(perception.ScannerDeps{
		Log:         log,
		Repos:       rs,
		Evaluator:   perception.NewEvaluator(log, wireProviders(ctx, log), wireJudge(log, cfg, clients)),
		Prompts:     prompts,
		Concurrency: cfg.Scan.Concurrency,
		Defaults:    cfg.Scan,
	})

	return Services{
		Discovery:   orch,
		Prompts:     prompts,
		Scanner:     scanner,
		Corrections: corrections.NewService(log, rs, correction.New(log, clients.LLM)),
		Profiles:    profiles.NewService(log, rs),
		Activities:  &pipeline.Activities{Log: log, Discovery: orch, Scans: scanner},
	}
}

// wireProviders registers a real adapter for every platform that has
// credentials. The rest resolve to mocks, which wait out their latency when
// MOCK_PROVIDER_DELAY is set.
func wireProviders(ctx context.Context, log *logger.Logger) *perception.Registry {
	reg := perception.NewRegistry()
	if envutil.Bool("MOCK_PROVIDER_DELAY", false) {
		for _, platform := range perception.Platforms {
			reg.SetMock(perception.NewMockProvider(platform, perception.WithMockDelay()))
		}
	}

	if key := envutil.String("OPENAI_API_KEY", ""); key != "" {
		p, err := perception.NewChatGPTProvider(log, perception.ChatGPTConfig{
			APIKey:  key,
			BaseURL: envutil.String("CHATGPT_BASE_URL", ""),
			Model:   envutil.String("CHATGPT_MODEL", ""),
		})
		if err != nil {
			log.Warn("ChatGPT provider disabled", "error", err)
		} else {
			reg.Register(p)
		}
	}

	if key := envutil.String("GEMINI_API_KEY", ""); key != "" {
		p, err := perception.NewGeminiProvider(ctx, log, key, envutil.String("GEMINI_MODEL", ""))
		if err != nil {
			log.Warn("Gemini provider disabled", "error", err)
		} else {
			reg.Register(p)
		}
	}
	return reg
}

func wireJudge(log *logger.Logger, cfg Config, clients Clients) perception.Judge {
	if cfg.Judge == JudgeHeuristic || clients.LLM == nil {
		log.Info("Using heuristic perception judge")
		return perception.HeuristicJudge{}
	}
	return perception.NewLLMJudge(log, clients.LLM)
}
