package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/clients/firecrawl"
	"github.com/yungbote/brandlens-backend/internal/clients/redis"
	"github.com/yungbote/brandlens-backend/internal/data/db"
	"github.com/yungbote/brandlens-backend/internal/platform/envutil"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/neo4jdb"
	"github.com/yungbote/brandlens-backend/internal/platform/openai"
	"github.com/yungbote/brandlens-backend/internal/temporalx"
)

type Clients struct {
	Postgres *db.PostgresService
	DB       *gorm.DB
	LLM      openai.Client
	// Fetcher is Firecrawl, wrapped by the Redis scrape cache when REDIS_ADDR is set.
	Fetcher firecrawl.Client
	Redis   *goredis.Client
	Neo4j   *neo4jdb.Client

	Temporal    temporalsdkclient.Client
	TemporalCfg temporalx.Config
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	// Database
	pg, err := db.NewPostgresService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	c.Postgres = pg
	c.DB = pg.DB()
	if err := db.AutoMigrateAll(c.DB); err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsurePerceptionIndexes(c.DB); err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("perception indexes: %w", err)
	}

	// OpenAI
	llm, err := openai.NewClient(log)
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	c.LLM = llm

	// Firecrawl
	fc, err := firecrawl.New(log, firecrawl.Config{
		BaseURL:      envutil.String("FIRECRAWL_URL", "http://localhost:3002"),
		APIKey:       envutil.String("FIRECRAWL_API_KEY", ""),
		Timeout:      cfg.CrawlTimeout(),
		PollAttempts: cfg.Crawl.PollAttempts,
		PollInterval: cfg.CrawlPollInterval(),
	})
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init firecrawl client: %w", err)
	}
	c.Fetcher = fc

	// Redis
	if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		rdb, err := redis.Dial(ctx, addr)
		if err != nil {
			log.Warn("Redis unavailable, scraping without cache", "error", err)
		} else {
			cache, err := redis.NewScrapeCache(log, fc, rdb, cfg.ScrapeCacheTTL())
			if err != nil {
				_ = rdb.Close()
				c.Close(ctx)
				return Clients{}, fmt.Errorf("init scrape cache: %w", err)
			}
			c.Redis = rdb
			c.Fetcher = cache
		}
	}

	// Neo4j
	n4j, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j unavailable, competitor graph sync disabled", "error", err)
	} else {
		c.Neo4j = n4j
	}

	// Temporal
	c.TemporalCfg = temporalx.LoadConfig()
	tc, err := temporalx.NewClient(log)
	if err != nil {
		c.Close(ctx)
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}
	c.Temporal = tc

	return c, nil
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
