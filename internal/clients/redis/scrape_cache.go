package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/brandlens-backend/internal/clients/firecrawl"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// ScrapeCache memoizes single-page scrapes in Redis. Crawl calls pass straight
// through to the wrapped client. Cache failures are logged and never fail a scrape.
type ScrapeCache struct {
	firecrawl.Client

	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewScrapeCache(log *logger.Logger, inner firecrawl.Client, rdb goredis.UniversalClient, ttl time.Duration) (*ScrapeCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inner == nil {
		return nil, fmt.Errorf("inner firecrawl client required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ScrapeCache{
		Client: inner,
		log:    log.With("service", "RedisScrapeCache"),
		rdb:    rdb,
		ttl:    ttl,
	}, nil
}

// Dial connects to addr and verifies the connection with a PING.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *ScrapeCache) Scrape(ctx context.Context, pageURL string, formats []string) (*firecrawl.Page, error) {
	if c.rdb == nil {
		return c.Client.Scrape(ctx, pageURL, formats)
	}
	key := scrapeKey(pageURL, formats)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var page firecrawl.Page
		if jerr := json.Unmarshal(raw, &page); jerr == nil {
			return &page, nil
		}
	} else if err != goredis.Nil {
		c.log.Warn("Scrape cache read failed", "url", pageURL, "error", err)
	}

	page, err := c.Client.Scrape(ctx, pageURL, formats)
	if err != nil {
		return nil, err
	}
	if raw, jerr := json.Marshal(page); jerr == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("Scrape cache write failed", "url", pageURL, "error", err)
		}
	}
	return page, nil
}

func scrapeKey(pageURL string, formats []string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(pageURL) + "|" + strings.Join(formats, ",")))
	return "brandlens:scrape:" + hex.EncodeToString(sum[:12])
}
