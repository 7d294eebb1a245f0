package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/platform/envutil"
)

const (
	JudgeLLM       = "llm"
	JudgeHeuristic = "heuristic"
)

type CrawlConfig struct {
	PollAttempts        int `yaml:"poll_attempts"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	TimeoutSeconds      int `yaml:"timeout_seconds"`
	CacheTTLSeconds     int `yaml:"cache_ttl_seconds"`
}

type AudienceConfig struct {
	PageTimeoutSeconds int `yaml:"page_timeout_seconds"`
}

type Config struct {
	Port        string   `yaml:"port"`
	LogMode     string   `yaml:"log_mode"`
	ServiceName string   `yaml:"service_name"`
	CORSOrigins []string `yaml:"cors_origins"`
	MetricsAddr string   `yaml:"metrics_addr"`

	Discovery discovery.Options  `yaml:"discovery"`
	Scan      perception.Options `yaml:"scan"`
	// Judge is "llm" or "heuristic".
	Judge    string         `yaml:"judge"`
	Crawl    CrawlConfig    `yaml:"crawl"`
	Audience AudienceConfig `yaml:"audience"`
}

func defaultConfig() Config {
	return Config{
		Port:        "8080",
		LogMode:     "development",
		ServiceName: "brandlens",
		Discovery:   discovery.Options{PersonaPolicy: discovery.PersonaAppend},
		Scan:        perception.Options{Concurrency: 1},
		Judge:       JudgeLLM,
		Crawl: CrawlConfig{
			PollAttempts:        30,
			PollIntervalSeconds: 2,
			TimeoutSeconds:      60,
			CacheTTLSeconds:     3600,
		},
		Audience: AudienceConfig{PageTimeoutSeconds: 15},
	}
}

// LoadConfig layers defaults, the YAML file named by path (or
// BRANDLENS_CONFIG when path is empty), then environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if strings.TrimSpace(path) == "" {
		path = envutil.String("BRANDLENS_CONFIG", "")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", cfg.MetricsAddr)
	if v := envutil.String("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if v := envutil.String("SCAN_PLATFORMS", ""); v != "" {
		cfg.Scan.Platforms = splitList(v)
	}
	cfg.Scan.MaxPrompts = envutil.Int("SCAN_MAX_PROMPTS", cfg.Scan.MaxPrompts)
	cfg.Scan.Concurrency = envutil.Int("SCAN_CONCURRENCY", cfg.Scan.Concurrency)
	cfg.Judge = envutil.String("PERCEPTION_JUDGE", cfg.Judge)

	cfg.Discovery.MaxPages = envutil.Int("DISCOVERY_MAX_PAGES", cfg.Discovery.MaxPages)
	if v := envutil.String("DISCOVERY_PERSONA_POLICY", ""); v != "" {
		cfg.Discovery.PersonaPolicy = discovery.PersonaPolicy(v)
	}

	cfg.Crawl.PollAttempts = envutil.Int("FIRECRAWL_POLL_ATTEMPTS", cfg.Crawl.PollAttempts)
	cfg.Crawl.PollIntervalSeconds = envutil.Int("FIRECRAWL_POLL_INTERVAL_SECONDS", cfg.Crawl.PollIntervalSeconds)
	cfg.Crawl.TimeoutSeconds = envutil.Int("FIRECRAWL_TIMEOUT_SECONDS", cfg.Crawl.TimeoutSeconds)
	cfg.Crawl.CacheTTLSeconds = envutil.Int("SCRAPE_CACHE_TTL_SECONDS", cfg.Crawl.CacheTTLSeconds)
	cfg.Audience.PageTimeoutSeconds = envutil.Int("AUDIENCE_PAGE_TIMEOUT_SECONDS", cfg.Audience.PageTimeoutSeconds)
}

func (c *Config) normalize() {
	c.Discovery.PersonaPolicy = discovery.ParsePersonaPolicy(string(c.Discovery.PersonaPolicy))
	c.Judge = strings.ToLower(strings.TrimSpace(c.Judge))
	if c.Judge != JudgeHeuristic {
		c.Judge = JudgeLLM
	}
	if c.Scan.Concurrency < 1 {
		c.Scan.Concurrency = 1
	}
	for i, p := range c.Scan.Platforms {
		c.Scan.Platforms[i] = strings.ToLower(strings.TrimSpace(p))
	}
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) CrawlPollInterval() time.Duration {
	return time.Duration(c.Crawl.PollIntervalSeconds) * time.Second
}

func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}

func (c Config) ScrapeCacheTTL() time.Duration {
	return time.Duration(c.Crawl.CacheTTLSeconds) * time.Second
}

func (c Config) AudiencePageTimeout() time.Duration {
	return time.Duration(c.Audience.PageTimeoutSeconds) * time.Second
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
