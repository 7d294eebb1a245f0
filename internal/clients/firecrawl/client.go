package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/pkg/httpx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

var (
	ErrCrawlFailed   = errors.New("Crawl job failed")
	ErrCrawlTimedOut = errors.New("Crawl job timed out")
)

// Client talks to a self-hosted Firecrawl instance.
type Client interface {
	Scrape(ctx context.Context, pageURL string, formats []string) (*Page, error)
	StartCrawl(ctx context.Context, siteURL string, limit int) (*CrawlJob, error)
	CrawlStatus(ctx context.Context, id string) (*CrawlJob, error)
	// CrawlAndWait starts a crawl and polls until it completes, fails, or the attempt cap is hit.
	CrawlAndWait(ctx context.Context, siteURL string, limit int) ([]Page, error)
}

type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollAttempts int
	PollInterval time.Duration
}

type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	SourceURL   string `json:"sourceURL,omitempty"`
	StatusCode  int    `json:"statusCode,omitempty"`
}

type Page struct {
	Markdown string   `json:"markdown,omitempty"`
	HTML     string   `json:"html,omitempty"`
	Metadata Metadata `json:"metadata"`
}

type CrawlJob struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Total  int    `json:"total,omitempty"`
	Pages  []Page `json:"data,omitempty"`
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "http://localhost:3002"
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("firecrawl base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &client{
		log:  log.With("client", "FirecrawlClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    *Page  `json:"data,omitempty"`
}

func (c *client) Scrape(ctx context.Context, pageURL string, formats []string) (*Page, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("url required")
	}
	if len(formats) == 0 {
		formats = []string{"markdown", "html"}
	}
	var out scrapeResponse
	status, err := c.do(ctx, http.MethodPost, "/v1/scrape", map[string]any{
		"url":     pageURL,
		"formats": formats,
	}, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("Firecrawl error: %d", status)
	}
	if !out.Success {
		if out.Error != "" {
			return nil, errors.New(out.Error)
		}
		return nil, fmt.Errorf("Crawl failed")
	}
	if out.Data == nil {
		return &Page{}, nil
	}
	return out.Data, nil
}

func (c *client) StartCrawl(ctx context.Context, siteURL string, limit int) (*CrawlJob, error) {
	if strings.TrimSpace(siteURL) == "" {
		return nil, fmt.Errorf("url required")
	}
	if limit <= 0 {
		limit = 5
	}
	var out CrawlJob
	status, err := c.do(ctx, http.MethodPost, "/v1/crawl", map[string]any{
		"url":   siteURL,
		"limit": limit,
		"scrapeOptions": map[string]any{
			"formats": []string{"markdown", "html"},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("firecrawl crawl http %d", status)
	}
	return &out, nil
}

func (c *client) CrawlStatus(ctx context.Context, id string) (*CrawlJob, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("crawl id required")
	}
	var out CrawlJob
	status, err := c.do(ctx, http.MethodGet, "/v1/crawl/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("firecrawl crawl status http %d", status)
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

func (c *client) CrawlAndWait(ctx context.Context, siteURL string, limit int) ([]Page, error) {
	job, err := c.StartCrawl(ctx, siteURL, limit)
	if err != nil {
		return nil, err
	}
	// Synchronous deployments answer with the pages directly.
	if job.ID == "" {
		return job.Pages, nil
	}
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		if err := httpx.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
		st, err := c.CrawlStatus(ctx, job.ID)
		if err != nil {
			c.log.Debug("Crawl status poll failed", "crawl_id", job.ID, "attempt", attempt+1, "error", err)
			continue
		}
		switch st.Status {
		case "completed":
			return st.Pages, nil
		case "failed":
			return nil, ErrCrawlFailed
		}
	}
	return nil, ErrCrawlTimedOut
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, rdr)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("firecrawl %s decode: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
