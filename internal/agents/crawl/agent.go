package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/clients/firecrawl"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const Source = "crawler_agent"

// Fetcher is the slice of the Firecrawl client this agent needs.
type Fetcher interface {
	Scrape(ctx context.Context, pageURL string, formats []string) (*firecrawl.Page, error)
	CrawlAndWait(ctx context.Context, siteURL string, limit int) ([]firecrawl.Page, error)
}

type Output struct {
	EntityHome   brand.EntityHome         `json:"entityHome"`
	OrgSchema    brand.OrganizationSchema `json:"organizationSchema"`
	SocialLinks  []string                 `json:"socialLinks"`
	SchemaMarkup []Markup                 `json:"schemaMarkup"`
	RawContent   string                   `json:"rawContent"`
	CrawledURLs  []string                 `json:"crawledUrls"`
}

type Agent struct {
	log     *logger.Logger
	fetcher Fetcher
}

func New(log *logger.Logger, fetcher Fetcher) *Agent {
	return &Agent{log: log.With("agent", "CrawlerAgent"), fetcher: fetcher}
}

// Crawl scrapes a single page and derives the entity home and organization schema.
func (a *Agent) Crawl(ctx context.Context, websiteURL string) agent.Result[Output] {
	start := time.Now()
	page, err := a.fetcher.Scrape(ctx, websiteURL, []string{"markdown", "html"})
	if err != nil {
		a.log.Warn("Scrape failed", "url", websiteURL, "error", err)
		return agent.Fail[Output](Source, start, err)
	}
	out := Build(websiteURL, page.HTML, page.Markdown, []string{websiteURL})
	return agent.OK(out, confidence(out), Source, start)
}

// CrawlMultiple crawls up to maxPages pages. Any failure of the multi-page crawl
// falls back to a single-page Crawl.
func (a *Agent) CrawlMultiple(ctx context.Context, websiteURL string, maxPages int) agent.Result[Output] {
	start := time.Now()
	if maxPages <= 0 {
		maxPages = 5
	}
	pages, err := a.fetcher.CrawlAndWait(ctx, websiteURL, maxPages)
	if err != nil {
		a.log.Warn("Multi-page crawl failed, falling back to single page", "url", websiteURL, "error", err)
		return a.Crawl(ctx, websiteURL)
	}
	htmlParts := make([]string, 0, len(pages))
	mdParts := make([]string, 0, len(pages))
	urls := make([]string, 0, len(pages))
	for i, p := range pages {
		htmlParts = append(htmlParts, p.HTML)
		mdParts = append(mdParts, p.Markdown)
		u := p.Metadata.SourceURL
		if u == "" {
			u = fmt.Sprintf("%s/page-%d", strings.TrimRight(websiteURL, "/"), i)
		}
		urls = append(urls, u)
	}
	out := Build(websiteURL, strings.Join(htmlParts, "\n"), strings.Join(mdParts, "\n\n"), urls)
	return agent.OK(out, confidence(out), Source, start)
}

func confidence(out Output) float64 {
	if len(out.SchemaMarkup) > 0 {
		return 0.9
	}
	return 0.6
}

// Build runs the pure extraction over already fetched content.
func Build(websiteURL, page, markdown string, crawled []string) Output {
	markup := ExtractSchemaMarkup(page)
	social := ExtractSocialLinks(page)
	meta := ExtractMeta(page)
	if markup == nil {
		markup = []Markup{}
	}
	return Output{
		EntityHome:   BuildEntityHome(websiteURL, social, markup),
		OrgSchema:    BuildOrganizationSchema(markup, meta),
		SocialLinks:  social,
		SchemaMarkup: markup,
		RawContent:   markdown,
		CrawledURLs:  crawled,
	}
}

func findOrganization(markup []Markup) Markup {
	for _, m := range markup {
		if m.Is("Organization", "Corporation", "LocalBusiness") {
			return m
		}
	}
	return nil
}

// BuildEntityHome merges scraped social links with the Organization sameAs list.
func BuildEntityHome(websiteURL string, social []string, markup []Markup) brand.EntityHome {
	links := append([]string{}, social...)
	seen := map[string]bool{}
	for _, l := range links {
		seen[l] = true
	}
	if org := findOrganization(markup); org != nil {
		for _, l := range stringList(org["sameAs"]) {
			if !seen[l] {
				seen[l] = true
				links = append(links, l)
			}
		}
	}
	find := func(subs ...string) string {
		for _, l := range links {
			for _, s := range subs {
				if strings.Contains(l, s) {
					return l
				}
			}
		}
		return ""
	}
	return brand.EntityHome{
		CanonicalURL:     websiteURL,
		LinkedInURL:      find("linkedin.com"),
		TwitterURL:       find("twitter.com", "x.com"),
		FacebookURL:      find("facebook.com"),
		YouTubeURL:       find("youtube.com"),
		GitHubURL:        find("github.com"),
		InstagramURL:     find("instagram.com"),
		CrunchbaseURL:    find("crunchbase.com"),
		WikipediaURL:     find("wikipedia.org"),
		WikidataVerified: false,
		SchemaValidated:  len(markup) > 0,
		SocialConsistent: len(links) > 0,
		AlternateNames:   jsonx.Encode([]string{}),
		FormerNames:      jsonx.Encode([]string{}),
	}
}

// BuildOrganizationSchema prefers Organization markup and falls back to page meta.
func BuildOrganizationSchema(markup []Markup, meta Meta) brand.OrganizationSchema {
	org := findOrganization(markup)
	if org == nil {
		name := firstNonEmpty(meta.OGSiteName, meta.OGTitle, meta.Title)
		return brand.OrganizationSchema{
			SchemaType:  "Organization",
			Name:        name,
			LegalName:   name,
			Description: firstNonEmpty(meta.OGDescription, meta.Description),
			Founders:    jsonx.Encode([]brand.Founder{}),
			Awards:      jsonx.Encode([]string{}),
		}
	}

	founders := []brand.Founder{}
	var rawFounders []any
	switch f := org["founder"].(type) {
	case []any:
		rawFounders = f
	case nil:
	default:
		rawFounders = []any{f}
	}
	for _, f := range rawFounders {
		switch v := f.(type) {
		case string:
			founders = append(founders, brand.Founder{Name: v})
		case map[string]any:
			name, _ := v["name"].(string)
			if name == "" {
				name = "Unknown"
			}
			u, _ := v["url"].(string)
			founders = append(founders, brand.Founder{Name: name, URL: u})
		}
	}

	types := org.Types()
	schemaType := "Organization"
	if len(types) > 0 {
		schemaType = types[0]
	}
	out := brand.OrganizationSchema{
		SchemaType:        schemaType,
		LegalName:         firstNonEmpty(org.String("legalName"), org.String("name")),
		Name:              org.String("name"),
		AlternateName:     org.String("alternateName"),
		Description:       firstNonEmpty(org.String("description"), meta.Description),
		Slogan:            org.String("slogan"),
		FoundingDate:      parseFoundingDate(org.String("foundingDate")),
		FoundingLocation:  placeName(org["foundingLocation"]),
		Founders:          jsonx.Encode(founders),
		NumberOfEmployees: employees(org["numberOfEmployees"]),
		Awards:            jsonx.Encode(stringList(org["award"])),
	}
	if addr, ok := org["address"]; ok && addr != nil {
		out.Address = jsonx.Encode(addr)
	}
	if raw, err := json.Marshal(org); err == nil {
		out.JSONLD = raw
	}
	return out
}

func parseFoundingDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func placeName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["name"].(string); ok {
			return s
		}
	}
	return ""
}

func employees(v any) string {
	switch t := v.(type) {
	case map[string]any:
		switch val := t["value"].(type) {
		case string:
			return val
		case float64:
			return fmt.Sprintf("%.0f", val)
		}
	case string:
		return t
	}
	return ""
}

func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if t != "" {
			out = append(out, t)
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
