// Package product extracts a brand's products, pricing tiers and category tree
// from crawled content.
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/clients/firecrawl"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/llmschema"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai"
)

const (
	Source = "product_extractor_agent"

	productsSchemaName = "product_extraction"
	pricingSchemaName  = "product_pricing"

	defaultMaxProducts = 50
	maxProductPages    = 20
	maxCrawledPages    = 10
	productConfidence  = 0.75
)

// Scraper is the single-page fetch used by CrawlProductPages.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string, formats []string) (*firecrawl.Page, error)
}

type Options struct {
	MaxProducts int
	SkipPricing bool
	Progress    agent.ProgressFunc
}

type Output struct {
	Products        []brand.Product         `json:"products"`
	Categories      []brand.ProductCategory `json:"categories"`
	ProductPageURLs []string                `json:"productPageUrls"`
	ProductsFound   int                     `json:"productsFound"`
	PagesProcessed  int                     `json:"pagesProcessed,omitempty"`
}

type productOut struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Category         string   `json:"category"`
	Subcategory      string   `json:"subcategory"`
	Features         []string `json:"features"`
	Benefits         []string `json:"benefits"`
	UseCases         []string `json:"useCases"`
	TargetAudience   string   `json:"targetAudience"`
	PricingModel     string   `json:"pricingModel" jsonschema:"enum=free,enum=freemium,enum=subscription,enum=one_time,enum=usage_based,enum=enterprise,enum=contact_sales"`
}

type productsOut struct {
	Products []productOut `json:"products"`
}

type tierOut struct {
	Name          string   `json:"name"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency"`
	BillingPeriod string   `json:"billingPeriod" jsonschema:"enum=monthly,enum=annual,enum=one_time"`
	Features      []string `json:"features"`
}

type productPricingOut struct {
	ProductName string    `json:"productName"`
	Tiers       []tierOut `json:"tiers"`
}

type pricingOut struct {
	Pricing []productPricingOut `json:"pricing"`
}

var (
	productsSchema = llmschema.MustGenerate[productsOut]()
	pricingSchema  = llmschema.MustGenerate[pricingOut]()
)

// item is a product on its way through enrichment.
type item struct {
	brand.Product
	tiers []brand.PricingTier
}

type Agent struct {
	log     *logger.Logger
	llm     openai.Client
	scraper Scraper
	now     func() time.Time
}

func New(log *logger.Logger, llm openai.Client, scraper Scraper) *Agent {
	return &Agent{log: log.With("agent", "ProductExtractorAgent"), llm: llm, scraper: scraper, now: time.Now}
}

// Extract runs page discovery, LLM extraction, pricing enrichment, categorisation,
// dedupe and schema generation over the site content. Extraction errors degrade
// to an empty product list.
func (a *Agent) Extract(ctx context.Context, websiteURL, content, brandName string, opts Options) agent.Result[Output] {
	start := time.Now()
	p := opts.Progress

	p.Report("products", 0, "Discovering product pages...")
	pages := DiscoverProductPages(websiteURL, content)
	p.Report("products", 20, fmt.Sprintf("Found %d potential product pages", len(pages)))

	items := a.extractFromContent(ctx, content, brandName, opts.MaxProducts)
	p.Report("products", 50, "Extracting pricing information...")

	if !opts.SkipPricing {
		items = a.enrichWithPricing(ctx, items, content)
	}
	p.Report("products", 70, "Categorizing products...")
	categories := buildCategories(items)

	p.Report("products", 85, "Deduplicating and enriching...")
	items = dedupe(items)
	products := a.finish(items, brandName)
	p.Report("products", 100, "Product extraction complete")

	conf := 0.4
	if len(products) > 0 {
		conf = 0.8
	}
	return agent.OK(Output{
		Products:        products,
		Categories:      categories,
		ProductPageURLs: pages,
		ProductsFound:   len(products),
	}, conf, Source, start)
}

// CrawlProductPages scrapes up to ten product pages and extracts at most five
// products from each. A page that fails to scrape is skipped.
func (a *Agent) CrawlProductPages(ctx context.Context, urls []string, brandName string, opts Options) agent.Result[Output] {
	start := time.Now()
	limit := len(urls)
	if limit > maxCrawledPages {
		limit = maxCrawledPages
	}
	var all []item
	for i := 0; i < limit; i++ {
		u := urls[i]
		opts.Progress.Report("products", i*100/limit, "Crawling "+u+"...")
		page, err := a.scraper.Scrape(ctx, u, []string{"markdown"})
		if err != nil || page == nil || page.Markdown == "" {
			if err != nil {
				a.log.Warn("Product page scrape failed", "url", u, "error", err)
			}
			continue
		}
		found := a.extractFromContent(ctx, page.Markdown, brandName, 5)
		for j := range found {
			found[j].SourceURL = u
		}
		all = append(all, found...)
	}
	all = dedupe(all)
	categories := buildCategories(all)
	products := a.finish(all, brandName)

	conf := 0.3
	if len(products) > 0 {
		conf = 0.85
	}
	return agent.OK(Output{
		Products:        products,
		Categories:      categories,
		ProductPageURLs: urls,
		ProductsFound:   len(products),
		PagesProcessed:  limit,
	}, conf, Source, start)
}

func (a *Agent) extractFromContent(ctx context.Context, content, brandName string, maxProducts int) []item {
	if maxProducts <= 0 {
		maxProducts = defaultMaxProducts
	}
	system := fmt.Sprintf(`You extract product and service information from website content.
List every product, service or solution that %s clearly offers. For each give the name, a one to three sentence description, a one-line shortDescription, a primary category (for example "Software", "Consulting", "Hardware") and a subcategory, features, customer benefits, use cases, the target audience and the pricing model.
Leave out anything the company does not clearly sell.`, brandName)
	user := fmt.Sprintf("Extract all products and services from this %s website content:\n\n%s", brandName, agent.Clip(content, 50000))

	raw, err := a.llm.GenerateJSON(ctx, system, user, productsSchemaName, productsSchema,
		openai.WithModel("gpt-4o-mini"), openai.WithTemperature(0.3), openai.WithMaxOutputTokens(4000))
	if err != nil {
		a.log.Warn("Product extraction failed", "error", err)
		return []item{}
	}
	parsed, err := llmschema.Decode[productsOut](raw)
	if err != nil {
		a.log.Warn("Product extraction decode failed", "error", err)
		return []item{}
	}
	list := parsed.Products
	if len(list) > maxProducts {
		list = list[:maxProducts]
	}
	out := make([]item, 0, len(list))
	for _, p := range list {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "Unknown Product"
		}
		var audience []string
		if ta := strings.TrimSpace(p.TargetAudience); ta != "" {
			audience = []string{ta}
		}
		out = append(out, item{Product: brand.Product{
			Name:             name,
			Slug:             Slug(name),
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			Category:         strings.TrimSpace(p.Category),
			Subcategory:      strings.TrimSpace(p.Subcategory),
			Features:         jsonx.Encode(p.Features),
			Benefits:         jsonx.Encode(p.Benefits),
			UseCases:         jsonx.Encode(p.UseCases),
			TargetAudience:   jsonx.Encode(audience),
			PricingModel:     p.PricingModel,
			Confidence:       productConfidence,
		}})
	}
	return out
}

func (a *Agent) enrichWithPricing(ctx context.Context, items []item, content string) []item {
	if len(items) == 0 || !HasPricingContent(content) {
		return items
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	system := "You extract pricing information from website content. List the pricing tiers of each named product and include only prices you are confident about."
	user := fmt.Sprintf("Products: %s\n\nContent:\n%s", strings.Join(names, ", "), agent.Clip(content, 30000))
	raw, err := a.llm.GenerateJSON(ctx, system, user, pricingSchemaName, pricingSchema,
		openai.WithModel("gpt-4o-mini"), openai.WithTemperature(0.2), openai.WithMaxOutputTokens(2000))
	if err != nil {
		a.log.Warn("Pricing extraction failed", "error", err)
		return items
	}
	parsed, err := llmschema.Decode[pricingOut](raw)
	if err != nil {
		return items
	}
	byName := make(map[string][]tierOut, len(parsed.Pricing))
	for _, pp := range parsed.Pricing {
		byName[pp.ProductName] = pp.Tiers
	}
	for i := range items {
		tiers := byName[items[i].Name]
		if len(tiers) == 0 {
			continue
		}
		items[i].tiers = make([]brand.PricingTier, 0, len(tiers))
		for _, t := range tiers {
			items[i].tiers = append(items[i].tiers, brand.PricingTier{
				Name:          t.Name,
				Price:         t.Price,
				Currency:      t.Currency,
				BillingPeriod: t.BillingPeriod,
				Features:      t.Features,
			})
		}
	}
	return items
}

func (a *Agent) finish(items []item, brandName string) []brand.Product {
	out := make([]brand.Product, 0, len(items))
	for _, it := range items {
		p := it.Product
		if it.tiers != nil {
			p.PricingTiers = jsonx.Encode(it.tiers)
		} else {
			p.PricingTiers = jsonx.Encode([]brand.PricingTier{})
		}
		p.SchemaJSON = jsonx.Encode(ProductSchema(it.Product, it.tiers, brandName, a.now()))
		out = append(out, p)
	}
	return out
}
