package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/brandlens-backend/internal/clients/firecrawl"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai/openaitest"
)

type fakeScraper struct {
	pages map[string]string
}

func (f fakeScraper) Scrape(ctx context.Context, pageURL string, formats []string) (*firecrawl.Page, error) {
	md, ok := f.pages[pageURL]
	if !ok {
		return nil, errors.New("Firecrawl error: 404")
	}
	return &firecrawl.Page{Markdown: md}, nil
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Acme Cloud Pro":   "acme-cloud-pro",
		"  --Hello, World!": "hello-world",
		"ÜberTool 2.0":     "bertool-2-0",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if Similarity("acme", "acme") != 1 {
		t.Fatalf("identical strings must score 1")
	}
	if Similarity("a", "ab") != 0 {
		t.Fatalf("single rune strings must score 0")
	}
	if got := Similarity("night", "nacht"); got != 0.25 {
		t.Fatalf("night/nacht = %v", got)
	}
}

func TestDiscoverProductPages(t *testing.T) {
	content := `<a href="/products/anvil">x</a>
<a href="https://acme.test/pricing/">p</a>
<a href="shop/plans/basic">s</a>
<a href="/about">a</a>
<a href="/products/anvil">dup</a>`
	got := DiscoverProductPages("https://acme.test/home?x=1", content)
	want := []string{
		"https://acme.test/products/anvil",
		"https://acme.test/pricing/",
		"https://acme.test/shop/plans/basic",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pages (-want +got):\n%s", diff)
	}
}

func TestHasPricingContent(t *testing.T) {
	for _, s := range []string{"only $49", "29 EUR", "starting at 10", "billed /month", "per seat"} {
		if !HasPricingContent(s) {
			t.Fatalf("expected pricing in %q", s)
		}
	}
	if HasPricingContent("we build anvils") {
		t.Fatalf("no pricing expected")
	}
}

func TestDedupe_KeepsRicherVariantInPlace(t *testing.T) {
	mk := func(name string, features ...string) item {
		return item{Product: brand.Product{Name: name, Features: jsonx.Encode(features)}}
	}
	got := dedupe([]item{mk("Acme Cloud"), mk("Other"), mk("acme cloud ", "a", "b")})
	if len(got) != 2 || got[0].Name != "acme cloud " || got[1].Name != "Other" {
		t.Fatalf("unexpected dedupe result: %+v", got)
	}
}

func TestBuildCategories(t *testing.T) {
	items := []item{
		{Product: brand.Product{Category: "Software", Subcategory: "Analytics"}},
		{Product: brand.Product{Category: "Software"}},
		{Product: brand.Product{}},
	}
	want := []brand.ProductCategory{
		{Name: "Software", Slug: "software", ProductCount: 2},
		{Name: "Analytics", Slug: "analytics", ParentSlug: "software", Level: 1, ProductCount: 1},
		{Name: "Uncategorized", Slug: "uncategorized", ProductCount: 1},
	}
	if diff := cmp.Diff(want, buildCategories(items)); diff != "" {
		t.Fatalf("categories (-want +got):\n%s", diff)
	}
}

func TestProductSchema(t *testing.T) {
	price := 19.0
	zero := 0.0
	p := brand.Product{Name: "Cloud", PricingModel: "subscription", Category: "Software", Features: jsonx.Encode([]string{"sync"})}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ProductSchema(p, []brand.PricingTier{{Name: "Free", Price: &zero}, {Name: "Pro", Price: &price}}, "Acme", now)
	if got["@type"] != "SoftwareApplication" || got["category"] != "Software" {
		t.Fatalf("schema %v", got)
	}
	offer, ok := got["offers"].(map[string]any)
	if !ok || offer["price"] != 19.0 || offer["priceCurrency"] != "USD" || offer["priceValidUntil"] != "2024-12-31" {
		t.Fatalf("offer %v", got["offers"])
	}
	if _, ok := ProductSchema(brand.Product{Name: "x"}, nil, "Acme", now)["offers"]; ok {
		t.Fatalf("no offer expected without tiers")
	}
}

func TestExtract_EnrichesPricingAndReportsProgress(t *testing.T) {
	llm := openaitest.New().
		On(productsSchemaName, map[string]any{"products": []any{
			map[string]any{"name": "Acme Cloud", "category": "Software", "features": []any{"sync"}, "pricingModel": "subscription"},
			map[string]any{"name": "", "category": "Services"},
		}}).
		On(pricingSchemaName, map[string]any{"pricing": []any{
			map[string]any{"productName": "Acme Cloud", "tiers": []any{
				map[string]any{"name": "Pro", "price": 29, "currency": "USD", "billingPeriod": "monthly", "features": []any{}},
			}},
		}})
	var pcts []int
	opts := Options{Progress: func(stage string, pct int, msg string) { pcts = append(pcts, pct) }}
	res := New(logger.Nop(), llm, nil).Extract(context.Background(), "https://acme.test", "Plans from $29/month", "Acme", opts)
	if !res.Success || res.Confidence != 0.8 {
		t.Fatalf("unexpected result %+v", res)
	}
	if diff := cmp.Diff([]int{0, 20, 50, 70, 85, 100}, pcts); diff != "" {
		t.Fatalf("progress (-want +got):\n%s", diff)
	}
	products := res.Data.Products
	if len(products) != 2 || products[1].Name != "Unknown Product" || products[1].Slug != "unknown-product" {
		t.Fatalf("products %+v", products)
	}
	tiers := jsonx.Decode[[]brand.PricingTier](products[0].PricingTiers)
	if len(tiers) != 1 || tiers[0].Price == nil || *tiers[0].Price != 29 {
		t.Fatalf("tiers %+v", tiers)
	}
	if len(res.Data.Categories) != 2 {
		t.Fatalf("categories %+v", res.Data.Categories)
	}
}

func TestExtract_NoPricingContentSkipsPricingCall(t *testing.T) {
	llm := openaitest.New().On(productsSchemaName, map[string]any{"products": []any{map[string]any{"name": "Anvil"}}})
	res := New(logger.Nop(), llm, nil).Extract(context.Background(), "https://acme.test", "we make anvils", "Acme", Options{})
	if llm.CallCount(pricingSchemaName) != 0 {
		t.Fatalf("pricing should not be requested")
	}
	if len(res.Data.Products) != 1 {
		t.Fatalf("products %+v", res.Data.Products)
	}
}

func TestExtract_LLMFailureYieldsLowConfidence(t *testing.T) {
	llm := openaitest.New().Fail(productsSchemaName, errors.New("boom"))
	res := New(logger.Nop(), llm, nil).Extract(context.Background(), "https://acme.test", "x", "Acme", Options{})
	if !res.Success || res.Confidence != 0.4 || len(res.Data.Products) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCrawlProductPages_SkipsFailedPages(t *testing.T) {
	llm := openaitest.New().On(productsSchemaName, map[string]any{"products": []any{map[string]any{"name": "Anvil"}}})
	scraper := fakeScraper{pages: map[string]string{"https://acme.test/products/anvil": "# Anvil"}}
	res := New(logger.Nop(), llm, scraper).CrawlProductPages(context.Background(),
		[]string{"https://acme.test/products/missing", "https://acme.test/products/anvil"}, "Acme", Options{})
	if !res.Success || res.Confidence != 0.85 || res.Data.PagesProcessed != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Data.Products) != 1 || res.Data.Products[0].SourceURL != "https://acme.test/products/anvil" {
		t.Fatalf("products %+v", res.Data.Products)
	}
}
