package product

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

var (
	hrefRe        = regexp.MustCompile(`(?i)href=["']([^"']+)["']`)
	productPathRe = regexp.MustCompile(`(?i)/(products?|services?|solutions?|offerings?|pricing|plans?|features?)/`)
	pricingRe     = regexp.MustCompile(`(?i)\$\d+(,\d{3})*(\.\d{2})?|\d+(,\d{3})*(\.\d{2})?\s*(USD|EUR|GBP)|(starting at|from)\s*\$?\d+|/month|/year|per\s+user|per\s+seat`)
	slugRe        = regexp.MustCompile(`[^a-z0-9]+`)
)

// DiscoverProductPages returns up to twenty absolute links from content whose
// path looks like a product, service, pricing or feature page.
func DiscoverProductPages(websiteURL, content string) []string {
	base, err := url.Parse(websiteURL)
	if err != nil || base.Host == "" {
		return []string{}
	}
	origin := base.Scheme + "://" + base.Host
	seen := map[string]bool{}
	out := []string{}
	for _, m := range hrefRe.FindAllStringSubmatch(content, -1) {
		href := m[1]
		if !productPathRe.MatchString(href) {
			continue
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			if strings.HasPrefix(href, "/") {
				full = origin + href
			} else {
				full = origin + "/" + href
			}
		}
		if seen[full] {
			continue
		}
		seen[full] = true
		out = append(out, full)
		if len(out) == maxProductPages {
			break
		}
	}
	return out
}

// HasPricingContent reports whether content mentions prices or billing units.
func HasPricingContent(content string) bool {
	return pricingRe.MatchString(content)
}

// Slug lowercases name and joins its alphanumeric runs with dashes.
func Slug(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// buildCategories derives a two-level category tree from product categories
// and subcategories, counting products per node. Order is first appearance.
func buildCategories(items []item) []brand.ProductCategory {
	index := map[string]int{}
	out := []brand.ProductCategory{}
	bump := func(c brand.ProductCategory) {
		if i, ok := index[c.Slug]; ok {
			out[i].ProductCount++
			return
		}
		c.ProductCount = 1
		index[c.Slug] = len(out)
		out = append(out, c)
	}
	for _, it := range items {
		name := it.Category
		if name == "" {
			name = "Uncategorized"
		}
		parent := Slug(name)
		bump(brand.ProductCategory{Name: name, Slug: parent, Level: 0})
		if it.Subcategory != "" {
			bump(brand.ProductCategory{Name: it.Subcategory, Slug: Slug(it.Subcategory), ParentSlug: parent, Level: 1})
		}
	}
	return out
}

// Similarity is the Dice coefficient over character bigrams.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ar, br := []rune(a), []rune(b)
	if len(ar) < 2 || len(br) < 2 {
		return 0
	}
	bigrams := func(r []rune) map[string]struct{} {
		set := make(map[string]struct{}, len(r))
		for i := 0; i < len(r)-1; i++ {
			set[string(r[i:i+2])] = struct{}{}
		}
		return set
	}
	as, bs := bigrams(ar), bigrams(br)
	matches := 0
	for g := range as {
		if _, ok := bs[g]; ok {
			matches++
		}
	}
	return float64(2*matches) / float64(len(as)+len(bs))
}

// dedupe merges near-identical names (similarity above 0.85), keeping the
// variant with more features in the first variant's position.
func dedupe(items []item) []item {
	keys := []string{}
	byKey := map[string]item{}
	for _, it := range items {
		name := strings.ToLower(strings.TrimSpace(it.Name))
		match := ""
		for _, k := range keys {
			if Similarity(k, name) > 0.85 {
				match = k
				break
			}
		}
		if match == "" {
			keys = append(keys, name)
			byKey[name] = it
			continue
		}
		if featureCount(it) > featureCount(byKey[match]) {
			byKey[match] = it
		}
	}
	out := make([]item, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

func featureCount(it item) int {
	return len(jsonx.Decode[[]string](it.Features))
}

// ProductSchema renders Schema.org markup for a product. Subscription products
// are typed SoftwareApplication. An offer is attached when a tier has a price.
func ProductSchema(p brand.Product, tiers []brand.PricingTier, brandName string, now time.Time) map[string]any {
	typ := "Product"
	if p.PricingModel == "subscription" {
		typ = "SoftwareApplication"
	}
	schema := map[string]any{
		"@context":    "https://schema.org",
		"@type":       typ,
		"name":        p.Name,
		"description": p.Description,
		"brand":       map[string]any{"@type": "Brand", "name": brandName},
	}
	if p.Category != "" {
		schema["category"] = p.Category
	}
	if features := jsonx.Decode[[]string](p.Features); len(features) > 0 {
		schema["featureList"] = features
	}
	if len(tiers) > 0 {
		tier := tiers[0]
		for _, t := range tiers {
			if t.Price != nil && *t.Price != 0 {
				tier = t
				break
			}
		}
		if tier.Price != nil && *tier.Price != 0 {
			currency := tier.Currency
			if currency == "" {
				currency = "USD"
			}
			schema["offers"] = map[string]any{
				"@type":           "Offer",
				"price":           *tier.Price,
				"priceCurrency":   currency,
				"priceValidUntil": now.UTC().AddDate(0, 0, 365).Format("2006-01-02"),
			}
		}
	}
	return schema
}
