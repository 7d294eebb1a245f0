// Package promptgen renders the probe prompts a perception scan asks each
// platform. Generation is deterministic and makes no network calls.
package promptgen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

const (
	DefaultMaxPerCategory = 15
	maxReviewSites        = 5
)

type Options struct {
	Categories     []perception.Category `json:"categories"`
	MaxPerCategory int                   `json:"maxPerCategory"`
	// ReviewSites enables the review-site pass for up to five sites.
	ReviewSites []string `json:"reviewSites"`
}

type Result struct {
	Prompts               []perception.GeneratedPrompt `json:"prompts"`
	CategoryBreakdown     map[perception.Category]int  `json:"categoryBreakdown"`
	TotalGenerated        int                          `json:"totalGenerated"`
	PersonasCovered       []string                     `json:"personasCovered"`
	CompetitorsCovered    []string                     `json:"competitorsCovered"`
	ProductsCovered       []string                     `json:"productsCovered"`
	ReviewWebsitesCovered []string                     `json:"reviewWebsitesCovered"`
}

// Generate renders prompts for the requested categories. Each category is
// sorted by priority (stable) before MaxPerCategory truncates it.
func Generate(gt *brand.GroundTruth, brandName string, opts Options) (Result, error) {
	cats := opts.Categories
	if len(cats) == 0 {
		cats = perception.AllCategories
	}
	for _, c := range cats {
		if !c.Valid() {
			return Result{}, fmt.Errorf("prompt category %q: %w", c, errs.ErrInvalidArgument)
		}
	}
	limit := opts.MaxPerCategory
	if limit <= 0 {
		limit = DefaultMaxPerCategory
	}
	if strings.TrimSpace(brandName) == "" {
		brandName = gt.BrandName()
	}

	g := newGenerator(gt, brandName)
	res := Result{
		Prompts:               []perception.GeneratedPrompt{},
		CategoryBreakdown:     map[perception.Category]int{},
		PersonasCovered:       []string{},
		CompetitorsCovered:    []string{},
		ProductsCovered:       []string{},
		ReviewWebsitesCovered: []string{},
	}
	for _, c := range perception.AllCategories {
		res.CategoryBreakdown[c] = 0
	}

	for _, c := range cats {
		var ps []perception.GeneratedPrompt
		switch c {
		case perception.CategoryNavigational:
			ps = g.navigational()
		case perception.CategoryFunctional:
			ps = g.functional()
		case perception.CategoryComparative:
			ps = g.comparative()
		case perception.CategoryVoice:
			ps = g.voice()
		case perception.CategoryAdversarial:
			ps = g.adversarial()
		}
		if len(ps) > limit {
			ps = ps[:limit]
		}
		res.CategoryBreakdown[c] = len(ps)
		for _, p := range ps {
			res.PersonasCovered = addUnique(res.PersonasCovered, p.TargetPersona)
			res.CompetitorsCovered = addUnique(res.CompetitorsCovered, p.TargetCompetitor)
			res.ProductsCovered = addUnique(res.ProductsCovered, p.TargetProduct)
		}
		res.Prompts = append(res.Prompts, ps...)
	}

	if len(opts.ReviewSites) > 0 {
		ps := g.reviewSites(opts.ReviewSites)
		for _, p := range ps {
			res.ReviewWebsitesCovered = addUnique(res.ReviewWebsitesCovered, p.TargetReviewWebsite)
		}
		res.Prompts = append(res.Prompts, ps...)
	}

	res.TotalGenerated = len(res.Prompts)
	return res, nil
}

type personaFacts struct {
	name        string
	kind        string
	description string
	painPoints  []string
	goals       []string
	questions   []string
	objections  []string
}

type productFacts struct {
	name     string
	category string
	features []string
	benefits []string
	useCases []string
	hero     bool
}

type generator struct {
	brandName string
	industry  string

	primaryArchetype   string
	secondaryArchetype string
	tone               string
	vocabulary         string

	personas       []personaFacts
	products       []productFacts
	competitors    []brand.Competitor
	claims         []string
	misconceptions []string
	negatives      []string
}

func newGenerator(gt *brand.GroundTruth, brandName string) *generator {
	g := &generator{brandName: brandName, industry: "technology"}
	if gt == nil {
		return g
	}
	if s := strings.TrimSpace(gt.Profile.Industry); s != "" {
		g.industry = s
	}
	if a := gt.Archetype; a != nil {
		g.primaryArchetype = a.PrimaryArchetype
		g.secondaryArchetype = a.SecondaryArchetype
	}
	if v := gt.Voice; v != nil {
		g.tone = v.PrimaryTone
		g.vocabulary = v.VocabularyLevel
	}
	for _, p := range gt.Personas {
		pf := personaFacts{
			name:        p.Name,
			kind:        p.PersonaType,
			description: p.Description,
			goals:       jsonx.Strings(p.Goals),
			questions:   jsonx.Strings(p.CommonQuestions),
			objections:  jsonx.Strings(p.Objections),
		}
		for _, pp := range p.PainPoints {
			if t := strings.TrimSpace(pp.Title); t != "" {
				pf.painPoints = append(pf.painPoints, t)
			}
		}
		g.personas = append(g.personas, pf)
	}
	for _, p := range gt.Products {
		g.products = append(g.products, productFacts{
			name:     p.Name,
			category: p.Category,
			features: jsonx.Strings(p.Features),
			benefits: jsonx.Strings(p.Benefits),
			useCases: jsonx.Strings(p.UseCases),
			hero:     p.IsHero,
		})
	}
	g.competitors = gt.Competitors
	for _, c := range gt.Claims {
		if t := strings.TrimSpace(c.ClaimText); t != "" {
			g.claims = append(g.claims, t)
		}
	}
	if r := gt.Risk; r != nil {
		g.misconceptions = jsonx.Strings(r.CommonMisconceptions)
		g.negatives = jsonx.Strings(r.NegativeKeywords)
	}
	return g
}

// primaryProduct is the first hero product, else the first product.
func (g *generator) primaryProduct() *productFacts {
	for i := range g.products {
		if g.products[i].hero {
			return &g.products[i]
		}
	}
	if len(g.products) > 0 {
		return &g.products[0]
	}
	return nil
}

func (g *generator) productCategory() string {
	if p := g.primaryProduct(); p != nil && p.category != "" {
		return p.category
	}
	return "software"
}

func (g *generator) primaryUseCase() string {
	if p := g.primaryProduct(); p != nil && len(p.useCases) > 0 {
		return p.useCases[0]
	}
	return "business needs"
}

func (g *generator) prompt(c perception.Category, label string, t Template, rendered string) perception.GeneratedPrompt {
	return perception.GeneratedPrompt{
		Category:          c,
		CategoryLabel:     label,
		Intent:            t.Intent,
		Template:          t.Text,
		RenderedPrompt:    rendered,
		ExpectedThemes:    jsonx.Encode(t.Themes),
		ExpectedEntities:  jsonx.Encode([]string{g.brandName}),
		ExpectedCitations: t.ExpectCitations,
		AdversarialTwist:  t.Twist,
		HallucinationTest: t.HallucinationTest,
		Priority:          t.Priority,
		IsActive:          true,
	}
}

func (g *generator) navigational() []perception.GeneratedPrompt {
	c, set := perception.CategoryNavigational, navigational
	var out []perception.GeneratedPrompt

	for _, t := range set.pick(func(id string) bool {
		return !strings.Contains(id, "product") && !strings.Contains(id, "industry")
	}) {
		out = append(out, g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName})))
	}
	for _, t := range set.pick(contains("industry")) {
		out = append(out, g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "industry": g.industry})))
	}

	var use []productFacts
	for _, p := range g.products {
		if p.hero {
			use = append(use, p)
		}
	}
	if len(use) == 0 {
		use = head(g.products, 3)
	}
	for _, p := range use {
		for _, t := range set.pick(contains("product")) {
			pr := g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "productName": p.name}))
			pr.TargetProduct = p.name
			out = append(out, pr)
		}
	}
	return byPriority(out)
}

func (g *generator) functional() []perception.GeneratedPrompt {
	c, set := perception.CategoryFunctional, functional
	var out []perception.GeneratedPrompt
	category := g.productCategory()
	primary := g.primaryProduct()

	for _, p := range g.personas {
		m := multiplier(personaMultipliers, p.kind)
		add := func(t Template, rendered string) {
			pr := g.prompt(c, set.Label, t, rendered)
			pr.TargetPersona = p.name
			pr.Priority = scale(t.Priority, m)
			out = append(out, pr)
		}
		for _, pain := range head(p.painPoints, 3) {
			for _, t := range set.pick(contains("pain")) {
				add(t, render(t.Text, vars{"brandName": g.brandName, "painPoint": pain, "productCategory": category}))
			}
		}
		for _, goal := range head(p.goals, 3) {
			for _, t := range set.pick(contains("goal")) {
				add(t, render(t.Text, vars{"brandName": g.brandName, "goal": goal, "productCategory": category}))
			}
		}
		if t, ok := set.byID("func_question_1"); ok {
			for _, q := range head(p.questions, 2) {
				add(t, q)
			}
		}
		desc := p.description
		if desc == "" {
			desc = p.name
		}
		productName := g.brandName
		if primary != nil {
			productName = primary.name
		}
		for _, t := range set.pick(contains("journey")) {
			add(t, render(t.Text, vars{"brandName": g.brandName, "personaDescription": desc, "productName": productName}))
		}
	}

	var useCases []string
	for _, p := range g.products {
		for _, u := range p.useCases {
			useCases = addUnique(useCases, u)
		}
	}
	for _, u := range head(useCases, 4) {
		for _, t := range set.pick(contains("usecase")) {
			out = append(out, g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "useCase": u, "productCategory": category})))
		}
	}

	for _, p := range head(g.products, 2) {
		for _, f := range head(p.features, 2) {
			for _, t := range set.pick(contains("feature")) {
				pr := g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "productName": p.name, "feature": f}))
				pr.TargetProduct = p.name
				out = append(out, pr)
			}
		}
	}
	for _, p := range head(g.products, 2) {
		for _, b := range head(p.benefits, 2) {
			for _, t := range set.pick(contains("benefit")) {
				pr := g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "productName": p.name, "benefit": b}))
				pr.TargetProduct = p.name
				out = append(out, pr)
			}
		}
	}
	return byPriority(dedupe(out))
}

func (g *generator) comparative() []perception.GeneratedPrompt {
	c, set := perception.CategoryComparative, comparative
	var out []perception.GeneratedPrompt
	category := g.productCategory()

	sorted := append([]brand.Competitor(nil), g.competitors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return multiplier(threatMultipliers, sorted[i].ThreatLevel) > multiplier(threatMultipliers, sorted[j].ThreatLevel)
	})

	for _, comp := range head(sorted, 5) {
		m := multiplier(threatMultipliers, comp.ThreatLevel)
		add := func(t Template, v vars) {
			pr := g.prompt(c, set.Label, t, render(t.Text, v))
			pr.TargetCompetitor = comp.Name
			pr.Priority = scale(t.Priority, m)
			out = append(out, pr)
		}
		for _, t := range set.pick(func(id string) bool {
			return strings.Contains(id, "comp_") && !strings.Contains(id, "alt") && !strings.Contains(id, "claim")
		}) {
			add(t, vars{"brandName": g.brandName, "competitorName": comp.Name, "productCategory": category, "useCase": g.primaryUseCase()})
		}
		for _, t := range set.pick(contains("alt")) {
			add(t, vars{"brandName": g.brandName, "competitorName": comp.Name, "productCategory": category})
		}
	}

	rival := "competitors"
	if len(sorted) > 0 {
		rival = sorted[0].Name
	}
	for _, claim := range head(g.claims, 2) {
		for _, t := range set.pick(contains("claim")) {
			pr := g.prompt(c, set.Label, t, render(t.Text, vars{"brandName": g.brandName, "claim": claim, "productCategory": category, "competitorName": rival}))
			pr.TargetClaim = claim
			out = append(out, pr)
		}
	}
	return byPriority(dedupe(out))
}

func (g *generator) voice() []perception.GeneratedPrompt {
	c, set := perception.CategoryVoice, voice
	primary := orStr(g.primaryArchetype, "innovative")
	secondary := orStr(g.secondaryArchetype, "expert")
	vocabulary := orStr(g.vocabulary, "professional")

	var out []perception.GeneratedPrompt
	for _, t := range set.Templates {
		if t.ID == "voice_arch_3" && g.secondaryArchetype == "" {
			continue
		}
		pr := g.prompt(c, set.Label, t, render(t.Text, vars{
			"brandName":          g.brandName,
			"archetype":          primary,
			"primaryArchetype":   primary,
			"secondaryArchetype": secondary,
		}))
		pr.ExpectedTone = g.tone
		if strings.Contains(t.ID, "vocab") {
			pr.ExpectedVocabulary = vocabulary
		}
		out = append(out, pr)
	}
	return byPriority(out)
}

func (g *generator) adversarial() []perception.GeneratedPrompt {
	c, set := perception.CategoryAdversarial, adversarial
	var out []perception.GeneratedPrompt
	add := func(t Template, v vars) *perception.GeneratedPrompt {
		out = append(out, g.prompt(c, set.Label, t, render(t.Text, v)))
		return &out[len(out)-1]
	}

	for _, t := range set.pick(func(id string) bool {
		return strings.HasPrefix(id, "adv_neg_") && !strings.Contains(id, "keyword")
	}) {
		add(t, vars{"brandName": g.brandName})
	}
	for _, kw := range head(g.negatives, 3) {
		for _, t := range set.pick(contains("neg_keyword")) {
			add(t, vars{"brandName": g.brandName, "negativeKeyword": kw})
		}
	}

	var objections []string
	for _, p := range g.personas {
		for _, o := range p.objections {
			objections = addUnique(objections, o)
		}
	}
	for _, o := range head(objections, 4) {
		for _, t := range set.pick(contains("obj")) {
			add(t, vars{"brandName": g.brandName, "objection": o})
		}
	}
	for _, m := range head(g.misconceptions, 3) {
		for _, t := range set.pick(contains("misc")) {
			add(t, vars{"brandName": g.brandName, "misconception": m})
		}
	}
	for _, t := range set.pick(contains("trust")) {
		add(t, vars{"brandName": g.brandName})
	}
	for _, comp := range head(g.competitors, 2) {
		for _, t := range set.pick(contains("attack")) {
			add(t, vars{"brandName": g.brandName, "competitorName": comp.Name}).TargetCompetitor = comp.Name
		}
	}

	if t, ok := set.byID("adv_hall_1"); ok {
		for _, f := range head(TrapFeatures, 2) {
			add(t, vars{"brandName": g.brandName, "nonExistentFeature": f})
		}
	}
	if t, ok := set.byID("adv_hall_3"); ok {
		for _, a := range head(TrapAwards, 1) {
			add(t, vars{"brandName": g.brandName, "nonExistentFeature": a})
		}
	}
	return byPriority(dedupe(out))
}

// reviewSites renders the review templates for each site. These prompts keep
// the category of the set they came from but carry their own label.
func (g *generator) reviewSites(sites []string) []perception.GeneratedPrompt {
	var clean []string
	for _, s := range sites {
		clean = addUnique(clean, s)
	}
	clean = head(clean, maxReviewSites)

	rival := ""
	if len(g.competitors) > 0 {
		rival = g.competitors[0].Name
	}
	var out []perception.GeneratedPrompt
	for _, site := range clean {
		for _, t := range reviewTemplates() {
			isComp := strings.Contains(t.ID, "comp_review")
			if isComp && rival == "" {
				continue
			}
			c := perception.CategoryComparative
			switch {
			case strings.HasPrefix(t.ID, "nav_"):
				c = perception.CategoryNavigational
			case strings.HasPrefix(t.ID, "func_"):
				c = perception.CategoryFunctional
			}
			pr := g.prompt(c, reviewLabel, t, render(t.Text, vars{
				"brandName":      g.brandName,
				"reviewSite":     site,
				"competitorName": rival,
				"useCase":        g.primaryUseCase(),
			}))
			pr.TargetReviewWebsite = site
			entities := []string{g.brandName, site}
			if isComp {
				pr.TargetCompetitor = rival
				entities = append(entities, rival)
			}
			pr.ExpectedEntities = jsonx.Encode(entities)
			out = append(out, pr)
		}
	}
	return byPriority(dedupe(out))
}

type vars map[string]string

// render fills {placeholders} in one pass. Substituted values are not
// rescanned, so a claim that itself contains "{competitorName}" stays literal.
func render(text string, v vars) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", v[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func contains(sub string) func(string) bool {
	return func(id string) bool { return strings.Contains(id, sub) }
}

func scale(priority int, m float64) int {
	return int(math.Round(float64(priority) * m))
}

func byPriority(ps []perception.GeneratedPrompt) []perception.GeneratedPrompt {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Priority > ps[j].Priority })
	return ps
}

// dedupe keeps the first prompt for each rendered text.
func dedupe(ps []perception.GeneratedPrompt) []perception.GeneratedPrompt {
	seen := make(map[string]bool, len(ps))
	out := ps[:0]
	for _, p := range ps {
		if seen[p.RenderedPrompt] {
			continue
		}
		seen[p.RenderedPrompt] = true
		out = append(out, p)
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func addUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func orStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
