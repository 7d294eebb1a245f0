package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/agents/audience"
	"github.com/yungbote/brandlens-backend/internal/agents/competitor"
	"github.com/yungbote/brandlens-backend/internal/agents/crawl"
	"github.com/yungbote/brandlens-backend/internal/agents/identity"
	"github.com/yungbote/brandlens-backend/internal/agents/product"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
)

type fakeCrawler struct {
	content string
	err     error
	calls   int
}

func (f *fakeCrawler) result() agent.Result[crawl.Output] {
	f.calls++
	if f.err != nil {
		return agent.Fail[crawl.Output](crawl.Source, time.Now(), f.err)
	}
	return agent.OK(crawl.Output{
		EntityHome: brand.EntityHome{
			CanonicalURL:    "https://acme.test",
			SchemaValidated: true,
		},
		OrgSchema: brand.OrganizationSchema{
			Name:        "Acme",
			Description: "Project management software",
		},
		RawContent:  f.content,
		CrawledURLs: []string{"https://acme.test"},
	}, 0.9, crawl.Source, time.Now())
}

func (f *fakeCrawler) Crawl(ctx context.Context, u string) agent.Result[crawl.Output] {
	return f.result()
}

func (f *fakeCrawler) CrawlMultiple(ctx context.Context, u string, n int) agent.Result[crawl.Output] {
	return f.result()
}

type fakeIdentity struct{ err error }

func (f fakeIdentity) Analyze(ctx context.Context, content, brandName string) agent.Result[identity.Output] {
	if f.err != nil {
		return agent.Fail[identity.Output]("vibe_check_agent", time.Now(), f.err)
	}
	return agent.OK(identity.Output{
		Prism: brand.BrandIdentityPrism{
			PersonalityScores: jsonx.Encode(identity.DefaultPersonality()),
			CultureValues:     jsonx.Encode([]string{"clarity"}),
		},
		Archetype: brand.BrandArchetype{PrimaryArchetype: "sage", PrimaryScore: 80},
		Voice:     brand.BrandVoiceProfile{PrimaryTone: "professional"},
	}, 0.7, "vibe_check_agent", time.Now())
}

type fakeCompetitors struct {
	category string
}

func (f *fakeCompetitors) Discover(ctx context.Context, brandName, category, content string) agent.Result[competitor.Output] {
	f.category = category
	comps := []brand.Competitor{
		{Name: "Globex", CompetitorType: "direct", ThreatLevel: "high"},
		{Name: "Initech", CompetitorType: "direct", ThreatLevel: "medium"},
		{Name: "", CompetitorType: "direct", ThreatLevel: "low"},
		{Name: "Umbrella", CompetitorType: "indirect", ThreatLevel: "low"},
	}
	return agent.OK(competitor.Output{
		Competitors:     comps,
		Differentiators: []string{"speed"},
		MarketPosition:  competitor.MarketPosition(comps),
	}, 0.75, "competitor_agent", time.Now())
}

type fakeProducts struct{}

func (fakeProducts) Extract(ctx context.Context, websiteURL, content, brandName string, opts product.Options) agent.Result[product.Output] {
	opts.Progress.Report("extracting", 50, "halfway")
	return agent.OK(product.Output{
		Products: []brand.Product{
			{Name: "Acme Boards", Slug: "acme-boards", Category: "Software"},
			{Name: "Acme Docs", Slug: "acme-docs", Category: "Software", Subcategory: "Docs"},
		},
		Categories: []brand.ProductCategory{
			{Name: "Software", Slug: "software", ProductCount: 2},
			{Name: "Docs", Slug: "docs", ParentSlug: "software", Level: 1, ProductCount: 1},
		},
		ProductsFound: 2,
	}, 0.8, "product_extractor_agent", time.Now())
}

type fakeAudience struct {
	known audience.Context
}

func (f *fakeAudience) Extract(ctx context.Context, websiteURL, brandName string, known audience.Context, opts audience.Options) agent.Result[audience.Output] {
	f.known = known
	return agent.OK(audience.Output{
		Audience: brand.TargetAudience{PrimaryMarket: "B2B"},
		Personas: []brand.CustomerPersona{{
			Name:        "Ops Olivia",
			PersonaType: brand.PersonaPrimary,
			Priority:    1,
			PainPoints:  []brand.PainPoint{{Title: "Too many tools"}},
		}},
		Positioning: brand.MarketPositioning{
			PositioningStatement: "The calm way to plan",
			CategoryPosition:     "Challenger",
			ValuePropositions:    []brand.ValueProposition{{Headline: "Ship faster"}},
		},
	}, 0.6, "audience_positioning_agent", time.Now())
}

type fakeGraph struct {
	synced int
	err    error
}

func (f *fakeGraph) Sync(ctx context.Context, profile *brand.BrandProfile, competitors []brand.Competitor) error {
	f.synced = len(competitors)
	return f.err
}

type harness struct {
	repos    *repos.Set
	crawler  *fakeCrawler
	comps    *fakeCompetitors
	audience *fakeAudience
	graph    *fakeGraph
	orch     *Orchestrator
}

func newHarness(t *testing.T, content string, identityErr error) *harness {
	t.Helper()
	log := testutil.Logger(t)
	tx := testutil.Tx(t, testutil.DB(t))
	h := &harness{
		repos:    repos.NewSet(tx, log),
		crawler:  &fakeCrawler{content: content},
		comps:    &fakeCompetitors{},
		audience: &fakeAudience{},
		graph:    &fakeGraph{err: errors.New("neo4j down")},
	}
	h.orch = New(Deps{
		Log:         log,
		Repos:       h.repos,
		Crawler:     h.crawler,
		Identity:    fakeIdentity{err: identityErr},
		Competitors: h.comps,
		Products:    fakeProducts{},
		Audience:    h.audience,
		Graph:       h.graph,
	})
	return h
}

func input(policy PersonaPolicy) Input {
	return Input{
		OrganizationID: "org-1",
		WebsiteURL:     "https://acme.test",
		BrandName:      "Acme",
		Options:        Options{PersonaPolicy: policy},
	}
}

func stageStatus(res *Result) map[string]string {
	out := map[string]string{}
	for _, s := range res.Stages {
		out[s.Name] = s.Status
	}
	return out
}

func TestRun_IdentityFailureIsIsolated(t *testing.T) {
	h := newHarness(t, "# Acme\nWe build planning tools.", errors.New("llm down"))
	ctx := context.Background()

	res, err := h.orch.Run(ctx, input(PersonaAppend), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	st := stageStatus(res)
	if st[StageVibeCheck] != "failed" {
		t.Fatalf("vibecheck status=%q", st[StageVibeCheck])
	}
	for _, name := range []string{StageCrawler, StageCompetitors, StageProducts, StageAudience} {
		if st[name] != "completed" {
			t.Fatalf("%s status=%q want completed", name, st[name])
		}
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Vibe Check Agent: llm down" {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := Discoveries{
		EntityHome:         true,
		OrganizationSchema: true,
		Competitors:        3,
		Products:           2,
		Personas:           1,
		TargetAudience:     true,
		Positioning:        true,
	}
	if res.Discoveries != want {
		t.Fatalf("discoveries=%+v want %+v", res.Discoveries, want)
	}
	// entity home 10, org schema 5, competitors 9, personas 5, products 2
	if res.CompletionScore != 31 {
		t.Fatalf("CompletionScore=%d want 31", res.CompletionScore)
	}
	// canonical 20, schema validation 20
	if res.EntityHealthScore != 40 {
		t.Fatalf("EntityHealthScore=%d want 40", res.EntityHealthScore)
	}
	if h.comps.category != "Project management software" {
		t.Fatalf("competitor category=%q", h.comps.category)
	}
	if h.graph.synced != 3 {
		t.Fatalf("graph sync saw %d competitors", h.graph.synced)
	}
	if len(h.audience.known.Products) != 2 || len(h.audience.known.Competitors) != 3 {
		t.Fatalf("audience context not threaded: %+v", h.audience.known)
	}

	profile, err := h.repos.Profiles.GetByID(dbctx.Context{Ctx: ctx}, res.ProfileID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if profile.CompletionScore != 31 || profile.EntityHealthScore != 40 || profile.LastAgentCrawlAt == nil {
		t.Fatalf("profile scores not persisted: %+v", profile)
	}
}

func TestRun_CompetitorsReplacedPersonasAppended(t *testing.T) {
	h := newHarness(t, "# Acme", nil)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	first, err := h.orch.Run(ctx, input(PersonaAppend), nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := h.orch.Run(ctx, input(PersonaAppend), nil); err != nil {
		t.Fatalf("second run: %v", err)
	}

	comps, err := h.repos.Competitors.ListByProfile(dbc, first.ProfileID)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(comps) != 3 {
		t.Fatalf("competitors=%d want 3 after two runs", len(comps))
	}
	personas, err := h.repos.Personas.ListByProfile(dbc, first.ProfileID)
	if err != nil {
		t.Fatalf("ListByProfile personas: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("personas=%d want 2 after two appending runs", len(personas))
	}
	products, err := h.repos.Products.ListByProfile(dbc, first.ProfileID)
	if err != nil {
		t.Fatalf("ListByProfile products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("products=%d want 2 (upserted by slug)", len(products))
	}

	if _, err := h.orch.Run(ctx, input(PersonaReplace), nil); err != nil {
		t.Fatalf("replace run: %v", err)
	}
	personas, err = h.repos.Personas.ListByProfile(dbc, first.ProfileID)
	if err != nil {
		t.Fatalf("ListByProfile personas: %v", err)
	}
	if len(personas) != 1 {
		t.Fatalf("personas=%d want 1 after replacing run", len(personas))
	}
}

func TestRun_EmptyContentSkipsWithErrors(t *testing.T) {
	h := newHarness(t, "", nil)
	res, err := h.orch.Run(context.Background(), input(PersonaAppend), nil)
	if err != nil {
		t.Fatalf("Run must not fail on empty content: %v", err)
	}
	if res.Discoveries.EntityHome {
		t.Fatalf("entity home should not be recorded without content")
	}
	if res.CompletionScore != 0 || res.EntityHealthScore != 0 {
		t.Fatalf("scores=%d/%d want 0/0", res.CompletionScore, res.EntityHealthScore)
	}
	if len(res.Errors) != 5 {
		t.Fatalf("expected crawler error plus four skip errors, got %v", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[0], "Crawler Agent: no content") {
		t.Fatalf("first error=%q", res.Errors[0])
	}
	st := stageStatus(res)
	if st[StageCrawler] != "failed" {
		t.Fatalf("unexpected stage statuses: %v", st)
	}
	if _, ok := st[StageAudience]; ok {
		t.Fatalf("skipped stage should be left out: %v", st)
	}
}

func TestRun_OptionSkipsAreSilent(t *testing.T) {
	h := newHarness(t, "# Acme", nil)
	in := input(PersonaAppend)
	in.Options.SkipProducts = true
	in.Options.SkipAudience = true
	res, err := h.orch.Run(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("option skips should not produce errors: %v", res.Errors)
	}
	st := stageStatus(res)
	for _, name := range []string{StageProducts, StageAudience} {
		if _, ok := st[name]; ok {
			t.Fatalf("skipped stage %s should be left out: %v", name, st)
		}
	}
	if st[StageCrawler] != "completed" {
		t.Fatalf("unexpected stage statuses: %v", st)
	}
	if res.Discoveries.Products != 0 || res.Discoveries.Personas != 0 {
		t.Fatalf("skipped stages wrote data: %+v", res.Discoveries)
	}
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	h := newHarness(t, "# Acme", nil)
	var rec progress.Recorder
	if _, err := h.orch.Run(context.Background(), input(PersonaAppend), &rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	pcts := rec.Percents()
	if len(pcts) == 0 || pcts[0] != 0 || pcts[len(pcts)-1] != 100 {
		t.Fatalf("unexpected progress: %v", pcts)
	}
	for i := 1; i < len(pcts); i++ {
		if pcts[i] < pcts[i-1] {
			t.Fatalf("progress went backwards: %v", pcts)
		}
	}
}

func TestRun_RequiresWebsite(t *testing.T) {
	h := newHarness(t, "# Acme", nil)
	in := input(PersonaAppend)
	in.WebsiteURL = " "
	if _, err := h.orch.Run(context.Background(), in, nil); !errors.Is(err, errs.ErrNoUsableInput) {
		t.Fatalf("expected ErrNoUsableInput, got %v", err)
	}
	if h.crawler.calls != 0 {
		t.Fatalf("crawler should not run")
	}
}

func TestParsePersonaPolicy(t *testing.T) {
	if ParsePersonaPolicy("REPLACE") != PersonaReplace {
		t.Fatalf("replace not parsed")
	}
	if ParsePersonaPolicy("") != PersonaAppend || ParsePersonaPolicy("bogus") != PersonaAppend {
		t.Fatalf("append should be the default")
	}
}
