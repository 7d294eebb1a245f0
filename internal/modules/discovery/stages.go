package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/agents/audience"
	"github.com/yungbote/brandlens-backend/internal/agents/crawl"
	"github.com/yungbote/brandlens-backend/internal/agents/product"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/jobs/orchestrator"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
)

const (
	skippedByOption  = "disabled by options"
	skippedNoContent = "skipped: no website content"
)

var agentLabels = map[string]string{
	StageCrawler:     "Crawler Agent",
	StageVibeCheck:   "Vibe Check Agent",
	StageCompetitors: "Competitor Agent",
	StageProducts:    "Product Agent",
	StageAudience:    "Audience Agent",
}

// run holds what one discovery run has learned so far.
type run struct {
	o       *Orchestrator
	in      Input
	profile *brand.BrandProfile
	rep     progress.Reporter

	content  string
	category string
	values   []string

	competitorNames []string
	productNames    []string

	disc   Discoveries
	errors []string
}

func (r *run) errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *run) dbc(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

// agentFailed records an agent failure as "<label>: <errors>" and returns it
// as the stage error.
func (r *run) agentFailed(stage string, errs []string) error {
	msg := strings.Join(errs, ", ")
	if msg == "" {
		msg = "Unknown error"
	}
	r.errorf("%s: %s", agentLabels[stage], msg)
	return errors.New(msg)
}

// needsContent skips stages that read crawled content when there is none.
func (r *run) needsContent(stage string, disabled bool) func(*orchestrator.State) string {
	return func(*orchestrator.State) string {
		if disabled {
			return skippedByOption
		}
		if strings.TrimSpace(r.content) == "" {
			r.errorf("%s: %s", agentLabels[stage], skippedNoContent)
			return skippedNoContent
		}
		return ""
	}
}

// sub maps an agent's own 0-100 progress into the stage's slice of the run.
func (r *run) sub(stage string, from, to int) agent.ProgressFunc {
	return func(_ string, pct int, msg string) {
		r.rep.Report(stage, from+(to-from)*pct/100, msg)
	}
}

func (r *run) stages() []orchestrator.Stage {
	opts := r.in.Options
	return []orchestrator.Stage{
		{
			Name: StageCrawler, StartPct: 0, EndPct: 20,
			StartMsg: "Starting website crawl...", DoneMsg: "Website crawl complete",
			Skip: func(*orchestrator.State) string {
				if opts.SkipCrawler {
					return skippedByOption
				}
				return ""
			},
			Run: r.crawl,
		},
		{
			Name: StageVibeCheck, StartPct: 20, EndPct: 40,
			StartMsg: "Analyzing brand identity...", DoneMsg: "Brand identity analysis complete",
			Skip: r.needsContent(StageVibeCheck, opts.SkipVibeCheck),
			Run:  r.vibeCheck,
		},
		{
			Name: StageCompetitors, StartPct: 40, EndPct: 60,
			StartMsg: "Discovering competitors...", DoneMsg: "Competitor discovery complete",
			Skip: r.needsContent(StageCompetitors, opts.SkipCompetitors),
			Run:  r.competitors,
		},
		{
			Name: StageProducts, StartPct: 60, EndPct: 80,
			StartMsg: "Extracting products...", DoneMsg: "Product extraction complete",
			Skip: r.needsContent(StageProducts, opts.SkipProducts),
			Run:  r.products,
		},
		{
			Name: StageAudience, StartPct: 80, EndPct: 95,
			StartMsg: "Analyzing audience and positioning...", DoneMsg: "Audience analysis complete",
			Skip: r.needsContent(StageAudience, opts.SkipAudience),
			Run:  r.audience,
		},
	}
}

func (r *run) crawl(ctx context.Context, _ *orchestrator.State) (map[string]any, error) {
	var res agent.Result[crawl.Output]
	if r.in.Options.MaxPages > 0 {
		res = r.o.deps.Crawler.CrawlMultiple(ctx, r.in.WebsiteURL, r.in.Options.MaxPages)
	} else {
		res = r.o.deps.Crawler.Crawl(ctx, r.in.WebsiteURL)
	}
	if !res.Success {
		return nil, r.agentFailed(StageCrawler, res.Errors)
	}
	if strings.TrimSpace(res.Data.RawContent) == "" {
		return nil, r.agentFailed(StageCrawler, []string{"no content returned for " + r.in.WebsiteURL})
	}
	r.content = res.Data.RawContent
	dbc := r.dbc(ctx)

	eh := res.Data.EntityHome
	eh.ID = uuid.Nil
	eh.ProfileID = r.profile.ID
	if eh.CanonicalURL == "" {
		eh.CanonicalURL = r.in.WebsiteURL
	}
	if _, err := r.o.deps.Repos.EntityHomes.Upsert(dbc, &eh); err != nil {
		r.errorf("EntityHome save error: %v", err)
	} else {
		r.disc.EntityHome = true
	}

	org := res.Data.OrgSchema
	r.category = strings.TrimSpace(org.Description)
	if name := firstNonEmpty(org.Name, r.in.BrandName); name != "" {
		org.ID = uuid.Nil
		org.ProfileID = r.profile.ID
		org.Name = name
		org.LegalName = firstNonEmpty(org.LegalName, name)
		if _, err := r.o.deps.Repos.OrgSchemas.Upsert(dbc, &org); err != nil {
			r.errorf("OrganizationSchema save error: %v", err)
		} else {
			r.disc.OrganizationSchema = true
		}
	}
	return map[string]any{
		"confidence":   res.Confidence,
		"pages":        len(res.Data.CrawledURLs),
		"social_links": len(res.Data.SocialLinks),
	}, nil
}

func (r *run) vibeCheck(ctx context.Context, _ *orchestrator.State) (map[string]any, error) {
	res := r.o.deps.Identity.Analyze(ctx, r.content, r.in.BrandName)
	if !res.Success {
		return nil, r.agentFailed(StageVibeCheck, res.Errors)
	}
	dbc := r.dbc(ctx)
	id := r.profile.ID

	prism := res.Data.Prism
	prism.ID, prism.ProfileID = uuid.Nil, id
	if _, err := r.o.deps.Repos.Identity.UpsertPrism(dbc, &prism); err != nil {
		r.errorf("BrandIdentityPrism save error: %v", err)
	}
	r.values = jsonx.Strings(prism.CultureValues)

	arch := res.Data.Archetype
	arch.ID, arch.ProfileID = uuid.Nil, id
	if _, err := r.o.deps.Repos.Identity.UpsertArchetype(dbc, &arch); err != nil {
		r.errorf("BrandArchetype save error: %v", err)
	}

	voice := res.Data.Voice
	voice.ID, voice.ProfileID = uuid.Nil, id
	if _, err := r.o.deps.Repos.Identity.UpsertVoice(dbc, &voice); err != nil {
		r.errorf("BrandVoiceProfile save error: %v", err)
	}

	r.disc.BrandIdentity = true
	return map[string]any{
		"confidence": res.Confidence,
		"archetype":  arch.PrimaryArchetype,
	}, nil
}

func (r *run) competitors(ctx context.Context, _ *orchestrator.State) (map[string]any, error) {
	category := r.category
	if category == "" {
		category = r.in.BrandName
	}
	res := r.o.deps.Competitors.Discover(ctx, r.in.BrandName, category, r.content)
	if !res.Success {
		return nil, r.agentFailed(StageCompetitors, res.Errors)
	}
	dbc := r.dbc(ctx)
	now := r.o.now()

	graph, err := r.o.deps.Repos.Competitors.UpsertGraph(dbc, &brand.CompetitorGraph{
		ProfileID:       r.profile.ID,
		MarketPosition:  res.Data.MarketPosition,
		Differentiators: jsonx.Encode(res.Data.Differentiators),
		DiscoverySource: "agent",
		LastCrawled:     &now,
	})
	if err != nil {
		r.errorf("CompetitorGraph save error: %v", err)
		return map[string]any{"confidence": res.Confidence}, nil
	}

	rows := make([]*brand.Competitor, 0, len(res.Data.Competitors))
	for _, c := range res.Data.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		c.ID = uuid.Nil
		c.DiscoveredBy = "agent"
		row := c
		rows = append(rows, &row)
	}
	saved, err := r.o.deps.Repos.Competitors.ReplaceCompetitors(dbc, graph.ID, rows)
	if err != nil {
		r.errorf("CompetitorGraph save error: %v", err)
		return map[string]any{"confidence": res.Confidence}, nil
	}
	r.disc.Competitors = len(saved)

	synced := make([]brand.Competitor, 0, len(saved))
	for _, c := range saved {
		r.competitorNames = append(r.competitorNames, c.Name)
		synced = append(synced, *c)
	}
	if r.o.deps.Graph != nil {
		if err := r.o.deps.Graph.Sync(ctx, r.profile, synced); err != nil {
			r.o.log.Warn("Competitor graph sync failed", "profile_id", r.profile.ID, "error", err)
		}
	}
	return map[string]any{
		"confidence":      res.Confidence,
		"competitors":     len(saved),
		"market_position": res.Data.MarketPosition,
	}, nil
}

func (r *run) products(ctx context.Context, _ *orchestrator.State) (map[string]any, error) {
	res := r.o.deps.Products.Extract(ctx, r.in.WebsiteURL, r.content, r.in.BrandName, product.Options{
		MaxProducts: r.in.Options.MaxProducts,
		Progress:    r.sub(StageProducts, 60, 80),
	})
	if !res.Success {
		return nil, r.agentFailed(StageProducts, res.Errors)
	}
	dbc := r.dbc(ctx)

	categoryIDs := map[string]uuid.UUID{}
	for _, c := range res.Data.Categories {
		c.ID = uuid.Nil
		c.ProfileID = r.profile.ID
		saved, err := r.o.deps.Repos.Products.UpsertCategory(dbc, &c)
		if err != nil {
			r.errorf("ProductCategory save error: %v", err)
			continue
		}
		categoryIDs[saved.Slug] = saved.ID
	}

	count := 0
	for _, p := range res.Data.Products {
		p.ID = uuid.Nil
		p.ProfileID = r.profile.ID
		if cid, ok := categoryIDs[categorySlug(p)]; ok {
			p.CategoryID = &cid
		}
		if _, err := r.o.deps.Repos.Products.UpsertBySlug(dbc, &p); err != nil {
			r.errorf("Product save error (%s): %v", p.Name, err)
			continue
		}
		count++
		r.productNames = append(r.productNames, p.Name)
	}
	r.disc.Products = count
	return map[string]any{
		"confidence": res.Confidence,
		"products":   count,
		"categories": len(categoryIDs),
	}, nil
}

func categorySlug(p brand.Product) string {
	if p.Subcategory != "" {
		return product.Slug(p.Subcategory)
	}
	if p.Category != "" {
		return product.Slug(p.Category)
	}
	return product.Slug("Uncategorized")
}

func (r *run) audience(ctx context.Context, _ *orchestrator.State) (map[string]any, error) {
	opts := r.in.Options
	dbc := r.dbc(ctx)
	known := r.knownContext(dbc)

	res := r.o.deps.Audience.Extract(ctx, r.in.WebsiteURL, r.in.BrandName, known, audience.Options{
		SkipAudience:    opts.SkipTargetAudience,
		SkipPersonas:    opts.SkipPersonas,
		SkipPositioning: opts.SkipPositioning,
		MaxPersonas:     opts.MaxPersonas,
		PageTimeout:     r.o.deps.PageTimeout,
		Progress:        r.sub(StageAudience, 80, 95),
	})
	if !res.Success {
		return nil, r.agentFailed(StageAudience, res.Errors)
	}
	id := r.profile.ID

	if !opts.SkipTargetAudience {
		aud := res.Data.Audience
		aud.ID, aud.ProfileID = uuid.Nil, id
		if _, err := r.o.deps.Repos.Audiences.Upsert(dbc, &aud); err != nil {
			r.errorf("TargetAudience save error: %v", err)
		} else {
			r.disc.TargetAudience = true
		}
	}

	if !opts.SkipPersonas && len(res.Data.Personas) > 0 {
		rows := make([]*brand.CustomerPersona, 0, len(res.Data.Personas))
		for _, p := range res.Data.Personas {
			p.ID = uuid.Nil
			p.ProfileID = id
			for i := range p.PainPoints {
				p.PainPoints[i].ID = uuid.Nil
			}
			row := p
			rows = append(rows, &row)
		}
		var err error
		if opts.PersonaPolicy == PersonaReplace {
			_, err = r.o.deps.Repos.Personas.ReplaceAll(dbc, id, rows)
		} else {
			_, err = r.o.deps.Repos.Personas.Append(dbc, id, rows)
		}
		if err != nil {
			r.errorf("CustomerPersona save error: %v", err)
		} else {
			r.disc.Personas = len(rows)
		}
	}

	if !opts.SkipPositioning {
		pos := res.Data.Positioning
		pos.ID, pos.ProfileID = uuid.Nil, id
		if _, err := r.o.deps.Repos.Positioning.Upsert(dbc, &pos); err != nil {
			r.errorf("MarketPositioning save error: %v", err)
		} else {
			r.disc.Positioning = true
		}
	}
	return map[string]any{
		"confidence": res.Confidence,
		"personas":   r.disc.Personas,
		"pages":      len(res.Data.Pages),
	}, nil
}

// knownContext prefers facts found earlier in this run and falls back to
// what is already stored for the profile.
func (r *run) knownContext(dbc dbctx.Context) audience.Context {
	known := audience.Context{
		Products:    r.productNames,
		Competitors: r.competitorNames,
		BrandValues: r.values,
	}
	id := r.profile.ID
	if len(known.Products) == 0 {
		if rows, err := r.o.deps.Repos.Products.ListByProfile(dbc, id); err == nil {
			for _, p := range rows {
				known.Products = append(known.Products, p.Name)
			}
		}
	}
	if len(known.Competitors) == 0 {
		if rows, err := r.o.deps.Repos.Competitors.ListByProfile(dbc, id); err == nil {
			for _, c := range rows {
				known.Competitors = append(known.Competitors, c.Name)
			}
		}
	}
	if len(known.BrandValues) == 0 {
		if prism, err := r.o.deps.Repos.Identity.GetPrism(dbc, id); err == nil && prism != nil {
			known.BrandValues = jsonx.Strings(prism.CultureValues)
		}
	}
	return known
}

// score recomputes both profile scores from what is now persisted.
func (r *run) score(ctx context.Context, res *Result) {
	dbc := r.dbc(ctx)
	now := r.o.now()
	gt, err := r.o.deps.Repos.GroundTruth.Load(dbc, r.profile.ID)
	if err != nil {
		r.errorf("Scoring error: %v", err)
		res.Errors = r.errors
		return
	}
	res.CompletionScore = CompletionScore(gt)
	res.EntityHealthScore = EntityHealthScore(gt.EntityHome)
	if err := r.o.deps.Repos.Profiles.UpdateScores(dbc, r.profile.ID, res.CompletionScore, res.EntityHealthScore, now); err != nil {
		r.errorf("Score save error: %v", err)
	}
	if err := r.o.deps.Repos.Profiles.MarkCrawled(dbc, r.profile.ID, now); err != nil {
		r.errorf("Profile save error: %v", err)
	}
	res.Errors = r.errors
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
