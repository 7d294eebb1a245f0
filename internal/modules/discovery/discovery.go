package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/agents/audience"
	"github.com/yungbote/brandlens-backend/internal/agents/competitor"
	"github.com/yungbote/brandlens-backend/internal/agents/crawl"
	"github.com/yungbote/brandlens-backend/internal/agents/identity"
	"github.com/yungbote/brandlens-backend/internal/agents/product"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/jobs/orchestrator"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const (
	StageCrawler     = "crawler"
	StageVibeCheck   = "vibecheck"
	StageCompetitors = "competitors"
	StageProducts    = "products"
	StageAudience    = "audience"
)

// PersonaPolicy decides what a run does with personas from earlier runs.
type PersonaPolicy string

const (
	// PersonaAppend keeps earlier personas and adds the new ones.
	PersonaAppend PersonaPolicy = "append"
	// PersonaReplace deletes earlier personas before inserting.
	PersonaReplace PersonaPolicy = "replace"
)

func ParsePersonaPolicy(s string) PersonaPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(PersonaReplace)) {
		return PersonaReplace
	}
	return PersonaAppend
}

type Crawler interface {
	Crawl(ctx context.Context, websiteURL string) agent.Result[crawl.Output]
	CrawlMultiple(ctx context.Context, websiteURL string, maxPages int) agent.Result[crawl.Output]
}

type IdentityAnalyzer interface {
	Analyze(ctx context.Context, content, brandName string) agent.Result[identity.Output]
}

type CompetitorFinder interface {
	Discover(ctx context.Context, brandName, category, content string) agent.Result[competitor.Output]
}

type ProductExtractor interface {
	Extract(ctx context.Context, websiteURL, content, brandName string, opts product.Options) agent.Result[product.Output]
}

type AudienceExtractor interface {
	Extract(ctx context.Context, websiteURL, brandName string, known audience.Context, opts audience.Options) agent.Result[audience.Output]
}

// GraphSyncer mirrors a profile's competitors into an external graph.
type GraphSyncer interface {
	Sync(ctx context.Context, profile *brand.BrandProfile, competitors []brand.Competitor) error
}

type Options struct {
	SkipCrawler     bool `json:"skipCrawler" yaml:"skip_crawler"`
	SkipVibeCheck   bool `json:"skipVibeCheck" yaml:"skip_vibe_check"`
	SkipCompetitors bool `json:"skipCompetitors" yaml:"skip_competitors"`
	SkipProducts    bool `json:"skipProducts" yaml:"skip_products"`
	SkipAudience    bool `json:"skipAudience" yaml:"skip_audience"`

	// Parts of the audience stage.
	SkipTargetAudience bool `json:"skipTargetAudience" yaml:"skip_target_audience"`
	SkipPersonas       bool `json:"skipPersonas" yaml:"skip_personas"`
	SkipPositioning    bool `json:"skipPositioning" yaml:"skip_positioning"`

	MaxPages      int           `json:"maxPages" yaml:"max_pages"`
	MaxProducts   int           `json:"maxProducts" yaml:"max_products"`
	MaxPersonas   int           `json:"maxPersonas" yaml:"max_personas"`
	PersonaPolicy PersonaPolicy `json:"personaPolicy" yaml:"persona_policy"`
}

type Input struct {
	OrganizationID string  `json:"organizationId"`
	WebsiteURL     string  `json:"websiteUrl"`
	BrandName      string  `json:"brandName"`
	Options        Options `json:"options"`
}

type Discoveries struct {
	EntityHome         bool `json:"entityHome"`
	OrganizationSchema bool `json:"organizationSchema"`
	BrandIdentity      bool `json:"brandIdentity"`
	Competitors        int  `json:"competitors"`
	Products           int  `json:"products"`
	Personas           int  `json:"personas"`
	TargetAudience     bool `json:"targetAudience"`
	Positioning        bool `json:"positioning"`
}

type StageResult struct {
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence,omitempty"`
	DurationMs int64    `json:"duration,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type Result struct {
	ProfileID         uuid.UUID     `json:"profileId"`
	CompletionScore   int           `json:"completionScore"`
	EntityHealthScore int           `json:"entityHealthScore"`
	Discoveries       Discoveries   `json:"discoveries"`
	Stages            []StageResult `json:"stages"`
	Errors            []string      `json:"errors"`
	TotalDurationMs   int64         `json:"totalDurationMs"`
}

type Deps struct {
	Log   *logger.Logger
	Repos *repos.Set

	Crawler     Crawler
	Identity    IdentityAnalyzer
	Competitors CompetitorFinder
	Products    ProductExtractor
	Audience    AudienceExtractor

	// Optional.
	Graph       GraphSyncer
	PageTimeout time.Duration
	Defaults    Options
}

type Orchestrator struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		deps: deps,
		log:  deps.Log.With("component", "DiscoveryOrchestrator"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one discovery run. Stage failures are recorded on the result;
// an error is returned only when there is nothing to run against.
func (o *Orchestrator) Run(ctx context.Context, in Input, rep progress.Reporter) (*Result, error) {
	start := time.Now()
	if rep == nil {
		rep = progress.Nop
	}
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	in.BrandName = strings.TrimSpace(in.BrandName)
	if in.WebsiteURL == "" && !in.Options.SkipCrawler {
		return nil, fmt.Errorf("website url: %w", errs.ErrNoUsableInput)
	}
	in.Options = o.withDefaults(in.Options)

	dbc := dbctx.Context{Ctx: ctx}
	profile, err := o.deps.Repos.Profiles.GetOrCreateByOrganization(dbc, in.OrganizationID, in.WebsiteURL, in.BrandName)
	if err != nil {
		return nil, fmt.Errorf("load brand profile: %w", err)
	}
	if in.BrandName == "" {
		in.BrandName = profile.BrandName
	}

	r := &run{o: o, in: in, profile: profile, rep: rep, errors: []string{}}
	engine := orchestrator.NewEngine(o.log, rep)
	engine.SpanName = "discovery"
	st, _ := engine.Run(ctx, r.stages(), orchestrator.NewState())

	res := &Result{
		ProfileID:   profile.ID,
		Discoveries: r.disc,
		Stages:      stageResults(st),
		Errors:      r.errors,
	}
	r.score(ctx, res)
	res.TotalDurationMs = time.Since(start).Milliseconds()
	rep.Report("complete", 100, "Discovery complete")

	o.log.Info("Discovery finished",
		"profile_id", profile.ID,
		"completion_score", res.CompletionScore,
		"entity_health_score", res.EntityHealthScore,
		"errors", len(res.Errors),
	)
	return res, nil
}

func (o *Orchestrator) withDefaults(opts Options) Options {
	d := o.deps.Defaults
	if opts.MaxPages == 0 {
		opts.MaxPages = d.MaxPages
	}
	if opts.MaxProducts == 0 {
		opts.MaxProducts = d.MaxProducts
	}
	if opts.MaxPersonas == 0 {
		opts.MaxPersonas = d.MaxPersonas
	}
	if opts.PersonaPolicy == "" {
		opts.PersonaPolicy = d.PersonaPolicy
	}
	opts.PersonaPolicy = ParsePersonaPolicy(string(opts.PersonaPolicy))
	return opts
}

// stageResults lists the stages that ran. Skipped stages are left out; the
// reason for a content skip is already in Result.Errors.
func stageResults(st *orchestrator.State) []StageResult {
	out := []StageResult{}
	if st == nil {
		return out
	}
	for _, name := range st.Order {
		ss := st.Stages[name]
		if ss == nil {
			continue
		}
		sr := StageResult{Name: name, Error: ss.LastError}
		switch ss.Status {
		case orchestrator.StageSucceeded:
			sr.Status = "completed"
		case orchestrator.StageSkipped:
			continue
		case orchestrator.StageFailed:
			sr.Status = "failed"
		default:
			sr.Status = string(ss.Status)
		}
		if c, ok := ss.Outputs["confidence"].(float64); ok {
			sr.Confidence = &c
		}
		if d := ss.Duration(); d > 0 {
			sr.DurationMs = d.Milliseconds()
		}
		out = append(out, sr)
	}
	return out
}
