// Package audience extracts target-audience facts, customer personas and
// market positioning from a brand's key site pages.
package audience

import (
	"context"
	"errors"
	"fmt"
	"math"
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
	Source = "audience_positioning_agent"

	audienceSchemaName    = "target_audience"
	personasSchemaName    = "customer_personas"
	positioningSchemaName = "market_positioning"

	defaultMaxPersonas = 4
	defaultPageTimeout = 15 * time.Second
)

var ErrNoContent = errors.New("No content found on website")

// Fetcher is the scrape call used for the candidate pages.
type Fetcher interface {
	Scrape(ctx context.Context, pageURL string, formats []string) (*firecrawl.Page, error)
}

// Context carries facts from earlier discovery stages into the prompts.
type Context struct {
	Products    []string
	Competitors []string
	BrandValues []string
}

type Options struct {
	SkipAudience    bool
	SkipPersonas    bool
	SkipPositioning bool
	MaxPersonas     int
	PageTimeout     time.Duration
	Progress        agent.ProgressFunc
}

type Output struct {
	Audience    brand.TargetAudience    `json:"targetAudience"`
	Personas    []brand.CustomerPersona `json:"personas"`
	Positioning brand.MarketPositioning `json:"positioning"`
	Pages       []string                `json:"pages"`
	Confidence  float64                 `json:"confidence"`
}

type Agent struct {
	log     *logger.Logger
	llm     openai.Client
	fetcher Fetcher
}

func New(log *logger.Logger, llm openai.Client, fetcher Fetcher) *Agent {
	return &Agent{log: log.With("agent", "AudiencePositioningAgent"), llm: llm, fetcher: fetcher}
}

// Extract crawls the candidate pages, then runs the audience, persona and
// positioning calls in that order. Each step can be skipped through Options.
func (a *Agent) Extract(ctx context.Context, websiteURL, brandName string, known Context, opts Options) agent.Result[Output] {
	start := time.Now()
	p := opts.Progress
	if opts.MaxPersonas <= 0 {
		opts.MaxPersonas = defaultMaxPersonas
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = defaultPageTimeout
	}

	p.Report("crawling", 0, "Crawling audience-relevant pages...")
	pages := a.crawlPages(ctx, websiteURL, opts.PageTimeout)
	a.log.Info("Audience pages crawled", "brand", brandName, "pages", len(pages))
	if len(pages) == 0 {
		return agent.Fail[Output](Source, start, ErrNoContent)
	}

	p.Report("extracting_audience", 25, "Extracting target audience...")
	aud := defaultAudience()
	if !opts.SkipAudience {
		var err error
		if aud, err = a.extractAudience(ctx, pages, brandName, known); err != nil {
			return agent.Fail[Output](Source, start, err)
		}
	}

	p.Report("generating_personas", 50, "Generating customer personas...")
	personas := []brand.CustomerPersona{}
	if !opts.SkipPersonas {
		var err error
		if personas, err = a.generatePersonas(ctx, pages, brandName, aud, known, opts.MaxPersonas); err != nil {
			return agent.Fail[Output](Source, start, err)
		}
	}

	p.Report("extracting_positioning", 75, "Extracting market positioning...")
	pos := defaultPositioning()
	if !opts.SkipPositioning {
		var err error
		if pos, err = a.extractPositioning(ctx, pages, brandName, aud, known); err != nil {
			return agent.Fail[Output](Source, start, err)
		}
	}

	conf := Confidence(aud, personas, pos)
	aud.Confidence = conf
	pos.Confidence = conf
	p.Report("complete", 100, "Extraction complete")

	urls := make([]string, 0, len(pages))
	for _, pg := range pages {
		urls = append(urls, pg.URL)
	}
	return agent.OK(Output{
		Audience:    aud,
		Personas:    personas,
		Positioning: pos,
		Pages:       urls,
		Confidence:  conf,
	}, conf, Source, start)
}

type ageRangeOut struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type audienceOut struct {
	PrimaryMarket     string       `json:"primaryMarket" jsonschema:"enum=B2B,enum=B2C,enum=B2B2C,enum=D2C"`
	GeographicFocus   []string     `json:"geographicFocus"`
	TargetIndustries  []string     `json:"targetIndustries"`
	TargetCompanySize []string     `json:"targetCompanySize"`
	TargetJobTitles   []string     `json:"targetJobTitles"`
	TargetDepartments []string     `json:"targetDepartments"`
	AgeRange          *ageRangeOut `json:"ageRange"`
	IncomeLevel       string       `json:"incomeLevel"`
}

type demographicsOut struct {
	AgeRange       string `json:"ageRange"`
	Location       string `json:"location"`
	CompanySize    string `json:"companySize"`
	Industry       string `json:"industry"`
	SeniorityLevel string `json:"seniorityLevel"`
}

type psychographicsOut struct {
	Personality  string   `json:"personality"`
	Values       []string `json:"values"`
	Motivations  []string `json:"motivations"`
	Frustrations []string `json:"frustrations"`
}

type painPointOut struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
}

type buyingOut struct {
	Role     string   `json:"role"`
	Criteria []string `json:"criteria"`
	Timeline string   `json:"timeline"`
}

type personaOut struct {
	Name               string            `json:"name"`
	Title              string            `json:"title"`
	Archetype          string            `json:"archetype"`
	Demographics       demographicsOut   `json:"demographics"`
	Psychographics     psychographicsOut `json:"psychographics"`
	PainPoints         []painPointOut    `json:"painPoints"`
	Goals              []string          `json:"goals"`
	BuyingBehavior     buyingOut         `json:"buyingBehavior"`
	InformationSources []string          `json:"informationSources"`
	CurrentSolution    string            `json:"currentSolution"`
	Objections         []string          `json:"objections"`
	KeyMessages        []string          `json:"keyMessages"`
	CommonQuestions    []string          `json:"commonQuestions"`
	Priority           int               `json:"priority"`
	Confidence         float64           `json:"confidence"`
}

type personasOut struct {
	Personas []personaOut `json:"personas"`
}

type valuePropOut struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type proofPointOut struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	MetricValue string `json:"metricValue"`
}

type positioningOut struct {
	PositioningStatement     string          `json:"positioningStatement"`
	TargetAudienceSummary    string          `json:"targetAudienceSummary"`
	CategoryDefinition       string          `json:"categoryDefinition"`
	PrimaryBenefit           string          `json:"primaryBenefit"`
	CompetitiveAlternative   string          `json:"competitiveAlternative"`
	ReasonToBelieve          string          `json:"reasonToBelieve"`
	CategoryPosition         string          `json:"categoryPosition"`
	PrimaryDifferentiator    string          `json:"primaryDifferentiator"`
	SecondaryDifferentiators []string        `json:"secondaryDifferentiators"`
	ValuePropositions        []valuePropOut  `json:"valuePropositions"`
	ElevatorPitch            string          `json:"elevatorPitch"`
	PricingPosition          string          `json:"pricingPosition"`
	BeforeState              string          `json:"beforeState"`
	AfterState               string          `json:"afterState"`
	ProofPoints              []proofPointOut `json:"proofPoints"`
}

var (
	audienceSchema    = llmschema.MustGenerate[audienceOut]()
	personasSchema    = llmschema.MustGenerate[personasOut]()
	positioningSchema = llmschema.MustGenerate[positioningOut]()
)

func (a *Agent) extractAudience(ctx context.Context, pages []Page, brandName string, known Context) (brand.TargetAudience, error) {
	system := fmt.Sprintf(`You are a market researcher. From the website content for %q, describe who the brand sells to.

Give the primary market (B2B, B2C, B2B2C or D2C), the geographic focus, target industries, target company sizes (Startup, SMB, Mid-Market, Enterprise), target job titles and departments, and for consumer brands an age range and income level.
Useful signals: phrases like "for enterprise teams" or "built for startups", customer logos and testimonials, case-study companies, pricing tiers, terminology, and "industries we serve" sections.%s`,
		brandName, knownLines(known, true, true, false))

	raw, err := a.llm.GenerateJSON(ctx, system, combine(pages, 5000, 30000),
		audienceSchemaName, audienceSchema,
		openai.WithModel("gpt-4o"), openai.WithTemperature(0.2))
	if err != nil {
		return brand.TargetAudience{}, err
	}
	out, err := llmschema.Decode[audienceOut](raw)
	if err != nil {
		a.log.Warn("Target audience decode failed", "error", err)
		return defaultAudience(), nil
	}
	geo := out.GeographicFocus
	if geo == nil {
		geo = []string{"Global"}
	}
	ta := brand.TargetAudience{
		PrimaryMarket:     orStr(out.PrimaryMarket, "B2B"),
		GeographicFocus:   jsonx.Encode(geo),
		TargetIndustries:  jsonx.Encode(out.TargetIndustries),
		TargetCompanySize: jsonx.Encode(out.TargetCompanySize),
		TargetJobTitles:   jsonx.Encode(out.TargetJobTitles),
		TargetDepartments: jsonx.Encode(out.TargetDepartments),
		IncomeLevel:       out.IncomeLevel,
	}
	if r := out.AgeRange; r != nil && (r.Min > 0 || r.Max > 0) {
		ta.AgeRange = fmt.Sprintf("%d-%d", r.Min, r.Max)
	}
	return ta, nil
}

func (a *Agent) generatePersonas(ctx context.Context, pages []Page, brandName string, aud brand.TargetAudience, known Context, limit int) ([]brand.CustomerPersona, error) {
	system := fmt.Sprintf(`You build customer personas. Using the website content for %q and the audience profile below, write %d personas.

Audience profile:
- Primary market: %s
- Industries: %s
- Company sizes: %s
- Job titles: %s%s

Each persona needs a memorable alliterative name (like "Marketing Mary"), a job title and an archetype (The Innovator, The Pragmatist, The Skeptic, The Champion), demographics, psychographics (personality, values, motivations, frustrations), three to five pain points with severity, goals, buying behavior (role, criteria, timeline), trusted information sources, the current solution, objections, key messages, and a few questions they would ask an AI assistant.
Set priority 1 for primary personas, 2 for secondary and 3 for tertiary, and a 0-1 confidence. Base every persona on evidence in the content.`,
		brandName, limit,
		aud.PrimaryMarket,
		orJoin(jsonx.Strings(aud.TargetIndustries)),
		orJoin(jsonx.Strings(aud.TargetCompanySize)),
		orJoin(jsonx.Strings(aud.TargetJobTitles)),
		knownLines(known, true, false, true))

	raw, err := a.llm.GenerateJSON(ctx, system, combine(pages, 4000, 25000),
		personasSchemaName, personasSchema,
		openai.WithModel("gpt-4o"), openai.WithTemperature(0.3))
	if err != nil {
		return nil, err
	}
	parsed, err := llmschema.Decode[personasOut](raw)
	if err != nil {
		a.log.Warn("Persona decode failed", "error", err)
		return []brand.CustomerPersona{}, nil
	}
	list := parsed.Personas
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]brand.CustomerPersona, 0, len(list))
	for _, p := range list {
		out = append(out, toPersona(p))
	}
	return out, nil
}

func toPersona(p personaOut) brand.CustomerPersona {
	priority := p.Priority
	if priority < 1 || priority > 3 {
		priority = 2
	}
	pains := make([]brand.PainPoint, 0, len(p.PainPoints))
	for _, pp := range p.PainPoints {
		if strings.TrimSpace(pp.Title) == "" {
			continue
		}
		pains = append(pains, brand.PainPoint{
			Title:       pp.Title,
			Description: pp.Description,
			Severity:    pp.Severity,
			Category:    pp.Category,
		})
	}
	return brand.CustomerPersona{
		Name:               orStr(p.Name, "Unnamed Persona"),
		Title:              p.Title,
		Archetype:          p.Archetype,
		PersonaType:        brand.PersonaTypeForPriority(priority),
		Priority:           priority,
		Demographics:       jsonx.Encode(p.Demographics),
		Personality:        p.Psychographics.Personality,
		Values:             jsonx.Encode(p.Psychographics.Values),
		Motivations:        jsonx.Encode(p.Psychographics.Motivations),
		Frustrations:       jsonx.Encode(p.Psychographics.Frustrations),
		Goals:              jsonx.Encode(p.Goals),
		BuyingRole:         p.BuyingBehavior.Role,
		BuyingCriteria:     jsonx.Encode(p.BuyingBehavior.Criteria),
		BuyingTimeline:     p.BuyingBehavior.Timeline,
		InformationSources: jsonx.Encode(p.InformationSources),
		CurrentSolution:    p.CurrentSolution,
		Objections:         jsonx.Encode(p.Objections),
		KeyMessages:        jsonx.Encode(p.KeyMessages),
		CommonQuestions:    jsonx.Encode(p.CommonQuestions),
		Confidence:         p.Confidence,
		PainPoints:         pains,
	}
}

func (a *Agent) extractPositioning(ctx context.Context, pages []Page, brandName string, aud brand.TargetAudience, known Context) (brand.MarketPositioning, error) {
	system := fmt.Sprintf(`You are a brand positioning strategist. From the website content for %q, describe the brand's market positioning.

Target market: %s%s

Extract or infer a positioning statement ("For [audience] who [need], [brand] is a [category] that [benefit] unlike [alternative] because [reason]"), a target audience summary, the category definition, the primary benefit, the competitive alternative, the reason to believe, the category position (Leader, Challenger, Niche, Disruptor), the primary and secondary differentiators, two to four value propositions with headline, description and type, an elevator pitch, the pricing position (Premium, Mid-Market, Value, Freemium), the before and after states, and proof points (statistics, awards, customer logos, testimonials) with any metric value.`,
		brandName, aud.PrimaryMarket, knownLines(known, false, true, true))

	raw, err := a.llm.GenerateJSON(ctx, system, combine(pages, 4000, 25000),
		positioningSchemaName, positioningSchema,
		openai.WithModel("gpt-4o"), openai.WithTemperature(0.2))
	if err != nil {
		return brand.MarketPositioning{}, err
	}
	out, err := llmschema.Decode[positioningOut](raw)
	if err != nil {
		a.log.Warn("Positioning decode failed", "error", err)
		return defaultPositioning(), nil
	}
	pos := brand.MarketPositioning{
		PositioningStatement:     out.PositioningStatement,
		TargetAudienceSummary:    out.TargetAudienceSummary,
		CategoryDefinition:       out.CategoryDefinition,
		PrimaryBenefit:           out.PrimaryBenefit,
		CompetitiveAlternative:   out.CompetitiveAlternative,
		ReasonToBelieve:          out.ReasonToBelieve,
		CategoryPosition:         orStr(out.CategoryPosition, "Challenger"),
		PrimaryDifferentiator:    out.PrimaryDifferentiator,
		SecondaryDifferentiators: jsonx.Encode(out.SecondaryDifferentiators),
		ElevatorPitch:            out.ElevatorPitch,
		PricingPosition:          orStr(out.PricingPosition, "Mid-Market"),
		BeforeState:              out.BeforeState,
		AfterState:               out.AfterState,
	}
	for _, vp := range out.ValuePropositions {
		if strings.TrimSpace(vp.Headline) == "" {
			continue
		}
		pos.ValuePropositions = append(pos.ValuePropositions, brand.ValueProposition{
			Headline: vp.Headline, Description: vp.Description, Type: vp.Type,
		})
	}
	for _, pp := range out.ProofPoints {
		if strings.TrimSpace(pp.Title) == "" {
			continue
		}
		pos.ProofPoints = append(pos.ProofPoints, brand.ProofPoint{
			Type: pp.Type, Title: pp.Title, MetricValue: pp.MetricValue,
		})
	}
	return pos, nil
}

// Confidence weighs audience completeness (25), persona count and average
// persona confidence (35) and positioning completeness (40), as a 0-1 value.
func Confidence(aud brand.TargetAudience, personas []brand.CustomerPersona, pos brand.MarketPositioning) float64 {
	score := 0.0
	if aud.PrimaryMarket != "" {
		score += 10
	}
	if len(jsonx.Strings(aud.GeographicFocus)) > 0 {
		score += 3
	}
	if len(jsonx.Strings(aud.TargetIndustries)) > 0 {
		score += 4
	}
	if len(jsonx.Strings(aud.TargetJobTitles)) > 0 {
		score += 4
	}
	if len(jsonx.Strings(aud.TargetCompanySize)) > 0 {
		score += 4
	}

	n := len(personas)
	if n >= 2 {
		score += 10
	}
	if n >= 3 {
		score += 5
	}
	if n >= 4 {
		score += 5
	}
	sum := 0.0
	for _, p := range personas {
		c := p.Confidence
		if c == 0 {
			c = 0.5
		}
		sum += c
	}
	score += sum / math.Max(float64(n), 1) * 15

	if pos.PositioningStatement != "" {
		score += 8
	}
	if pos.PrimaryDifferentiator != "" {
		score += 6
	}
	if len(pos.ValuePropositions) >= 2 {
		score += 8
	}
	if pos.ElevatorPitch != "" {
		score += 6
	}
	if len(pos.ProofPoints) >= 2 {
		score += 6
	}
	if pos.BeforeState != "" && pos.AfterState != "" {
		score += 6
	}
	return math.Min(score, 100) / 100
}

func defaultAudience() brand.TargetAudience {
	return brand.TargetAudience{
		PrimaryMarket:     "B2B",
		GeographicFocus:   jsonx.Encode([]string{"Global"}),
		TargetIndustries:  jsonx.Encode([]string{}),
		TargetCompanySize: jsonx.Encode([]string{}),
		TargetJobTitles:   jsonx.Encode([]string{}),
		TargetDepartments: jsonx.Encode([]string{}),
	}
}

func defaultPositioning() brand.MarketPositioning {
	return brand.MarketPositioning{
		CategoryPosition:         "Challenger",
		PricingPosition:          "Mid-Market",
		SecondaryDifferentiators: jsonx.Encode([]string{}),
	}
}

func knownLines(k Context, products, competitors, values bool) string {
	var b strings.Builder
	if products && len(k.Products) > 0 {
		b.WriteString("\nKnown products: " + strings.Join(k.Products, ", "))
	}
	if competitors && len(k.Competitors) > 0 {
		b.WriteString("\nKnown competitors: " + strings.Join(k.Competitors, ", "))
	}
	if values && len(k.BrandValues) > 0 {
		b.WriteString("\nBrand values: " + strings.Join(k.BrandValues, ", "))
	}
	return b.String()
}

func orJoin(items []string) string {
	if len(items) == 0 {
		return "Various"
	}
	return strings.Join(items, ", ")
}

func orStr(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
