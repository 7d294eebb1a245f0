// Package competitor infers a brand's competitive set and market position.
package competitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/llmschema"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai"
)

const (
	Source     = "competitor_agent"
	confidence = 0.75

	competitorsSchemaName     = "competitor_inference"
	differentiatorsSchemaName = "competitor_differentiators"
	comparisonSchemaName      = "competitor_comparison"
)

type Output struct {
	Competitors     []brand.Competitor `json:"competitors"`
	Differentiators []string           `json:"differentiators"`
	MarketPosition  string             `json:"marketPosition"`
}

// Comparison is the brand-versus-one-competitor breakdown.
type Comparison struct {
	Similarities         []string `json:"similarities"`
	BrandAdvantages      []string `json:"brandAdvantages"`
	CompetitorAdvantages []string `json:"competitorAdvantages"`
}

type competitorOut struct {
	Name           string   `json:"name"`
	Website        string   `json:"website"`
	Description    string   `json:"description"`
	CompetitorType string   `json:"competitorType" jsonschema:"enum=direct,enum=indirect,enum=aspirational"`
	ThreatLevel    string   `json:"threatLevel" jsonschema:"enum=low,enum=medium,enum=high,enum=critical"`
	MarketPosition string   `json:"marketPosition" jsonschema:"enum=leader,enum=challenger,enum=niche,enum=emerging"`
	PricingTier    string   `json:"pricingTier" jsonschema:"enum=luxury,enum=premium,enum=mid,enum=value,enum=free"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Rationale      string   `json:"rationale"`
}

type competitorsOut struct {
	Competitors []competitorOut `json:"competitors"`
}

type differentiatorsOut struct {
	Differentiators []string `json:"differentiators"`
}

var (
	competitorsSchema     = llmschema.MustGenerate[competitorsOut]()
	differentiatorsSchema = llmschema.MustGenerate[differentiatorsOut]()
	comparisonSchema      = llmschema.MustGenerate[Comparison]()
)

type Agent struct {
	log *logger.Logger
	llm openai.Client
}

func New(log *logger.Logger, llm openai.Client) *Agent {
	return &Agent{log: log.With("agent", "CompetitorAgent"), llm: llm}
}

// Discover infers competitors, then differentiators against them, then
// classifies the market position from the competitor mix.
func (a *Agent) Discover(ctx context.Context, brandName, category, content string) agent.Result[Output] {
	start := time.Now()
	competitors, err := a.inferCompetitors(ctx, brandName, category, content)
	if err != nil {
		a.log.Warn("Competitor inference failed", "brand", brandName, "error", err)
		return agent.Fail[Output](Source, start, err)
	}
	differentiators, err := a.inferDifferentiators(ctx, brandName, competitors, content)
	if err != nil {
		a.log.Warn("Differentiator inference failed", "brand", brandName, "error", err)
		return agent.Fail[Output](Source, start, err)
	}
	out := Output{
		Competitors:     competitors,
		Differentiators: differentiators,
		MarketPosition:  MarketPosition(competitors),
	}
	return agent.OK(out, confidence, Source, start)
}

func (a *Agent) inferCompetitors(ctx context.Context, brandName, category, content string) ([]brand.Competitor, error) {
	if strings.TrimSpace(category) == "" {
		category = "general"
	}
	system := fmt.Sprintf(`You are a competitive intelligence analyst. From the website content for %q in the %q space, name the brand's likely competitors.

Name between 5 and 10 competitors and mix direct, indirect and aspirational ones. For each give the website, a short description, the competitor type, the threat level, its market position, its pricing tier, strengths, weaknesses and a rationale for why it competes. Prefer facts stated in the content and fill the rest from industry knowledge.`, brandName, category)

	raw, err := a.llm.GenerateJSON(ctx, system, agent.Clip(content, 10000),
		competitorsSchemaName, competitorsSchema,
		openai.WithModel("gpt-4o"), openai.WithTemperature(0.3))
	if err != nil {
		return nil, err
	}
	parsed, err := llmschema.Decode[competitorsOut](raw)
	if err != nil {
		return nil, err
	}
	out := make([]brand.Competitor, 0, len(parsed.Competitors))
	for _, c := range parsed.Competitors {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out = append(out, brand.Competitor{
			Name:           name,
			Website:        strings.TrimSpace(c.Website),
			Description:    c.Description,
			CompetitorType: orStr(c.CompetitorType, brand.CompetitorDirect),
			ThreatLevel:    orStr(c.ThreatLevel, brand.ThreatMedium),
			MarketPosition: c.MarketPosition,
			PricingTier:    c.PricingTier,
			Strengths:      jsonx.Encode(c.Strengths),
			Weaknesses:     jsonx.Encode(c.Weaknesses),
			Rationale:      c.Rationale,
			DiscoveredBy:   "agent",
		})
	}
	return out, nil
}

func (a *Agent) inferDifferentiators(ctx context.Context, brandName string, competitors []brand.Competitor, content string) ([]string, error) {
	if len(competitors) == 0 {
		return []string{}, nil
	}
	names := make([]string, 0, len(competitors))
	for _, c := range competitors {
		names = append(names, c.Name)
	}
	user := fmt.Sprintf("What sets %q apart from %s? Answer from this website content.\n\nContent:\n%s",
		brandName, strings.Join(names, ", "), agent.Clip(content, 5000))
	raw, err := a.llm.GenerateJSON(ctx, "", user,
		differentiatorsSchemaName, differentiatorsSchema,
		openai.WithModel("gpt-4o-mini"), openai.WithTemperature(0.3))
	if err != nil {
		return nil, err
	}
	parsed, err := llmschema.Decode[differentiatorsOut](raw)
	if err != nil {
		return nil, err
	}
	if parsed.Differentiators == nil {
		return []string{}, nil
	}
	return parsed.Differentiators, nil
}

// MarketPosition classifies the brand from its competitors' positions.
// Three or more leaders make it a challenger, four or more emerging players an
// emerging market, three or more niche players a niche. Everything else,
// including a mix of challengers, is a challenger. No competitors means emerging.
func MarketPosition(competitors []brand.Competitor) string {
	if len(competitors) == 0 {
		return brand.PositionEmerging
	}
	counts := map[string]int{}
	for _, c := range competitors {
		counts[c.MarketPosition]++
	}
	switch {
	case counts[brand.PositionLeader] >= 3:
		return brand.PositionChallenger
	case counts[brand.PositionEmerging] >= 4:
		return brand.PositionEmerging
	case counts[brand.PositionNiche] >= 3:
		return brand.PositionNiche
	default:
		return brand.PositionChallenger
	}
}

// CompareWithCompetitor asks for similarities and relative advantages. An
// empty model answer yields empty lists.
func (a *Agent) CompareWithCompetitor(ctx context.Context, brandName, content, competitorName string) (Comparison, error) {
	user := fmt.Sprintf(`Compare %q with %q using the website content below and what you know of both.
List what they have in common, where %s is stronger and where %s is stronger.

Website content for %s:
%s`, brandName, competitorName, brandName, competitorName, brandName, agent.Clip(content, 8000))
	raw, err := a.llm.GenerateJSON(ctx, "", user,
		comparisonSchemaName, comparisonSchema,
		openai.WithModel("gpt-4o-mini"), openai.WithTemperature(0.3))
	if err != nil {
		return Comparison{}, err
	}
	if len(raw) == 0 {
		return Comparison{Similarities: []string{}, BrandAdvantages: []string{}, CompetitorAdvantages: []string{}}, nil
	}
	return llmschema.Decode[Comparison](raw)
}

func orStr(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
