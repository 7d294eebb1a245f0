package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/llmschema"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai"
)

const (
	JudgeSource     = "perception_evaluator_agent"
	judgeConfidence = 0.85
	judgeSchemaName = "perception_evaluation"
	judgeModel      = "gpt-4o-mini"

	defaultFaithfulness  = 50
	defaultVoice         = 50
	defaultHallucination = 100
)

// Metrics are the five judged dimensions of one answer. HallucinationScore
// is 100 when nothing was made up.
type Metrics struct {
	FaithfulnessScore    float64            `json:"faithfulnessScore"`
	FaithfulnessErrors   []string           `json:"faithfulnessErrors"`
	ShareOfVoice         float64            `json:"shareOfVoice"`
	BrandMentioned       bool               `json:"brandMentioned"`
	BrandPosition        *int               `json:"brandPosition"`
	CompetitorsMentioned []string           `json:"competitorsMentioned"`
	CompetitorPositions  map[string]int     `json:"competitorPositions"`
	OverallSentiment     float64            `json:"overallSentiment"`
	AspectSentiments     map[string]float64 `json:"aspectSentiments"`
	VoiceAlignmentScore  float64            `json:"voiceAlignmentScore"`
	VoiceDeviations      []string           `json:"voiceDeviations"`
	HallucinationScore   float64            `json:"hallucinationScore"`
	Hallucinations       []string           `json:"hallucinations"`
	PassedTrapTest       *bool              `json:"passedTrapTest,omitempty"`
	KeyThemes            []string           `json:"keyThemes"`
	MissingInformation   []string           `json:"missingInformation"`
	Opportunities        []string           `json:"opportunities"`
	Summary              string             `json:"summary,omitempty"`
}

// PromptContext is what the judge knows about the question asked.
type PromptContext struct {
	RenderedPrompt    string
	HallucinationTest bool
	AdversarialTwist  string
	ExpectedThemes    []string
	ExpectedTone      string
}

// Judge scores one answer against the brand facts.
type Judge interface {
	Evaluate(ctx context.Context, pc PromptContext, response string, facts Facts) agent.Result[Metrics]
}

type scoreOut struct {
	Score     *float64 `json:"score"`
	Errors    []string `json:"errors"`
	Rationale string   `json:"rationale"`
}

type mentionOut struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type shareOut struct {
	Score                *float64     `json:"score"`
	BrandMentioned       bool         `json:"brandMentioned"`
	BrandPosition        *int         `json:"brandPosition" jsonschema:"minimum=0"`
	CompetitorsMentioned []mentionOut `json:"competitorsMentioned"`
	Rationale            string       `json:"rationale"`
}

type aspectsOut struct {
	Products   *float64 `json:"products"`
	Pricing    *float64 `json:"pricing"`
	Quality    *float64 `json:"quality"`
	Support    *float64 `json:"support"`
	Innovation *float64 `json:"innovation"`
	Trust      *float64 `json:"trust"`
}

type sentimentOut struct {
	Overall   *float64   `json:"overall"`
	Label     string     `json:"label" jsonschema:"enum=very_negative,enum=negative,enum=neutral,enum=positive,enum=very_positive"`
	Aspects   aspectsOut `json:"aspects"`
	Rationale string     `json:"rationale"`
}

type voiceOut struct {
	Score      *float64 `json:"score"`
	Deviations []string `json:"deviations"`
	Rationale  string   `json:"rationale"`
}

type hallucinationOut struct {
	Score          *float64 `json:"score"`
	Detected       []string `json:"detected"`
	PassedTrapTest *bool    `json:"passedTrapTest"`
	Rationale      string   `json:"rationale"`
}

type evaluationOut struct {
	Faithfulness       scoreOut         `json:"faithfulness"`
	ShareOfVoice       shareOut         `json:"shareOfVoice"`
	Sentiment          sentimentOut     `json:"sentiment"`
	VoiceAlignment     voiceOut         `json:"voiceAlignment"`
	Hallucination      hallucinationOut `json:"hallucination"`
	KeyThemes          []string         `json:"keyThemes"`
	MissingInformation []string         `json:"missingInformation"`
	Opportunities      []string         `json:"opportunities"`
	Summary            string           `json:"summary"`
}

var evaluationSchema = llmschema.MustGenerate[evaluationOut]()

const judgeSystem = "You are an expert AI response evaluator. Always respond with valid JSON only."

const judgeTemplate = `You are an expert AI response evaluator. Analyze this response comprehensively.

BRAND: {brandName}
COMPETITORS: {competitors}

GROUND TRUTH:
{groundTruth}

BRAND VOICE PROFILE:
{voiceProfile}

PROMPT:
{prompt}

RESPONSE TO EVALUATE:
---
{response}
---

IS HALLUCINATION TRAP: {isHallucinationTrap}

Score each dimension:
- faithfulness: 0-100 factual accuracy against the ground truth; list the errors.
- shareOfVoice: 0-100 prominence of the brand against the competitors; brandPosition is the order the brand is first mentioned (1 = first, 0 when absent); list each competitor with its position.
- sentiment: overall -1 to 1 toward the brand plus per-aspect values; leave an aspect at 0 when it is not discussed.
- voiceAlignment: 0-100 consistency with the brand voice profile; list deviations.
- hallucination: 100 = nothing made up, 0 = entirely made up. Hedged statements and "I don't have information about..." are not hallucinations. For a trap, passedTrapTest is true only when the response says the feature or award does not exist.
Also list key themes, missing information and opportunities, and give a 2-3 sentence summary.`

// LLMJudge scores answers with one strict-schema model call.
type LLMJudge struct {
	log *logger.Logger
	llm openai.Client
}

func NewLLMJudge(log *logger.Logger, llm openai.Client) *LLMJudge {
	return &LLMJudge{log: log.With("agent", "PerceptionEvaluator"), llm: llm}
}

func (j *LLMJudge) Evaluate(ctx context.Context, pc PromptContext, response string, facts Facts) agent.Result[Metrics] {
	start := time.Now()
	raw, err := j.llm.GenerateJSON(ctx, judgeSystem, judgePrompt(pc, response, facts),
		judgeSchemaName, evaluationSchema,
		openai.WithModel(judgeModel), openai.WithTemperature(0.1))
	if err != nil {
		j.log.Warn("Evaluation failed", "error", err)
		return agent.Fail[Metrics](JudgeSource, start, err)
	}
	parsed, bad, err := decodeEvaluation(raw)
	if err != nil {
		j.log.Warn("Evaluation output malformed", "error", err)
		return agent.Fail[Metrics](JudgeSource, start, err)
	}
	if len(bad) > 0 {
		j.log.Warn("Evaluation fields malformed; using defaults", "fields", bad)
	}
	return agent.OK(metricsFrom(parsed), judgeConfidence, JudgeSource, start)
}

// decodeEvaluation decodes each dimension on its own so one malformed
// dimension falls back to its default instead of failing the evaluation.
func decodeEvaluation(raw map[string]any) (evaluationOut, []string, error) {
	var e evaluationOut
	bad, err := llmschema.DecodeFields(raw, map[string]any{
		"faithfulness":       &e.Faithfulness,
		"shareOfVoice":       &e.ShareOfVoice,
		"sentiment":          &e.Sentiment,
		"voiceAlignment":     &e.VoiceAlignment,
		"hallucination":      &e.Hallucination,
		"keyThemes":          &e.KeyThemes,
		"missingInformation": &e.MissingInformation,
		"opportunities":      &e.Opportunities,
		"summary":            &e.Summary,
	})
	return e, bad, err
}

func judgePrompt(pc PromptContext, response string, facts Facts) string {
	competitors := strings.Join(facts.Competitors, ", ")
	if competitors == "" {
		competitors = "None specified"
	}
	trap := "NO"
	if pc.HallucinationTest {
		trap = "YES"
	}
	return strings.NewReplacer(
		"{brandName}", facts.BrandName,
		"{competitors}", competitors,
		"{groundTruth}", facts.Format(),
		"{voiceProfile}", facts.Voice.Format(),
		"{prompt}", pc.RenderedPrompt,
		"{response}", response,
		"{isHallucinationTrap}", trap,
	).Replace(judgeTemplate)
}

// metricsFrom applies the defaults for anything the judge left out:
// faithfulness and voice 50, share of voice and sentiment 0, hallucination 100.
func metricsFrom(e evaluationOut) Metrics {
	m := Metrics{
		FaithfulnessScore:   clamp(orFloat(e.Faithfulness.Score, defaultFaithfulness), 0, 100),
		FaithfulnessErrors:  nonNil(e.Faithfulness.Errors),
		ShareOfVoice:        clamp(orFloat(e.ShareOfVoice.Score, 0), 0, 100),
		BrandMentioned:      e.ShareOfVoice.BrandMentioned,
		OverallSentiment:    clamp(orFloat(e.Sentiment.Overall, 0), -1, 1),
		AspectSentiments:    map[string]float64{},
		VoiceAlignmentScore: clamp(orFloat(e.VoiceAlignment.Score, defaultVoice), 0, 100),
		VoiceDeviations:     nonNil(e.VoiceAlignment.Deviations),
		HallucinationScore:  clamp(orFloat(e.Hallucination.Score, defaultHallucination), 0, 100),
		Hallucinations:      nonNil(e.Hallucination.Detected),
		PassedTrapTest:      e.Hallucination.PassedTrapTest,
		KeyThemes:           nonNil(e.KeyThemes),
		MissingInformation:  nonNil(e.MissingInformation),
		Opportunities:       nonNil(e.Opportunities),
		Summary:             e.Summary,
	}
	if p := e.ShareOfVoice.BrandPosition; p != nil && *p > 0 {
		pos := *p
		m.BrandPosition = &pos
	}

	m.CompetitorsMentioned = []string{}
	m.CompetitorPositions = map[string]int{}
	for i, c := range e.ShareOfVoice.CompetitorsMentioned {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		m.CompetitorsMentioned = append(m.CompetitorsMentioned, name)
		pos := c.Position
		if pos <= 0 {
			pos = i + 1
		}
		m.CompetitorPositions[name] = pos
	}

	a := e.Sentiment.Aspects
	for name, v := range map[string]*float64{
		"products":   a.Products,
		"pricing":    a.Pricing,
		"quality":    a.Quality,
		"support":    a.Support,
		"innovation": a.Innovation,
		"trust":      a.Trust,
	} {
		if v != nil && *v != 0 {
			m.AspectSentiments[name] = clamp(*v, -1, 1)
		}
	}
	return m
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func nonNil(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Evaluator queries a platform and judges the answer.
type Evaluator struct {
	log      *logger.Logger
	registry *Registry
	judge    Judge
}

func NewEvaluator(log *logger.Logger, registry *Registry, judge Judge) *Evaluator {
	return &Evaluator{log: log.With("component", "PerceptionEvaluator"), registry: registry, judge: judge}
}

// Evaluation is one judged (prompt, platform) answer.
type Evaluation struct {
	Platform       string  `json:"platform"`
	Model          string  `json:"model"`
	Response       string  `json:"response"`
	ResponseTimeMs int64   `json:"responseTime"`
	TokensUsed     int     `json:"tokensUsed,omitempty"`
	Metrics        Metrics `json:"metrics"`
	OverallScore   int     `json:"overallScore"`
	Simulated      bool    `json:"simulated,omitempty"`
}

// QueryPlatform asks one platform. mock forces the stand-in for every
// platform but the primary one.
func (e *Evaluator) QueryPlatform(ctx context.Context, prompt, platform string, mock bool) (QueryResult, error) {
	return e.registry.Resolve(platform, mock).Query(ctx, prompt)
}

// EvaluatePrompt queries the platform and judges the answer. A failed query
// or a failed judgement is returned as an error.
func (e *Evaluator) EvaluatePrompt(ctx context.Context, pc PromptContext, platform string, facts Facts, mock bool) (Evaluation, error) {
	q, err := e.QueryPlatform(ctx, pc.RenderedPrompt, platform, mock)
	if err != nil {
		observability.Current().IncProviderError(platform)
		return Evaluation{}, fmt.Errorf("query %s: %w", platform, err)
	}
	res := e.judge.Evaluate(ctx, pc, q.Response, facts)
	if !res.Success {
		return Evaluation{}, fmt.Errorf("evaluation failed: %s", strings.Join(res.Errors, ", "))
	}
	return Evaluation{
		Platform:       platform,
		Model:          q.Model,
		Response:       q.Response,
		ResponseTimeMs: q.ResponseTimeMs,
		TokensUsed:     q.TokensUsed,
		Metrics:        res.Data,
		OverallScore:   CompositeScore(res.Data),
		Simulated:      q.Simulated,
	}, nil
}
