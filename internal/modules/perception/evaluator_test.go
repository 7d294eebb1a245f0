package perception

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/openai/openaitest"
)

type stubProvider struct {
	platform string
	answer   func(prompt string) (string, error)
	calls    atomic.Int32
}

func (s *stubProvider) Platform() string { return s.platform }

func (s *stubProvider) Query(ctx context.Context, prompt string) (QueryResult, error) {
	s.calls.Add(1)
	text, err := s.answer(prompt)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Response: text, ResponseTimeMs: 12, TokensUsed: 40, Model: s.platform + "-stub"}, nil
}

func fixed(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func TestRegistry_Resolve(t *testing.T) {
	chat := &stubProvider{platform: PlatformChatGPT, answer: fixed("a")}
	gem := &stubProvider{platform: PlatformGemini, answer: fixed("b")}
	r := NewRegistry(chat, gem)

	if got := r.Resolve(PlatformChatGPT, true); got != chat {
		t.Fatalf("primary platform should never be mocked")
	}
	if got := r.Resolve(PlatformGemini, false); got != gem {
		t.Fatalf("expected real gemini provider")
	}
	if _, ok := r.Resolve(PlatformGemini, true).(*MockProvider); !ok {
		t.Fatalf("expected mock for gemini when mocking external platforms")
	}
	if _, ok := r.Resolve(PlatformClaude, false).(*MockProvider); !ok {
		t.Fatalf("expected mock for unregistered platform")
	}
	if r.IsReal(PlatformClaude) || !r.IsReal(PlatformGemini) {
		t.Fatalf("IsReal mismatch")
	}
}

func TestMockProvider_Query(t *testing.T) {
	p := NewMockProvider(PlatformClaude)
	res, err := p.Query(context.Background(), "What is the best project management tool for remote design teams?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := `[Mock Claude Response] Based on my analysis of your query "What is the best project management tool for remot...",`
	if !strings.HasPrefix(res.Response, want) {
		t.Fatalf("Response = %q", res.Response)
	}
	if res.Model != "claude-mock" {
		t.Fatalf("Model = %q", res.Model)
	}
	if res.ResponseTimeMs < 500 || res.ResponseTimeMs > 1600 {
		t.Fatalf("ResponseTimeMs = %d, want simulated 500-1500", res.ResponseTimeMs)
	}
	if !res.Simulated {
		t.Fatalf("mock answers must be marked simulated")
	}
}

func TestMockProvider_Delay(t *testing.T) {
	p := NewMockProvider(PlatformGemini)
	p.latency = func() time.Duration { return 30 * time.Millisecond }
	start := time.Now()
	res, err := p.Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if time.Since(start) >= 30*time.Millisecond || res.ResponseTimeMs < 30 {
		t.Fatalf("default mock should report latency without waiting: took %v, reported %dms", time.Since(start), res.ResponseTimeMs)
	}

	p = NewMockProvider(PlatformGemini, WithMockDelay())
	p.latency = func() time.Duration { return 30 * time.Millisecond }
	start = time.Now()
	res, err = p.Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("Query with delay: %v", err)
	}
	if took := time.Since(start); took < 30*time.Millisecond || res.ResponseTimeMs > took.Milliseconds() {
		t.Fatalf("delayed mock took %v, reported %dms", took, res.ResponseTimeMs)
	}

	p.latency = func() time.Duration { return time.Minute }
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Query(ctx, "q"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestHeuristicJudge_HallucinationTrap(t *testing.T) {
	facts := Facts{BrandName: "Acme", Competitors: []string{"Globex"}}
	pc := PromptContext{RenderedPrompt: "Does Acme offer blockchain ledger sync?", HallucinationTest: true}

	deny := HeuristicJudge{}.Evaluate(context.Background(), pc, "Acme does not offer blockchain ledger sync.", facts)
	if !deny.Success {
		t.Fatalf("expected success, got %v", deny.Errors)
	}
	if deny.Data.HallucinationScore < 90 {
		t.Fatalf("denial HallucinationScore = %v, want near 100", deny.Data.HallucinationScore)
	}
	if deny.Data.PassedTrapTest == nil || !*deny.Data.PassedTrapTest {
		t.Fatalf("expected trap passed")
	}

	affirm := HeuristicJudge{}.Evaluate(context.Background(), pc, "Yes, Acme offers blockchain ledger sync on every plan.", facts)
	if affirm.Data.HallucinationScore > 10 {
		t.Fatalf("affirmation HallucinationScore = %v, want near 0", affirm.Data.HallucinationScore)
	}
	if affirm.Data.PassedTrapTest == nil || *affirm.Data.PassedTrapTest {
		t.Fatalf("expected trap failed")
	}
	if len(affirm.Data.Hallucinations) != 1 {
		t.Fatalf("Hallucinations = %v", affirm.Data.Hallucinations)
	}
}

func TestHeuristicJudge_ShareOfVoiceAndSentiment(t *testing.T) {
	facts := Facts{BrandName: "Acme", Competitors: []string{"Globex", "Initech"}}
	res := HeuristicJudge{}.Evaluate(context.Background(), PromptContext{RenderedPrompt: "q"},
		"Globex is popular, but Acme is trusted and reliable. Acme wins.", facts)
	m := res.Data

	if m.ShareOfVoice != 67 {
		t.Fatalf("ShareOfVoice = %v, want 67", m.ShareOfVoice)
	}
	if m.BrandPosition == nil || *m.BrandPosition != 2 {
		t.Fatalf("BrandPosition = %v, want 2", m.BrandPosition)
	}
	if diff := cmp.Diff(map[string]int{"Globex": 1}, m.CompetitorPositions); diff != "" {
		t.Fatalf("CompetitorPositions mismatch (-want +got):\n%s", diff)
	}
	if m.OverallSentiment != 1 {
		t.Fatalf("OverallSentiment = %v, want 1", m.OverallSentiment)
	}
	if m.HallucinationScore != 100 {
		t.Fatalf("HallucinationScore = %v, want 100", m.HallucinationScore)
	}
}

func TestLLMJudge_DefaultsForMissingFields(t *testing.T) {
	fake := openaitest.New().On(judgeSchemaName, map[string]any{})
	j := NewLLMJudge(testutil.Logger(t), fake)

	res := j.Evaluate(context.Background(), PromptContext{RenderedPrompt: "What is Acme?"}, "Acme is a tool.", Facts{BrandName: "Acme"})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	m := res.Data
	if m.FaithfulnessScore != 50 || m.VoiceAlignmentScore != 50 || m.HallucinationScore != 100 {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if m.ShareOfVoice != 0 || m.OverallSentiment != 0 || m.BrandPosition != nil {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if res.Source != JudgeSource || res.Confidence != judgeConfidence {
		t.Fatalf("Source/Confidence = %q/%v", res.Source, res.Confidence)
	}
	if fake.CallCount(judgeSchemaName) != 1 {
		t.Fatalf("expected one judge call")
	}
	if !strings.Contains(fake.Calls[0].User, "IS HALLUCINATION TRAP: NO") {
		t.Fatalf("judge prompt missing trap flag")
	}
}

func TestLLMJudge_KeepsZeroScoresAndClamps(t *testing.T) {
	fake := openaitest.New().On(judgeSchemaName, map[string]any{
		"faithfulness": map[string]any{"score": 0, "errors": []any{"wrong founding year", " "}},
		"shareOfVoice": map[string]any{
			"score":          140,
			"brandMentioned": true,
			"brandPosition":  2,
			"competitorsMentioned": []any{
				map[string]any{"name": "Globex", "position": 1},
				map[string]any{"name": "Initech", "position": 0},
			},
		},
		"sentiment": map[string]any{
			"overall": -3,
			"aspects": map[string]any{"pricing": -0.5, "trust": 0},
		},
		"hallucination": map[string]any{"score": 0, "passedTrapTest": false, "detected": []any{"invented award"}},
	})
	j := NewLLMJudge(testutil.Logger(t), fake)

	res := j.Evaluate(context.Background(), PromptContext{RenderedPrompt: "Did Acme win?", HallucinationTest: true}, "Yes.", Facts{BrandName: "Acme"})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	m := res.Data
	if m.FaithfulnessScore != 0 || m.HallucinationScore != 0 {
		t.Fatalf("zero scores replaced by defaults: %+v", m)
	}
	if m.ShareOfVoice != 100 || m.OverallSentiment != -1 {
		t.Fatalf("scores not clamped: sov=%v sentiment=%v", m.ShareOfVoice, m.OverallSentiment)
	}
	if diff := cmp.Diff([]string{"wrong founding year"}, m.FaithfulnessErrors); diff != "" {
		t.Fatalf("FaithfulnessErrors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"Globex": 1, "Initech": 2}, m.CompetitorPositions); diff != "" {
		t.Fatalf("CompetitorPositions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]float64{"pricing": -0.5}, m.AspectSentiments); diff != "" {
		t.Fatalf("AspectSentiments mismatch (-want +got):\n%s", diff)
	}
	if m.PassedTrapTest == nil || *m.PassedTrapTest {
		t.Fatalf("PassedTrapTest = %v", m.PassedTrapTest)
	}
}

func TestLLMJudge_MalformedDimensionFallsBackToDefault(t *testing.T) {
	fake := openaitest.New().On(judgeSchemaName, map[string]any{
		"faithfulness":   "not an object",
		"shareOfVoice":   map[string]any{"score": 60, "brandMentioned": true, "brandPosition": 1},
		"sentiment":      map[string]any{"overall": "glowing"},
		"voiceAlignment": map[string]any{"score": []any{1}},
		"hallucination":  map[string]any{"score": 80},
		"keyThemes":      []any{"pricing"},
		"summary":        42,
	})
	res := NewLLMJudge(testutil.Logger(t), fake).Evaluate(context.Background(), PromptContext{RenderedPrompt: "What is Acme?"}, "Acme is a tool.", Facts{BrandName: "Acme"})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	m := res.Data
	if m.FaithfulnessScore != 50 || m.VoiceAlignmentScore != 50 || m.OverallSentiment != 0 {
		t.Fatalf("malformed dimensions should default: %+v", m)
	}
	if m.ShareOfVoice != 60 || !m.BrandMentioned || m.HallucinationScore != 80 {
		t.Fatalf("valid dimensions lost: %+v", m)
	}
	if diff := cmp.Diff([]string{"pricing"}, m.KeyThemes); diff != "" {
		t.Fatalf("KeyThemes mismatch (-want +got):\n%s", diff)
	}
	if m.Summary != "" {
		t.Fatalf("Summary = %q", m.Summary)
	}
}

func TestLLMJudge_TransportErrorFails(t *testing.T) {
	fake := openaitest.New().Fail(judgeSchemaName, errors.New("rate limited"))
	res := NewLLMJudge(testutil.Logger(t), fake).Evaluate(context.Background(), PromptContext{}, "x", Facts{})
	if res.Success || len(res.Errors) == 0 {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestEvaluator_EvaluatePrompt(t *testing.T) {
	chat := &stubProvider{platform: PlatformChatGPT, answer: fixed("Acme is trusted and reliable. Globex is popular.")}
	ev := NewEvaluator(testutil.Logger(t), NewRegistry(chat), HeuristicJudge{})
	facts := Facts{BrandName: "Acme", Competitors: []string{"Globex"}}

	got, err := ev.EvaluatePrompt(context.Background(), PromptContext{RenderedPrompt: "What is Acme?"}, PlatformChatGPT, facts, true)
	if err != nil {
		t.Fatalf("EvaluatePrompt: %v", err)
	}
	// 50*.25 + 50*.25 + 100*.15 + 50*.15 + 100*.20
	if got.OverallScore != 68 {
		t.Fatalf("OverallScore = %d, want 68", got.OverallScore)
	}
	if got.Model != "chatgpt-stub" || got.TokensUsed != 40 || got.ResponseTimeMs != 12 {
		t.Fatalf("unexpected query metadata: %+v", got)
	}

	failing := &stubProvider{platform: PlatformChatGPT, answer: func(string) (string, error) { return "", errors.New("boom") }}
	ev = NewEvaluator(testutil.Logger(t), NewRegistry(failing), HeuristicJudge{})
	if _, err := ev.EvaluatePrompt(context.Background(), PromptContext{RenderedPrompt: "q"}, PlatformChatGPT, facts, true); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestGenerateInsights_Rules(t *testing.T) {
	base := Scores{
		ByPlatform: map[string]int{"gemini": 50, "chatgpt": 60},
		ByMetric: MetricScores{
			Faithfulness:      90,
			ShareOfVoice:      70,
			Sentiment:         80,
			VoiceAlignment:    90,
			HallucinationRisk: 0,
		},
	}
	if got := GenerateInsights(nil, base); len(got) != 0 {
		t.Fatalf("healthy scores produced %d insights", len(got))
	}

	cases := []struct {
		name     string
		mutate   func(*MetricScores)
		title    string
		priority string
		current  float64
		target   float64
	}{
		{"visibility", func(m *MetricScores) { m.ShareOfVoice = 29 }, "Low AI Visibility", model.PriorityCritical, 29, 50},
		{"accuracy", func(m *MetricScores) { m.Faithfulness = 59 }, "Factual Inaccuracies Detected", model.PriorityHigh, 59, 80},
		{"hallucination", func(m *MetricScores) { m.HallucinationRisk = 21 }, "Hallucination Risk Detected", model.PriorityCritical, 21, 5},
		{"sentiment", func(m *MetricScores) { m.Sentiment = 39 }, "Negative Sentiment in AI Responses", model.PriorityHigh, 39, 70},
		{"voice", func(m *MetricScores) { m.VoiceAlignment = 49 }, "Brand Voice Misalignment", model.PriorityMedium, 49, 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s.ByMetric)
			got := GenerateInsights(nil, s)
			if len(got) != 1 {
				t.Fatalf("got %d insights, want 1", len(got))
			}
			in := got[0]
			if in.Title != tc.title || in.Priority != tc.priority {
				t.Fatalf("got %q/%q", in.Title, in.Priority)
			}
			if in.CurrentValue != tc.current || in.TargetValue != tc.target || in.Unit != "percent" {
				t.Fatalf("values = %v/%v/%q", in.CurrentValue, in.TargetValue, in.Unit)
			}
			if diff := cmp.Diff([]string{"chatgpt", "gemini"}, jsonx.Strings(in.Platforms)); diff != "" {
				t.Fatalf("Platforms mismatch (-want +got):\n%s", diff)
			}
			if in.Status != model.InsightOpen {
				t.Fatalf("Status = %q", in.Status)
			}
		})
	}
}

func TestGenerateInsights_ThresholdsAreStrict(t *testing.T) {
	s := Scores{ByMetric: MetricScores{Faithfulness: 60, ShareOfVoice: 30, Sentiment: 40, VoiceAlignment: 50, HallucinationRisk: 20}}
	if got := GenerateInsights(nil, s); len(got) != 0 {
		t.Fatalf("boundary values produced %d insights", len(got))
	}
}

func TestCompetitiveRule(t *testing.T) {
	s := Scores{ByPlatform: map[string]int{"chatgpt": 50}}
	evals := []Scored{
		scored("chatgpt", model.CategoryComparative, 0, 0, 0, 0, 0, "Globex", "Initech"),
		scored("chatgpt", model.CategoryComparative, 0, 0, 0, 0, 0, "Initech", "Globex"),
		scored("chatgpt", model.CategoryComparative, 0, 0, 0, 0, 0),
	}
	in := CompetitiveRule(evals, s)
	if in == nil {
		t.Fatalf("expected competitive insight")
	}
	if in.Title != "Competitor Dominance: Globex" {
		t.Fatalf("Title = %q", in.Title)
	}
	if in.CurrentValue != 67 || in.TargetValue != 25 {
		t.Fatalf("values = %v/%v", in.CurrentValue, in.TargetValue)
	}

	if CompetitiveRule(evals[:1], s) == nil {
		t.Fatalf("single evaluation naming a competitor should trigger")
	}
	half := []Scored{evals[0], evals[2]}
	if CompetitiveRule(half, s) != nil {
		t.Fatalf("exactly half should not trigger")
	}
}
