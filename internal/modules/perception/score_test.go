package perception

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
)

func TestCompositeScore_RoundsHalfUp(t *testing.T) {
	m := Metrics{
		FaithfulnessScore:   80,
		ShareOfVoice:        60,
		OverallSentiment:    0.2,
		VoiceAlignmentScore: 70,
		HallucinationScore:  90,
	}
	if got := CompositeScore(m); got != 73 {
		t.Fatalf("CompositeScore = %d, want 73", got)
	}
}

func TestQuadrant_Boundaries(t *testing.T) {
	cases := []struct {
		vis, acc float64
		want     model.Quadrant
	}{
		{50, 70, model.QuadrantDominant},
		{49.9, 70, model.QuadrantNiche},
		{50, 69.9, model.QuadrantVulnerable},
		{0, 0, model.QuadrantInvisible},
		{100, 100, model.QuadrantDominant},
	}
	for _, tc := range cases {
		if got := Quadrant(tc.vis, tc.acc); got != tc.want {
			t.Fatalf("Quadrant(%v, %v) = %q, want %q", tc.vis, tc.acc, got, tc.want)
		}
	}
}

func scored(platform string, c model.Category, faith, sov, sent, voice, hall float64, competitors ...string) Scored {
	m := Metrics{
		FaithfulnessScore:    faith,
		ShareOfVoice:         sov,
		OverallSentiment:     sent,
		VoiceAlignmentScore:  voice,
		HallucinationScore:   hall,
		CompetitorsMentioned: competitors,
	}
	return Scored{
		Evaluation: Evaluation{Platform: platform, Metrics: m, OverallScore: CompositeScore(m)},
		Category:   c,
	}
}

func TestAggregate(t *testing.T) {
	evals := []Scored{
		scored("chatgpt", model.CategoryNavigational, 80, 60, 0.2, 70, 90),
		scored("chatgpt", model.CategoryVoice, 60, 40, 0, 52, 70),
		scored("gemini", model.CategoryNavigational, 100, 100, 1, 100, 100),
	}
	s := Aggregate(evals)

	// 73, 54 and 100.
	wantPlatforms := map[string]int{"chatgpt": 64, "gemini": 100}
	if diff := cmp.Diff(wantPlatforms, s.ByPlatform); diff != "" {
		t.Fatalf("ByPlatform mismatch (-want +got):\n%s", diff)
	}
	wantCategories := map[model.Category]int{model.CategoryNavigational: 87, model.CategoryVoice: 54}
	if diff := cmp.Diff(wantCategories, s.ByCategory); diff != "" {
		t.Fatalf("ByCategory mismatch (-want +got):\n%s", diff)
	}
	wantMetrics := MetricScores{
		Faithfulness:      80,
		ShareOfVoice:      67,
		Sentiment:         70,
		VoiceAlignment:    74,
		HallucinationRisk: 13,
	}
	if diff := cmp.Diff(wantMetrics, s.ByMetric); diff != "" {
		t.Fatalf("ByMetric mismatch (-want +got):\n%s", diff)
	}
	if s.Overall != 76 {
		t.Fatalf("Overall = %d, want 76", s.Overall)
	}
	if got := s.Quadrant(); got != model.QuadrantDominant {
		t.Fatalf("Quadrant = %q, want dominant", got)
	}
	if diff := cmp.Diff([]string{"chatgpt", "gemini"}, s.Platforms()); diff != "" {
		t.Fatalf("Platforms mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	if s.Overall != 0 || len(s.ByPlatform) != 0 || len(s.ByCategory) != 0 {
		t.Fatalf("expected zero scores, got %+v", s)
	}
}

func TestBalancedSelect_SpreadsAcrossCategories(t *testing.T) {
	var prompts []*model.GeneratedPrompt
	cats := []model.Category{model.CategoryNavigational, model.CategoryFunctional, model.CategoryComparative, model.CategoryVoice}
	for _, c := range cats {
		for i := 0; i < 20; i++ {
			prompts = append(prompts, &model.GeneratedPrompt{Category: c, RenderedPrompt: fmt.Sprintf("%s %d", c, i)})
		}
	}

	got := BalancedSelect(prompts, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	counts := map[model.Category]int{}
	for _, p := range got {
		counts[p.Category]++
	}
	want := map[model.Category]int{
		model.CategoryNavigational: 3,
		model.CategoryFunctional:   3,
		model.CategoryComparative:  3,
		model.CategoryVoice:        1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("category counts mismatch (-want +got):\n%s", diff)
	}
	if got[0].RenderedPrompt != "navigational 0" || got[3].RenderedPrompt != "functional 0" {
		t.Fatalf("unexpected order: %q, %q", got[0].RenderedPrompt, got[3].RenderedPrompt)
	}
}

func TestBalancedSelect_NoLimit(t *testing.T) {
	prompts := []*model.GeneratedPrompt{{Category: model.CategoryVoice}, {Category: model.CategoryVoice}}
	if got := BalancedSelect(prompts, 0); len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got := BalancedSelect(prompts, 5); len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestCompareScans(t *testing.T) {
	base := &ScanResult{
		QuadrantPosition: model.QuadrantInvisible,
		AggregatedScores: Scores{
			Overall:    40,
			ByPlatform: map[string]int{"chatgpt": 40, "claude": 30},
			ByMetric:   MetricScores{Faithfulness: 50, ShareOfVoice: 20, Sentiment: 50, VoiceAlignment: 40, HallucinationRisk: 30},
		},
		Insights: []string{"Low AI Visibility", "Hallucination Risk Detected"},
	}
	next := &ScanResult{
		QuadrantPosition: model.QuadrantNiche,
		AggregatedScores: Scores{
			Overall:    55,
			ByPlatform: map[string]int{"chatgpt": 60, "gemini": 50},
			ByMetric:   MetricScores{Faithfulness: 75, ShareOfVoice: 25, Sentiment: 60, VoiceAlignment: 45, HallucinationRisk: 10},
		},
		Insights: []string{"Low AI Visibility", "Brand Voice Misalignment"},
	}

	c := CompareScans(base, next)
	if c.OverallDelta != 15 || !c.QuadrantChanged {
		t.Fatalf("unexpected headline: %+v", c)
	}
	if diff := cmp.Diff(map[string]int{"chatgpt": 20}, c.PlatformDeltas); diff != "" {
		t.Fatalf("PlatformDeltas mismatch (-want +got):\n%s", diff)
	}
	wantMetrics := MetricScores{Faithfulness: 25, ShareOfVoice: 5, Sentiment: 10, VoiceAlignment: 5, HallucinationRisk: -20}
	if diff := cmp.Diff(wantMetrics, c.MetricDeltas); diff != "" {
		t.Fatalf("MetricDeltas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Brand Voice Misalignment"}, c.NewInsights); diff != "" {
		t.Fatalf("NewInsights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hallucination Risk Detected"}, c.ResolvedInsights); diff != "" {
		t.Fatalf("ResolvedInsights mismatch (-want +got):\n%s", diff)
	}
}
