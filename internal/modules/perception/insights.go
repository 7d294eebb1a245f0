package perception

import (
	"fmt"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

// InsightRule derives at most one insight from a scan.
type InsightRule func(evals []Scored, s Scores) *model.PerceptionInsight

// InsightRules are evaluated independently, in this order.
var InsightRules = []InsightRule{
	VisibilityRule,
	AccuracyRule,
	HallucinationRule,
	SentimentRule,
	VoiceRule,
	CompetitiveRule,
}

// GenerateInsights runs every rule. Insights carry no profile or scan id yet.
func GenerateInsights(evals []Scored, s Scores) []*model.PerceptionInsight {
	out := []*model.PerceptionInsight{}
	for _, rule := range InsightRules {
		if in := rule(evals, s); in != nil {
			out = append(out, in)
		}
	}
	return out
}

func insight(s Scores, category, priority, title, description, impact, recommendation, effort string, affected []model.Category, current, target float64) *model.PerceptionInsight {
	return &model.PerceptionInsight{
		Category:           category,
		Priority:           priority,
		Title:              title,
		Description:        description,
		Impact:             impact,
		Recommendation:     recommendation,
		Effort:             effort,
		Platforms:          jsonx.Encode(s.Platforms()),
		AffectedCategories: jsonx.Encode(affected),
		CurrentValue:       current,
		TargetValue:        target,
		Unit:               "percent",
		Status:             model.InsightOpen,
	}
}

func VisibilityRule(_ []Scored, s Scores) *model.PerceptionInsight {
	sov := s.ByMetric.ShareOfVoice
	if sov >= 30 {
		return nil
	}
	return insight(s, model.InsightVisibility, model.PriorityCritical,
		"Low AI Visibility",
		fmt.Sprintf("Your brand is mentioned in only %d%% of AI responses. You're largely invisible to AI assistants.", sov),
		"Users asking AI assistants about your category rarely hear about you.",
		"Improve your Schema.org markup, build more backlinks from authoritative sources, and ensure your Wikipedia presence is accurate.",
		"high",
		[]model.Category{model.CategoryNavigational, model.CategoryFunctional, model.CategoryComparative},
		float64(sov), 50)
}

func AccuracyRule(_ []Scored, s Scores) *model.PerceptionInsight {
	f := s.ByMetric.Faithfulness
	if f >= 60 {
		return nil
	}
	return insight(s, model.InsightAccuracy, model.PriorityHigh,
		"Factual Inaccuracies Detected",
		fmt.Sprintf("AI responses about your brand have a %d%% error rate.", 100-f),
		"Users are receiving incorrect information about your products and services.",
		"Update your website content to be clearer, add FAQ pages addressing common questions, and ensure your Google Knowledge Panel is accurate.",
		"medium",
		[]model.Category{model.CategoryNavigational, model.CategoryFunctional},
		float64(f), 80)
}

func HallucinationRule(_ []Scored, s Scores) *model.PerceptionInsight {
	risk := s.ByMetric.HallucinationRisk
	if risk <= 20 {
		return nil
	}
	return insight(s, model.InsightHallucination, model.PriorityCritical,
		"Hallucination Risk Detected",
		fmt.Sprintf("AI models are inventing facts about your brand %d%% of the time.", risk),
		"Users may receive fabricated information about features, pricing, or awards you don't have.",
		"Create authoritative content that explicitly states what you do and don't offer. Add structured data to your pages.",
		"medium",
		[]model.Category{model.CategoryAdversarial},
		float64(risk), 5)
}

func SentimentRule(_ []Scored, s Scores) *model.PerceptionInsight {
	sent := s.ByMetric.Sentiment
	if sent >= 40 {
		return nil
	}
	return insight(s, model.InsightSentiment, model.PriorityHigh,
		"Negative Sentiment in AI Responses",
		fmt.Sprintf("AI assistants describe your brand with %d%% negative sentiment.", 100-sent),
		"Users are being discouraged from choosing your brand.",
		"Address negative reviews publicly, create positive case studies, and build more positive content signals.",
		"high",
		[]model.Category{model.CategoryVoice, model.CategoryAdversarial},
		float64(sent), 70)
}

func VoiceRule(_ []Scored, s Scores) *model.PerceptionInsight {
	v := s.ByMetric.VoiceAlignment
	if v >= 50 {
		return nil
	}
	return insight(s, model.InsightVoice, model.PriorityMedium,
		"Brand Voice Misalignment",
		"AI descriptions of your brand don't match your intended voice and personality.",
		"Your brand is being represented inconsistently across AI platforms.",
		"Ensure your website and public content consistently uses your brand voice. Update your About page to clearly express your brand personality.",
		"low",
		[]model.Category{model.CategoryVoice},
		float64(v), 75)
}

// CompetitiveRule fires when one competitor appears in more than half of
// the evaluations. Ties go to the competitor seen first.
func CompetitiveRule(evals []Scored, s Scores) *model.PerceptionInsight {
	if len(evals) == 0 {
		return nil
	}
	counts := map[string]int{}
	var order []string
	for _, e := range evals {
		for _, c := range e.Metrics.CompetitorsMentioned {
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}
	top, best := "", 0
	for _, c := range order {
		if counts[c] > best {
			top, best = c, counts[c]
		}
	}
	if top == "" || float64(best) <= float64(len(evals))*0.5 {
		return nil
	}
	share := round(float64(best) / float64(len(evals)) * 100)
	return insight(s, model.InsightCompetitive, model.PriorityMedium,
		"Competitor Dominance: "+top,
		fmt.Sprintf("%s is mentioned in %d%% of responses where your brand should be featured.", top, share),
		"Your competitor is capturing share of voice that could be yours.",
		"Create comparison content, highlight your differentiators, and ensure your unique value propositions are well-documented.",
		"medium",
		[]model.Category{model.CategoryComparative},
		float64(share), 25)
}
