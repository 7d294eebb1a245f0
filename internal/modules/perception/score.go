package perception

import (
	"math"
	"sort"

	"github.com/google/uuid"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
)

const (
	weightFaithfulness  = 0.25
	weightShareOfVoice  = 0.25
	weightSentiment     = 0.15
	weightVoice         = 0.15
	weightHallucination = 0.20

	visibilityThreshold = 50
	accuracyThreshold   = 70
)

// NormalizeSentiment maps -1..1 onto 0..100.
func NormalizeSentiment(s float64) float64 {
	return (s + 1) / 2 * 100
}

func composite(faith, sov, sentiment, voice, hall float64) float64 {
	return faith*weightFaithfulness +
		sov*weightShareOfVoice +
		NormalizeSentiment(sentiment)*weightSentiment +
		voice*weightVoice +
		hall*weightHallucination
}

// CompositeScore is the weighted 0-100 score of one answer, rounded half
// away from zero.
func CompositeScore(m Metrics) int {
	return int(math.Round(composite(m.FaithfulnessScore, m.ShareOfVoice, m.OverallSentiment, m.VoiceAlignmentScore, m.HallucinationScore)))
}

// Quadrant places a brand by visibility (share of voice) and accuracy
// (mean of faithfulness and 100 minus hallucination risk).
func Quadrant(visibility, accuracy float64) model.Quadrant {
	high := visibility >= visibilityThreshold
	accurate := accuracy >= accuracyThreshold
	switch {
	case high && accurate:
		return model.QuadrantDominant
	case high:
		return model.QuadrantVulnerable
	case accurate:
		return model.QuadrantNiche
	default:
		return model.QuadrantInvisible
	}
}

type MetricScores struct {
	Faithfulness      int `json:"faithfulness"`
	ShareOfVoice      int `json:"shareOfVoice"`
	Sentiment         int `json:"sentiment"`
	VoiceAlignment    int `json:"voiceAlignment"`
	HallucinationRisk int `json:"hallucinationRisk"`
}

// Means are the unrounded metric averages behind MetricScores.
type Means struct {
	Faithfulness   float64 `json:"faithfulness"`
	ShareOfVoice   float64 `json:"shareOfVoice"`
	Sentiment      float64 `json:"sentiment"`
	VoiceAlignment float64 `json:"voiceAlignment"`
	Hallucination  float64 `json:"hallucination"`
}

type Scores struct {
	Overall    int                    `json:"overall"`
	ByPlatform map[string]int         `json:"byPlatform"`
	ByCategory map[model.Category]int `json:"byCategory"`
	ByMetric   MetricScores           `json:"byMetric"`
	Means      Means                  `json:"-"`
}

// Quadrant classifies from the unrounded means.
func (s Scores) Quadrant() model.Quadrant {
	return Quadrant(s.Means.ShareOfVoice, (s.Means.Faithfulness+s.Means.Hallucination)/2)
}

// Platforms lists the scored platforms in name order.
func (s Scores) Platforms() []string {
	out := make([]string, 0, len(s.ByPlatform))
	for p := range s.ByPlatform {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Scored is an evaluation tagged with its prompt.
type Scored struct {
	Evaluation
	PromptID uuid.UUID      `json:"promptId"`
	Category model.Category `json:"category"`
}

// Aggregate averages every metric across evals. Platform and category scores
// are the mean composite score of their evaluations.
func Aggregate(evals []Scored) Scores {
	s := Scores{
		ByPlatform: map[string]int{},
		ByCategory: map[model.Category]int{},
	}
	if len(evals) == 0 {
		return s
	}
	n := float64(len(evals))
	var mu Means
	platform := map[string][]int{}
	category := map[model.Category][]int{}
	for _, e := range evals {
		m := e.Metrics
		mu.Faithfulness += m.FaithfulnessScore
		mu.ShareOfVoice += m.ShareOfVoice
		mu.Sentiment += m.OverallSentiment
		mu.VoiceAlignment += m.VoiceAlignmentScore
		mu.Hallucination += m.HallucinationScore
		score := CompositeScore(m)
		platform[e.Platform] = append(platform[e.Platform], score)
		if e.Category != "" {
			category[e.Category] = append(category[e.Category], score)
		}
	}
	mu.Faithfulness /= n
	mu.ShareOfVoice /= n
	mu.Sentiment /= n
	mu.VoiceAlignment /= n
	mu.Hallucination /= n
	s.Means = mu

	s.Overall = int(math.Round(composite(mu.Faithfulness, mu.ShareOfVoice, mu.Sentiment, mu.VoiceAlignment, mu.Hallucination)))
	for p, scores := range platform {
		s.ByPlatform[p] = meanInt(scores)
	}
	for c, scores := range category {
		s.ByCategory[c] = meanInt(scores)
	}
	s.ByMetric = MetricScores{
		Faithfulness:      round(mu.Faithfulness),
		ShareOfVoice:      round(mu.ShareOfVoice),
		Sentiment:         round(NormalizeSentiment(mu.Sentiment)),
		VoiceAlignment:    round(mu.VoiceAlignment),
		HallucinationRisk: 100 - round(mu.Hallucination),
	}
	return s
}

func meanInt(v []int) int {
	sum := 0
	for _, x := range v {
		sum += x
	}
	return round(float64(sum) / float64(len(v)))
}

func round(v float64) int { return int(math.Round(v)) }

// BalancedSelect trims priority-sorted prompts to limit, taking
// ceil(limit/categories) from each category in order of first appearance
// before the final cut.
func BalancedSelect(prompts []*model.GeneratedPrompt, limit int) []*model.GeneratedPrompt {
	if limit <= 0 || len(prompts) <= limit {
		return prompts
	}
	var order []model.Category
	groups := map[model.Category][]*model.GeneratedPrompt{}
	for _, p := range prompts {
		if _, ok := groups[p.Category]; !ok {
			order = append(order, p.Category)
		}
		groups[p.Category] = append(groups[p.Category], p)
	}
	per := int(math.Ceil(float64(limit) / float64(len(order))))
	selected := make([]*model.GeneratedPrompt, 0, per*len(order))
	for _, c := range order {
		g := groups[c]
		if len(g) > per {
			g = g[:per]
		}
		selected = append(selected, g...)
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
