package perception

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
)

const (
	HeuristicSource     = "heuristic_judge"
	heuristicConfidence = 0.5
)

var (
	denialPhrases = []string{
		"does not offer", "doesn't offer", "does not have", "doesn't have",
		"does not provide", "doesn't provide", "no such", "there is no",
		"not aware of", "no record", "no evidence", "no information",
		"don't have information", "do not have information", "couldn't find",
		"could not find", "not a feature", "not available", "never won",
		"did not win", "didn't win", "has not won", "hasn't won", "not offered",
	}
	affirmPhrases = []string{
		"yes", "offers", "provides", "includes", "supports", "features",
		"won the", "was awarded", "received the", "launched",
	}
	positiveWords = []string{
		"excellent", "great", "best", "leading", "trusted", "reliable",
		"innovative", "popular", "recommended", "easy", "powerful", "loved",
		"strong", "effective", "affordable", "secure",
	}
	negativeWords = []string{
		"bad", "poor", "expensive", "complaint", "complaints", "issue", "issues",
		"problem", "problems", "difficult", "slow", "unreliable", "lawsuit",
		"scam", "outdated", "buggy", "lacks", "worse",
	}
)

// HeuristicJudge scores answers with keyword rules and makes no network
// calls. It is used when no judge model is configured.
type HeuristicJudge struct{}

func (HeuristicJudge) Evaluate(ctx context.Context, pc PromptContext, response string, facts Facts) agent.Result[Metrics] {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return agent.Fail[Metrics](HeuristicSource, start, err)
	}
	text := strings.ToLower(response)

	m := Metrics{
		FaithfulnessErrors:  []string{},
		AspectSentiments:    map[string]float64{},
		VoiceDeviations:     []string{},
		Hallucinations:      []string{},
		KeyThemes:           []string{},
		MissingInformation:  []string{},
		Opportunities:       []string{},
		CompetitorPositions: map[string]int{},
	}
	shareOfVoice(&m, text, facts)
	m.OverallSentiment = sentiment(text)
	m.FaithfulnessScore = faithfulness(&m, text, facts)
	m.VoiceAlignmentScore = voiceAlignment(&m, text, facts.Voice, pc.ExpectedTone)
	m.HallucinationScore = hallucination(&m, text, pc)
	return agent.OK(m, heuristicConfidence, HeuristicSource, start)
}

type mention struct {
	name  string
	first int
	count int
}

func shareOfVoice(m *Metrics, text string, facts Facts) {
	brandName := strings.ToLower(strings.TrimSpace(facts.BrandName))
	var mentions []mention
	brandCount := 0
	if brandName != "" {
		if i := strings.Index(text, brandName); i >= 0 {
			brandCount = strings.Count(text, brandName)
			mentions = append(mentions, mention{name: "", first: i, count: brandCount})
		}
	}
	others := 0
	for _, c := range facts.Competitors {
		lc := strings.ToLower(c)
		if i := strings.Index(text, lc); i >= 0 {
			n := strings.Count(text, lc)
			others += n
			mentions = append(mentions, mention{name: c, first: i, count: n})
		}
	}
	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].first < mentions[j].first })

	m.CompetitorsMentioned = []string{}
	for pos, mn := range mentions {
		if mn.name == "" {
			p := pos + 1
			m.BrandPosition = &p
			continue
		}
		m.CompetitorsMentioned = append(m.CompetitorsMentioned, mn.name)
		m.CompetitorPositions[mn.name] = pos + 1
	}
	m.BrandMentioned = brandCount > 0
	if brandCount > 0 {
		m.ShareOfVoice = math.Round(float64(brandCount) / float64(brandCount+others) * 100)
	}
}

func sentiment(text string) float64 {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	})
	pos, neg := 0, 0
	for _, w := range words {
		switch {
		case contains(positiveWords, w):
			pos++
		case contains(negativeWords, w):
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// faithfulness starts neutral and moves up with every known fact the answer
// repeats. Answers that never name the brand stay neutral.
func faithfulness(m *Metrics, text string, facts Facts) float64 {
	var known []string
	known = append(known, facts.Founders...)
	known = append(known, facts.Values...)
	known = append(known, facts.Claims...)
	for _, p := range facts.Products {
		known = append(known, p.Name)
		known = append(known, p.Features...)
	}
	if facts.FoundingYear != "" {
		known = append(known, facts.FoundingYear)
	}
	if len(known) == 0 || !m.BrandMentioned {
		return defaultFaithfulness
	}
	hits := 0
	for _, k := range known {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			hits++
			m.KeyThemes = append(m.KeyThemes, k)
		} else if len(m.MissingInformation) < 5 {
			m.MissingInformation = append(m.MissingInformation, k)
		}
	}
	return math.Round(defaultFaithfulness + 50*float64(hits)/float64(len(known)))
}

func voiceAlignment(m *Metrics, text string, v VoiceFacts, expectedTone string) float64 {
	score := float64(defaultVoice)
	for _, p := range v.ApprovedPhrases {
		if strings.Contains(text, strings.ToLower(p)) {
			score += 10
		}
	}
	for _, p := range v.BannedPhrases {
		if strings.Contains(text, strings.ToLower(p)) {
			score -= 20
			m.VoiceDeviations = append(m.VoiceDeviations, "banned phrase used: "+p)
		}
	}
	tone := expectedTone
	if tone == "" {
		tone = v.PrimaryTone
	}
	if tone != "" && strings.Contains(text, strings.ToLower(tone)) {
		score += 10
	}
	return clamp(score, 0, 100)
}

// hallucination scores trap prompts on denial versus affirmation; other
// prompts are assumed clean.
func hallucination(m *Metrics, text string, pc PromptContext) float64 {
	if !pc.HallucinationTest {
		return defaultHallucination
	}
	passed := false
	m.PassedTrapTest = &passed
	for _, p := range denialPhrases {
		if strings.Contains(text, p) {
			passed = true
			return 100
		}
	}
	for _, p := range affirmPhrases {
		if strings.Contains(text, p) {
			m.Hallucinations = append(m.Hallucinations, "affirmed a nonexistent item: "+pc.RenderedPrompt)
			return 0
		}
	}
	return 50
}

func contains(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}
