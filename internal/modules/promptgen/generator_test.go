package promptgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

func groundTruth() *brand.GroundTruth {
	return &brand.GroundTruth{
		Profile:   brand.BrandProfile{BrandName: "Acme", Industry: "project management"},
		OrgSchema: &brand.OrganizationSchema{Name: "Acme"},
		Archetype: &brand.BrandArchetype{PrimaryArchetype: "sage"},
		Voice:     &brand.BrandVoiceProfile{PrimaryTone: "friendly"},
		Personas: []brand.CustomerPersona{
			{
				Name:        "Ops Olivia",
				PersonaType: brand.PersonaPrimary,
				PainPoints:  []brand.PainPoint{{Title: "manual work"}},
				Objections:  jsonx.Encode([]string{"too complex"}),
			},
			{
				Name:        "Cheap Charlie",
				PersonaType: brand.PersonaAnti,
				PainPoints:  []brand.PainPoint{{Title: "high prices"}},
				Objections:  jsonx.Encode([]string{"too complex"}),
			},
		},
		Competitors: []brand.Competitor{
			{Name: "Low Co", ThreatLevel: "low"},
			{Name: "Crit Co", ThreatLevel: "critical"},
			{Name: "Mid Co", ThreatLevel: "medium"},
		},
		Claims: []brand.Claim{{ClaimText: "uptime"}},
	}
}

func generate(t *testing.T, gt *brand.GroundTruth, opts Options) Result {
	t.Helper()
	res, err := Generate(gt, "Acme", opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

func byText(ps []perception.GeneratedPrompt) map[string]perception.GeneratedPrompt {
	out := make(map[string]perception.GeneratedPrompt, len(ps))
	for _, p := range ps {
		out[p.RenderedPrompt] = p
	}
	return out
}

func TestGenerate_PersonaMultipliers(t *testing.T) {
	res := generate(t, groundTruth(), Options{Categories: []perception.Category{perception.CategoryFunctional}, MaxPerCategory: 50})
	got := byText(res.Prompts)

	cases := map[string]int{
		"What is the best solution for manual work?":  15,
		"How can I solve manual work for my business?": 14,
		"What is the best solution for high prices?":   5,
		"What tools help with high prices?":            4,
		"Is Acme right for Cheap Charlie?":             4,
	}
	for text, want := range cases {
		p, ok := got[text]
		if !ok {
			t.Fatalf("missing prompt %q", text)
		}
		if p.Priority != want {
			t.Fatalf("%q priority=%d want %d", text, p.Priority, want)
		}
	}

	// Both personas render the same buying question; the first one wins.
	q := got["What should I consider before buying Acme?"]
	if q.TargetPersona != "Ops Olivia" || q.Priority != 11 {
		t.Fatalf("deduped prompt = %q/%d", q.TargetPersona, q.Priority)
	}
	seen := map[string]bool{}
	for i, p := range res.Prompts {
		if seen[p.RenderedPrompt] {
			t.Fatalf("duplicate prompt %q", p.RenderedPrompt)
		}
		seen[p.RenderedPrompt] = true
		if i > 0 && p.Priority > res.Prompts[i-1].Priority {
			t.Fatalf("prompt %d out of priority order", i)
		}
	}
	if diff := cmp.Diff([]string{"Ops Olivia", "Cheap Charlie"}, res.PersonasCovered); diff != "" {
		t.Fatalf("personas covered (-want +got):\n%s", diff)
	}
}

func TestGenerate_CompetitorsOrderedByThreat(t *testing.T) {
	res := generate(t, groundTruth(), Options{Categories: []perception.Category{perception.CategoryComparative}, MaxPerCategory: 50})
	if len(res.Prompts) == 0 {
		t.Fatalf("no comparative prompts")
	}
	first := res.Prompts[0]
	if first.TargetCompetitor != "Crit Co" {
		t.Fatalf("first prompt targets %q, want the critical competitor", first.TargetCompetitor)
	}
	got := byText(res.Prompts)
	claim, ok := got["Does Acme have better uptime than Crit Co?"]
	if !ok {
		t.Fatalf("claim prompt should name the top threat")
	}
	if claim.TargetClaim != "uptime" {
		t.Fatalf("claim target = %q", claim.TargetClaim)
	}
	if diff := cmp.Diff([]string{"Crit Co", "Mid Co", "Low Co"}, res.CompetitorsCovered); diff != "" {
		t.Fatalf("competitors covered (-want +got):\n%s", diff)
	}
}

func TestGenerate_TruncatesAfterSorting(t *testing.T) {
	gt := groundTruth()
	gt.Products = []brand.Product{{Name: "Boards", IsHero: true}}
	res := generate(t, gt, Options{Categories: []perception.Category{perception.CategoryNavigational}, MaxPerCategory: 3})

	var texts []string
	for _, p := range res.Prompts {
		texts = append(texts, p.RenderedPrompt)
	}
	want := []string{
		"What is Acme and what do they do?",
		"Tell me about Acme products",
		"What is Boards by Acme?",
	}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Fatalf("navigational prompts (-want +got):\n%s", diff)
	}
	if res.CategoryBreakdown[perception.CategoryNavigational] != 3 || res.TotalGenerated != 3 {
		t.Fatalf("breakdown=%v total=%d", res.CategoryBreakdown, res.TotalGenerated)
	}
	if diff := cmp.Diff([]string{"Boards"}, res.ProductsCovered); diff != "" {
		t.Fatalf("products covered (-want +got):\n%s", diff)
	}
}

func TestGenerate_HallucinationTraps(t *testing.T) {
	res := generate(t, &brand.GroundTruth{}, Options{Categories: []perception.Category{perception.CategoryAdversarial}})

	want := []string{
		"Does Acme offer quantum computing integration?",
		"Does Acme offer blockchain-based authentication?",
	}
	for i, text := range want {
		p := res.Prompts[i]
		if p.RenderedPrompt != text || !p.HallucinationTest || p.AdversarialTwist != "hallucination_trap" {
			t.Fatalf("prompt %d = %+v", i, p)
		}
	}
	awards := 0
	for _, p := range res.Prompts {
		if p.AdversarialTwist == "fake_award_trap" {
			awards++
			if !strings.Contains(p.RenderedPrompt, TrapAwards[0]) {
				t.Fatalf("award trap = %q", p.RenderedPrompt)
			}
		}
	}
	if awards != 1 {
		t.Fatalf("award traps=%d want 1", awards)
	}
}

func TestGenerate_VoiceArchetypes(t *testing.T) {
	voiceOnly := Options{Categories: []perception.Category{perception.CategoryVoice}}

	res := generate(t, groundTruth(), voiceOnly)
	if len(res.Prompts) != 10 {
		t.Fatalf("voice prompts=%d want 10 without a secondary archetype", len(res.Prompts))
	}
	got := byText(res.Prompts)
	if _, ok := got["Would you say Acme is a sage brand?"]; !ok {
		t.Fatalf("archetype prompt missing")
	}
	vocab := got["Is Acme's content easy to understand?"]
	if vocab.ExpectedVocabulary != "professional" || vocab.ExpectedTone != "friendly" {
		t.Fatalf("vocab prompt expectations = %q/%q", vocab.ExpectedVocabulary, vocab.ExpectedTone)
	}

	gt := groundTruth()
	gt.Archetype.SecondaryArchetype = "hero"
	res = generate(t, gt, voiceOnly)
	if len(res.Prompts) != 11 {
		t.Fatalf("voice prompts=%d want 11", len(res.Prompts))
	}
	if _, ok := byText(res.Prompts)["Is Acme more sage or hero?"]; !ok {
		t.Fatalf("archetype comparison prompt missing")
	}
}

func TestGenerate_ReviewSites(t *testing.T) {
	opts := Options{
		Categories:  []perception.Category{perception.CategoryVoice},
		ReviewSites: []string{"G2", "G2", "Capterra"},
	}
	res := generate(t, groundTruth(), opts)

	reviews := 0
	for _, p := range res.Prompts {
		if p.TargetReviewWebsite == "" {
			continue
		}
		reviews++
		if p.CategoryLabel != "The Trust" {
			t.Fatalf("review prompt label = %q", p.CategoryLabel)
		}
		if p.Category == perception.CategoryComparative && p.TargetCompetitor != "Low Co" {
			t.Fatalf("review comparison targets %q", p.TargetCompetitor)
		}
	}
	if reviews != 14 {
		t.Fatalf("review prompts=%d want 14", reviews)
	}
	if diff := cmp.Diff([]string{"G2", "Capterra"}, res.ReviewWebsitesCovered); diff != "" {
		t.Fatalf("review sites covered (-want +got):\n%s", diff)
	}
	if res.CategoryBreakdown[perception.CategoryVoice] != 10 || res.TotalGenerated != 24 {
		t.Fatalf("breakdown=%v total=%d", res.CategoryBreakdown, res.TotalGenerated)
	}

	gt := groundTruth()
	gt.Competitors = nil
	res = generate(t, gt, Options{Categories: []perception.Category{perception.CategoryVoice}, ReviewSites: []string{"G2"}})
	if res.TotalGenerated != 15 {
		t.Fatalf("total=%d want 10 voice + 5 review prompts", res.TotalGenerated)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(t, groundTruth(), Options{})
	b := generate(t, groundTruth(), Options{})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("generation is not deterministic:\n%s", diff)
	}
	if a.TotalGenerated == 0 {
		t.Fatalf("no prompts generated")
	}
	for _, c := range perception.AllCategories {
		if a.CategoryBreakdown[c] > DefaultMaxPerCategory {
			t.Fatalf("%s has %d prompts", c, a.CategoryBreakdown[c])
		}
	}
}

func TestGenerate_RejectsUnknownCategory(t *testing.T) {
	_, err := Generate(groundTruth(), "Acme", Options{Categories: []perception.Category{"gossip"}})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("err=%v want ErrInvalidArgument", err)
	}
}

func TestRender_SinglePass(t *testing.T) {
	tmpl := "Is it true that {claim} compared to {competitorName}?"
	v := vars{"claim": "{brandName} beats {competitorName}", "competitorName": "Globex", "brandName": "Acme"}
	want := "Is it true that {brandName} beats {competitorName} compared to Globex?"
	for i := 0; i < 50; i++ {
		if got := render(tmpl, v); got != want {
			t.Fatalf("render = %q, want %q", got, want)
		}
	}
}
