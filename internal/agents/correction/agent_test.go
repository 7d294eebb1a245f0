package correction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai/openaitest"
)

var acme = Brand{
	Name:         "Acme",
	Products:     []string{"Rockets", "Anvils"},
	Claims:       []string{"Fastest delivery", "Made in USA"},
	Competitors:  []string{"Globex"},
	FoundingYear: "1949",
	Tone:         "professional",
}

func fullFake() *openaitest.Fake {
	f := openaitest.New().
		On(faqSchemaName, map[string]any{"entries": []any{
			map[string]any{"question": "What does Acme do?", "answer": "Acme makes rockets."},
			map[string]any{"question": " ", "answer": "dropped"},
			map[string]any{"question": "Is Acme Globex?", "answer": "No."},
		}}).
		On(contentSchemaName, map[string]any{
			"sectionTitle": "About Acme",
			"headline":     "Rockets since 1949",
			"outline":      []any{"History", "Products"},
			"keyMessages":  []any{"Reliable"},
			"toneGuidance": "Confident.",
		}).
		On(wikipediaSchemaName, map[string]any{
			"suggestedEdits":         []any{"Add founding year"},
			"sourcesNeeded":          []any{"Company registry"},
			"existingClaimsToUpdate": []any{},
			"notes":                  "Keep NPOV.",
		})
	f.Text = "Here you go:\n```json\n{\"@type\": \"Organization\"}\n```\nDone."
	return f
}

func TestProblemTypeFor(t *testing.T) {
	cases := map[string]string{
		"hallucination":        model.ProblemHallucination,
		"accuracy":             model.ProblemMissingInfo,
		"visibility":           model.ProblemMissingInfo,
		"voice":                model.ProblemWrongSentiment,
		"sentiment":            model.ProblemWrongSentiment,
		"wrong_sentiment":      model.ProblemWrongSentiment,
		"competitive":          model.ProblemCompetitorConfusion,
		"competitor_confusion": model.ProblemCompetitorConfusion,
		"something else":       model.ProblemMissingInfo,
	}
	for in, want := range cases {
		if got := ProblemTypeFor(in); got != want {
			t.Fatalf("ProblemTypeFor(%q) = %q, want %q", in, got, want)
		}
	}
	if ValidProblemType("visibility") || !ValidProblemType(model.ProblemWrongSentiment) {
		t.Fatalf("ValidProblemType mismatch")
	}
}

func TestBrandContext_SkipsEmptyFields(t *testing.T) {
	want := "Brand Name: Acme\nProducts: Rockets, Anvils\nKey Claims: Fastest delivery; Made in USA\nCompetitors: Globex\nFounded: 1949\nBrand Tone: professional"
	if got := acme.Context(); got != want {
		t.Fatalf("Context mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestFAQQuestions(t *testing.T) {
	got := FAQQuestions(model.ProblemCompetitorConfusion, "Acme", "Globex")
	if got[0] != "What makes Acme different from Globex?" {
		t.Fatalf("got %q", got[0])
	}
	got = FAQQuestions(model.ProblemCompetitorConfusion, "Acme", "")
	if got[1] != "Is Acme the same as competitors?" {
		t.Fatalf("got %q", got[1])
	}
	for _, q := range FAQQuestions(model.ProblemHallucination, "Acme", "") {
		if strings.Contains(q, "{") {
			t.Fatalf("unfilled placeholder in %q", q)
		}
	}
}

func TestStripFences(t *testing.T) {
	if got := StripFences("```json\n{\"a\":1}\n```"); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
	if got := StripFences("  {\"a\":1}  "); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestGenerate_HighPriorityDraftsAllFixes(t *testing.T) {
	llm := fullFake()
	issue := Issue{Category: "hallucination", Priority: "critical", Title: "Hallucination Risk Detected", Description: "AI invents products.", Platforms: []string{"chatgpt"}}

	res := New(logger.Nop(), llm).Generate(context.Background(), issue, acme)
	if !res.Success || res.Source != Source || res.Confidence != confidence {
		t.Fatalf("unexpected result %+v", res)
	}
	out := res.Data
	if out.ProblemType != model.ProblemHallucination {
		t.Fatalf("problem type %q", out.ProblemType)
	}
	if out.ProblemDescription != "Hallucination Risk Detected: AI invents products." {
		t.Fatalf("description %q", out.ProblemDescription)
	}
	if out.SchemaOrgFix != `{"@type": "Organization"}` {
		t.Fatalf("schema fix %q", out.SchemaOrgFix)
	}
	if out.FAQPageFix != "Q: What does Acme do?\nA: Acme makes rockets.\n\nQ: Is Acme Globex?\nA: No." {
		t.Fatalf("faq fix %q", out.FAQPageFix)
	}
	wantContent := "## About Acme\n\n### Headline:\nRockets since 1949\n\n### Content Outline:\n- History\n- Products\n\n### Key Messages:\n- Reliable\n\n### Tone Guidance:\nConfident."
	if diff := cmp.Diff(wantContent, out.ContentFix); diff != "" {
		t.Fatalf("content fix (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(out.WikipediaFix, "## Wikipedia Edit Suggestions") || !strings.Contains(out.WikipediaFix, "- Company registry") {
		t.Fatalf("wikipedia fix %q", out.WikipediaFix)
	}

	var kinds, efforts []string
	for _, s := range out.Suggestions {
		kinds = append(kinds, s.FixType)
		efforts = append(efforts, s.Effort)
		if s.Priority != model.PriorityHigh {
			t.Fatalf("priority %q for %s", s.Priority, s.FixType)
		}
	}
	if diff := cmp.Diff([]string{FixSchemaOrg, FixFAQ, FixContent, FixWikipedia}, kinds); diff != "" {
		t.Fatalf("fix types (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"low", "low", "medium", "high"}, efforts); diff != "" {
		t.Fatalf("efforts (-want +got):\n%s", diff)
	}
	if out.Suggestions[0].Description != "Update your website's JSON-LD structured data to address hallucination risk detected" {
		t.Fatalf("schema description %q", out.Suggestions[0].Description)
	}

	// The FAQ prompt carries the first three template questions.
	for _, c := range llm.Calls {
		if c.Schema != faqSchemaName {
			continue
		}
		if !strings.Contains(c.User, "What is Acme's actual founding story?") || strings.Contains(c.User, "Does Acme have") {
			t.Fatalf("faq prompt misconceptions wrong:\n%s", c.User)
		}
	}
}

func TestGenerate_MediumPrioritySkipsWikipedia(t *testing.T) {
	llm := fullFake()
	issue := Issue{Category: "voice", Priority: "medium", Title: "Brand Voice Misalignment"}

	res := New(logger.Nop(), llm).Generate(context.Background(), issue, acme)
	if !res.Success {
		t.Fatalf("unexpected failure %v", res.Errors)
	}
	if res.Data.WikipediaFix != "" || len(res.Data.Suggestions) != 3 {
		t.Fatalf("wikipedia drafted for medium priority: %+v", res.Data.Suggestions)
	}
	if llm.CallCount(wikipediaSchemaName) != 0 {
		t.Fatalf("wikipedia called")
	}
	if res.Data.Suggestions[0].Priority != model.PriorityMedium {
		t.Fatalf("priority %q", res.Data.Suggestions[0].Priority)
	}
	if res.Data.AffectedPlatforms == nil {
		t.Fatalf("platforms should be non-nil")
	}
}

func TestGenerate_PartialFailureKeepsOtherFixes(t *testing.T) {
	llm := fullFake().Fail(faqSchemaName, errors.New("rate limited"))
	res := New(logger.Nop(), llm).Generate(context.Background(), Issue{Category: "accuracy", Priority: "high", Title: "x"}, acme)
	if !res.Success || len(res.Data.Suggestions) != 3 || res.Data.FAQPageFix != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "rate limited") {
		t.Fatalf("errors %v", res.Errors)
	}
}

func TestGenerate_AllFixesFail(t *testing.T) {
	boom := errors.New("down")
	llm := openaitest.New().Fail(faqSchemaName, boom).Fail(contentSchemaName, boom)
	llm.TextErr = boom
	res := New(logger.Nop(), llm).Generate(context.Background(), Issue{Category: "accuracy", Priority: "low", Title: "x"}, acme)
	if res.Success || len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "down") {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestGenerateBatch(t *testing.T) {
	llm := fullFake()
	issues := []Issue{
		{Category: "visibility", Priority: "critical", Title: "Low AI Visibility"},
		{Category: "voice", Priority: "medium", Title: "Brand Voice Misalignment"},
	}
	res := New(logger.Nop(), llm).WithPause(0).GenerateBatch(context.Background(), issues, acme)
	if !res.Success || len(res.Data) != 2 {
		t.Fatalf("unexpected batch %+v", res)
	}
	if res.Data[0].ProblemType != model.ProblemMissingInfo || res.Data[1].ProblemType != model.ProblemWrongSentiment {
		t.Fatalf("order lost: %q %q", res.Data[0].ProblemType, res.Data[1].ProblemType)
	}

	empty := New(logger.Nop(), llm).GenerateBatch(context.Background(), nil, acme)
	if empty.Success {
		t.Fatalf("empty batch should fail")
	}
}

func TestGenerateBatch_CancelledBetweenIssues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	issues := []Issue{{Title: "a"}, {Title: "b"}}
	res := New(logger.Nop(), fullFake()).GenerateBatch(ctx, issues, acme)
	if res.Success || !strings.Contains(res.Errors[0], "canceled") {
		t.Fatalf("expected cancellation, got %+v", res)
	}
}
