package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai/openaitest"
)

func fullAnalysis() map[string]any {
	return map[string]any{
		"kapfererPrism": map[string]any{
			"physique":          map[string]any{"attributes": []any{"minimal", "blue"}, "description": "clean"},
			"personalityScores": map[string]any{"sincerity": 80, "excitement": 40, "competence": 90, "sophistication": 60, "ruggedness": 10},
			"cultureValues":     []any{"craft"},
			"relationshipType":  "Trusted Advisor",
			"reflection":        map[string]any{"demographics": "SMB owners"},
			"selfImage":         "in control",
		},
		"archetype": map[string]any{
			"primary":        "Ruler",
			"primaryScore":   0,
			"secondary":      "sage",
			"secondaryScore": 55,
		},
		"voice": map[string]any{
			"spectrums":        map[string]any{"formal_casual": 3, "serious_playful": 2, "respectful_irreverent": 1, "enthusiastic_matter_of_fact": 7},
			"primaryTone":      "confident",
			"signaturePhrases": []any{"built to last"},
			"wordsToAvoid":     []any{"cheap"},
		},
		"confidence": 0.85,
	}
}

func TestAnalyze_MapsModelOutput(t *testing.T) {
	llm := openaitest.New().On(schemaName, fullAnalysis())
	res := New(logger.Nop(), llm).Analyze(context.Background(), strings.Repeat("x", 20000), "Acme")
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.Confidence != 0.85 || res.Source != Source {
		t.Fatalf("confidence/source: %v %q", res.Confidence, res.Source)
	}
	if got := len([]rune(llm.Calls[0].User)); got != maxContentChars {
		t.Fatalf("content not truncated: %d", got)
	}
	out := res.Data

	wantTraits := []string{"honest", "genuine", "cheerful", "reliable", "intelligent", "successful"}
	if diff := cmp.Diff(wantTraits, jsonx.Strings(out.Prism.PersonalityTraits)); diff != "" {
		t.Fatalf("traits (-want +got):\n%s", diff)
	}
	if out.Prism.RelationshipType != "Trusted Advisor" || out.Prism.ReflectionDemographics != "SMB owners" {
		t.Fatalf("prism fields lost: %+v", out.Prism)
	}

	a := out.Archetype
	if a.PrimaryArchetype != "ruler" || a.PrimaryScore != 70 || !a.UseCitations || a.HumorLevel != "none" {
		t.Fatalf("archetype: %+v", a)
	}
	if diff := cmp.Diff([]string{"authoritative", "commanding", "premium"}, jsonx.Strings(a.ExpectedTone)); diff != "" {
		t.Fatalf("tone (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultArchetypeScores(), jsonx.Decode[map[string]int](a.ArchetypeScores)); diff != "" {
		t.Fatalf("scores should default (-want +got):\n%s", diff)
	}

	v := out.Voice
	if v.FormalCasual != 3 || v.EnthusiasticMatterOfFact != 7 || v.PrimaryTone != "confident" {
		t.Fatalf("voice: %+v", v)
	}
	if v.VocabularyLevel != "moderate" || v.SentenceStyle != "moderate" {
		t.Fatalf("voice defaults: %+v", v)
	}
	if got := jsonx.Strings(v.BannedPhrases); len(got) != 1 || got[0] != "cheap" {
		t.Fatalf("banned phrases: %v", got)
	}
	if out.InferredTone != "confident" {
		t.Fatalf("inferred tone %q", out.InferredTone)
	}
}

func TestAnalyze_EmptyObjectUsesDefaults(t *testing.T) {
	llm := openaitest.New().On(schemaName, map[string]any{})
	res := New(logger.Nop(), llm).Analyze(context.Background(), "content", "Acme")
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.Confidence != defaultConfidence {
		t.Fatalf("confidence %v", res.Confidence)
	}
	out := res.Data
	if out.Personality != DefaultPersonality() {
		t.Fatalf("personality %+v", out.Personality)
	}
	if out.Prism.Confidence != 0.5 || len(jsonx.Strings(out.Prism.PersonalityTraits)) != 0 {
		t.Fatalf("prism defaults: %+v", out.Prism)
	}
	if out.Archetype.PrimaryArchetype != "sage" || out.Archetype.PrimaryScore != 50 || out.Archetype.ContentDepth != "moderate" || out.Archetype.UseCitations {
		t.Fatalf("archetype defaults: %+v", out.Archetype)
	}
	if got := jsonx.Strings(out.Archetype.ExpectedTone); len(got) != 1 || got[0] != "professional" {
		t.Fatalf("archetype tone %v", got)
	}
	want := DefaultSpectrums()
	got := Spectrums{out.Voice.FormalCasual, out.Voice.SeriousPlayful, out.Voice.RespectfulIrreverent, out.Voice.EnthusiasticMatterOfFact}
	if got != want {
		t.Fatalf("spectrums %+v", got)
	}
	if out.InferredTone != "professional" {
		t.Fatalf("tone %q", out.InferredTone)
	}
}

func TestAnalyze_MalformedFieldsFallBackPerField(t *testing.T) {
	raw := fullAnalysis()
	raw["archetype"].(map[string]any)["primaryScore"] = "high"
	raw["kapfererPrism"].(map[string]any)["personalityScores"] = map[string]any{"sincerity": "very"}
	raw["voice"] = "warm and friendly"
	raw["confidence"] = "sure"

	res := New(logger.Nop(), openaitest.New().On(schemaName, raw)).Analyze(context.Background(), "content", "Acme")
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.Confidence != defaultConfidence {
		t.Fatalf("confidence %v", res.Confidence)
	}
	out := res.Data
	if out.Archetype.PrimaryArchetype != "ruler" || out.Archetype.PrimaryScore != 70 || out.Archetype.SecondaryScore != 55 {
		t.Fatalf("archetype: %+v", out.Archetype)
	}
	if out.Personality != DefaultPersonality() {
		t.Fatalf("personality should default: %+v", out.Personality)
	}
	if out.Prism.RelationshipType != "Trusted Advisor" || out.Prism.SelfImage != "in control" {
		t.Fatalf("valid prism fields lost: %+v", out.Prism)
	}
	want := DefaultSpectrums()
	got := Spectrums{out.Voice.FormalCasual, out.Voice.SeriousPlayful, out.Voice.RespectfulIrreverent, out.Voice.EnthusiasticMatterOfFact}
	if got != want || out.InferredTone != "professional" {
		t.Fatalf("voice should default: %+v tone=%q", got, out.InferredTone)
	}
}

func TestDecodeAnalysis_ReportsMalformedFields(t *testing.T) {
	raw := map[string]any{
		"archetype": map[string]any{"primary": "hero", "primaryScore": "high"},
		"voice":     "loud",
	}
	an, bad, err := decodeAnalysis(raw)
	if err != nil {
		t.Fatalf("decodeAnalysis: %v", err)
	}
	if diff := cmp.Diff([]string{"archetype.primaryScore", "voice"}, bad); diff != "" {
		t.Fatalf("bad fields (-want +got):\n%s", diff)
	}
	if an.Archetype == nil || an.Archetype.Primary != "hero" || an.Voice != nil || an.KapfererPrism != nil {
		t.Fatalf("analysis: %+v", an)
	}
	if _, _, err := decodeAnalysis(nil); err == nil {
		t.Fatalf("expected error for a missing payload")
	}
}

func TestAnalyze_LLMErrorFails(t *testing.T) {
	llm := openaitest.New().Fail(schemaName, errors.New("rate limited"))
	res := New(logger.Nop(), llm).Analyze(context.Background(), "content", "Acme")
	if res.Success || len(res.Errors) != 1 || res.Errors[0] != "rate limited" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestParamsFor_UnknownFallsBackToSage(t *testing.T) {
	if diff := cmp.Diff(ParamsFor("sage"), ParamsFor("wizard")); diff != "" {
		t.Fatalf("fallback mismatch:\n%s", diff)
	}
	if p := ParamsFor("jester"); p.HumorLevel != "prominent" || p.ContentDepth != "surface" {
		t.Fatalf("jester params %+v", p)
	}
}

func TestTraits_ThresholdIsExclusive(t *testing.T) {
	p := brand.Personality{Sincerity: 70, Excitement: 71, Competence: 0, Sophistication: 100, Ruggedness: 70}
	want := []string{"daring", "spirited", "imaginative", "upper-class", "charming", "elegant"}
	if diff := cmp.Diff(want, Traits(p)); diff != "" {
		t.Fatalf("traits (-want +got):\n%s", diff)
	}
}

func TestVoiceEmbedding(t *testing.T) {
	llm := openaitest.New()
	llm.Vectors = [][]float32{{0.1, 0.2}}
	a := New(logger.Nop(), llm)
	if got := a.VoiceEmbedding(context.Background(), []string{"one", "two"}); len(got) != 2 {
		t.Fatalf("vector %v", got)
	}
	if llm.EmbedSeen[0][0] != "one\n\ntwo" {
		t.Fatalf("samples not joined: %q", llm.EmbedSeen[0][0])
	}
	llm.EmbedErr = errors.New("boom")
	if got := a.VoiceEmbedding(context.Background(), []string{"one"}); len(got) != 0 {
		t.Fatalf("expected empty vector on error, got %v", got)
	}
}
