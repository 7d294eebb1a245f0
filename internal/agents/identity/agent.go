// Package identity infers a brand's Kapferer prism, Jungian archetype and
// voice profile from crawled site content with a single structured LLM call.
package identity

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
	Source     = "vibe_check_agent"
	schemaName = "brand_identity"

	maxContentChars   = 15000
	defaultConfidence = 0.7
)

type Output struct {
	Prism        brand.BrandIdentityPrism `json:"brandIdentityPrism"`
	Archetype    brand.BrandArchetype     `json:"brandArchetype"`
	Voice        brand.BrandVoiceProfile  `json:"brandVoice"`
	InferredTone string                   `json:"inferredTone"`
	Personality  brand.Personality        `json:"inferredPersonality"`
}

type physiqueOut struct {
	Attributes  []string `json:"attributes"`
	Description string   `json:"description"`
}

type reflectionOut struct {
	Demographics   string `json:"demographics"`
	Psychographics string `json:"psychographics"`
	Lifestyle      string `json:"lifestyle"`
}

type prismOut struct {
	Physique                physiqueOut        `json:"physique"`
	PersonalityScores       *brand.Personality `json:"personalityScores"`
	CultureValues           []string           `json:"cultureValues"`
	CultureDescription      string             `json:"cultureDescription"`
	RelationshipType        string             `json:"relationshipType"`
	RelationshipDescription string             `json:"relationshipDescription"`
	Reflection              reflectionOut      `json:"reflection"`
	SelfImage               string             `json:"selfImage"`
}

type archetypeScoresOut struct {
	Innocent  int `json:"innocent"`
	Sage      int `json:"sage"`
	Explorer  int `json:"explorer"`
	Outlaw    int `json:"outlaw"`
	Magician  int `json:"magician"`
	Hero      int `json:"hero"`
	Lover     int `json:"lover"`
	Jester    int `json:"jester"`
	Everyman  int `json:"everyman"`
	Caregiver int `json:"caregiver"`
	Ruler     int `json:"ruler"`
	Creator   int `json:"creator"`
}

func (s archetypeScoresOut) toMap() map[string]int {
	return map[string]int{
		"innocent": s.Innocent, "sage": s.Sage, "explorer": s.Explorer, "outlaw": s.Outlaw,
		"magician": s.Magician, "hero": s.Hero, "lover": s.Lover, "jester": s.Jester,
		"everyman": s.Everyman, "caregiver": s.Caregiver, "ruler": s.Ruler, "creator": s.Creator,
	}
}

type archetypeOut struct {
	Primary        string              `json:"primary" jsonschema:"enum=innocent,enum=sage,enum=explorer,enum=outlaw,enum=magician,enum=hero,enum=lover,enum=jester,enum=everyman,enum=caregiver,enum=ruler,enum=creator"`
	PrimaryScore   int                 `json:"primaryScore"`
	Secondary      string              `json:"secondary"`
	SecondaryScore int                 `json:"secondaryScore"`
	AllScores      *archetypeScoresOut `json:"allScores"`
}

type voiceOut struct {
	Spectrums        *Spectrums `json:"spectrums"`
	PrimaryTone      string     `json:"primaryTone"`
	SecondaryTones   []string   `json:"secondaryTones"`
	VocabularyLevel  string     `json:"vocabularyLevel" jsonschema:"enum=simple,enum=moderate,enum=technical,enum=academic"`
	SentenceStyle    string     `json:"sentenceStyle" jsonschema:"enum=short_punchy,enum=moderate,enum=complex_nuanced"`
	SignaturePhrases []string   `json:"signaturePhrases"`
	WordsToAvoid     []string   `json:"wordsToAvoid"`
}

type analysis struct {
	KapfererPrism *prismOut     `json:"kapfererPrism"`
	Archetype     *archetypeOut `json:"archetype"`
	Voice         *voiceOut     `json:"voice"`
	Confidence    float64       `json:"confidence"`
}

var analysisSchema = llmschema.MustGenerate[analysis]()

type Agent struct {
	log *logger.Logger
	llm openai.Client
}

func New(log *logger.Logger, llm openai.Client) *Agent {
	return &Agent{log: log.With("agent", "VibeCheckAgent"), llm: llm}
}

// Analyze runs the identity call. Fields the model leaves out or mistypes are
// replaced by the defaults in tables.go; only a transport failure or a missing
// payload fails the result.
func (a *Agent) Analyze(ctx context.Context, content, brandName string) agent.Result[Output] {
	start := time.Now()
	raw, err := a.llm.GenerateJSON(ctx,
		systemPrompt(brandName),
		agent.Clip(content, maxContentChars),
		schemaName,
		analysisSchema,
		openai.WithModel("gpt-4o"),
		openai.WithTemperature(0.3),
	)
	if err != nil {
		a.log.Warn("Identity analysis failed", "brand", brandName, "error", err)
		return agent.Fail[Output](Source, start, err)
	}
	parsed, bad, err := decodeAnalysis(raw)
	if err != nil {
		return agent.Fail[Output](Source, start, err)
	}
	if len(bad) > 0 {
		a.log.Warn("Identity fields malformed; using defaults", "brand", brandName, "fields", bad)
	}
	out := build(parsed)
	return agent.OK(out, or(parsed.Confidence, defaultConfidence), Source, start)
}

// decodeAnalysis decodes every section field by field. A section that is not
// an object stays nil and a malformed field inside one stays at its zero value,
// so build falls back to the defaults for exactly what was lost.
func decodeAnalysis(raw map[string]any) (analysis, []string, error) {
	var an analysis
	bad, err := llmschema.DecodeFields(raw, map[string]any{"confidence": &an.Confidence})
	if err != nil {
		return an, nil, err
	}

	if m, ok := section(raw, "kapfererPrism", &bad); ok {
		p := &prismOut{}
		b, _ := llmschema.DecodeFields(m, map[string]any{
			"physique":                &p.Physique,
			"personalityScores":       &p.PersonalityScores,
			"cultureValues":           &p.CultureValues,
			"cultureDescription":      &p.CultureDescription,
			"relationshipType":        &p.RelationshipType,
			"relationshipDescription": &p.RelationshipDescription,
			"reflection":              &p.Reflection,
			"selfImage":               &p.SelfImage,
		})
		bad = appendPrefixed(bad, "kapfererPrism", b)
		an.KapfererPrism = p
	}

	if m, ok := section(raw, "archetype", &bad); ok {
		ar := &archetypeOut{}
		b, _ := llmschema.DecodeFields(m, map[string]any{
			"primary":        &ar.Primary,
			"primaryScore":   &ar.PrimaryScore,
			"secondary":      &ar.Secondary,
			"secondaryScore": &ar.SecondaryScore,
			"allScores":      &ar.AllScores,
		})
		bad = appendPrefixed(bad, "archetype", b)
		an.Archetype = ar
	}

	if m, ok := section(raw, "voice", &bad); ok {
		v := &voiceOut{}
		b, _ := llmschema.DecodeFields(m, map[string]any{
			"spectrums":        &v.Spectrums,
			"primaryTone":      &v.PrimaryTone,
			"secondaryTones":   &v.SecondaryTones,
			"vocabularyLevel":  &v.VocabularyLevel,
			"sentenceStyle":    &v.SentenceStyle,
			"signaturePhrases": &v.SignaturePhrases,
			"wordsToAvoid":     &v.WordsToAvoid,
		})
		bad = appendPrefixed(bad, "voice", b)
		an.Voice = v
	}
	return an, bad, nil
}

// section returns raw[key] when it is an object. A present value of any other
// shape is recorded in bad.
func section(raw map[string]any, key string, bad *[]string) (map[string]any, bool) {
	v, present := raw[key]
	if !present || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		*bad = append(*bad, key)
	}
	return m, ok
}

func appendPrefixed(bad []string, prefix string, fields []string) []string {
	for _, f := range fields {
		bad = append(bad, prefix+"."+f)
	}
	return bad
}

// build converts a decoded analysis into the three identity models.
func build(an analysis) Output {
	prism, personality := buildPrism(an)
	tone := "professional"
	if an.Voice != nil && strings.TrimSpace(an.Voice.PrimaryTone) != "" {
		tone = an.Voice.PrimaryTone
	}
	return Output{
		Prism:        prism,
		Archetype:    buildArchetype(an),
		Voice:        buildVoice(an, tone),
		InferredTone: tone,
		Personality:  personality,
	}
}

func buildPrism(an analysis) (brand.BrandIdentityPrism, brand.Personality) {
	p := an.KapfererPrism
	if p == nil {
		personality := DefaultPersonality()
		return brand.BrandIdentityPrism{
			PhysiqueAttributes: jsonx.Encode([]string{}),
			PersonalityScores:  jsonx.Encode(personality),
			PersonalityTraits:  jsonx.Encode([]string{}),
			CultureValues:      jsonx.Encode([]string{}),
			InferredByAgent:    true,
			Confidence:         0.5,
		}, personality
	}
	personality := DefaultPersonality()
	if p.PersonalityScores != nil {
		personality = *p.PersonalityScores
	}
	return brand.BrandIdentityPrism{
		PhysiqueAttributes:       jsonx.Encode(p.Physique.Attributes),
		PhysiqueDescription:      p.Physique.Description,
		PersonalityScores:        jsonx.Encode(personality),
		PersonalityTraits:        jsonx.Encode(Traits(personality)),
		CultureValues:            jsonx.Encode(p.CultureValues),
		CultureDescription:       p.CultureDescription,
		RelationshipType:         p.RelationshipType,
		RelationshipDescription:  p.RelationshipDescription,
		ReflectionDemographics:   p.Reflection.Demographics,
		ReflectionPsychographics: p.Reflection.Psychographics,
		ReflectionLifestyle:      p.Reflection.Lifestyle,
		SelfImage:                p.SelfImage,
		InferredByAgent:          true,
		Confidence:               or(an.Confidence, defaultConfidence),
	}, personality
}

func buildArchetype(an analysis) brand.BrandArchetype {
	a := an.Archetype
	if a == nil {
		params := ParamsFor("sage")
		return brand.BrandArchetype{
			PrimaryArchetype: "sage",
			PrimaryScore:     50,
			ArchetypeScores:  jsonx.Encode(DefaultArchetypeScores()),
			ExpectedTone:     jsonx.Encode([]string{"professional"}),
			ContentDepth:     "moderate",
			UseCitations:     false,
			HumorLevel:       params.HumorLevel,
			InferredByAgent:  true,
			Confidence:       0.5,
		}
	}
	primary := strings.ToLower(strings.TrimSpace(a.Primary))
	if primary == "" {
		primary = "sage"
	}
	scores := DefaultArchetypeScores()
	if a.AllScores != nil {
		scores = a.AllScores.toMap()
	}
	params := ParamsFor(primary)
	return brand.BrandArchetype{
		PrimaryArchetype:   primary,
		PrimaryScore:       orInt(a.PrimaryScore, 70),
		SecondaryArchetype: strings.ToLower(strings.TrimSpace(a.Secondary)),
		SecondaryScore:     a.SecondaryScore,
		ArchetypeScores:    jsonx.Encode(scores),
		ExpectedTone:       jsonx.Encode(params.Tone),
		ContentDepth:       params.ContentDepth,
		UseCitations:       params.UseCitations,
		HumorLevel:         params.HumorLevel,
		InferredByAgent:    true,
		Confidence:         or(an.Confidence, defaultConfidence),
	}
}

func buildVoice(an analysis, tone string) brand.BrandVoiceProfile {
	v := an.Voice
	if v == nil {
		s := DefaultSpectrums()
		return brand.BrandVoiceProfile{
			FormalCasual:             s.FormalCasual,
			SeriousPlayful:           s.SeriousPlayful,
			RespectfulIrreverent:     s.RespectfulIrreverent,
			EnthusiasticMatterOfFact: s.EnthusiasticMatterOfFact,
			PrimaryTone:              "professional",
			SecondaryTones:           jsonx.Encode([]string{}),
			VocabularyLevel:          "moderate",
			SentenceStyle:            "moderate",
			ApprovedPhrases:          jsonx.Encode([]string{}),
			BannedPhrases:            jsonx.Encode([]string{}),
			VoiceSamples:             jsonx.Encode([]string{}),
			InferredByAgent:          true,
			Confidence:               0.5,
		}
	}
	s := DefaultSpectrums()
	if v.Spectrums != nil {
		s = *v.Spectrums
	}
	return brand.BrandVoiceProfile{
		FormalCasual:             s.FormalCasual,
		SeriousPlayful:           s.SeriousPlayful,
		RespectfulIrreverent:     s.RespectfulIrreverent,
		EnthusiasticMatterOfFact: s.EnthusiasticMatterOfFact,
		PrimaryTone:              tone,
		SecondaryTones:           jsonx.Encode(v.SecondaryTones),
		VocabularyLevel:          orStr(v.VocabularyLevel, "moderate"),
		SentenceStyle:            orStr(v.SentenceStyle, "moderate"),
		ApprovedPhrases:          jsonx.Encode(v.SignaturePhrases),
		BannedPhrases:            jsonx.Encode(v.WordsToAvoid),
		VoiceSamples:             jsonx.Encode([]string{}),
		InferredByAgent:          true,
		Confidence:               or(an.Confidence, defaultConfidence),
	}
}

// VoiceEmbedding embeds the joined samples. Any failure yields an empty vector.
func (a *Agent) VoiceEmbedding(ctx context.Context, samples []string) []float32 {
	if len(samples) == 0 {
		return []float32{}
	}
	vecs, err := a.llm.Embed(ctx, []string{strings.Join(samples, "\n\n")})
	if err != nil || len(vecs) == 0 {
		if err != nil {
			a.log.Warn("Voice embedding failed", "error", err)
		}
		return []float32{}
	}
	return vecs[0]
}

func systemPrompt(brandName string) string {
	return fmt.Sprintf(`You are a brand strategist. Read the website content for %q and describe the brand's identity.

kapfererPrism: physique (visual attributes and a short description), personalityScores on the Aaker scale (sincerity, excitement, competence, sophistication, ruggedness; each 0-100), cultureValues and cultureDescription, relationshipType (for example "Trusted Advisor", "Partner", "Friend") with a description, reflection (demographics, psychographics, lifestyle) and selfImage.

archetype: the primary archetype out of %s, its 0-100 score, an optional secondary archetype with its score, and allScores covering all twelve.

voice: spectrums from 1 to 10 (formal_casual, serious_playful, respectful_irreverent, enthusiastic_matter_of_fact), primaryTone, secondaryTones, vocabularyLevel, sentenceStyle, signaturePhrases that actually appear in the content and wordsToAvoid.

confidence: your overall confidence from 0 to 1.

Ground every answer in the content. Where the content says nothing, give a reasonable default.`,
		brandName, strings.Join(Archetypes, ", "))
}

func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
