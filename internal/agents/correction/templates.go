package correction

import (
	"fmt"
	"strings"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
)

// Fix types, one per suggestion.
const (
	FixSchemaOrg = "schema_org"
	FixFAQ       = "faq"
	FixContent   = "content"
	FixWikipedia = "wikipedia"
)

// ProblemTypeFor maps an insight category onto the problem it represents.
// Unknown categories are treated as missing information.
func ProblemTypeFor(category string) string {
	switch category {
	case model.InsightHallucination:
		return model.ProblemHallucination
	case model.InsightAccuracy, model.InsightMissingInfo, model.InsightVisibility:
		return model.ProblemMissingInfo
	case model.InsightSentiment, model.InsightVoice, model.ProblemWrongSentiment:
		return model.ProblemWrongSentiment
	case model.InsightCompetitive, model.InsightCompetitorConfusion:
		return model.ProblemCompetitorConfusion
	default:
		return model.ProblemMissingInfo
	}
}

// ValidProblemType reports whether p is one of the four problem types.
func ValidProblemType(p string) bool {
	switch p {
	case model.ProblemHallucination, model.ProblemMissingInfo, model.ProblemWrongSentiment, model.ProblemCompetitorConfusion:
		return true
	}
	return false
}

func priorityFor(problem string) string {
	if problem == model.ProblemHallucination || problem == model.ProblemCompetitorConfusion {
		return model.PriorityHigh
	}
	return model.PriorityMedium
}

var fixEffort = map[string]string{
	FixSchemaOrg: "low",
	FixFAQ:       "low",
	FixContent:   "medium",
	FixWikipedia: "high",
}

var faqQuestions = map[string][]string{
	model.ProblemHallucination: {
		"What products/services does {brandName} NOT offer?",
		"Is it true that {brandName} {falseClaimQuestion}?",
		"What is {brandName}'s actual founding story?",
		"Does {brandName} have {falseFeature}?",
	},
	model.ProblemMissingInfo: {
		"What does {brandName} do?",
		"Who founded {brandName} and when?",
		"Where is {brandName} located?",
		"What products/services does {brandName} offer?",
		"Who are {brandName}'s typical customers?",
	},
	model.ProblemWrongSentiment: {
		"What do customers say about {brandName}?",
		"How does {brandName} handle customer issues?",
		"What makes {brandName} trustworthy?",
		"What is {brandName}'s commitment to quality?",
	},
	model.ProblemCompetitorConfusion: {
		"What makes {brandName} different from {competitorName}?",
		"Is {brandName} the same as {competitorName}?",
		"Why choose {brandName} over alternatives?",
		"What is {brandName}'s specialty?",
	},
}

// FAQQuestions returns the template questions for a problem type with the
// brand and first competitor filled in.
func FAQQuestions(problem, brandName, competitor string) []string {
	if competitor == "" {
		competitor = "competitors"
	}
	r := strings.NewReplacer(
		"{brandName}", brandName,
		"{competitorName}", competitor,
		"{falseClaimQuestion}", "does what AI assistants claim",
		"{falseFeature}", "the features AI assistants describe",
	)
	qs := faqQuestions[problem]
	if qs == nil {
		qs = faqQuestions[model.ProblemMissingInfo]
	}
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, r.Replace(q))
	}
	return out
}

const (
	schemaOrgSystem = "You are a Schema.org expert. Generate valid, well-formed JSON-LD structured data."
	faqSystem       = "You are a content strategist specializing in FAQ optimization for SEO and AI readability."
	contentSystem   = "You are a brand content strategist. Create actionable content recommendations."
	wikipediaSystem = "You are a Wikipedia editor. Suggest edits that comply with Wikipedia policies (NPOV, verifiability, no original research)."
)

func schemaOrgPrompt(brandContext, problem, issue string) string {
	return fmt.Sprintf(`Given the following brand information and identified AI perception issue, generate improved Schema.org JSON-LD markup.

Brand Information:
%s

Issue Identified:
- Problem Type: %s
- Description: %s

Generate a complete Organization schema that addresses this issue. Include name, description, founding date, founders, products and services, sameAs links and any properties that help AI systems describe the brand accurately.

Return only the JSON-LD inside a json code block.`, brandContext, problem, issue)
}

func faqPrompt(brandContext, problem, issue string, misconceptions []string) string {
	return fmt.Sprintf(`Generate FAQ entries that address AI misconceptions about this brand.

Brand Information:
%s

Problem Type: %s
Issue: %s

Common misconceptions to address:
- %s

Write 5 FAQ entries. Each answer should be factual, concise and written so an AI assistant can quote it directly.`, brandContext, problem, issue, strings.Join(misconceptions, "\n- "))
}

func contentPrompt(brandContext, problem, issue string) string {
	return fmt.Sprintf(`Recommend website content changes that would improve how AI assistants describe this brand.

Brand Information:
%s

Problem Type: %s
Issue: %s

Give a section title, a headline, a content outline, the key messages to reinforce and guidance on tone.`, brandContext, problem, issue)
}

func wikipediaPrompt(brandContext, problem, issue string) string {
	return fmt.Sprintf(`Suggest Wikipedia edits that would correct how AI assistants describe this brand.

Brand Information:
%s

Problem Type: %s
Issue: %s

List the suggested edits, the reliable sources needed to support them, existing claims that should be updated and any notes on policy compliance.`, brandContext, problem, issue)
}
