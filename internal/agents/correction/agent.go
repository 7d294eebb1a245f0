// Package correction drafts fixes for perception problems found by a scan:
// structured data, FAQ entries, site content and Wikipedia edits.
package correction

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/platform/llmschema"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/openai"
)

const (
	Source     = "correction_generator_agent"
	confidence = 0.8

	faqSchemaName       = "correction_faq"
	contentSchemaName   = "correction_content"
	wikipediaSchemaName = "correction_wikipedia"

	llmModel        = "gpt-4o-mini"
	maxOutputTokens = 1500
	defaultPause    = 500 * time.Millisecond
)

// Brand is the slice of ground truth the prompts quote back to the model.
type Brand struct {
	Name         string
	Products     []string
	Claims       []string
	Competitors  []string
	FoundingYear string
	Founders     []string
	Values       []string
	Tone         string
}

// Context renders the brand as the labelled lines every prompt embeds.
// Empty fields are left out.
func (b Brand) Context() string {
	lines := []string{"Brand Name: " + b.Name}
	add := func(label string, v string) {
		if strings.TrimSpace(v) != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Products", strings.Join(b.Products, ", "))
	add("Key Claims", strings.Join(b.Claims, "; "))
	add("Competitors", strings.Join(b.Competitors, ", "))
	add("Founded", b.FoundingYear)
	add("Founders", strings.Join(b.Founders, ", "))
	add("Values", strings.Join(b.Values, ", "))
	add("Brand Tone", b.Tone)
	return strings.Join(lines, "\n")
}

// Issue is the problem a correction targets, usually an insight.
type Issue struct {
	ID          string   `json:"id,omitempty"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
}

type Suggestion struct {
	FixType         string `json:"fixType"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Content         string `json:"content"`
	Priority        string `json:"priority"`
	Effort          string `json:"effort"`
	EstimatedImpact string `json:"estimatedImpact"`
}

type Output struct {
	IssueID            string       `json:"issueId,omitempty"`
	ProblemType        string       `json:"problemType"`
	ProblemDescription string       `json:"problemDescription"`
	AffectedPlatforms  []string     `json:"affectedPlatforms"`
	Suggestions        []Suggestion `json:"suggestions"`
	SchemaOrgFix       string       `json:"schemaOrgFix,omitempty"`
	FAQPageFix         string       `json:"faqPageFix,omitempty"`
	ContentFix         string       `json:"contentFix,omitempty"`
	WikipediaFix       string       `json:"wikipediaFix,omitempty"`
}

type faqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type faqOut struct {
	Entries []faqEntry `json:"entries"`
}

type contentOut struct {
	SectionTitle string   `json:"sectionTitle"`
	Headline     string   `json:"headline"`
	Outline      []string `json:"outline"`
	KeyMessages  []string `json:"keyMessages"`
	ToneGuidance string   `json:"toneGuidance"`
}

type wikipediaOut struct {
	SuggestedEdits         []string `json:"suggestedEdits"`
	SourcesNeeded          []string `json:"sourcesNeeded"`
	ExistingClaimsToUpdate []string `json:"existingClaimsToUpdate"`
	Notes                  string   `json:"notes"`
}

var (
	faqSchema       = llmschema.MustGenerate[faqOut]()
	contentSchema   = llmschema.MustGenerate[contentOut]()
	wikipediaSchema = llmschema.MustGenerate[wikipediaOut]()

	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

type Agent struct {
	log   *logger.Logger
	llm   openai.Client
	pause time.Duration
}

func New(log *logger.Logger, llm openai.Client) *Agent {
	return &Agent{log: log.With("agent", "CorrectionGeneratorAgent"), llm: llm, pause: defaultPause}
}

// WithPause sets the delay between issues in GenerateBatch.
func (a *Agent) WithPause(d time.Duration) *Agent {
	a.pause = d
	return a
}

// Generate drafts every fix type for one issue. A fix whose call fails is
// skipped; the result fails only when no fix could be drafted. Wikipedia
// edits are drafted for critical and high priority issues only.
func (a *Agent) Generate(ctx context.Context, issue Issue, b Brand) agent.Result[Output] {
	start := time.Now()
	problem := ProblemTypeFor(issue.Category)
	description := strings.TrimSpace(issue.Title)
	if d := strings.TrimSpace(issue.Description); d != "" {
		description += ": " + d
	}
	brandContext := b.Context()

	out := Output{
		IssueID:            issue.ID,
		ProblemType:        problem,
		ProblemDescription: description,
		AffectedPlatforms:  issue.Platforms,
		Suggestions:        []Suggestion{},
	}
	if out.AffectedPlatforms == nil {
		out.AffectedPlatforms = []string{}
	}

	var failures []error
	suggest := func(fix, title, desc, content, impact string) {
		out.Suggestions = append(out.Suggestions, Suggestion{
			FixType:         fix,
			Title:           title,
			Description:     desc,
			Content:         content,
			Priority:        priorityFor(problem),
			Effort:          fixEffort[fix],
			EstimatedImpact: impact,
		})
	}

	if fix, err := a.schemaOrg(ctx, brandContext, problem, description); err != nil {
		a.log.Warn("Schema.org fix failed", "brand", b.Name, "error", err)
		failures = append(failures, fmt.Errorf("schema.org: %w", err))
	} else {
		out.SchemaOrgFix = fix
		suggest(FixSchemaOrg, "Schema.org Structured Data Update",
			"Update your website's JSON-LD structured data to address "+strings.ToLower(issue.Title),
			fix, "High - Improves AI understanding of your brand")
	}

	misconceptions := FAQQuestions(problem, b.Name, first(b.Competitors))
	if len(misconceptions) > 3 {
		misconceptions = misconceptions[:3]
	}
	if fix, err := a.faq(ctx, brandContext, problem, description, misconceptions); err != nil {
		a.log.Warn("FAQ fix failed", "brand", b.Name, "error", err)
		failures = append(failures, fmt.Errorf("faq: %w", err))
	} else {
		out.FAQPageFix = fix
		suggest(FixFAQ, "FAQ Page Addition",
			"Add FAQ entries to address common misconceptions and missing information",
			fix, "Medium - Provides clear answers for AI to reference")
	}

	if fix, err := a.content(ctx, brandContext, problem, description); err != nil {
		a.log.Warn("Content fix failed", "brand", b.Name, "error", err)
		failures = append(failures, fmt.Errorf("content: %w", err))
	} else {
		out.ContentFix = fix
		suggest(FixContent, "Content Update Recommendation",
			"Update website content to improve AI perception",
			fix, "High - Creates authoritative content for AI training")
	}

	if issue.Priority == model.PriorityCritical || issue.Priority == model.PriorityHigh {
		if fix, err := a.wikipedia(ctx, brandContext, problem, description); err != nil {
			a.log.Warn("Wikipedia fix failed", "brand", b.Name, "error", err)
			failures = append(failures, fmt.Errorf("wikipedia: %w", err))
		} else {
			out.WikipediaFix = fix
			suggest(FixWikipedia, "Wikipedia Edit Suggestion",
				"Suggested edits for your Wikipedia article (if applicable)",
				fix, "Very High - Wikipedia is a primary AI training source")
		}
	}

	if len(out.Suggestions) == 0 {
		return agent.Fail[Output](Source, start, errors.Join(failures...))
	}
	res := agent.OK(out, confidence, Source, start)
	for _, err := range failures {
		res.Errors = append(res.Errors, err.Error())
	}
	return res
}

// GenerateBatch runs Generate for each issue in order, pausing between
// issues. It succeeds when at least one issue produced fixes.
func (a *Agent) GenerateBatch(ctx context.Context, issues []Issue, b Brand) agent.Result[[]Output] {
	start := time.Now()
	out := []Output{}
	var errs []string
	for i, issue := range issues {
		if i > 0 && a.pause > 0 {
			select {
			case <-ctx.Done():
				return agent.Fail[[]Output](Source, start, ctx.Err())
			case <-time.After(a.pause):
			}
		}
		res := a.Generate(ctx, issue, b)
		if !res.Success {
			errs = append(errs, fmt.Sprintf("%s: %s", issue.Title, strings.Join(res.Errors, "; ")))
			continue
		}
		out = append(out, res.Data)
	}
	if len(out) == 0 {
		if len(errs) == 0 {
			return agent.Fail[[]Output](Source, start, errors.New("no issues to correct"))
		}
		res := agent.Fail[[]Output](Source, start, nil)
		res.Errors = errs
		return res
	}
	res := agent.OK(out, confidence, Source, start)
	res.Errors = errs
	return res
}

func (a *Agent) schemaOrg(ctx context.Context, brandContext, problem, issue string) (string, error) {
	text, err := a.llm.GenerateText(ctx, schemaOrgSystem, schemaOrgPrompt(brandContext, problem, issue),
		openai.WithModel(llmModel), openai.WithTemperature(0.3), openai.WithMaxOutputTokens(maxOutputTokens))
	if err != nil {
		return "", err
	}
	fix := StripFences(text)
	if fix == "" {
		return "", errors.New("empty response")
	}
	return fix, nil
}

func (a *Agent) faq(ctx context.Context, brandContext, problem, issue string, misconceptions []string) (string, error) {
	raw, err := a.llm.GenerateJSON(ctx, faqSystem, faqPrompt(brandContext, problem, issue, misconceptions),
		faqSchemaName, faqSchema,
		openai.WithModel(llmModel), openai.WithTemperature(0.5), openai.WithMaxOutputTokens(maxOutputTokens))
	if err != nil {
		return "", err
	}
	parsed, err := llmschema.Decode[faqOut](raw)
	if err != nil {
		return "", err
	}
	var entries []string
	for _, e := range parsed.Entries {
		q, ans := strings.TrimSpace(e.Question), strings.TrimSpace(e.Answer)
		if q == "" || ans == "" {
			continue
		}
		entries = append(entries, "Q: "+q+"\nA: "+ans)
	}
	if len(entries) == 0 {
		return "", errors.New("no faq entries")
	}
	return strings.Join(entries, "\n\n"), nil
}

func (a *Agent) content(ctx context.Context, brandContext, problem, issue string) (string, error) {
	raw, err := a.llm.GenerateJSON(ctx, contentSystem, contentPrompt(brandContext, problem, issue),
		contentSchemaName, contentSchema,
		openai.WithModel(llmModel), openai.WithTemperature(0.5), openai.WithMaxOutputTokens(maxOutputTokens))
	if err != nil {
		return "", err
	}
	c, err := llmschema.Decode[contentOut](raw)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", c.SectionTitle)
	fmt.Fprintf(&sb, "### Headline:\n%s\n\n", c.Headline)
	sb.WriteString("### Content Outline:\n")
	writeList(&sb, c.Outline)
	sb.WriteString("\n### Key Messages:\n")
	writeList(&sb, c.KeyMessages)
	fmt.Fprintf(&sb, "\n### Tone Guidance:\n%s", c.ToneGuidance)
	return sb.String(), nil
}

func (a *Agent) wikipedia(ctx context.Context, brandContext, problem, issue string) (string, error) {
	raw, err := a.llm.GenerateJSON(ctx, wikipediaSystem, wikipediaPrompt(brandContext, problem, issue),
		wikipediaSchemaName, wikipediaSchema,
		openai.WithModel(llmModel), openai.WithTemperature(0.3), openai.WithMaxOutputTokens(maxOutputTokens))
	if err != nil {
		return "", err
	}
	w, err := llmschema.Decode[wikipediaOut](raw)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("## Wikipedia Edit Suggestions\n\n")
	sb.WriteString("### Suggested Edits:\n")
	writeList(&sb, w.SuggestedEdits)
	sb.WriteString("\n### Sources Needed:\n")
	writeList(&sb, w.SourcesNeeded)
	sb.WriteString("\n### Existing Claims to Update:\n")
	writeList(&sb, w.ExistingClaimsToUpdate)
	fmt.Fprintf(&sb, "\n### Notes:\n%s", w.Notes)
	return sb.String(), nil
}

// StripFences returns the body of the first fenced code block in s, or s
// itself trimmed when there is none.
func StripFences(s string) string {
	if m := fencedJSON.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

func writeList(sb *strings.Builder, items []string) {
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			fmt.Fprintf(sb, "- %s\n", it)
		}
	}
}

func first(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}
