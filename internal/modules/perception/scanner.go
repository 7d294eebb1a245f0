package perception

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/promptgen"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const autoGenerateMaxPerCategory = 13

var autoGenerateCategories = []model.Category{
	model.CategoryNavigational,
	model.CategoryComparative,
	model.CategoryVoice,
	model.CategoryAdversarial,
}

// PromptGenerator creates and stores prompts for a profile.
type PromptGenerator interface {
	GenerateForProfile(ctx context.Context, profileID uuid.UUID, req promptgen.Request) (promptgen.Result, error)
}

type Options struct {
	Platforms  []string `json:"platforms" yaml:"platforms"`
	MaxPrompts int      `json:"maxPrompts" yaml:"max_prompts"`
	// MockExternalPlatforms defaults to true.
	MockExternalPlatforms *bool            `json:"mockExternalPlatforms" yaml:"mock_external_platforms"`
	PromptIDs             []uuid.UUID      `json:"promptIds,omitempty" yaml:"-"`
	Categories            []model.Category `json:"categories,omitempty" yaml:"categories"`
	// Concurrency above 1 evaluates pairs on a bounded pool.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency"`
}

type ScanResult struct {
	ScanID           uuid.UUID      `json:"scanId"`
	ProfileID        uuid.UUID      `json:"profileId"`
	Status           string         `json:"status"`
	Platforms        []string       `json:"platforms"`
	PromptCount      int            `json:"promptCount"`
	CompletedCount   int            `json:"completedCount"`
	Results          []Scored       `json:"results"`
	AggregatedScores Scores         `json:"aggregatedScores"`
	QuadrantPosition model.Quadrant `json:"quadrantPosition"`
	Insights         []string       `json:"insights"`
	StartedAt        time.Time      `json:"startedAt"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
}

type ScannerDeps struct {
	Log       *logger.Logger
	Repos     *repos.Set
	Evaluator *Evaluator
	Prompts   PromptGenerator
	// Concurrency applies when a run does not set its own.
	Concurrency int
	// Defaults fill platforms, prompt cap, categories and mock mode left unset by a run.
	Defaults Options
}

// Scanner runs evaluation campaigns: every selected prompt against every
// platform, judged, persisted and aggregated.
type Scanner struct {
	deps ScannerDeps
	log  *logger.Logger
	now  func() time.Time
}

func NewScanner(deps ScannerDeps) *Scanner {
	return &Scanner{
		deps: deps,
		log:  deps.Log.With("component", "PerceptionScan"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type pair struct {
	idx    int
	prompt *model.GeneratedPrompt
	plat   string
}

// Run executes one scan. A failed (prompt, platform) pair is logged and left
// out; Run only errors when there is nothing to evaluate or the scan record
// cannot be written.
func (s *Scanner) Run(ctx context.Context, profileID uuid.UUID, opts Options, rep progress.Reporter) (*ScanResult, error) {
	if rep == nil {
		rep = progress.Nop
	}
	opts = s.withDefaults(opts)
	platforms, err := normalizePlatforms(opts.Platforms)
	if err != nil {
		return nil, err
	}
	mock := true
	if opts.MockExternalPlatforms != nil {
		mock = *opts.MockExternalPlatforms
	}

	ctx, span := otel.Tracer("brandlens/perception").Start(ctx, "perception.scan")
	defer span.End()
	span.SetAttributes(
		attribute.String("profile_id", profileID.String()),
		attribute.StringSlice("platforms", platforms),
	)

	startedAt := s.now()
	dbc := dbctx.Context{Ctx: ctx}
	rep.Report("initializing", 0, "Loading brand data...")
	gt, err := s.deps.Repos.GroundTruth.Load(dbc, profileID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load ground truth: %w", err)
	}
	facts := FactsFrom(gt)

	rep.Report("loading_prompts", 10, "Loading prompts...")
	prompts, err := s.loadPrompts(dbc, profileID, opts)
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 && len(opts.PromptIDs) == 0 && s.deps.Prompts != nil {
		rep.Report("generating_prompts", 12, "No prompts found. Auto-generating...")
		gen, err := s.deps.Prompts.GenerateForProfile(ctx, profileID, promptgen.Request{
			Options: promptgen.Options{
				Categories:     autoGenerateCategories,
				MaxPerCategory: autoGenerateMaxPerCategory,
			},
		})
		if err != nil {
			s.log.Warn("Prompt auto-generation failed", "profile_id", profileID, "error", err)
		} else {
			s.log.Info("Auto-generated prompts", "profile_id", profileID, "count", gen.TotalGenerated)
			if prompts, err = s.loadPrompts(dbc, profileID, opts); err != nil {
				return nil, err
			}
		}
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts for profile %s: %w", profileID, errs.ErrNoUsableInput)
	}
	prompts = BalancedSelect(prompts, opts.MaxPrompts)

	rep.Report("creating_scan", 15, "Creating scan record...")
	scan, err := s.deps.Repos.Scans.Create(dbc, &model.PerceptionScan{
		ProfileID:   profileID,
		Status:      model.ScanRunning,
		Platforms:   jsonx.Encode(platforms),
		PromptCount: len(prompts) * len(platforms),
		StartedAt:   startedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create scan: %w", err)
	}
	span.SetAttributes(attribute.String("scan_id", scan.ID.String()))
	s.log.Info("Scan started",
		"scan_id", scan.ID,
		"prompts", len(prompts),
		"platforms", len(platforms),
	)

	evals := s.evaluateAll(ctx, scan, prompts, platforms, facts, mock, s.concurrency(opts), rep)

	if len(evals) == 0 {
		reason := "no evaluations succeeded"
		if ferr := s.deps.Repos.Scans.MarkFailed(dbc, scan.ID, reason); ferr != nil {
			s.log.Warn("Mark scan failed", "scan_id", scan.ID, "error", ferr)
		}
		span.SetStatus(codes.Error, reason)
		return nil, fmt.Errorf("scan %s: %s: %w", scan.ID, reason, errs.ErrNoUsableInput)
	}

	rep.Report("aggregating", 85, "Aggregating scores...")
	scores := Aggregate(evals)
	quadrant := scores.Quadrant()

	rep.Report("insights", 90, "Generating insights...")
	insights := GenerateInsights(evals, scores)
	titles := make([]string, 0, len(insights))
	for _, in := range insights {
		in.ProfileID = profileID
		in.ScanID = scan.ID
		titles = append(titles, in.Title)
	}
	if len(insights) > 0 {
		if _, err := s.deps.Repos.Insights.Create(dbc, insights); err != nil {
			s.log.Warn("Save insights failed", "scan_id", scan.ID, "error", err)
		}
	}

	completedAt := s.now()
	overall := scores.Overall
	if err := s.deps.Repos.Scans.UpdateFields(dbc, scan.ID, map[string]interface{}{
		"status":            model.ScanCompleted,
		"completed_at":      completedAt,
		"overall_score":     overall,
		"platform_scores":   jsonx.Encode(scores.ByPlatform),
		"category_scores":   jsonx.Encode(scores.ByCategory),
		"metric_scores":     jsonx.Encode(scores.ByMetric),
		"quadrant_position": quadrant,
	}); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("complete scan: %w", err)
	}
	rep.Report("complete", 100, "Scan complete!")

	s.log.Info("Scan finished",
		"scan_id", scan.ID,
		"completed", len(evals),
		"overall_score", overall,
		"quadrant", quadrant,
		"insights", len(titles),
	)
	return &ScanResult{
		ScanID:           scan.ID,
		ProfileID:        profileID,
		Status:           model.ScanCompleted,
		Platforms:        platforms,
		PromptCount:      scan.PromptCount,
		CompletedCount:   len(evals),
		Results:          evals,
		AggregatedScores: scores,
		QuadrantPosition: quadrant,
		Insights:         titles,
		StartedAt:        startedAt,
		CompletedAt:      &completedAt,
	}, nil
}

func (s *Scanner) withDefaults(opts Options) Options {
	d := s.deps.Defaults
	if len(opts.Platforms) == 0 {
		opts.Platforms = d.Platforms
	}
	if opts.MaxPrompts == 0 {
		opts.MaxPrompts = d.MaxPrompts
	}
	if len(opts.Categories) == 0 {
		opts.Categories = d.Categories
	}
	if opts.MockExternalPlatforms == nil {
		opts.MockExternalPlatforms = d.MockExternalPlatforms
	}
	return opts
}

func (s *Scanner) concurrency(opts Options) int {
	n := opts.Concurrency
	if n <= 0 {
		n = s.deps.Concurrency
	}
	if n <= 0 {
		n = 1
	}
	return n
}

// evaluateAll walks prompts x platforms. Results keep pair order whatever
// the pool size; completed counts and progress only move forward.
func (s *Scanner) evaluateAll(ctx context.Context, scan *model.PerceptionScan, prompts []*model.GeneratedPrompt, platforms []string, facts Facts, mock bool, workers int, rep progress.Reporter) []Scored {
	total := len(prompts) * len(platforms)
	slots := make([]*Scored, total)

	var mu sync.Mutex
	done := 0

	run := func(p pair) {
		mu.Lock()
		rep.Report("evaluating", 20+round(float64(done)/float64(total)*60), "Evaluating prompt on "+p.plat+"...")
		mu.Unlock()

		sc, err := s.evaluatePair(ctx, scan.ID, p, facts, mock)
		if err != nil {
			s.log.Warn("Evaluation failed",
				"scan_id", scan.ID,
				"prompt_id", p.prompt.ID,
				"platform", p.plat,
				"error", err,
			)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		slots[p.idx] = sc
		done++
		if err := s.deps.Repos.Scans.SetCompletedCount(dbctx.Context{Ctx: ctx}, scan.ID, done); err != nil {
			s.log.Warn("Update completed count failed", "scan_id", scan.ID, "error", err)
		}
	}

	pairs := make([]pair, 0, total)
	for _, pr := range prompts {
		for _, plat := range platforms {
			pairs = append(pairs, pair{idx: len(pairs), prompt: pr, plat: plat})
		}
	}

	if workers <= 1 {
		for _, p := range pairs {
			if ctx.Err() != nil {
				break
			}
			run(p)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, p := range pairs {
			p := p
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				run(p)
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]Scored, 0, done)
	for _, sc := range slots {
		if sc != nil {
			out = append(out, *sc)
		}
	}
	return out
}

// evaluatePair queries, judges and stores one pair. A pair whose row cannot
// be stored counts as failed.
func (s *Scanner) evaluatePair(ctx context.Context, scanID uuid.UUID, p pair, facts Facts, mock bool) (*Scored, error) {
	ctx, span := otel.Tracer("brandlens/perception").Start(ctx, "perception.evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("prompt_id", p.prompt.ID.String()),
		attribute.String("platform", p.plat),
		attribute.String("category", string(p.prompt.Category)),
	)

	ev, err := s.deps.Evaluator.EvaluatePrompt(ctx, promptContext(p.prompt), p.plat, facts, mock)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if _, err := s.deps.Repos.Results.Create(dbctx.Context{Ctx: ctx}, resultRow(scanID, p.prompt.ID, ev)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("save result: %w", err)
	}
	span.SetAttributes(attribute.Int("overall_score", ev.OverallScore))
	return &Scored{Evaluation: ev, PromptID: p.prompt.ID, Category: p.prompt.Category}, nil
}

func (s *Scanner) loadPrompts(dbc dbctx.Context, profileID uuid.UUID, opts Options) ([]*model.GeneratedPrompt, error) {
	var (
		prompts []*model.GeneratedPrompt
		err     error
	)
	if len(opts.PromptIDs) > 0 {
		prompts, err = s.deps.Repos.Prompts.GetByIDs(dbc, opts.PromptIDs)
		if err != nil {
			return nil, fmt.Errorf("load prompts: %w", err)
		}
		sort.SliceStable(prompts, func(i, j int) bool { return prompts[i].Priority > prompts[j].Priority })
	} else {
		prompts, err = s.deps.Repos.Prompts.ListActive(dbc, profileID)
		if err != nil {
			return nil, fmt.Errorf("load prompts: %w", err)
		}
	}
	out := prompts[:0]
	for _, p := range prompts {
		if p.ProfileID != profileID || !p.IsActive {
			continue
		}
		if len(opts.Categories) > 0 && !hasCategory(opts.Categories, p.Category) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetScan rebuilds a scan result from storage.
func (s *Scanner) GetScan(ctx context.Context, scanID uuid.UUID) (*ScanResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	scan, err := s.deps.Repos.Scans.GetByID(dbc, scanID)
	if err != nil {
		return nil, err
	}
	rows, err := s.deps.Repos.Results.ListByScan(dbc, scanID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	insights, err := s.deps.Repos.Insights.ListByScan(dbc, scanID)
	if err != nil {
		return nil, fmt.Errorf("load insights: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PromptID)
	}
	categories := map[uuid.UUID]model.Category{}
	if len(ids) > 0 {
		prompts, err := s.deps.Repos.Prompts.GetByIDs(dbc, ids)
		if err != nil {
			return nil, fmt.Errorf("load prompts: %w", err)
		}
		for _, p := range prompts {
			categories[p.ID] = p.Category
		}
	}

	res := &ScanResult{
		ScanID:           scan.ID,
		ProfileID:        scan.ProfileID,
		Status:           scan.Status,
		Platforms:        jsonx.Strings(scan.Platforms),
		PromptCount:      scan.PromptCount,
		CompletedCount:   scan.CompletedCount,
		Results:          make([]Scored, 0, len(rows)),
		QuadrantPosition: scan.QuadrantPosition,
		Insights:         make([]string, 0, len(insights)),
		StartedAt:        scan.StartedAt,
		CompletedAt:      scan.CompletedAt,
		AggregatedScores: Scores{
			ByPlatform: jsonx.Decode[map[string]int](scan.PlatformScores),
			ByCategory: jsonx.Decode[map[model.Category]int](scan.CategoryScores),
			ByMetric:   jsonx.Decode[MetricScores](scan.MetricScores),
		},
	}
	if scan.OverallScore != nil {
		res.AggregatedScores.Overall = *scan.OverallScore
	}
	for _, r := range rows {
		res.Results = append(res.Results, Scored{
			Evaluation: evaluationFromRow(r),
			PromptID:   r.PromptID,
			Category:   categories[r.PromptID],
		})
	}
	for _, in := range insights {
		res.Insights = append(res.Insights, in.Title)
	}
	return res, nil
}

// ListScans returns a profile's most recent scans first.
func (s *Scanner) ListScans(ctx context.Context, profileID uuid.UUID, limit int) ([]*model.PerceptionScan, error) {
	return s.deps.Repos.Scans.ListByProfile(dbctx.Context{Ctx: ctx}, profileID, limit)
}

// Compare loads two scans and diffs them, base first.
func (s *Scanner) Compare(ctx context.Context, baseID, nextID uuid.UUID) (Comparison, error) {
	base, err := s.GetScan(ctx, baseID)
	if err != nil {
		return Comparison{}, err
	}
	next, err := s.GetScan(ctx, nextID)
	if err != nil {
		return Comparison{}, err
	}
	if base.ProfileID != next.ProfileID {
		return Comparison{}, fmt.Errorf("scans belong to different profiles: %w", errs.ErrInvalidArgument)
	}
	return CompareScans(base, next), nil
}

func normalizePlatforms(in []string) ([]string, error) {
	if len(in) == 0 {
		return []string{PlatformChatGPT}, nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, p := range in {
		if !ValidPlatform(p) {
			return nil, fmt.Errorf("unknown platform %q: %w", p, errs.ErrInvalidArgument)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func hasCategory(list []model.Category, c model.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func promptContext(p *model.GeneratedPrompt) PromptContext {
	return PromptContext{
		RenderedPrompt:    p.RenderedPrompt,
		HallucinationTest: p.HallucinationTest,
		AdversarialTwist:  p.AdversarialTwist,
		ExpectedThemes:    jsonx.Strings(p.ExpectedThemes),
		ExpectedTone:      p.ExpectedTone,
	}
}

func resultRow(scanID, promptID uuid.UUID, ev Evaluation) *model.PerceptionResult {
	m := ev.Metrics
	return &model.PerceptionResult{
		ScanID:               scanID,
		PromptID:             promptID,
		Platform:             ev.Platform,
		Model:                ev.Model,
		Response:             ev.Response,
		ResponseTimeMs:       ev.ResponseTimeMs,
		TokensUsed:           ev.TokensUsed,
		FaithfulnessScore:    m.FaithfulnessScore,
		ShareOfVoice:         m.ShareOfVoice,
		Sentiment:            m.OverallSentiment,
		VoiceAlignment:       m.VoiceAlignmentScore,
		HallucinationScore:   m.HallucinationScore,
		OverallScore:         ev.OverallScore,
		BrandMentioned:       m.BrandMentioned,
		BrandPosition:        m.BrandPosition,
		CompetitorsMentioned: jsonx.Encode(m.CompetitorsMentioned),
		CompetitorPositions:  jsonx.Encode(m.CompetitorPositions),
		Hallucinations:       jsonx.Encode(m.Hallucinations),
		FaithfulnessErrors:   jsonx.Encode(m.FaithfulnessErrors),
		AspectSentiments:     jsonx.Encode(m.AspectSentiments),
		VoiceDeviations:      jsonx.Encode(m.VoiceDeviations),
		PassedTrapTest:       m.PassedTrapTest,
		KeyThemes:            jsonx.Encode(m.KeyThemes),
		MissingInformation:   jsonx.Encode(m.MissingInformation),
		Opportunities:        jsonx.Encode(m.Opportunities),
		Reasoning:            jsonx.Encode(m.Summary),
	}
}

func evaluationFromRow(r *model.PerceptionResult) Evaluation {
	return Evaluation{
		Platform:       r.Platform,
		Model:          r.Model,
		Response:       r.Response,
		ResponseTimeMs: r.ResponseTimeMs,
		TokensUsed:     r.TokensUsed,
		OverallScore:   r.OverallScore,
		Metrics: Metrics{
			FaithfulnessScore:    r.FaithfulnessScore,
			FaithfulnessErrors:   jsonx.Strings(r.FaithfulnessErrors),
			ShareOfVoice:         r.ShareOfVoice,
			BrandMentioned:       r.BrandMentioned,
			BrandPosition:        r.BrandPosition,
			CompetitorsMentioned: jsonx.Strings(r.CompetitorsMentioned),
			CompetitorPositions:  jsonx.Decode[map[string]int](r.CompetitorPositions),
			OverallSentiment:     r.Sentiment,
			AspectSentiments:     jsonx.Decode[map[string]float64](r.AspectSentiments),
			VoiceAlignmentScore:  r.VoiceAlignment,
			VoiceDeviations:      jsonx.Strings(r.VoiceDeviations),
			HallucinationScore:   r.HallucinationScore,
			Hallucinations:       jsonx.Strings(r.Hallucinations),
			PassedTrapTest:       r.PassedTrapTest,
			KeyThemes:            jsonx.Strings(r.KeyThemes),
			MissingInformation:   jsonx.Strings(r.MissingInformation),
			Opportunities:        jsonx.Strings(r.Opportunities),
			Summary:              jsonx.Decode[string](r.Reasoning),
		},
	}
}
