// Package corrections turns perception insights into reviewable fixes and
// tracks them from suggestion through verification.
package corrections

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
	"github.com/yungbote/brandlens-backend/internal/agents/correction"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	repoperception "github.com/yungbote/brandlens-backend/internal/data/repos/perception"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// Generator drafts fixes. *correction.Agent satisfies it.
type Generator interface {
	Generate(ctx context.Context, issue correction.Issue, b correction.Brand) agent.Result[correction.Output]
	GenerateBatch(ctx context.Context, issues []correction.Issue, b correction.Brand) agent.Result[[]correction.Output]
}

type Service struct {
	log   *logger.Logger
	repos *repos.Set
	gen   Generator
}

func NewService(log *logger.Logger, rs *repos.Set, gen Generator) *Service {
	return &Service{log: log.With("component", "Corrections"), repos: rs, gen: gen}
}

// Generated is a stored correction plus the suggestions it was built from.
type Generated struct {
	Correction  *model.Correction      `json:"correction"`
	Suggestions []correction.Suggestion `json:"suggestions"`
}

// ManualRequest describes a problem that no scan insight covers.
type ManualRequest struct {
	ProblemType       string   `json:"problemType"`
	Description       string   `json:"description"`
	AffectedPlatforms []string `json:"affectedPlatforms"`
}

// ListResult is one page of corrections plus the profile's status funnel.
type ListResult struct {
	Corrections  []*model.Correction              `json:"corrections"`
	StatusCounts map[model.CorrectionStatus]int64 `json:"statusCounts"`
}

// VerifyRequest closes out a correction. PostFixScore wins over
// UseLatestScan when both are given.
type VerifyRequest struct {
	PostFixScore  *float64 `json:"postFixScore,omitempty"`
	UseLatestScan bool     `json:"useLatestScan"`
	Notes         string   `json:"notes,omitempty"`
}

type Improvement struct {
	Before        float64 `json:"before"`
	After         float64 `json:"after"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
	Improved      bool    `json:"improved"`
}

type Verification struct {
	Correction  *model.Correction `json:"correction"`
	Improvement *Improvement      `json:"improvement,omitempty"`
	Summary     string            `json:"summary"`
	Outcome     string            `json:"outcome"`
}

// GenerateForInsight drafts fixes for one stored insight and saves them as
// a suggested correction. The pre-fix score is the profile's latest
// completed scan score.
func (s *Service) GenerateForInsight(ctx context.Context, insightID uuid.UUID) (*Generated, error) {
	dbc := dbctx.Context{Ctx: ctx}
	in, err := s.repos.Insights.GetByID(dbc, insightID)
	if err != nil {
		return nil, err
	}
	b, err := s.loadBrand(dbc, in.ProfileID)
	if err != nil {
		return nil, err
	}
	res := s.gen.Generate(ctx, issueFrom(in), b)
	if !res.Success {
		return nil, fmt.Errorf("generate corrections: %s: %w", strings.Join(res.Errors, "; "), errs.ErrNoUsableInput)
	}
	out, err := s.save(dbc, in.ProfileID, []correction.Output{res.Data}, map[string]uuid.UUID{in.ID.String(): in.ID})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// GenerateForScan drafts fixes for every open insight a scan produced, one
// correction per insight that yielded any fix.
func (s *Service) GenerateForScan(ctx context.Context, scanID uuid.UUID) ([]*Generated, error) {
	dbc := dbctx.Context{Ctx: ctx}
	scan, err := s.repos.Scans.GetByID(dbc, scanID)
	if err != nil {
		return nil, err
	}
	insights, err := s.repos.Insights.ListByScan(dbc, scanID)
	if err != nil {
		return nil, err
	}
	ids := map[string]uuid.UUID{}
	var issues []correction.Issue
	for _, in := range insights {
		if in.Status != model.InsightOpen {
			continue
		}
		ids[in.ID.String()] = in.ID
		issues = append(issues, issueFrom(in))
	}
	if len(issues) == 0 {
		return []*Generated{}, nil
	}
	b, err := s.loadBrand(dbc, scan.ProfileID)
	if err != nil {
		return nil, err
	}
	res := s.gen.GenerateBatch(ctx, issues, b)
	if !res.Success {
		return nil, fmt.Errorf("generate corrections: %s: %w", strings.Join(res.Errors, "; "), errs.ErrNoUsableInput)
	}
	for _, e := range res.Errors {
		s.log.Warn("Correction skipped", "scan_id", scanID, "error", e)
	}
	return s.save(dbc, scan.ProfileID, res.Data, ids)
}

// CreateManual drafts fixes for a described problem with no backing insight.
func (s *Service) CreateManual(ctx context.Context, profileID uuid.UUID, req ManualRequest) (*Generated, error) {
	if !correction.ValidProblemType(req.ProblemType) {
		return nil, fmt.Errorf("problem type %q: %w", req.ProblemType, errs.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	b, err := s.loadBrand(dbc, profileID)
	if err != nil {
		return nil, err
	}
	issue := correction.Issue{
		Category:    req.ProblemType,
		Priority:    model.PriorityMedium,
		Title:       strings.ReplaceAll(req.ProblemType, "_", " ") + " issue",
		Description: req.Description,
		Platforms:   req.AffectedPlatforms,
	}
	res := s.gen.Generate(ctx, issue, b)
	if !res.Success {
		return nil, fmt.Errorf("generate corrections: %s: %w", strings.Join(res.Errors, "; "), errs.ErrNoUsableInput)
	}
	out, err := s.save(dbc, profileID, []correction.Output{res.Data}, nil)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Correction, error) {
	return s.repos.Corrections.GetByID(dbctx.Context{Ctx: ctx}, id)
}

func (s *Service) List(ctx context.Context, profileID uuid.UUID, f repoperception.CorrectionFilter) (*ListResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", f.Status, errs.ErrInvalidArgument)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	list, err := s.repos.Corrections.List(dbc, profileID, f)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Corrections.Funnel(dbc, profileID)
	if err != nil {
		return nil, err
	}
	return &ListResult{Corrections: list, StatusCounts: counts}, nil
}

// Transition moves a correction one step. Dismissing a correction linked to
// an insight dismisses the insight too.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to model.CorrectionStatus, notes string) (*model.Correction, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("status %q: %w", to, errs.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.repos.Corrections.Transition(dbc, id, to, notes)
	if err != nil {
		return nil, err
	}
	observability.Current().IncCorrection(string(to))
	switch to {
	case model.CorrectionApproved:
		s.setInsight(dbc, c, model.InsightInProgress)
	case model.CorrectionDismissed:
		s.setInsight(dbc, c, model.InsightDismissed)
	}
	return c, nil
}

func (s *Service) Funnel(ctx context.Context, profileID uuid.UUID) (map[model.CorrectionStatus]int64, error) {
	return s.repos.Corrections.Funnel(dbctx.Context{Ctx: ctx}, profileID)
}

// Verify marks an approved or implemented correction verified, records the
// post-fix score and resolves the linked insight. Approved corrections pass
// through implemented on the way.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, req VerifyRequest) (*Verification, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.repos.Corrections.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CorrectionApproved && c.Status != model.CorrectionImplemented {
		return nil, fmt.Errorf("correction %s is %s, must be approved or implemented: %w", id, c.Status, errs.ErrInvalidTransition)
	}

	post := req.PostFixScore
	if post == nil && req.UseLatestScan {
		if score, ok, err := s.latestScore(dbc, c.ProfileID); err != nil {
			return nil, err
		} else if ok {
			post = &score
		}
	}

	if c.Status == model.CorrectionApproved {
		if _, err := s.repos.Corrections.Transition(dbc, id, model.CorrectionImplemented, ""); err != nil {
			return nil, err
		}
	}
	if post != nil {
		if err := s.repos.Corrections.SetPostFixScore(dbc, id, *post); err != nil {
			return nil, err
		}
	}
	c, err = s.repos.Corrections.Transition(dbc, id, model.CorrectionVerified, req.Notes)
	if err != nil {
		return nil, err
	}
	observability.Current().IncCorrection(string(model.CorrectionVerified))
	s.setInsight(dbc, c, model.InsightResolved)

	v := &Verification{Correction: c}
	if c.PreFixScore != nil && c.PostFixScore != nil {
		v.Improvement = Compare(*c.PreFixScore, *c.PostFixScore)
	}
	v.Summary, v.Outcome = Summarize(v.Improvement)
	s.log.Info("Correction verified", "correction_id", id, "outcome", v.Outcome)
	return v, nil
}

// Compare returns the score change between two scans, or nil when there is
// no baseline to compare against.
func Compare(before, after float64) *Improvement {
	if before == 0 {
		return nil
	}
	change := after - before
	return &Improvement{
		Before:        before,
		After:         after,
		Change:        change,
		PercentChange: math.Round(change/before*1000) / 10,
		Improved:      after > before,
	}
}

// Summarize renders a one-line outcome and its status: success, neutral,
// warning, or unknown when there is nothing to compare.
func Summarize(imp *Improvement) (string, string) {
	switch {
	case imp == nil:
		return "No comparison available (missing pre-fix or post-fix score)", "unknown"
	case imp.Improved:
		return fmt.Sprintf("Score improved by %.1f points (%.1f%%)", imp.Change, imp.PercentChange), "success"
	case imp.Change == 0:
		return "Score remained the same", "neutral"
	default:
		return fmt.Sprintf("Score decreased by %.1f points", math.Abs(imp.Change)), "warning"
	}
}

func (s *Service) save(dbc dbctx.Context, profileID uuid.UUID, outs []correction.Output, insightIDs map[string]uuid.UUID) ([]*Generated, error) {
	pre, hasPre, err := s.latestScore(dbc, profileID)
	if err != nil {
		return nil, err
	}
	rows := make([]*model.Correction, 0, len(outs))
	for _, o := range outs {
		row := &model.Correction{
			ProfileID:          profileID,
			ProblemType:        o.ProblemType,
			ProblemDescription: o.ProblemDescription,
			Status:             model.CorrectionSuggested,
			AffectedPlatforms:  jsonx.Encode(o.AffectedPlatforms),
			SchemaOrgFix:       o.SchemaOrgFix,
			FAQPageFix:         o.FAQPageFix,
			ContentFix:         o.ContentFix,
			WikipediaFix:       o.WikipediaFix,
		}
		if id, ok := insightIDs[o.IssueID]; ok {
			row.InsightID = &id
		}
		if hasPre {
			score := pre
			row.PreFixScore = &score
		}
		rows = append(rows, row)
	}
	created, err := s.repos.Corrections.Create(dbc, rows)
	if err != nil {
		return nil, fmt.Errorf("save corrections: %w", err)
	}
	out := make([]*Generated, len(created))
	for i, c := range created {
		out[i] = &Generated{Correction: c, Suggestions: outs[i].Suggestions}
	}
	s.log.Info("Corrections generated", "profile_id", profileID, "count", len(out))
	return out, nil
}

// latestScore reports the overall score of the profile's most recent
// completed scan.
func (s *Service) latestScore(dbc dbctx.Context, profileID uuid.UUID) (float64, bool, error) {
	scans, err := s.repos.Scans.ListByProfile(dbc, profileID, 20)
	if err != nil {
		return 0, false, err
	}
	for _, sc := range scans {
		if sc.Status == model.ScanCompleted && sc.OverallScore != nil {
			return float64(*sc.OverallScore), true, nil
		}
	}
	return 0, false, nil
}

func (s *Service) setInsight(dbc dbctx.Context, c *model.Correction, status string) {
	if c.InsightID == nil {
		return
	}
	if err := s.repos.Insights.SetStatus(dbc, *c.InsightID, status); err != nil {
		s.log.Warn("Insight status update failed", "insight_id", *c.InsightID, "status", status, "error", err)
	}
}

func (s *Service) loadBrand(dbc dbctx.Context, profileID uuid.UUID) (correction.Brand, error) {
	gt, err := s.repos.GroundTruth.Load(dbc, profileID)
	if err != nil {
		return correction.Brand{}, fmt.Errorf("load ground truth: %w", err)
	}
	return BrandFrom(gt), nil
}

// BrandFrom flattens ground truth into the brand context fixes are drafted
// against.
func BrandFrom(gt *brand.GroundTruth) correction.Brand {
	f := perception.FactsFrom(gt)
	b := correction.Brand{
		Name:         f.BrandName,
		Claims:       f.Claims,
		Competitors:  f.Competitors,
		FoundingYear: f.FoundingYear,
		Founders:     f.Founders,
		Values:       f.Values,
		Tone:         f.Voice.PrimaryTone,
	}
	for _, p := range f.Products {
		b.Products = append(b.Products, p.Name)
	}
	return b
}

func issueFrom(in *model.PerceptionInsight) correction.Issue {
	return correction.Issue{
		ID:          in.ID.String(),
		Category:    in.Category,
		Priority:    in.Priority,
		Title:       in.Title,
		Description: in.Description,
		Platforms:   jsonx.Strings(in.Platforms),
	}
}
