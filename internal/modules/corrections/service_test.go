package corrections

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/agents/correction"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	repoperception "github.com/yungbote/brandlens-backend/internal/data/repos/perception"
	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/openai/openaitest"
)

type fixture struct {
	tx      *gorm.DB
	rs      *repos.Set
	llm     *openaitest.Fake
	profile *brand.BrandProfile
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	rs := repos.NewSet(tx, log)

	profile := testutil.SeedProfile(t, ctx, tx, "Acme")
	testutil.SeedCompetitor(t, ctx, tx, profile.ID, "Globex", "high")

	llm := openaitest.New().
		On("correction_faq", map[string]any{"entries": []any{
			map[string]any{"question": "What does Acme do?", "answer": "Acme makes rockets."},
		}}).
		On("correction_content", map[string]any{"sectionTitle": "About", "headline": "Acme", "outline": []any{}, "keyMessages": []any{}, "toneGuidance": ""}).
		On("correction_wikipedia", map[string]any{"suggestedEdits": []any{"Fix founding year"}, "sourcesNeeded": []any{}, "existingClaimsToUpdate": []any{}, "notes": ""})
	llm.Text = "```json\n{\"@type\":\"Organization\"}\n```"

	gen := correction.New(log, llm).WithPause(0)
	return &fixture{tx: tx, rs: rs, llm: llm, profile: profile, svc: NewService(log, rs, gen)}
}

// completedScan stores a finished scan with the given overall score.
func (f *fixture) completedScan(t *testing.T, score int) *model.PerceptionScan {
	t.Helper()
	ctx := context.Background()
	s := testutil.SeedScan(t, ctx, f.tx, f.profile.ID, 1)
	if err := f.rs.Scans.UpdateFields(dbctx.Context{Ctx: ctx}, s.ID, map[string]interface{}{
		"status":        model.ScanCompleted,
		"overall_score": score,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	return s
}

func TestGenerateForInsight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scan := f.completedScan(t, 60)
	in := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightHallucination, model.PriorityCritical, "Hallucination Risk Detected")

	got, err := f.svc.GenerateForInsight(ctx, in.ID)
	if err != nil {
		t.Fatalf("GenerateForInsight: %v", err)
	}
	c := got.Correction
	if c.InsightID == nil || *c.InsightID != in.ID {
		t.Fatalf("insight link lost: %v", c.InsightID)
	}
	if c.ProblemType != model.ProblemHallucination || c.Status != model.CorrectionSuggested {
		t.Fatalf("unexpected correction %+v", c)
	}
	if c.PreFixScore == nil || *c.PreFixScore != 60 {
		t.Fatalf("pre-fix score = %v, want 60", c.PreFixScore)
	}
	if c.SchemaOrgFix != `{"@type":"Organization"}` || c.WikipediaFix == "" {
		t.Fatalf("fixes not stored: %+v", c)
	}
	if len(got.Suggestions) != 4 {
		t.Fatalf("got %d suggestions, want 4", len(got.Suggestions))
	}
	if diff := cmp.Diff([]string{"chatgpt"}, jsonx.Strings(c.AffectedPlatforms)); diff != "" {
		t.Fatalf("platforms (-want +got):\n%s", diff)
	}

	stored, err := f.rs.Corrections.GetByID(dbctx.Context{Ctx: ctx}, c.ID)
	if err != nil || stored.FAQPageFix != "Q: What does Acme do?\nA: Acme makes rockets." {
		t.Fatalf("stored correction: %+v err=%v", stored, err)
	}
}

func TestGenerateForInsight_NoFixes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("down")
	f.llm.TextErr = boom
	f.llm.Fail("correction_faq", boom).Fail("correction_content", boom).Fail("correction_wikipedia", boom)
	scan := testutil.SeedScan(t, ctx, f.tx, f.profile.ID, 1)
	in := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightVoice, model.PriorityMedium, "Brand Voice Misalignment")

	if _, err := f.svc.GenerateForInsight(ctx, in.ID); !errors.Is(err, errs.ErrNoUsableInput) {
		t.Fatalf("expected ErrNoUsableInput, got %v", err)
	}
	if _, err := f.svc.GenerateForInsight(ctx, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerateForScan_OpenInsightsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scan := f.completedScan(t, 40)
	open := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightVisibility, model.PriorityCritical, "Low AI Visibility")
	closed := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightVoice, model.PriorityMedium, "Brand Voice Misalignment")
	if err := f.rs.Insights.SetStatus(dbctx.Context{Ctx: ctx}, closed.ID, model.InsightDismissed); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := f.svc.GenerateForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GenerateForScan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d corrections, want 1", len(got))
	}
	c := got[0].Correction
	if c.InsightID == nil || *c.InsightID != open.ID || c.ProblemType != model.ProblemMissingInfo {
		t.Fatalf("unexpected correction %+v", c)
	}
}

func TestCreateManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateManual(ctx, f.profile.ID, ManualRequest{ProblemType: "visibility"})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	got, err := f.svc.CreateManual(ctx, f.profile.ID, ManualRequest{
		ProblemType:       model.ProblemWrongSentiment,
		Description:       "Reviews are framed negatively.",
		AffectedPlatforms: []string{"gemini"},
	})
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}
	c := got.Correction
	if c.ProblemType != model.ProblemWrongSentiment || c.InsightID != nil || c.PreFixScore != nil {
		t.Fatalf("unexpected correction %+v", c)
	}
	if c.ProblemDescription != "wrong sentiment issue: Reviews are framed negatively." {
		t.Fatalf("description %q", c.ProblemDescription)
	}
	// Medium priority skips the Wikipedia draft.
	if c.WikipediaFix != "" || len(got.Suggestions) != 3 {
		t.Fatalf("unexpected suggestions %d", len(got.Suggestions))
	}
}

func TestTransitionAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scan := f.completedScan(t, 50)
	in := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightAccuracy, model.PriorityHigh, "Factual Inaccuracies Detected")
	gen, err := f.svc.GenerateForInsight(ctx, in.ID)
	if err != nil {
		t.Fatalf("GenerateForInsight: %v", err)
	}
	testutil.SeedCorrection(t, ctx, f.tx, f.profile.ID, model.CorrectionSuggested)

	if _, err := f.svc.Transition(ctx, gen.Correction.ID, "done", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	c, err := f.svc.Transition(ctx, gen.Correction.ID, model.CorrectionApproved, "ship it")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if c.Status != model.CorrectionApproved || c.ApprovedAt == nil {
		t.Fatalf("not approved: %+v", c)
	}
	insight, err := f.rs.Insights.GetByID(dbctx.Context{Ctx: ctx}, in.ID)
	if err != nil || insight.Status != model.InsightInProgress {
		t.Fatalf("insight status = %q err=%v", insight.Status, err)
	}

	page, err := f.svc.List(ctx, f.profile.ID, repoperception.CorrectionFilter{Status: model.CorrectionApproved})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Corrections) != 1 || page.Corrections[0].ID != c.ID {
		t.Fatalf("filter by status returned %d", len(page.Corrections))
	}
	want := map[model.CorrectionStatus]int64{
		model.CorrectionSuggested:   1,
		model.CorrectionApproved:    1,
		model.CorrectionImplemented: 0,
		model.CorrectionVerified:    0,
		model.CorrectionDismissed:   0,
	}
	if diff := cmp.Diff(want, page.StatusCounts); diff != "" {
		t.Fatalf("status counts (-want +got):\n%s", diff)
	}
	if _, err := f.svc.List(ctx, f.profile.ID, repoperception.CorrectionFilter{Status: "bogus"}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scan := f.completedScan(t, 60)
	in := testutil.SeedInsight(t, ctx, f.tx, f.profile.ID, scan.ID, model.InsightAccuracy, model.PriorityHigh, "Factual Inaccuracies Detected")
	gen, err := f.svc.GenerateForInsight(ctx, in.ID)
	if err != nil {
		t.Fatalf("GenerateForInsight: %v", err)
	}
	id := gen.Correction.ID

	if _, err := f.svc.Verify(ctx, id, VerifyRequest{}); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("verify from suggested: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.Transition(ctx, id, model.CorrectionApproved, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	post := 75.0
	v, err := f.svc.Verify(ctx, id, VerifyRequest{PostFixScore: &post, Notes: "rescanned"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	c := v.Correction
	if c.Status != model.CorrectionVerified || c.ImplementedAt == nil || c.VerifiedAt == nil || c.Notes != "rescanned" {
		t.Fatalf("not verified: %+v", c)
	}
	if c.PostFixScore == nil || *c.PostFixScore != 75 {
		t.Fatalf("post-fix score = %v", c.PostFixScore)
	}
	want := &Improvement{Before: 60, After: 75, Change: 15, PercentChange: 25, Improved: true}
	if diff := cmp.Diff(want, v.Improvement); diff != "" {
		t.Fatalf("improvement (-want +got):\n%s", diff)
	}
	if v.Summary != "Score improved by 15.0 points (25.0%)" || v.Outcome != "success" {
		t.Fatalf("summary %q outcome %q", v.Summary, v.Outcome)
	}
	insight, err := f.rs.Insights.GetByID(dbctx.Context{Ctx: ctx}, in.ID)
	if err != nil || insight.Status != model.InsightResolved {
		t.Fatalf("insight status = %q err=%v", insight.Status, err)
	}
}

func TestVerify_UsesLatestScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completedScan(t, 60)
	c := testutil.SeedCorrection(t, ctx, f.tx, f.profile.ID, model.CorrectionImplemented)

	v, err := f.svc.Verify(ctx, c.ID, VerifyRequest{UseLatestScan: true})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Correction.PostFixScore == nil || *v.Correction.PostFixScore != 60 {
		t.Fatalf("post-fix score = %v", v.Correction.PostFixScore)
	}
	// The seeded correction has no pre-fix score.
	if v.Improvement != nil || v.Outcome != "unknown" {
		t.Fatalf("unexpected improvement %+v outcome %q", v.Improvement, v.Outcome)
	}
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		before, after float64
		summary       string
		outcome       string
	}{
		{80, 60, "Score decreased by 20.0 points", "warning"},
		{50, 50, "Score remained the same", "neutral"},
		{40, 50, "Score improved by 10.0 points (25.0%)", "success"},
		{0, 50, "No comparison available (missing pre-fix or post-fix score)", "unknown"},
	}
	for _, tc := range cases {
		summary, outcome := Summarize(Compare(tc.before, tc.after))
		if summary != tc.summary || outcome != tc.outcome {
			t.Fatalf("Summarize(%v -> %v) = %q, %q", tc.before, tc.after, summary, outcome)
		}
	}
}
