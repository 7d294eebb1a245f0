package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	repoperception "github.com/yungbote/brandlens-backend/internal/data/repos/perception"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	"github.com/yungbote/brandlens-backend/internal/modules/corrections"
	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/profiles"
	"github.com/yungbote/brandlens-backend/internal/modules/promptgen"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/temporalx/pipeline"
)

type fakeDiscovery struct{ in discovery.Input }

func (f *fakeDiscovery) Run(ctx context.Context, in discovery.Input, rep progress.Reporter) (*discovery.Result, error) {
	f.in = in
	return &discovery.Result{ProfileID: uuid.New(), CompletionScore: 70}, nil
}

type fakeStarter struct{ scans []pipeline.ScanInput }

func (f *fakeStarter) StartDiscovery(ctx context.Context, in discovery.Input) (pipeline.Run, error) {
	return pipeline.Run{WorkflowID: "discovery-1", RunID: "r1"}, nil
}

func (f *fakeStarter) StartScan(ctx context.Context, in pipeline.ScanInput) (pipeline.Run, error) {
	f.scans = append(f.scans, in)
	return pipeline.Run{WorkflowID: "scan-1", RunID: "r2"}, nil
}

type fakeProfiles struct{}

func (fakeProfiles) GroundTruth(ctx context.Context, id uuid.UUID) (*brand.GroundTruth, error) {
	return nil, fmt.Errorf("brand profile %s: %w", id, errs.ErrNotFound)
}

func (fakeProfiles) ReplaceClaims(ctx context.Context, id uuid.UUID, in []profiles.ClaimInput) ([]*brand.Claim, error) {
	out := make([]*brand.Claim, 0, len(in))
	for _, c := range in {
		out = append(out, &brand.Claim{ProfileID: id, ClaimText: c.ClaimText})
	}
	return out, nil
}

func (fakeProfiles) SetRiskFactors(ctx context.Context, id uuid.UUID, in profiles.RiskInput) (*brand.RiskFactors, error) {
	return nil, errs.ErrInvalidArgument
}

type fakePrompts struct{ req promptgen.Request }

func (f *fakePrompts) GenerateForProfile(ctx context.Context, id uuid.UUID, req promptgen.Request) (promptgen.Result, error) {
	f.req = req
	return promptgen.Result{TotalGenerated: 3}, nil
}

type fakeScans struct{}

func (fakeScans) Run(ctx context.Context, id uuid.UUID, opts perception.Options, rep progress.Reporter) (*perception.ScanResult, error) {
	return &perception.ScanResult{ProfileID: id, Status: model.ScanCompleted}, nil
}

func (fakeScans) GetScan(ctx context.Context, id uuid.UUID) (*perception.ScanResult, error) {
	return nil, fmt.Errorf("scan %s: %w", id, errs.ErrNotFound)
}

func (fakeScans) ListScans(ctx context.Context, id uuid.UUID, limit int) ([]*model.PerceptionScan, error) {
	return make([]*model.PerceptionScan, limit), nil
}

func (fakeScans) Compare(ctx context.Context, a, b uuid.UUID) (perception.Comparison, error) {
	return perception.Comparison{BaseScanID: a, NextScanID: b, OverallDelta: 5}, nil
}

type fakeCorrections struct{ filter repoperception.CorrectionFilter }

func (f *fakeCorrections) GenerateForInsight(ctx context.Context, id uuid.UUID) (*corrections.Generated, error) {
	return &corrections.Generated{Correction: &model.Correction{InsightID: &id}}, nil
}

func (f *fakeCorrections) GenerateForScan(ctx context.Context, id uuid.UUID) ([]*corrections.Generated, error) {
	return nil, errs.ErrNoUsableInput
}

func (f *fakeCorrections) CreateManual(ctx context.Context, id uuid.UUID, req corrections.ManualRequest) (*corrections.Generated, error) {
	return nil, errs.ErrInvalidArgument
}

func (f *fakeCorrections) Get(ctx context.Context, id uuid.UUID) (*model.Correction, error) {
	return &model.Correction{ID: id}, nil
}

func (f *fakeCorrections) List(ctx context.Context, id uuid.UUID, filter repoperception.CorrectionFilter) (*corrections.ListResult, error) {
	f.filter = filter
	return &corrections.ListResult{}, nil
}

func (f *fakeCorrections) Transition(ctx context.Context, id uuid.UUID, to model.CorrectionStatus, notes string) (*model.Correction, error) {
	return nil, fmt.Errorf("suggested -> %s: %w", to, errs.ErrInvalidTransition)
}

func (f *fakeCorrections) Funnel(ctx context.Context, id uuid.UUID) (map[model.CorrectionStatus]int64, error) {
	return map[model.CorrectionStatus]int64{model.CorrectionSuggested: 2}, nil
}

func (f *fakeCorrections) Verify(ctx context.Context, id uuid.UUID, req corrections.VerifyRequest) (*corrections.Verification, error) {
	return &corrections.Verification{Outcome: "success"}, nil
}

type harness struct {
	engine      *gin.Engine
	discovery   *fakeDiscovery
	prompts     *fakePrompts
	corrections *fakeCorrections
	starter     *fakeStarter
}

func newHarness(withTemporal bool) *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{
		discovery:   &fakeDiscovery{},
		prompts:     &fakePrompts{},
		corrections: &fakeCorrections{},
		starter:     &fakeStarter{},
	}
	var starter httpH.WorkflowStarter
	if withTemporal {
		starter = h.starter
	}
	log := logger.Nop()
	h.engine = NewRouter(RouterConfig{
		Log:               log,
		ProfileHandler:    httpH.NewProfileHandler(log, h.discovery, fakeProfiles{}, starter),
		PromptHandler:     httpH.NewPromptHandler(h.prompts),
		ScanHandler:       httpH.NewScanHandler(fakeScans{}, starter),
		CorrectionHandler: httpH.NewCorrectionHandler(h.corrections),
		HealthHandler:     httpH.NewHealthHandler(nil),
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env, _ := decode(t, rec)["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealthcheck(t *testing.T) {
	rec := newHarness(false).do(t, nethttp.MethodGet, "/healthcheck", nil)
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDiscover_Inline(t *testing.T) {
	h := newHarness(false)
	rec := h.do(t, nethttp.MethodPost, "/api/profiles/discover", map[string]any{
		"organizationId": "org-1",
		"websiteUrl":     "https://acme.test",
		"brandName":      "Acme",
		"options":        map[string]any{"skipAudience": true},
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if h.discovery.in.WebsiteURL != "https://acme.test" || h.discovery.in.OrganizationID != "org-1" {
		t.Fatalf("unexpected input %+v", h.discovery.in)
	}
	res, _ := decode(t, rec)["result"].(map[string]any)
	if res["completionScore"] != float64(70) {
		t.Fatalf("unexpected result %v", res)
	}
}

func TestDiscover_StartsWorkflowWhenConfigured(t *testing.T) {
	rec := newHarness(true).do(t, nethttp.MethodPost, "/api/profiles/discover", map[string]any{"websiteUrl": "https://acme.test"})
	if rec.Code != nethttp.StatusAccepted {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	wf, _ := decode(t, rec)["workflow"].(map[string]any)
	if wf["workflowId"] != "discovery-1" {
		t.Fatalf("unexpected workflow %v", wf)
	}
}

func TestDiscover_RequiresWebsite(t *testing.T) {
	rec := newHarness(false).do(t, nethttp.MethodPost, "/api/profiles/discover", map[string]any{"brandName": "Acme"})
	if rec.Code != nethttp.StatusBadRequest || errorCode(t, rec) != "missing_website_url" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProfileRoutes(t *testing.T) {
	h := newHarness(false)
	id := uuid.NewString()

	if rec := h.do(t, nethttp.MethodGet, "/api/profiles/"+id, nil); rec.Code != nethttp.StatusNotFound {
		t.Fatalf("get profile: %d", rec.Code)
	}
	if rec := h.do(t, nethttp.MethodGet, "/api/profiles/not-a-uuid", nil); rec.Code != nethttp.StatusBadRequest || errorCode(t, rec) != "invalid_id" {
		t.Fatalf("bad id: %d %s", rec.Code, rec.Body.String())
	}
	rec := h.do(t, nethttp.MethodPut, "/api/profiles/"+id+"/claims", map[string]any{"claims": []any{map[string]any{"claimText": "Fastest rockets"}}})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("claims: %d %s", rec.Code, rec.Body.String())
	}
	if claims, _ := decode(t, rec)["claims"].([]any); len(claims) != 1 {
		t.Fatalf("unexpected claims %s", rec.Body.String())
	}
	if rec := h.do(t, nethttp.MethodPut, "/api/profiles/"+id+"/risk-factors", map[string]any{}); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("risk factors: %d", rec.Code)
	}
}

func TestGeneratePrompts_OptionalBody(t *testing.T) {
	h := newHarness(false)
	id := uuid.NewString()
	if rec := h.do(t, nethttp.MethodPost, "/api/profiles/"+id+"/prompts/generate", nil); rec.Code != nethttp.StatusOK {
		t.Fatalf("no body: %d %s", rec.Code, rec.Body.String())
	}
	rec := h.do(t, nethttp.MethodPost, "/api/profiles/"+id+"/prompts/generate", map[string]any{"regenerate": true, "maxPerCategory": 2})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("with body: %d", rec.Code)
	}
	if !h.prompts.req.Regenerate || h.prompts.req.MaxPerCategory != 2 {
		t.Fatalf("request not bound: %+v", h.prompts.req)
	}
}

func TestScanRoutes(t *testing.T) {
	h := newHarness(false)
	profileID := uuid.NewString()

	if rec := h.do(t, nethttp.MethodPost, "/api/profiles/"+profileID+"/scans", map[string]any{"platforms": []string{"chatgpt"}}); rec.Code != nethttp.StatusOK {
		t.Fatalf("run scan: %d %s", rec.Code, rec.Body.String())
	}
	rec := h.do(t, nethttp.MethodGet, "/api/profiles/"+profileID+"/scans?limit=3", nil)
	if scans, _ := decode(t, rec)["scans"].([]any); len(scans) != 3 {
		t.Fatalf("list scans: %s", rec.Body.String())
	}
	if rec := h.do(t, nethttp.MethodGet, "/api/scans/"+uuid.NewString(), nil); rec.Code != nethttp.StatusNotFound || errorCode(t, rec) != "not_found" {
		t.Fatalf("get scan: %d %s", rec.Code, rec.Body.String())
	}
	a, b := uuid.NewString(), uuid.NewString()
	rec = h.do(t, nethttp.MethodGet, "/api/scans/"+a+"/compare/"+b, nil)
	cmp, _ := decode(t, rec)["comparison"].(map[string]any)
	if rec.Code != nethttp.StatusOK || cmp["baseScanId"] != a || cmp["nextScanId"] != b || cmp["overallDelta"] != float64(5) {
		t.Fatalf("compare: %d %s", rec.Code, rec.Body.String())
	}
}

func TestStartScan_Workflow(t *testing.T) {
	h := newHarness(true)
	profileID := uuid.New()
	rec := h.do(t, nethttp.MethodPost, "/api/profiles/"+profileID.String()+"/scans", map[string]any{"maxPrompts": 5})
	if rec.Code != nethttp.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	if len(h.starter.scans) != 1 || h.starter.scans[0].ProfileID != profileID || h.starter.scans[0].Options.MaxPrompts != 5 {
		t.Fatalf("unexpected scan input %+v", h.starter.scans)
	}
}

func TestCorrectionRoutes(t *testing.T) {
	h := newHarness(false)
	profileID := uuid.NewString()
	id := uuid.NewString()

	if rec := h.do(t, nethttp.MethodPost, "/api/insights/"+id+"/corrections", nil); rec.Code != nethttp.StatusCreated {
		t.Fatalf("generate: %d", rec.Code)
	}
	if rec := h.do(t, nethttp.MethodPost, "/api/scans/"+id+"/corrections", nil); rec.Code != nethttp.StatusUnprocessableEntity {
		t.Fatalf("generate for scan: %d", rec.Code)
	}
	if rec := h.do(t, nethttp.MethodPost, "/api/profiles/"+profileID+"/corrections", map[string]any{"problemType": "bogus"}); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("manual: %d", rec.Code)
	}
	if rec := h.do(t, nethttp.MethodGet, "/api/profiles/"+profileID+"/corrections?status=approved&problemType=hallucination&limit=5&offset=10", nil); rec.Code != nethttp.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	want := repoperception.CorrectionFilter{Status: model.CorrectionApproved, ProblemType: "hallucination", Limit: 5, Offset: 10}
	if h.corrections.filter != want {
		t.Fatalf("filter %+v, want %+v", h.corrections.filter, want)
	}
	rec := h.do(t, nethttp.MethodGet, "/api/profiles/"+profileID+"/corrections/funnel", nil)
	if counts, _ := decode(t, rec)["statusCounts"].(map[string]any); counts["suggested"] != float64(2) {
		t.Fatalf("funnel: %s", rec.Body.String())
	}
	if rec := h.do(t, nethttp.MethodPost, "/api/corrections/"+id+"/transition", map[string]any{"to": "verified"}); rec.Code != nethttp.StatusConflict || errorCode(t, rec) != "invalid_transition" {
		t.Fatalf("transition: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, nethttp.MethodPost, "/api/corrections/"+id+"/transition", map[string]any{}); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("transition without target: %d", rec.Code)
	}
	rec = h.do(t, nethttp.MethodPost, "/api/corrections/"+id+"/verify", map[string]any{"postFixScore": 80})
	if rec.Code != nethttp.StatusOK || decode(t, rec)["outcome"] != "success" {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body.String())
	}
}
