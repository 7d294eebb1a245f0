package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/profiles"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/temporalx/pipeline"
)

type Discoverer interface {
	Run(ctx context.Context, in discovery.Input, rep progress.Reporter) (*discovery.Result, error)
}

// WorkflowStarter hands long runs to Temporal. *pipeline.Starter satisfies it.
type WorkflowStarter interface {
	StartDiscovery(ctx context.Context, in discovery.Input) (pipeline.Run, error)
	StartScan(ctx context.Context, in pipeline.ScanInput) (pipeline.Run, error)
}

type ProfileService interface {
	GroundTruth(ctx context.Context, profileID uuid.UUID) (*brand.GroundTruth, error)
	ReplaceClaims(ctx context.Context, profileID uuid.UUID, in []profiles.ClaimInput) ([]*brand.Claim, error)
	SetRiskFactors(ctx context.Context, profileID uuid.UUID, in profiles.RiskInput) (*brand.RiskFactors, error)
}

type ProfileHandler struct {
	log       *logger.Logger
	discovery Discoverer
	profiles  ProfileService
	starter   WorkflowStarter
}

// NewProfileHandler runs discovery inline when starter is nil.
func NewProfileHandler(log *logger.Logger, d Discoverer, p ProfileService, starter WorkflowStarter) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), discovery: d, profiles: p, starter: starter}
}

// POST /api/profiles/discover
func (h *ProfileHandler) Discover(c *gin.Context) {
	var in discovery.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(in.WebsiteURL) == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_website_url", fmt.Errorf("websiteUrl is required"))
		return
	}
	if h.starter != nil {
		run, err := h.starter.StartDiscovery(c.Request.Context(), in)
		if err != nil {
			response.RespondError(c, http.StatusInternalServerError, "start_discovery_failed", err)
			return
		}
		fields := append([]interface{}{"workflow_id", run.WorkflowID, "website_url", in.WebsiteURL}, ctxutil.LogFields(c.Request.Context())...)
		h.log.Info("Discovery workflow started", fields...)
		response.RespondAccepted(c, gin.H{"workflow": run})
		return
	}
	res, err := h.discovery.Run(c.Request.Context(), in, progress.Nop)
	if err != nil {
		response.RespondServiceError(c, "discovery_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	gt, err := h.profiles.GroundTruth(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "load_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"groundTruth": gt})
}

// PUT /api/profiles/:id/claims
func (h *ProfileHandler) ReplaceClaims(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Claims []profiles.ClaimInput `json:"claims"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	claims, err := h.profiles.ReplaceClaims(c.Request.Context(), id, body.Claims)
	if err != nil {
		response.RespondServiceError(c, "replace_claims_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"claims": claims})
}

// PUT /api/profiles/:id/risk-factors
func (h *ProfileHandler) SetRiskFactors(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body profiles.RiskInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rf, err := h.profiles.SetRiskFactors(c.Request.Context(), id, body)
	if err != nil {
		response.RespondServiceError(c, "set_risk_factors_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"riskFactors": rf})
}
