package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	repoperception "github.com/yungbote/brandlens-backend/internal/data/repos/perception"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/modules/corrections"
)

type CorrectionService interface {
	GenerateForInsight(ctx context.Context, insightID uuid.UUID) (*corrections.Generated, error)
	GenerateForScan(ctx context.Context, scanID uuid.UUID) ([]*corrections.Generated, error)
	CreateManual(ctx context.Context, profileID uuid.UUID, req corrections.ManualRequest) (*corrections.Generated, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Correction, error)
	List(ctx context.Context, profileID uuid.UUID, f repoperception.CorrectionFilter) (*corrections.ListResult, error)
	Transition(ctx context.Context, id uuid.UUID, to model.CorrectionStatus, notes string) (*model.Correction, error)
	Funnel(ctx context.Context, profileID uuid.UUID) (map[model.CorrectionStatus]int64, error)
	Verify(ctx context.Context, id uuid.UUID, req corrections.VerifyRequest) (*corrections.Verification, error)
}

type CorrectionHandler struct {
	corrections CorrectionService
}

func NewCorrectionHandler(s CorrectionService) *CorrectionHandler {
	return &CorrectionHandler{corrections: s}
}

// POST /api/insights/:id/corrections
func (h *CorrectionHandler) GenerateForInsight(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	g, err := h.corrections.GenerateForInsight(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "generate_correction_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"correction": g})
}

// POST /api/scans/:id/corrections
func (h *CorrectionHandler) GenerateForScan(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	gs, err := h.corrections.GenerateForScan(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "generate_corrections_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"corrections": gs})
}

// POST /api/profiles/:id/corrections
func (h *CorrectionHandler) CreateManual(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req corrections.ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	g, err := h.corrections.CreateManual(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, "create_correction_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"correction": g})
}

// GET /api/profiles/:id/corrections?status=&problemType=&limit=&offset=
func (h *CorrectionHandler) List(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.corrections.List(c.Request.Context(), id, repoperception.CorrectionFilter{
		Status:      model.CorrectionStatus(c.Query("status")),
		ProblemType: c.Query("problemType"),
		Limit:       intQuery(c, "limit", 0),
		Offset:      intQuery(c, "offset", 0),
	})
	if err != nil {
		response.RespondServiceError(c, "list_corrections_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/profiles/:id/corrections/funnel
func (h *CorrectionHandler) Funnel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	counts, err := h.corrections.Funnel(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "correction_funnel_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"statusCounts": counts})
}

// GET /api/corrections/:id
func (h *CorrectionHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	cr, err := h.corrections.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "get_correction_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"correction": cr})
}

// POST /api/corrections/:id/transition
func (h *CorrectionHandler) Transition(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		To    model.CorrectionStatus `json:"to" binding:"required"`
		Notes string                 `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cr, err := h.corrections.Transition(c.Request.Context(), id, body.To, body.Notes)
	if err != nil {
		response.RespondServiceError(c, "transition_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"correction": cr})
}

// POST /api/corrections/:id/verify
func (h *CorrectionHandler) Verify(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req corrections.VerifyRequest
	if !bindOptional(c, &req) {
		return
	}
	v, err := h.corrections.Verify(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, "verify_failed", err)
		return
	}
	response.RespondOK(c, v)
}
