package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/temporalx/pipeline"
)

type ScanService interface {
	Run(ctx context.Context, profileID uuid.UUID, opts perception.Options, rep progress.Reporter) (*perception.ScanResult, error)
	GetScan(ctx context.Context, scanID uuid.UUID) (*perception.ScanResult, error)
	ListScans(ctx context.Context, profileID uuid.UUID, limit int) ([]*model.PerceptionScan, error)
	Compare(ctx context.Context, baseID, nextID uuid.UUID) (perception.Comparison, error)
}

type ScanHandler struct {
	scans   ScanService
	starter WorkflowStarter
}

// NewScanHandler runs scans inline when starter is nil.
func NewScanHandler(s ScanService, starter WorkflowStarter) *ScanHandler {
	return &ScanHandler{scans: s, starter: starter}
}

// POST /api/profiles/:id/scans
func (h *ScanHandler) StartScan(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var opts perception.Options
	if !bindOptional(c, &opts) {
		return
	}
	if h.starter != nil {
		run, err := h.starter.StartScan(c.Request.Context(), pipeline.ScanInput{ProfileID: id, Options: opts})
		if err != nil {
			response.RespondServiceError(c, "start_scan_failed", err)
			return
		}
		response.RespondAccepted(c, gin.H{"workflow": run})
		return
	}
	res, err := h.scans.Run(c.Request.Context(), id, opts, progress.Nop)
	if err != nil {
		response.RespondServiceError(c, "scan_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scan": res})
}

// GET /api/profiles/:id/scans
func (h *ScanHandler) ListScans(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	scans, err := h.scans.ListScans(c.Request.Context(), id, intQuery(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, "list_scans_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scans": scans})
}

// GET /api/scans/:id
func (h *ScanHandler) GetScan(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.scans.GetScan(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, "get_scan_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scan": res})
}

// GET /api/scans/:id/compare/:otherId
func (h *ScanHandler) Compare(c *gin.Context) {
	base, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	next, ok := uuidParam(c, "otherId")
	if !ok {
		return
	}
	cmp, err := h.scans.Compare(c.Request.Context(), base, next)
	if err != nil {
		response.RespondServiceError(c, "compare_scans_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"comparison": cmp})
}
