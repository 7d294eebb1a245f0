package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/modules/promptgen"
)

type PromptGenerator interface {
	GenerateForProfile(ctx context.Context, profileID uuid.UUID, req promptgen.Request) (promptgen.Result, error)
}

type PromptHandler struct {
	prompts PromptGenerator
}

func NewPromptHandler(p PromptGenerator) *PromptHandler {
	return &PromptHandler{prompts: p}
}

// POST /api/profiles/:id/prompts/generate
func (h *PromptHandler) Generate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req promptgen.Request
	if !bindOptional(c, &req) {
		return
	}
	res, err := h.prompts.GenerateForProfile(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, "generate_prompts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}
