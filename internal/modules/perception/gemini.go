package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider asks Google Gemini the prompt.
type GeminiProvider struct {
	log    *logger.Logger
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, log *logger.Logger, apiKey, model string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini provider: missing api key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{log: log.With("provider", PlatformGemini), client: client, model: model}, nil
}

func (p *GeminiProvider) Platform() string { return PlatformGemini }

func (p *GeminiProvider) Query(ctx context.Context, prompt string) (QueryResult, error) {
	start := time.Now()
	temp := float32(chatGPTTemperature)
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: &temp, MaxOutputTokens: chatGPTMaxTokens},
	)
	if err != nil {
		p.log.Warn("Gemini query failed", "error", err)
		return QueryResult{}, fmt.Errorf("gemini query: %w", err)
	}
	out := QueryResult{
		Response:       resp.Text(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Model:          p.model,
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}
