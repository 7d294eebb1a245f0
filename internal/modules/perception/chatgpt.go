package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const (
	defaultChatGPTModel = "gpt-4o"
	chatGPTTemperature  = 0.7
	chatGPTMaxTokens    = 1500
)

// ChatGPTProvider asks OpenAI the prompt as a plain user message.
type ChatGPTProvider struct {
	log    *logger.Logger
	client openai.Client
	model  string
}

type ChatGPTConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewChatGPTProvider(log *logger.Logger, cfg ChatGPTConfig) (*ChatGPTProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("chatgpt provider: missing api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultChatGPTModel
	}
	return &ChatGPTProvider{
		log:    log.With("provider", PlatformChatGPT),
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (p *ChatGPTProvider) Platform() string { return PlatformChatGPT }

func (p *ChatGPTProvider) Query(ctx context.Context, prompt string) (QueryResult, error) {
	start := time.Now()
	params := responses.ResponseNewParams{
		Model:           p.model,
		MaxOutputTokens: openai.Int(chatGPTMaxTokens),
		Temperature:     openai.Float(chatGPTTemperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}
	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		p.log.Warn("ChatGPT query failed", "error", err)
		return QueryResult{}, fmt.Errorf("chatgpt query: %w", err)
	}
	elapsed := time.Since(start)
	p.log.Debug("ChatGPT answered", "ms", elapsed.Milliseconds(), "tokens", resp.Usage.TotalTokens)
	return QueryResult{
		Response:       resp.OutputText(),
		ResponseTimeMs: elapsed.Milliseconds(),
		TokensUsed:     int(resp.Usage.TotalTokens),
		Model:          p.model,
	}, nil
}
