// Package perception asks LLM platforms the generated prompts, judges each
// answer against the brand's ground truth and rolls the results up into
// scores, a quadrant and insights.
package perception

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/brandlens-backend/internal/agents/agent"
)

const (
	PlatformChatGPT    = "chatgpt"
	PlatformClaude     = "claude"
	PlatformGemini     = "gemini"
	PlatformPerplexity = "perplexity"
	PlatformGoogleAIO  = "google_aio"
)

// Platforms is every platform a scan may target.
var Platforms = []string{PlatformChatGPT, PlatformClaude, PlatformGemini, PlatformPerplexity, PlatformGoogleAIO}

func ValidPlatform(p string) bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

// QueryResult is one platform answer. Simulated marks a stand-in answer whose
// ResponseTimeMs was made up rather than measured.
type QueryResult struct {
	Response       string `json:"response"`
	ResponseTimeMs int64  `json:"responseTime"`
	TokensUsed     int    `json:"tokensUsed,omitempty"`
	Model          string `json:"model"`
	Simulated      bool   `json:"simulated,omitempty"`
}

// Provider answers prompts the way one platform would.
type Provider interface {
	Platform() string
	Query(ctx context.Context, prompt string) (QueryResult, error)
}

var mockTemplates = map[string]string{
	PlatformClaude:     `[Mock Claude Response] Based on my analysis of your query "%s...", I would provide a thoughtful and balanced response. This is a placeholder for actual Claude API integration.`,
	PlatformChatGPT:    `[Mock ChatGPT Response] Regarding "%s...", this is a simulated response for testing purposes.`,
	PlatformGemini:     `[Mock Gemini Response] Let me help you with "%s...". This represents how Google's Gemini might respond.`,
	PlatformPerplexity: `[Mock Perplexity Response] According to my search about "%s...", here are the key findings. This is a placeholder response.`,
	PlatformGoogleAIO:  `[Mock Google AI Overview] For the query "%s...", Google's AI Overview would display summarized information from search results.`,
}

// MockProvider returns a templated stand-in answer with 500-1500ms of
// latency. By default the latency is only reported; WithMockDelay makes
// Query wait it out.
type MockProvider struct {
	platform string
	latency  func() time.Duration
	wait     bool
}

type MockOption func(*MockProvider)

// WithMockDelay makes the mock sleep for its latency, honoring ctx.
func WithMockDelay() MockOption {
	return func(m *MockProvider) { m.wait = true }
}

func NewMockProvider(platform string, opts ...MockOption) *MockProvider {
	m := &MockProvider{
		platform: platform,
		latency:  func() time.Duration { return 500*time.Millisecond + rand.N(time.Second) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockProvider) Platform() string { return m.platform }

func (m *MockProvider) Query(ctx context.Context, prompt string) (QueryResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return QueryResult{}, err
	}
	tmpl, ok := mockTemplates[m.platform]
	if !ok {
		tmpl = `[Mock Response] Regarding "%s...", this is a simulated response.`
	}

	latency := m.latency()
	elapsed := time.Since(start) + latency
	if m.wait {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return QueryResult{}, ctx.Err()
		case <-timer.C:
		}
		elapsed = time.Since(start)
	}
	return QueryResult{
		Response:       fmt.Sprintf(tmpl, agent.Clip(prompt, 50)),
		ResponseTimeMs: elapsed.Milliseconds(),
		Model:          m.platform + "-mock",
		Simulated:      true,
	}, nil
}

// Registry resolves the provider for a platform. Platforms without a real
// provider, and non-primary platforms when mocking is requested, get a
// MockProvider.
type Registry struct {
	mu      sync.RWMutex
	real    map[string]Provider
	mocks   map[string]Provider
	primary string
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		real:    map[string]Provider{},
		mocks:   map[string]Provider{},
		primary: PlatformChatGPT,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.real[p.Platform()] = p
}

// SetMock overrides the stand-in used for a platform.
func (r *Registry) SetMock(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mocks[p.Platform()] = p
}

// Resolve picks the provider for platform. mockExternal forces the stand-in
// for every platform except the primary one.
func (r *Registry) Resolve(platform string, mockExternal bool) Provider {
	platform = strings.TrimSpace(platform)
	r.mu.RLock()
	p, ok := r.real[platform]
	m, hasMock := r.mocks[platform]
	r.mu.RUnlock()

	if ok && !(mockExternal && platform != r.primary) {
		return p
	}
	if hasMock {
		return m
	}
	return NewMockProvider(platform)
}

// IsReal reports whether a real provider is registered for platform.
func (r *Registry) IsReal(platform string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.real[platform]
	return ok
}
