// Anthropic Messages API implementation of [LanguageModel]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-sonnet-20240229"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicRequest is the body of POST /v1/messages.
type AnthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

// AnthropicContentBlock is one block of a response's content.
type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnthropicResponse is the subset of the Messages API response this client reads.
type AnthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

// AnthropicService implements [LanguageModel] with the Anthropic Messages API.
type AnthropicService struct {
	*client
	model string
}

// NewAnthropicService creates a Messages API client.
func NewAnthropicService(cfg shared.AnthropicConfig, httpCfg shared.HTTPConfig, opts ...Option) (*AnthropicService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api_key", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = anthropicVersion
	}
	model := cfg.Model
	if model == "" {
		model = anthropicModel
	}

	c := newClient("anthropic", baseURL, httpCfg, opts...)
	c.header.Set("x-api-key", cfg.APIKey)
	c.header.Set("anthropic-version", version)

	return &AnthropicService{client: c, model: model}, nil
}

func (s *AnthropicService) Name() string {
	return "Anthropic"
}

// Complete sends req.Prompt as a single user turn and returns the trimmed text of the first
// content block.
func (s *AnthropicService) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	body := AnthropicRequest{
		Model:       s.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	var resp AnthropicResponse
	if err := s.doRequest(ctx, http.MethodPost, "/v1/messages", nil, body, &resp, anthropicErrorMessage); err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: anthropic: empty content", shared.ErrAPIRequest)
	}

	return strings.TrimSpace(resp.Content[0].Text), nil
}

func anthropicErrorMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	return errResp.Error.Message
}
