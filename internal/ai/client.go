// Package ai holds the client for the external generative completion
// service. The service is treated as an opaque function: prompt in,
// free-form text out, fallible.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/hivenest/communio/internal/pkg/apperrors"
)

// CompletionClient produces free-form text for a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionChoice struct {
	Text string `json:"text"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

// Client calls an OpenAI-compatible text completion endpoint.
type Client struct {
	httpClient *resty.Client
	model      string
	logger     zerolog.Logger
}

// NewClient creates a completion client. Calls are not retried; the
// caller decides how to handle an unavailable service.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}

	return &Client{
		httpClient: httpClient,
		model:      model,
		logger:     logger,
	}
}

// Complete sends the prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	request := completionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   1024,
		Temperature: 0.7,
	}

	var response completionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/completions")

	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("Completion service call failed")
		return "", apperrors.NewCustomError(apperrors.ErrAIUnavailable, fmt.Sprintf("completion service call failed: %v", err))
	}

	if resp.IsError() {
		c.logger.Error().
			Int("statusCode", resp.StatusCode()).
			Str("model", c.model).
			Msg("Completion service returned error status")
		return "", apperrors.NewCustomError(apperrors.ErrAIUnavailable,
			fmt.Sprintf("completion service returned status %d", resp.StatusCode()))
	}

	if len(response.Choices) == 0 {
		c.logger.Error().Str("model", c.model).Msg("Completion service returned no choices")
		return "", apperrors.NewCustomError(apperrors.ErrAIUnavailable, "completion service returned no choices")
	}

	return response.Choices[0].Text, nil
}
