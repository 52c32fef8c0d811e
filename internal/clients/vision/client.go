// Package vision classifies traffic violations with a multimodal model served over
// an OpenAI-compatible chat completions API.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"evidence-service/internal/domain/analysis"
)

const (
	dependency = "vision"
	maxTokens  = 2048
)

type Options struct {
	BaseURL       string
	APIKey        string
	Model         string
	MaxAttempts   int
	RatePerSecond float64
	HTTPClient    *http.Client
}

type Client struct {
	api         *openai.Client
	model       string
	maxAttempts int
	limiter     *rate.Limiter
	log         zerolog.Logger
}

// NewClient returns nil when no API key is configured; a nil *Client reports itself as disabled.
func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.APIKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxAttempts: opts.MaxAttempts,
		limiter:     rate.NewLimiter(limit, 1),
		log:         log.With().Str("component", dependency).Str("prompt_version", PromptVersion).Logger(),
	}
}

// Classify sends the media inline with the instruction prompt and parses the reply.
// Replies that fail to parse or validate are retried up to the configured attempt count.
func (c *Client) Classify(ctx context.Context, media analysis.Media, userComment string) (*analysis.Classification, error) {
	if c == nil {
		return nil, analysis.Disabled(dependency)
	}

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(media),
							Detail: openai.ImageURLDetailAuto,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: BuildPrompt(userComment),
					},
				},
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, analysis.Transport(dependency, err)
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				return nil, analysis.Reported(dependency, err)
			}
			return nil, analysis.Transport(dependency, err)
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("empty choices")
			continue
		}

		result, err := ParseReply(resp.Choices[0].Message.Content)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("model reply rejected")
	}
	return nil, analysis.Malformed(dependency, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr))
}

func dataURL(m analysis.Media) string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}
