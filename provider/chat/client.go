// Package chat implements the chat-completion provider client used for the
// diary organize and summarize steps.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/record-crew/recordai/internal/tlsutil"
	"github.com/record-crew/recordai/provider"
	"github.com/record-crew/recordai/retry"
	"github.com/record-crew/recordai/types"
	"go.uber.org/zap"
)

const providerName = "openai-chat"

// Fixed sampling parameters for the diary rewriting prompts.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

// Config configures the chat client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// RetryInitialDelay overrides the first backoff interval (default 2s).
	RetryInitialDelay time.Duration

	// OnRetry is invoked before each retry sleep, for observability hooks.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Client calls the chat completions endpoint. Safe for concurrent use.
type Client struct {
	cfg     Config
	client  *http.Client
	retryer retry.Retryer
	logger  *zap.Logger
}

// NewClient creates a chat client. Defaults: api.openai.com, gpt-4o-mini,
// 60s timeout, 2 retries with 2s initial backoff doubling.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retryDelay := cfg.RetryInitialDelay
	if retryDelay == 0 {
		retryDelay = 2 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		retryer: retry.NewBackoffRetryer(retry.Policy{
			MaxRetries:   2,
			InitialDelay: retryDelay,
			Multiplier:   2.0,
			OnRetry:      cfg.OnRetry,
		}, logger),
		logger: logger.With(zap.String("provider", providerName)),
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return providerName }

type chatMessage struct {
	Role    string                  `json:"role"`
	Content provider.MessageContent `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content provider.MessageContent `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system + user message pair and returns the assistant
// reply as plain text. The response content may arrive as a bare string or
// a segment list; both normalize to the same text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	apiKey, err := provider.RequireAPIKey(c.cfg.APIKey, providerName)
	if err != nil {
		return "", err
	}

	c.logger.Debug("chat request",
		zap.String("api_key", provider.MaskCredential(apiKey)),
		zap.String("model", c.cfg.Model),
		zap.Int("user_chars", len([]rune(user))),
	)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: provider.SegmentContent(provider.ContentSegment{Type: "text", Text: system})},
			{Role: "user", Content: provider.SegmentContent(provider.ContentSegment{Type: "text", Text: user})},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to encode chat request").
			WithProvider(providerName).WithCause(err)
	}

	text, err := retry.DoWithResultTyped(c.retryer, ctx, func() (string, error) {
		return c.attempt(ctx, apiKey, body)
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("chat complete", zap.Int("chars", len([]rune(text))))
	return text, nil
}

func (c *Client) attempt(ctx context.Context, apiKey string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.Endpoint(c.cfg.BaseURL, "/v1/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to create request").
			WithProvider(providerName).WithCause(err)
	}
	provider.BearerHeaders(httpReq, apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", provider.TransportError(err, providerName)
	}
	defer provider.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := provider.ReadErrorMessage(resp.Body)
		return "", provider.MapHTTPError(resp.StatusCode, msg, providerName)
	}

	var cResp chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&cResp); err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to decode chat response").
			WithProvider(providerName).WithCause(err)
	}

	if len(cResp.Choices) == 0 {
		return "", types.NewError(types.ErrPermanentProvider, "provider returned no choices").
			WithProvider(providerName)
	}

	text := cResp.Choices[0].Message.Content.Text()
	if text == "" {
		return "", types.NewError(types.ErrPermanentProvider, "provider returned an empty completion").
			WithProvider(providerName)
	}

	return text, nil
}
