// Package image implements the image-generation provider client. A prompt
// goes in, a hosted image URL comes out; base64 payloads are refused because
// no blob store backs the service.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/record-crew/recordai/guard"
	"github.com/record-crew/recordai/internal/tlsutil"
	"github.com/record-crew/recordai/provider"
	"github.com/record-crew/recordai/retry"
	"github.com/record-crew/recordai/types"
	"go.uber.org/zap"
)

const providerName = "openai-image"

const (
	defaultSize = "1024x1024"
	imageCount  = 1
)

// Config configures the image client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// PromptMaxChars caps the prompt length in runes before the request is
	// built (default 900). Longer prompts are truncated, not rejected.
	PromptMaxChars int

	// RetryInitialDelay overrides the first backoff interval (default 1s).
	RetryInitialDelay time.Duration

	// OnRetry is invoked before each retry sleep, for observability hooks.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Client calls the image generations endpoint. Safe for concurrent use.
type Client struct {
	cfg     Config
	client  *http.Client
	retryer retry.Retryer
	logger  *zap.Logger
}

// NewClient creates an image client. Defaults: api.openai.com, dall-e-3,
// 60s timeout, 900-rune prompt cap, 2 retries with 1s initial backoff.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.PromptMaxChars == 0 {
		cfg.PromptMaxChars = 900
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
		retryDelay = time.Second
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

type imageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate renders the prompt and returns the hosted image URL. The prompt
// is clamped to the configured rune cap before leaving the process.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := provider.RequireAPIKey(c.cfg.APIKey, providerName)
	if err != nil {
		return "", err
	}

	clamped := guard.ClampPrompt(prompt, c.cfg.PromptMaxChars)

	c.logger.Debug("image request",
		zap.String("api_key", provider.MaskCredential(apiKey)),
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_chars", len([]rune(clamped))),
		zap.Bool("truncated", clamped != prompt),
	)

	body, err := json.Marshal(imageRequest{
		Prompt: clamped,
		Model:  c.cfg.Model,
		Size:   defaultSize,
		N:      imageCount,
	})
	if err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to encode image request").
			WithProvider(providerName).WithCause(err)
	}

	url, err := retry.DoWithResultTyped(c.retryer, ctx, func() (string, error) {
		return c.attempt(ctx, apiKey, body)
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("image generated", zap.String("url", url))
	return url, nil
}

func (c *Client) attempt(ctx context.Context, apiKey string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.Endpoint(c.cfg.BaseURL, "/v1/images/generations"), bytes.NewReader(body))
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

	var iResp imageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&iResp); err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to decode image response").
			WithProvider(providerName).WithCause(err)
	}

	if len(iResp.Data) == 0 {
		return "", types.NewError(types.ErrPermanentProvider, "provider returned no image data").
			WithProvider(providerName)
	}

	first := iResp.Data[0]
	if first.URL != "" {
		return first.URL, nil
	}
	if first.B64JSON != "" {
		// Persisting inline base64 needs a blob store this service does not
		// have, so a URL-less success is refused outright.
		return "", types.NewError(types.ErrUnsupportedCapability,
			"provider returned inline base64 image data; URL delivery is required").
			WithProvider(providerName)
	}

	return "", types.NewError(types.ErrPermanentProvider, "provider returned neither url nor image data").
		WithProvider(providerName)
}
