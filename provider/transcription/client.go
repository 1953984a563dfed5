// Package transcription implements the speech-to-text provider client.
// One call issues a multipart POST to the Whisper endpoint with bounded
// retry, and yields the plain transcript text.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/record-crew/recordai/internal/tlsutil"
	"github.com/record-crew/recordai/provider"
	"github.com/record-crew/recordai/retry"
	"github.com/record-crew/recordai/types"
	"go.uber.org/zap"
)

const providerName = "openai-stt"

// Config configures the transcription client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// RetryInitialDelay overrides the first backoff interval (default 500ms).
	RetryInitialDelay time.Duration

	// OnRetry is invoked before each retry sleep, for observability hooks.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Client calls the Whisper transcription endpoint. Safe for concurrent use;
// each request body is built fresh per attempt.
type Client struct {
	cfg     Config
	client  *http.Client
	retryer retry.Retryer
	logger  *zap.Logger
}

// NewClient creates a transcription client. Defaults: api.openai.com,
// whisper-1, 120s timeout, 2 retries with 500ms initial backoff doubling.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retryDelay := cfg.RetryInitialDelay
	if retryDelay == 0 {
		retryDelay = 500 * time.Millisecond
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

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe converts the audio payload to text. The payload is expected to
// have passed the size guard already; this method only enforces the
// credential precondition before going to the network.
func (c *Client) Transcribe(ctx context.Context, audio types.AudioPayload) (string, error) {
	apiKey, err := provider.RequireAPIKey(c.cfg.APIKey, providerName)
	if err != nil {
		return "", err
	}

	c.logger.Debug("transcription request",
		zap.String("api_key", provider.MaskCredential(apiKey)),
		zap.String("filename", audio.EffectiveFilename()),
		zap.String("language", audio.Language),
		zap.Int("bytes", len(audio.Data)),
	)

	text, err := retry.DoWithResultTyped(c.retryer, ctx, func() (string, error) {
		return c.attempt(ctx, apiKey, audio)
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("transcription complete", zap.Int("chars", len([]rune(text))))
	return text, nil
}

// attempt performs one multipart POST. The body is rebuilt on every call so
// retries never reuse a drained reader.
func (c *Client) attempt(ctx context.Context, apiKey string, audio types.AudioPayload) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", audio.EffectiveFilename())
	if err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to build multipart body").
			WithProvider(providerName).WithCause(err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to write audio part").
			WithProvider(providerName).WithCause(err)
	}
	_ = writer.WriteField("model", c.cfg.Model)
	if audio.Language != "" {
		_ = writer.WriteField("language", audio.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.Endpoint(c.cfg.BaseURL, "/v1/audio/transcriptions"), &buf)
	if err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to create request").
			WithProvider(providerName).WithCause(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", provider.TransportError(err, providerName)
	}
	defer provider.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := provider.ReadErrorMessage(resp.Body)
		return "", provider.MapHTTPError(resp.StatusCode, msg, providerName)
	}

	var wResp whisperResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&wResp); err != nil {
		return "", types.NewError(types.ErrPermanentProvider, "failed to decode transcription response").
			WithProvider(providerName).WithCause(err)
	}

	if wResp.Text == "" {
		return "", types.NewError(types.ErrPermanentProvider, "provider returned an empty transcript").
			WithProvider(providerName)
	}

	return wResp.Text, nil
}
