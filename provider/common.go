package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/record-crew/recordai/types"
)

// MapHTTPError classifies an upstream HTTP status into the error taxonomy.
// 429 and 5xx are transient (the provider may recover), every other 4xx is
// permanent. Auth rejections from the provider are permanent too: a key that
// passed the eager blank check but is refused upstream will not become valid
// by retrying.
func MapHTTPError(status int, msg string, provider string) *types.Error {
	switch {
	case status == http.StatusTooManyRequests:
		return types.NewError(types.ErrTransientProvider, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.NewError(types.ErrPermanentProvider, msg).
			WithHTTPStatus(status).
			WithProvider(provider)
	case status >= 400 && status < 500:
		return types.NewError(types.ErrPermanentProvider, msg).
			WithHTTPStatus(status).
			WithProvider(provider)
	default:
		return types.NewError(types.ErrTransientProvider, msg).
			WithHTTPStatus(status).
			WithRetryable(true).
			WithProvider(provider)
	}
}

// TransportError wraps a failed round trip (DNS, connect, timeout) as a
// retryable transient failure.
func TransportError(err error, provider string) *types.Error {
	return types.NewError(types.ErrTransientProvider, err.Error()).
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true).
		WithProvider(provider).
		WithCause(err)
}

// ReadErrorMessage extracts a human-readable message from an error response
// body. Providers answer with {"error":{"message":...}} JSON; anything else
// falls back to the raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	return string(data)
}

// RequireAPIKey enforces the presence of the bearer credential before any
// network call. Returns the trimmed key, or a configuration error when the
// key is blank.
func RequireAPIKey(apiKey, provider string) (string, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return "", types.NewError(types.ErrConfiguration,
			"OpenAI API key가 설정되지 않았습니다. 환경변수 RECORDAI_OPENAI_API_KEY를 확인하세요.").
			WithProvider(provider)
	}
	return key, nil
}

// BearerHeaders sets the standard bearer auth and JSON content type headers.
func BearerHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// MaskCredential renders a key as its first and last four characters for
// logging. Short keys collapse entirely.
func MaskCredential(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// Endpoint joins a base URL and path without doubling slashes.
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

// SafeCloseBody closes an HTTP response body, ignoring errors.
func SafeCloseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
