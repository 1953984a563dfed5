package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/record-crew/recordai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		APIKey:            "sk-test-key-1234567890",
		BaseURL:           srv.URL,
		RetryInitialDelay: time.Millisecond,
	}, zap.NewNop())
	// httptest serves plain HTTP; the hardened client would refuse it.
	client.client = srv.Client()
	return client, srv
}

func TestTranscribe_SendsMultipartFields(t *testing.T) {
	var gotModel, gotLanguage, gotFilename, gotAuth string
	var gotAudio []byte

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotAudio, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Write([]byte(`{"text":"오늘 공연 정말 좋았다"}`))
	})

	text, err := client.Transcribe(context.Background(), types.AudioPayload{
		Data:     []byte("fake-m4a-bytes"),
		Language: "ko",
	})
	require.NoError(t, err)

	assert.Equal(t, "오늘 공연 정말 좋았다", text)
	assert.Equal(t, "Bearer sk-test-key-1234567890", gotAuth)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "ko", gotLanguage)
	assert.Equal(t, "audio.m4a", gotFilename)
	assert.Equal(t, []byte("fake-m4a-bytes"), gotAudio)
}

func TestTranscribe_OmitsLanguageWhenEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, ok := r.MultipartForm.Value["language"]
		assert.False(t, ok, "language field should be absent")
		w.Write([]byte(`{"text":"ok"}`))
	})

	_, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.NoError(t, err)
}

func TestTranscribe_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"text":"third time"}`))
	})

	text, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "third time", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTranscribe_ExhaustedBudgetEscalates(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrPermanentProvider, e.Kind)
	assert.False(t, types.IsRetryable(err))
}

func TestTranscribe_AuthFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	_, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrPermanentProvider, e.Kind)
	assert.Equal(t, http.StatusUnauthorized, e.HTTPStatus)
	assert.Contains(t, e.Message, "invalid api key")
}

func TestTranscribe_BlankKeyFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "   ", BaseURL: srv.URL}, zap.NewNop())
	client.client = srv.Client()

	_, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.KindOf(err))
	assert.Equal(t, int32(0), calls.Load(), "no request should be issued")
}

func TestTranscribe_EmptyTranscriptIsFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":""}`))
	})

	_, err := client.Transcribe(context.Background(), types.AudioPayload{Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, types.ErrPermanentProvider, types.KindOf(err))
}
