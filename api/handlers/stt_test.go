package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/record-crew/recordai/internal/ctxkeys"
	"github.com/record-crew/recordai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSttService struct {
	calls    int
	gotAudio types.AudioPayload
	text     string
	err      error
}

func (f *fakeSttService) Transcribe(ctx context.Context, audio types.AudioPayload) (string, error) {
	f.calls++
	f.gotAudio = audio
	return f.text, f.err
}

func multipartAudioRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/stt/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(ctxkeys.WithCallerID(req.Context(), "user-1"))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandleTranscribe_Success(t *testing.T) {
	svc := &fakeSttService{text: "좋은 공연이었어요"}
	h := NewSttHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTranscribe(rec, multipartAudioRequest(t, "review.m4a", []byte("audio-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "STT 변환이 완료되었습니다.", env.Message)
	assert.Equal(t, "좋은 공연이었어요", env.Data)

	assert.Equal(t, "review.m4a", svc.gotAudio.Filename)
	assert.Equal(t, "ko", svc.gotAudio.Language)
	assert.Equal(t, []byte("audio-bytes"), svc.gotAudio.Data)
}

func TestHandleTranscribe_MissingIdentity(t *testing.T) {
	svc := &fakeSttService{text: "unused"}
	h := NewSttHandler(svc, zap.NewNop())

	req := multipartAudioRequest(t, "a.m4a", []byte("x"))
	req = req.WithContext(context.Background()) // strip caller identity

	rec := httptest.NewRecorder()
	h.HandleTranscribe(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "로그인이 필요합니다.", env.Message)
	assert.Equal(t, 0, svc.calls)
}

func TestHandleTranscribe_PipelineFailureIs422(t *testing.T) {
	svc := &fakeSttService{
		err: types.NewError(types.ErrValidation, "파일이 너무 큽니다. (25.75MB) 제한: 25MB"),
	}
	h := NewSttHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTranscribe(rec, multipartAudioRequest(t, "big.m4a", []byte("x")))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "STT 변환 실패: 파일이 너무 큽니다. (25.75MB) 제한: 25MB", env.Message)
}

func TestHandleTranscribe_MissingFilePart(t *testing.T) {
	svc := &fakeSttService{text: "unused"}
	h := NewSttHandler(svc, zap.NewNop())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/stt/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(ctxkeys.WithCallerID(req.Context(), "user-1"))

	rec := httptest.NewRecorder()
	h.HandleTranscribe(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, 0, svc.calls)
}

func TestHandleTranscribe_BlankFilenameFallsBack(t *testing.T) {
	svc := &fakeSttService{text: "텍스트"}
	h := NewSttHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTranscribe(rec, multipartAudioRequest(t, " ", []byte("x")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.DefaultAudioFilename, svc.gotAudio.EffectiveFilename())
}
