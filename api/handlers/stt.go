package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/record-crew/recordai/internal/ctxkeys"
	"github.com/record-crew/recordai/types"
	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart parse. Larger than the audio guard
// limit on purpose, so oversize uploads get the sizing message from the
// pipeline instead of a generic parse error.
const maxUploadBytes = 32 << 20

// SttService converts an uploaded recording to text.
type SttService interface {
	Transcribe(ctx context.Context, audio types.AudioPayload) (string, error)
}

// SttHandler serves POST /stt/transcribe.
type SttHandler struct {
	svc    SttService
	logger *zap.Logger
}

// NewSttHandler creates the transcription handler.
func NewSttHandler(svc SttService, logger *zap.Logger) *SttHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SttHandler{svc: svc, logger: logger}
}

// HandleTranscribe reads the "file" multipart part and returns the
// transcript. Failures answer 422 with a failed envelope; a missing caller
// identity answers 401 in the same shape.
func (h *SttHandler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if _, ok := ctxkeys.CallerID(r.Context()); !ok {
		WriteFailure(w, http.StatusUnauthorized, "로그인이 필요합니다.")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Debug("multipart parse failed", zap.Error(err))
		WriteFailure(w, http.StatusUnprocessableEntity, "STT 변환 실패: 업로드 파일을 읽을 수 없습니다.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteFailure(w, http.StatusUnprocessableEntity, "STT 변환 실패: 업로드 파일이 없습니다.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteFailure(w, http.StatusUnprocessableEntity, "STT 변환 실패: 업로드 파일을 읽을 수 없습니다.")
		return
	}

	audio := types.AudioPayload{
		Data:     data,
		Filename: header.Filename,
		Language: "ko",
	}

	text, err := h.svc.Transcribe(r.Context(), audio)
	if err != nil {
		h.logger.Warn("transcription failed",
			zap.String("filename", audio.EffectiveFilename()),
			zap.Error(err),
		)
		WriteFailure(w, http.StatusUnprocessableEntity, "STT 변환 실패: "+userMessage(err))
		return
	}

	WriteSuccess(w, text, "STT 변환이 완료되었습니다.")
}

// userMessage extracts the caller-facing message from an error chain.
// Typed errors already carry presentable text; anything else falls back to
// Error().
func userMessage(err error) string {
	if e, ok := types.AsError(err); ok {
		return e.Message
	}
	return err.Error()
}
