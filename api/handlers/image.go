package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// ImageService renders a prompt into a hosted image URL.
type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImageHandler serves POST /generate-image.
type ImageHandler struct {
	svc    ImageService
	logger *zap.Logger
}

// NewImageHandler creates the image generation handler.
func NewImageHandler(svc ImageService, logger *zap.Logger) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageHandler{svc: svc, logger: logger}
}

type imageGenRequest struct {
	Prompt string `json:"prompt"`
}

type imageGenResult struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageUrl"`
}

// HandleGenerate renders the prompt. Failures still answer 200 so the
// frontend parses the envelope message instead of surfacing a raw HTTP
// error popup.
func (h *ImageHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req imageGenRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	url, err := h.svc.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Warn("image generation failed", zap.Error(err))
		WriteFailure(w, http.StatusOK, "이미지 생성 실패: "+userMessage(err))
		return
	}

	WriteSuccess(w, imageGenResult{
		Prompt:   req.Prompt,
		ImageURL: url,
	}, "이미지 생성이 완료되었습니다.")
}
