package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// ReviewService rewrites and summarizes review text.
type ReviewService interface {
	Organize(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// ReviewHandler serves POST /review/organize and POST /review/summarize.
type ReviewHandler struct {
	svc    ReviewService
	logger *zap.Logger
}

// NewReviewHandler creates the review text handler.
func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewHandler{svc: svc, logger: logger}
}

type reviewRequest struct {
	Text string `json:"text"`
}

// HandleOrganize tidies a review into one paragraph while keeping the
// author's tone.
func (h *ReviewHandler) HandleOrganize(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.svc.Organize(r.Context(), req.Text)
	if err != nil {
		h.logger.Warn("organize failed", zap.Error(err))
		WriteFailure(w, http.StatusUnprocessableEntity, "후기 정리 실패: "+userMessage(err))
		return
	}

	WriteSuccess(w, result, "후기 정리가 완료되었습니다.")
}

// HandleSummarize condenses a review into a few Korean sentences.
func (h *ReviewHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.svc.Summarize(r.Context(), req.Text)
	if err != nil {
		h.logger.Warn("summarize failed", zap.Error(err))
		WriteFailure(w, http.StatusUnprocessableEntity, "후기 요약 실패: "+userMessage(err))
		return
	}

	WriteSuccess(w, result, "후기 요약이 완료되었습니다.")
}
