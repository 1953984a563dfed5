// Package handlers exposes the diary AI operations over HTTP. Every
// endpoint answers with the same envelope shape so the frontend client can
// treat success and failure uniformly.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the uniform response body: {success, data, message}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing left to do for this response.
		return
	}
}

// WriteSuccess writes a 200 envelope with data and a completion message.
func WriteSuccess(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// WriteFailure writes a failed envelope with the given status and message.
// Some endpoints deliberately use 200 here so the frontend reads the
// envelope instead of tripping on the status code.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Data: nil, Message: message})
}

// DecodeJSON decodes a request body into dst, rejecting unknown garbage
// politely. Returns false after writing the error response.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if logger != nil {
			logger.Debug("invalid request body", zap.Error(err))
		}
		WriteFailure(w, http.StatusBadRequest, "요청 본문이 올바르지 않습니다.")
		return false
	}
	return true
}
