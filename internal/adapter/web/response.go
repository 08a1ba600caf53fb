package web

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

// respondJSON はJSONレスポンスを書く
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WarnCF("web", "Failed to write response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// statusOf はエラー種別をHTTPステータスに対応付ける
func statusOf(err error) int {
	kind, ok := apperr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindRetrieval:
		return http.StatusBadGateway
	case apperr.KindExtractionEmpty:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError はエラーを {"error", "kind"} で返す
func respondAppError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	kind, _ := apperr.KindOf(err)

	fields := map[string]interface{}{
		"status": status,
		"error":  err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorCF("web", "Request failed", fields)
	} else {
		logger.WarnCF("web", "Request rejected", fields)
	}

	payload := map[string]interface{}{"error": err.Error()}
	if kind != "" {
		payload["kind"] = kind
	}
	respondJSON(w, status, payload)
}
