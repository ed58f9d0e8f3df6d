package httpapi

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

// writeJSON serializes v and always answers 200. Degraded pipeline
// results are reported inside the payload body, never via the HTTP
// status, so CDN and browser caches treat them uniformly.
func writeJSON(w http.ResponseWriter, logger *logging.Logger, cacheControl string, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		logger.Error("marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"source":"error","error":"encoding failed"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn("write response", "error", err)
	}
}
