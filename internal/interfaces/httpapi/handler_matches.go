package httpapi

import "net/http"

// GetMatches serves the fixtures and recent results payload. Pipeline
// failures still answer 200 with source "error" in the body.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetMatches")
	defer span.End()

	payload := h.matches.GetMatches(ctx, debugRequested(r))
	writeJSON(w, h.logger, h.matchesCacheControl, payload)
}
