package httpapi

import (
	"net/http"
	"strings"
)

// GetStandings serves the league table payload. The liga query parameter
// selects the league page; the default league is used when it is absent.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetStandings")
	defer span.End()

	league := strings.TrimSpace(r.URL.Query().Get("liga"))
	payload := h.standings.GetStandings(ctx, league, debugRequested(r))
	writeJSON(w, h.logger, h.standingsCacheControl, payload)
}
