package httpapi

import (
	"context"
	"net/http"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
	"github.com/g4biGTJS/vsport-elo/internal/usecase"
)

// MatchesProvider assembles the fixtures/results payload.
type MatchesProvider interface {
	GetMatches(ctx context.Context, debug bool) usecase.MatchesPayload
}

// StandingsProvider assembles the league table payload.
type StandingsProvider interface {
	GetStandings(ctx context.Context, league string, debug bool) usecase.StandingsPayload
}

type Handler struct {
	matches   MatchesProvider
	standings StandingsProvider
	logger    *logging.Logger

	matchesCacheControl   string
	standingsCacheControl string
}

func NewHandler(matches MatchesProvider, standings StandingsProvider, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		matches:               matches,
		standings:             standings,
		logger:                logger,
		matchesCacheControl:   "public, s-maxage=15, stale-while-revalidate=30",
		standingsCacheControl: "public, s-maxage=60, stale-while-revalidate=120",
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, "", map[string]string{"status": "ok"})
}

func debugRequested(r *http.Request) bool {
	return r.URL.Query().Get("debug") == "1"
}
