package usecase

import "github.com/g4biGTJS/vsport-elo/internal/domain/vsports"

// Source values reported in payloads. The HTTP status is always 200; these
// plus the Error field are the failure channel consumers actually read.
const (
	SourceScrape   = "scrape"
	SourceAPI      = "api"
	SourceFallback = "fallback"
	SourceError    = "error"
)

type MatchesPayload struct {
	NextFixtures  []vsports.Match `json:"nextFixtures"`
	NextRound     *int            `json:"nextRound"`
	RecentResults []vsports.Match `json:"recentResults"`
	LastRound     *int            `json:"lastRound"`
	Source        string          `json:"source"`
	Error         string          `json:"error,omitempty"`
	Debug         *DebugInfo      `json:"debug,omitempty"`
}

type StandingsPayload struct {
	Standings []vsports.StandingRow `json:"standings"`
	Source    string                `json:"source"`
	Error     string                `json:"error,omitempty"`
	Debug     *DebugInfo            `json:"debug,omitempty"`
}

// DebugInfo is attached only on debug requests; production consumers must
// ignore unknown fields.
type DebugInfo struct {
	Strategy       string `json:"strategy"`
	RawCount       int    `json:"rawCount"`
	DocumentLength int    `json:"documentLength"`
	SeasonID       string `json:"seasonId,omitempty"`
}
