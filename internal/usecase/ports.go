package usecase

import (
	"context"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
)

// Document is a fetched upstream page as the services see it.
type Document struct {
	URL         string
	ContentType string
	Body        string
}

func (d Document) Length() int { return len(d.Body) }

// Outcome identifies which extraction strategy produced records and how many
// raw records it yielded before normalization.
type Outcome struct {
	Strategy string
	RawCount int
}

// MatchSource is the upstream gateway for fixture data. FetchSeasonPage asks
// for the server-rendered markup; FetchSeasonFeed asks for the application
// shell / JSON variant. The upstream serves materially different payloads
// per Accept header, so both are first-class candidates.
type MatchSource interface {
	ResolveSeason(ctx context.Context) string
	FetchSeasonPage(ctx context.Context, seasonID string) (Document, error)
	FetchSeasonFeed(ctx context.Context, seasonID string) (Document, error)
	FetchRoundPage(ctx context.Context, seasonID string, round int) (Document, error)
	ExtractMatches(body string) ([]vsports.Match, Outcome)
}

// StandingsSource is the upstream gateway for league table data.
type StandingsSource interface {
	FetchLeaguePage(ctx context.Context, pageURL string) (Document, error)
	FetchLeagueFeed(ctx context.Context, pageURL string) (Document, error)
	ExtractStandings(body string) ([]vsports.StandingRow, Outcome)
}
