package sportradar

import (
	"context"
	"fmt"
	"strings"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
	"github.com/g4biGTJS/vsport-elo/internal/usecase"
)

type GatewayConfig struct {
	Client             *Client
	Resolver           *SeasonResolver
	SeasonPageTemplate string
	MatchMinYield      int
	StandingsMinYield  int
}

// Gateway implements the usecase source ports on top of the HTTP client,
// the season resolver and the strategy registries.
type Gateway struct {
	client             *Client
	resolver           *SeasonResolver
	seasonPageTemplate string
	matchRegistry      *Registry
	standingsRegistry  *Registry
}

func NewGateway(cfg GatewayConfig) *Gateway {
	tmpl := strings.TrimSpace(cfg.SeasonPageTemplate)
	if tmpl == "" {
		tmpl = "https://s5.sir.sportradar.com/scigamingvirtuals/hu/1/season/%s"
	}

	matchYield := cfg.MatchMinYield
	if matchYield < 1 {
		matchYield = 3
	}
	standingsYield := cfg.StandingsMinYield
	if standingsYield < 1 {
		standingsYield = vsports.MinTableRows
	}

	return &Gateway{
		client:             cfg.Client,
		resolver:           cfg.Resolver,
		seasonPageTemplate: tmpl,
		matchRegistry:      MatchRegistry(matchYield),
		standingsRegistry:  StandingsRegistry(standingsYield),
	}
}

func (g *Gateway) ResolveSeason(ctx context.Context) string {
	return g.resolver.Resolve(ctx)
}

func (g *Gateway) FetchSeasonPage(ctx context.Context, seasonID string) (usecase.Document, error) {
	return g.fetch(ctx, g.seasonURL(seasonID), AcceptHTML)
}

func (g *Gateway) FetchSeasonFeed(ctx context.Context, seasonID string) (usecase.Document, error) {
	return g.fetch(ctx, g.seasonURL(seasonID), AcceptJSON)
}

func (g *Gateway) FetchRoundPage(ctx context.Context, seasonID string, round int) (usecase.Document, error) {
	return g.fetch(ctx, fmt.Sprintf("%s?round=%d", g.seasonURL(seasonID), round), AcceptHTML)
}

func (g *Gateway) FetchLeaguePage(ctx context.Context, pageURL string) (usecase.Document, error) {
	return g.fetch(ctx, pageURL, AcceptHTML)
}

func (g *Gateway) FetchLeagueFeed(ctx context.Context, pageURL string) (usecase.Document, error) {
	return g.fetch(ctx, pageURL, AcceptJSON)
}

// ExtractMatches runs the strategy ladder and normalizes the winning yield.
// Records failing canonical invariants are dropped silently; the outcome
// keeps the raw pre-normalization count for diagnostics.
func (g *Gateway) ExtractMatches(body string) ([]vsports.Match, usecase.Outcome) {
	outcome := g.matchRegistry.Extract(body)

	matches := make([]vsports.Match, 0, outcome.Count())
	for _, rec := range outcome.Records {
		if m, ok := NormalizeMatch(rec); ok {
			matches = append(matches, m)
		}
	}
	return matches, usecase.Outcome{Strategy: outcome.Strategy, RawCount: outcome.Count()}
}

func (g *Gateway) ExtractStandings(body string) ([]vsports.StandingRow, usecase.Outcome) {
	outcome := g.standingsRegistry.Extract(body)

	rows := make([]vsports.StandingRow, 0, outcome.Count())
	for i, rec := range outcome.Records {
		if row, ok := NormalizeStanding(rec, i+1); ok {
			rows = append(rows, row)
		}
	}
	return rows, usecase.Outcome{Strategy: outcome.Strategy, RawCount: outcome.Count()}
}

func (g *Gateway) seasonURL(seasonID string) string {
	return fmt.Sprintf(g.seasonPageTemplate, seasonID)
}

func (g *Gateway) fetch(ctx context.Context, url, accept string) (usecase.Document, error) {
	doc, err := g.client.FetchDocument(ctx, url, accept)
	if err != nil {
		return usecase.Document{}, err
	}
	return usecase.Document{
		URL:         doc.URL,
		ContentType: doc.ContentType,
		Body:        doc.Body,
	}, nil
}
