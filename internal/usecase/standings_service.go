package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
	"github.com/g4biGTJS/vsport-elo/internal/platform/cache"
	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

type StandingsServiceConfig struct {
	Source StandingsSource
	Cache  *cache.Store
	// LeaguePages maps the public league key to the upstream page URL. An
	// empty URL marks a league that is configured but under maintenance.
	LeaguePages map[string]string
	Fallback    *FallbackPolicy
	Logger      *logging.Logger
	// StaticFallback picks the fallback tier on total failure: the static
	// last-known-good snapshot when true, the explicit error payload when
	// false. A per-deployment policy decision, not a universal rule.
	StaticFallback bool
}

// StandingsService runs the extraction pipeline for league tables.
type StandingsService struct {
	source         StandingsSource
	cache          *cache.Store
	leaguePages    map[string]string
	fallback       *FallbackPolicy
	logger         *logging.Logger
	staticFallback bool
	validate       *validator.Validate
}

func NewStandingsService(cfg StandingsServiceConfig) *StandingsService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = NewFallbackPolicy(nil)
	}

	return &StandingsService{
		source:         cfg.Source,
		cache:          cfg.Cache,
		leaguePages:    cfg.LeaguePages,
		fallback:       fallback,
		logger:         logger,
		staticFallback: cfg.StaticFallback,
		validate:       validator.New(),
	}
}

func (s *StandingsService) GetStandings(ctx context.Context, league string, debug bool) StandingsPayload {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetStandings")
	defer span.End()

	league = strings.TrimSpace(league)
	if league == "" {
		league = "premier"
	}

	pageURL, known := s.leaguePages[league]
	if !known {
		return s.fallback.StandingsError(fmt.Sprintf("unknown league %q", league))
	}
	if pageURL == "" {
		// Configured but disabled upstream; the UI renders a maintenance
		// notice off this exact error string.
		return s.fallback.StandingsError("maintenance")
	}

	cacheKey := "payload:standings:" + league
	if !debug && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			if payload, isPayload := cached.(StandingsPayload); isPayload {
				return payload
			}
		}
	}

	payload := s.build(ctx, league, pageURL, debug)

	if !debug && s.cache != nil && payload.Source != SourceError {
		s.cache.Set(ctx, cacheKey, payload)
	}
	return payload
}

func (s *StandingsService) build(ctx context.Context, league, pageURL string, debug bool) StandingsPayload {
	doc, source, err := s.fetchLeagueDocument(ctx, pageURL)
	if err != nil {
		s.logger.WarnContext(ctx, "standings document fetch failed", "league", league, "error", err)
		return s.totalFailure(fmt.Sprintf("upstream fetch failed: %v", err))
	}

	rows, outcome := s.source.ExtractStandings(doc.Body)
	rows = s.acceptRows(ctx, rows)

	if len(rows) == 0 && source == SourceScrape {
		if feedDoc, feedErr := s.source.FetchLeagueFeed(ctx, pageURL); feedErr == nil {
			if feedRows, feedOutcome := s.source.ExtractStandings(feedDoc.Body); len(feedRows) > 0 {
				doc, source = feedDoc, SourceAPI
				rows, outcome = s.acceptRows(ctx, feedRows), feedOutcome
			}
		}
	}

	if !vsports.ValidTable(rows) {
		s.logger.WarnContext(ctx, "extracted table rejected",
			"league", league,
			"rows", len(rows),
			"strategy", outcome.Strategy,
			"document_length", doc.Length(),
		)
		return s.totalFailure("no extraction strategy yielded a consistent table")
	}

	payload := StandingsPayload{Standings: rows, Source: source}
	if debug {
		payload.Debug = &DebugInfo{
			Strategy:       outcome.Strategy,
			RawCount:       outcome.RawCount,
			DocumentLength: doc.Length(),
		}
	}
	return payload
}

func (s *StandingsService) fetchLeagueDocument(ctx context.Context, pageURL string) (Document, string, error) {
	doc, err := s.source.FetchLeaguePage(ctx, pageURL)
	if err == nil {
		if strings.Contains(strings.ToLower(doc.ContentType), "json") {
			return doc, SourceAPI, nil
		}
		return doc, SourceScrape, nil
	}

	feedDoc, feedErr := s.source.FetchLeagueFeed(ctx, pageURL)
	if feedErr == nil {
		return feedDoc, SourceAPI, nil
	}
	return Document{}, "", err
}

// acceptRows drops rows violating canonical invariants, dedupes by position
// and sorts the table. Row-level rejects stay at debug level; only the
// whole-table verdict is surfaced.
func (s *StandingsService) acceptRows(ctx context.Context, rows []vsports.StandingRow) []vsports.StandingRow {
	kept := make([]vsports.StandingRow, 0, len(rows))
	for _, row := range rows {
		if err := s.validate.StructCtx(ctx, row); err != nil {
			s.logger.DebugContext(ctx, "standings row rejected", "position", row.Position, "team", row.Team, "error", err)
			continue
		}
		kept = append(kept, row)
	}
	kept = vsports.DedupeRows(kept)
	vsports.SortTable(kept)
	return kept
}

func (s *StandingsService) totalFailure(reason string) StandingsPayload {
	if s.staticFallback {
		return s.fallback.StandingsSnapshot(reason)
	}
	return s.fallback.StandingsError(reason)
}
