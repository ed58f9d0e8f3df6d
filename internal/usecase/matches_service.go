package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
	"github.com/g4biGTJS/vsport-elo/internal/platform/cache"
	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

const matchesCacheKey = "payload:matches"

type MatchesServiceConfig struct {
	Source       MatchSource
	Cache        *cache.Store
	Fallback     *FallbackPolicy
	Logger       *logging.Logger
	RecentRounds int
	FetchWorkers int
}

// MatchesService runs the full extraction pipeline for fixtures: resolve the
// season, fetch the season document, run the strategy ladder, normalize,
// dedupe, backfill missing recent rounds concurrently and assemble the
// payload. It never returns an error: total failure becomes an explicit
// error payload via the fallback policy.
type MatchesService struct {
	source       MatchSource
	cache        *cache.Store
	fallback     *FallbackPolicy
	logger       *logging.Logger
	recentRounds int
	fetchWorkers int
}

func NewMatchesService(cfg MatchesServiceConfig) *MatchesService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = NewFallbackPolicy(nil)
	}

	recentRounds := cfg.RecentRounds
	if recentRounds < 1 {
		recentRounds = 3
	}

	workers := cfg.FetchWorkers
	if workers < 1 {
		workers = 4
	}

	return &MatchesService{
		source:       cfg.Source,
		cache:        cfg.Cache,
		fallback:     fallback,
		logger:       logger,
		recentRounds: recentRounds,
		fetchWorkers: workers,
	}
}

func (s *MatchesService) GetMatches(ctx context.Context, debug bool) MatchesPayload {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchesService.GetMatches")
	defer span.End()

	if !debug && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, matchesCacheKey); ok {
			if payload, isPayload := cached.(MatchesPayload); isPayload {
				return payload
			}
		}
	}

	payload := s.build(ctx, debug)

	if !debug && s.cache != nil && payload.Error == "" {
		s.cache.Set(ctx, matchesCacheKey, payload)
	}
	return payload
}

func (s *MatchesService) build(ctx context.Context, debug bool) MatchesPayload {
	seasonID := s.source.ResolveSeason(ctx)

	doc, source, err := s.fetchSeasonDocument(ctx, seasonID)
	if err != nil {
		s.logger.WarnContext(ctx, "all season document candidates failed", "season_id", seasonID, "error", err)
		return s.errorPayload(fmt.Sprintf("upstream fetch failed: %v", err), debug, seasonID, Document{}, Outcome{})
	}

	matches, outcome := s.source.ExtractMatches(doc.Body)
	matches = vsports.DedupeMatches(matches)

	// An empty yield from the rendered page is a negative signal, not an
	// error; the feed variant is the next candidate in the ordered list.
	if len(matches) == 0 && source == SourceScrape {
		if feedDoc, feedErr := s.source.FetchSeasonFeed(ctx, seasonID); feedErr == nil {
			if feedMatches, feedOutcome := s.source.ExtractMatches(feedDoc.Body); len(feedMatches) > 0 {
				doc, source = feedDoc, SourceAPI
				matches, outcome = vsports.DedupeMatches(feedMatches), feedOutcome
			}
		}
	}

	if len(matches) == 0 {
		s.logger.WarnContext(ctx, "no strategy extracted fixtures",
			"season_id", seasonID,
			"document_length", doc.Length(),
		)
		return s.errorPayload("no extraction strategy yielded fixtures", debug, seasonID, doc, outcome)
	}

	merged := s.backfillRecentRounds(ctx, seasonID, matches)
	assembled := AssembleMatches(merged, s.recentRounds)

	payload := MatchesPayload{
		NextFixtures:  emptyIfNil(assembled.NextFixtures),
		NextRound:     assembled.NextRound,
		RecentResults: emptyIfNil(assembled.RecentResults),
		LastRound:     assembled.LastRound,
		Source:        source,
	}
	if debug {
		payload.Debug = &DebugInfo{
			Strategy:       outcome.Strategy,
			RawCount:       outcome.RawCount,
			DocumentLength: doc.Length(),
			SeasonID:       seasonID,
		}
	}
	return payload
}

func (s *MatchesService) fetchSeasonDocument(ctx context.Context, seasonID string) (Document, string, error) {
	doc, err := s.source.FetchSeasonPage(ctx, seasonID)
	if err == nil {
		if strings.Contains(strings.ToLower(doc.ContentType), "json") {
			return doc, SourceAPI, nil
		}
		return doc, SourceScrape, nil
	}

	feedDoc, feedErr := s.source.FetchSeasonFeed(ctx, seasonID)
	if feedErr == nil {
		return feedDoc, SourceAPI, nil
	}
	return Document{}, "", err
}

// backfillRecentRounds fans out per-round fetches when the season document
// does not cover the whole recent-results window. Each fetch has its own
// timeout and a failed round does not cancel the others; partial history is
// still a useful response.
func (s *MatchesService) backfillRecentRounds(ctx context.Context, seasonID string, matches []vsports.Match) []vsports.Match {
	missing := s.missingRounds(matches)
	if len(missing) == 0 {
		return matches
	}

	pool, err := ants.NewPool(s.fetchWorkers)
	if err != nil {
		s.logger.WarnContext(ctx, "round fetch pool unavailable", "error", err)
		return matches
	}
	defer pool.Release()

	results := make(chan []vsports.Match, len(missing))
	var wg sync.WaitGroup
	for _, round := range missing {
		round := round
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			doc, fetchErr := s.source.FetchRoundPage(ctx, seasonID, round)
			if fetchErr != nil {
				s.logger.WarnContext(ctx, "round document fetch failed", "season_id", seasonID, "round", round, "error", fetchErr)
				return
			}
			roundMatches, _ := s.source.ExtractMatches(doc.Body)
			results <- vsports.DedupeMatches(roundMatches)
		}); err != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "round fetch submit failed", "round", round, "error", err)
		}
	}

	wg.Wait()
	close(results)

	merged := matches
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[crossDocumentKey(m)] = struct{}{}
	}
	for batch := range results {
		for _, m := range batch {
			key := crossDocumentKey(m)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged
}

// missingRounds lists completed rounds inside the recent window that the
// primary document did not cover. Without a known next round there is
// nothing to anchor the window on.
func (s *MatchesService) missingRounds(matches []vsports.Match) []int {
	nextRound := 0
	present := make(map[int]struct{})
	for _, m := range matches {
		if m.Round == nil {
			continue
		}
		if m.Status == vsports.StatusUpcoming && (nextRound == 0 || *m.Round < nextRound) {
			nextRound = *m.Round
		}
		if m.Status == vsports.StatusCompleted {
			present[*m.Round] = struct{}{}
		}
	}
	if nextRound <= 1 {
		return nil
	}

	var missing []int
	for round := nextRound - 1; round >= 1 && round > nextRound-1-s.recentRounds; round-- {
		if _, ok := present[round]; !ok {
			missing = append(missing, round)
		}
	}
	return missing
}

// crossDocumentKey extends the per-pass identity key with the round so the
// same pairing from two different rounds survives a multi-document merge.
func crossDocumentKey(m vsports.Match) string {
	round := -1
	if m.Round != nil {
		round = *m.Round
	}
	return fmt.Sprintf("%d|%s", round, m.IdentityKey())
}

func (s *MatchesService) errorPayload(reason string, debug bool, seasonID string, doc Document, outcome Outcome) MatchesPayload {
	fallback := s.fallback
	if fallback == nil {
		fallback = NewFallbackPolicy(nil)
	}
	payload := fallback.MatchesError(reason)
	if debug {
		payload.Debug = &DebugInfo{
			Strategy:       outcome.Strategy,
			RawCount:       outcome.RawCount,
			DocumentLength: doc.Length(),
			SeasonID:       seasonID,
		}
	}
	return payload
}

func emptyIfNil(matches []vsports.Match) []vsports.Match {
	if matches == nil {
		return []vsports.Match{}
	}
	return matches
}
