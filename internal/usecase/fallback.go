package usecase

import "github.com/g4biGTJS/vsport-elo/internal/domain/vsports"

// FallbackPolicy decides what a handler gets when every strategy and URL is
// exhausted. Two tiers exist: a static last-known-good standings snapshot so
// the consuming UI always has something renderable, and an explicit error
// payload with empty arrays. Which tier a service uses is deployment policy,
// not a universal rule; both primitives are exposed.
type FallbackPolicy struct {
	snapshot []vsports.StandingRow
}

func NewFallbackPolicy(snapshot []vsports.StandingRow) *FallbackPolicy {
	if len(snapshot) == 0 {
		snapshot = DefaultStandingsSnapshot()
	}
	return &FallbackPolicy{snapshot: snapshot}
}

// StandingsSnapshot is tier 1: stale but renderable.
func (p *FallbackPolicy) StandingsSnapshot(reason string) StandingsPayload {
	rows := make([]vsports.StandingRow, len(p.snapshot))
	copy(rows, p.snapshot)
	return StandingsPayload{
		Standings: rows,
		Source:    SourceFallback,
		Error:     reason,
	}
}

// StandingsError is tier 2: explicit failure, nothing to render.
func (p *FallbackPolicy) StandingsError(reason string) StandingsPayload {
	return StandingsPayload{
		Standings: []vsports.StandingRow{},
		Source:    SourceError,
		Error:     reason,
	}
}

// MatchesError is the only fixture fallback: fixtures change every round, so
// a static snapshot would be misleading rather than helpful.
func (p *FallbackPolicy) MatchesError(reason string) MatchesPayload {
	return MatchesPayload{
		NextFixtures:  []vsports.Match{},
		RecentResults: []vsports.Match{},
		Source:        SourceError,
		Error:         reason,
	}
}

// DefaultStandingsSnapshot is the hand-curated last-known-good table,
// refreshed manually when the virtual league resets.
func DefaultStandingsSnapshot() []vsports.StandingRow {
	rows := []vsports.StandingRow{
		{Position: 1, Team: "London City", GoalsFor: 48, GoalsAgainst: 21, Points: 52},
		{Position: 2, Team: "Manchester Rovers", GoalsFor: 45, GoalsAgainst: 24, Points: 49},
		{Position: 3, Team: "Liverpool Athletic", GoalsFor: 41, GoalsAgainst: 26, Points: 46},
		{Position: 4, Team: "Birmingham United", GoalsFor: 38, GoalsAgainst: 29, Points: 42},
		{Position: 5, Team: "Leeds Wanderers", GoalsFor: 36, GoalsAgainst: 30, Points: 39},
		{Position: 6, Team: "Newcastle Harriers", GoalsFor: 33, GoalsAgainst: 31, Points: 36},
		{Position: 7, Team: "Sheffield Forest", GoalsFor: 31, GoalsAgainst: 32, Points: 33},
		{Position: 8, Team: "Bristol Albion", GoalsFor: 29, GoalsAgainst: 33, Points: 31},
		{Position: 9, Team: "Leicester Town", GoalsFor: 28, GoalsAgainst: 34, Points: 29},
		{Position: 10, Team: "Southampton Sailors", GoalsFor: 26, GoalsAgainst: 35, Points: 27},
		{Position: 11, Team: "Nottingham Oaks", GoalsFor: 24, GoalsAgainst: 36, Points: 24},
		{Position: 12, Team: "Coventry Crusaders", GoalsFor: 23, GoalsAgainst: 38, Points: 22},
		{Position: 13, Team: "Derby Rams", GoalsFor: 21, GoalsAgainst: 40, Points: 19},
		{Position: 14, Team: "Portsmouth Mariners", GoalsFor: 19, GoalsAgainst: 42, Points: 16},
		{Position: 15, Team: "Hull Tigers", GoalsFor: 17, GoalsAgainst: 45, Points: 13},
		{Position: 16, Team: "Blackburn Foxes", GoalsFor: 15, GoalsAgainst: 48, Points: 10},
	}
	for i := range rows {
		rows[i].Trend = vsports.TrendSame
	}
	return rows
}
