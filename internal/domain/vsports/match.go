package vsports

import "strings"

// MatchStatus tells whether a fixture has been played yet.
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusCompleted MatchStatus = "completed"
)

// Match is the canonical shape every extraction strategy is normalized into.
// Completed implies both scores are set; Upcoming implies both are nil.
type Match struct {
	Round       *int        `json:"round"`
	Home        string      `json:"home"`
	Away        string      `json:"away"`
	HomeCrestID string      `json:"homeCrestId,omitempty"`
	AwayCrestID string      `json:"awayCrestId,omitempty"`
	KickoffTime string      `json:"kickoffTime,omitempty"`
	Status      MatchStatus `json:"status"`
	HomeScore   *int        `json:"homeScore"`
	AwayScore   *int        `json:"awayScore"`
}

// Valid reports whether the match honors the score/status invariant and
// names two distinct participants.
func (m Match) Valid() bool {
	if strings.TrimSpace(m.Home) == "" || strings.TrimSpace(m.Away) == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(m.Home), strings.TrimSpace(m.Away)) {
		return false
	}
	switch m.Status {
	case StatusCompleted:
		return m.HomeScore != nil && m.AwayScore != nil && *m.HomeScore >= 0 && *m.AwayScore >= 0
	case StatusUpcoming:
		return m.HomeScore == nil && m.AwayScore == nil
	default:
		return false
	}
}

// IdentityKey is the unordered participant pair. Within one extraction pass
// the same pairing never recurs, so round is deliberately not part of it.
func (m Match) IdentityKey() string {
	home := strings.ToLower(strings.TrimSpace(m.Home))
	away := strings.ToLower(strings.TrimSpace(m.Away))
	if home > away {
		home, away = away, home
	}
	return home + "|" + away
}

// DedupeMatches keeps the first occurrence per identity key. Some upstream
// layouts render a fixture once in the home team's row and once in the away
// team's row.
func DedupeMatches(matches []Match) []Match {
	if len(matches) < 2 {
		return matches
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		key := m.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
