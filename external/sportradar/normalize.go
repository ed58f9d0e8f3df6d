package sportradar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
)

// The upstream has shipped at least half a dozen field spellings for the
// same logical value across schema versions. Each logical field is an
// ordered candidate list, first non-empty wins; extending support for a new
// schema version means appending a path here, nothing else.

var (
	homeNameKeys = []string{
		"home", "homeTeam.name.short", "homeTeam.name", "homeName",
		"teams.home.name", "home.name.short", "home.name", "home.abbreviation",
		"competitors.0.name", "team1",
	}
	awayNameKeys = []string{
		"away", "awayTeam.name.short", "awayTeam.name", "awayName",
		"teams.away.name", "away.name.short", "away.name", "away.abbreviation",
		"competitors.1.name", "team2",
	}
	homeScoreKeys = []string{"homeScore", "score.home", "result.home", "scores.home", "homeGoals"}
	awayScoreKeys = []string{"awayScore", "score.away", "result.away", "scores.away", "awayGoals"}
	scoreCellKeys = []string{"score", "result", "ft"}
	roundKeys     = []string{"round", "matchday", "round_number", "week", "gameweek"}
	kickoffKeys   = []string{"kickoffTime", "time", "kickoff", "startTime", "scheduled", "date"}
	homeCrestKeys = []string{"homeCrestId", "homeCrest", "homeTeam.crest", "homeTeam.logo", "home.crest", "home.logo"}
	awayCrestKeys = []string{"awayCrestId", "awayCrest", "awayTeam.crest", "awayTeam.logo", "away.crest", "away.logo"}
	statusKeys    = []string{"status", "state", "status.name", "state.name"}

	teamNameKeys = []string{
		"team.name.short", "team.name", "name.short", "team",
		"abbreviation", "team.abbr", "name",
	}
	positionKeys     = []string{"position", "pos", "rank", "place"}
	goalsForKeys     = []string{"goalsFor", "scored", "goals_for", "gf", "goals.for"}
	goalsAgainstKeys = []string{"goalsAgainst", "conceded", "goals_against", "ga", "goals.against"}
	pointsKeys       = []string{"points", "pts"}
	trendKeys        = []string{"trend", "direction", "movement"}
	trendDeltaKeys   = []string{"change", "positionChange", "delta"}
	crestKeys        = []string{"crestId", "crest", "logo", "badge", "team.logo", "image_path"}
	goalsCellKeys    = []string{"goals", "score"}
)

var (
	scoreCellPattern = regexp.MustCompile(`^\s*(\d+|[–—-])\s*[:：-]\s*(\d+|[–—-])\s*$`)
	clockPattern     = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	crestIDPattern   = regexp.MustCompile(`([0-9a-fA-F-]{8,}|\d{2,})(?:\.(?:png|svg|gif|jpg|webp))?$`)
)

var upcomingStatuses = map[string]struct{}{
	"not_started": {}, "notstarted": {}, "scheduled": {}, "upcoming": {}, "fixture": {}, "pending": {},
}

var completedStatuses = map[string]struct{}{
	"ended": {}, "finished": {}, "closed": {}, "complete": {}, "completed": {}, "ft": {}, "full_time": {},
}

// NormalizeMatch maps a loosely typed record to a canonical match. The
// second return is false when required fields are unresolved, the record is
// a self-match, or score information is present but unreadable.
func NormalizeMatch(rec PartialRecord) (vsports.Match, bool) {
	home := firstString(rec, homeNameKeys...)
	away := firstString(rec, awayNameKeys...)
	if home == "" || away == "" || strings.EqualFold(home, away) {
		return vsports.Match{}, false
	}

	m := vsports.Match{
		Home:        home,
		Away:        away,
		HomeCrestID: crestID(firstString(rec, homeCrestKeys...)),
		AwayCrestID: crestID(firstString(rec, awayCrestKeys...)),
	}

	if round, ok := firstNumber(rec, roundKeys...); ok && round > 0 {
		m.Round = &round
	}
	if raw := firstString(rec, kickoffKeys...); raw != "" {
		if clock := clockPattern.FindString(raw); clock != "" {
			m.KickoffTime = clock
		}
	}

	status, ok := resolveScores(rec, &m)
	if !ok {
		return vsports.Match{}, false
	}
	m.Status = status

	if !m.Valid() {
		return vsports.Match{}, false
	}
	return m, true
}

// resolveScores decides upcoming vs completed. Numeric score fields or an
// integer:integer cell mean played; a dash cell means not yet played; a
// record with no score information at all is an upcoming fixture (fixture
// lists legitimately omit score fields). Anything else is rejected rather
// than guessed.
func resolveScores(rec PartialRecord, m *vsports.Match) (vsports.MatchStatus, bool) {
	homeScore, homeOK := firstNumber(rec, homeScoreKeys...)
	awayScore, awayOK := firstNumber(rec, awayScoreKeys...)
	if homeOK && awayOK {
		if homeScore < 0 || awayScore < 0 {
			return "", false
		}
		m.HomeScore = &homeScore
		m.AwayScore = &awayScore
		return vsports.StatusCompleted, true
	}
	if homeOK != awayOK {
		return "", false
	}

	if cell := firstString(rec, scoreCellKeys...); cell != "" {
		sub := scoreCellPattern.FindStringSubmatch(cell)
		if sub == nil {
			return "", false
		}
		homeDigits := sub[1][0] >= '0' && sub[1][0] <= '9'
		awayDigits := sub[2][0] >= '0' && sub[2][0] <= '9'
		switch {
		case homeDigits && awayDigits:
			hs, _ := strconv.Atoi(sub[1])
			as, _ := strconv.Atoi(sub[2])
			m.HomeScore = &hs
			m.AwayScore = &as
			return vsports.StatusCompleted, true
		case !homeDigits && !awayDigits:
			return vsports.StatusUpcoming, true
		default:
			return "", false
		}
	}

	if status := strings.ToLower(firstString(rec, statusKeys...)); status != "" {
		if _, up := upcomingStatuses[status]; up {
			return vsports.StatusUpcoming, true
		}
		if _, done := completedStatuses[status]; done {
			// Completed without scores violates the canonical invariant.
			return "", false
		}
	}

	return vsports.StatusUpcoming, true
}

// NormalizeStanding maps a loosely typed record to a canonical table row.
// fallbackPos is used when the record carries no position of its own (the
// upstream sometimes relies on array order alone).
func NormalizeStanding(rec PartialRecord, fallbackPos int) (vsports.StandingRow, bool) {
	team := firstString(rec, teamNameKeys...)
	if team == "" || team == "???" {
		return vsports.StandingRow{}, false
	}

	pos, ok := firstNumber(rec, positionKeys...)
	if !ok || pos < 1 {
		pos = fallbackPos
	}
	if pos < 1 {
		return vsports.StandingRow{}, false
	}

	row := vsports.StandingRow{
		Position: pos,
		Team:     team,
		Trend:    vsports.TrendSame,
		CrestID:  crestID(firstString(rec, crestKeys...)),
	}

	if gf, found := firstNumber(rec, goalsForKeys...); found {
		row.GoalsFor = gf
	}
	if ga, found := firstNumber(rec, goalsAgainstKeys...); found {
		row.GoalsAgainst = ga
	}
	if row.GoalsFor == 0 && row.GoalsAgainst == 0 {
		if cell := firstString(rec, goalsCellKeys...); cell != "" {
			if sub := scoreCellPattern.FindStringSubmatch(cell); sub != nil {
				row.GoalsFor, _ = strconv.Atoi(sub[1])
				row.GoalsAgainst, _ = strconv.Atoi(sub[2])
			}
		}
	}
	if pts, found := firstNumber(rec, pointsKeys...); found {
		row.Points = pts
	}
	if row.GoalsFor < 0 || row.GoalsAgainst < 0 || row.Points < 0 {
		return vsports.StandingRow{}, false
	}

	switch strings.ToLower(firstString(rec, trendKeys...)) {
	case "up", "+":
		row.Trend = vsports.TrendUp
	case "down", "-":
		row.Trend = vsports.TrendDown
	case "", "same", "0", "=":
		if delta, found := firstNumber(rec, trendDeltaKeys...); found {
			if delta > 0 {
				row.Trend = vsports.TrendUp
			} else if delta < 0 {
				row.Trend = vsports.TrendDown
			}
		}
	}

	return row, true
}

func plausibleMatch(rec PartialRecord) bool {
	home := firstString(rec, homeNameKeys...)
	away := firstString(rec, awayNameKeys...)
	return home != "" && away != "" && !strings.EqualFold(home, away)
}

func plausibleStanding(rec PartialRecord) bool {
	team := firstString(rec, teamNameKeys...)
	return team != "" && team != "???"
}

// lookupPath resolves a dotted path inside nested maps; numeric segments
// index into arrays.
func lookupPath(v any, path string) any {
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			current = node[segment]
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
		if current == nil {
			return nil
		}
	}
	return current
}

func firstString(rec PartialRecord, paths ...string) string {
	for _, path := range paths {
		switch v := lookupPath(rec, path).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(rec PartialRecord, paths ...string) (int, bool) {
	for _, path := range paths {
		switch v := lookupPath(rec, path).(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// crestID reduces a crest reference (often a full image URL) to a bare
// identifier; already-bare IDs pass through.
func crestID(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "/:") {
		return raw
	}
	segment := raw
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	if m := crestIDPattern.FindStringSubmatch(segment); m != nil {
		return m[1]
	}
	return ""
}
