package vsports

import "sort"

// Trend is the short-term direction of a team's table position.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSame Trend = "same"
)

// StandingRow is one team's line in the league table.
type StandingRow struct {
	Position     int    `json:"position" validate:"gte=1"`
	Team         string `json:"team" validate:"required"`
	GoalsFor     int    `json:"goalsFor" validate:"gte=0"`
	GoalsAgainst int    `json:"goalsAgainst" validate:"gte=0"`
	Points       int    `json:"points" validate:"gte=0"`
	Trend        Trend  `json:"trend"`
	CrestID      string `json:"crestId,omitempty"`
}

// MinTableRows is the smallest row count an extracted table must have to be
// trusted. Below this the table is a parse failure, not a partial result.
const MinTableRows = 3

// positionSlack absorbs a row or two lost to normalization rejects without
// failing the whole table.
const positionSlack = 2

// DedupeRows keeps the first row per position.
func DedupeRows(rows []StandingRow) []StandingRow {
	if len(rows) < 2 {
		return rows
	}
	seen := make(map[int]struct{}, len(rows))
	out := make([]StandingRow, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.Position]; dup {
			continue
		}
		seen[r.Position] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortTable orders rows ascending by position.
func SortTable(rows []StandingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position < rows[j].Position
	})
}

// ValidTable reports whether a deduplicated, sorted table is internally
// consistent: enough rows, positions starting at 1 and near-contiguous.
func ValidTable(rows []StandingRow) bool {
	if len(rows) < MinTableRows {
		return false
	}
	if rows[0].Position < 1 {
		return false
	}
	return rows[len(rows)-1].Position <= len(rows)+positionSlack
}
