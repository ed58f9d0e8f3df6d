package sportradar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOM strategies. When the upstream serves real server-rendered markup the
// data sits in plain tables; a structural walk is sturdier than text
// matching but more speculative than embedded state, so these run after the
// embedded-JSON strategies.

var (
	roundHeadingPattern = regexp.MustCompile(`(?i)\b(?:round|fordul[oó]|matchday|week)\s*\.?\s*(\d{1,3})`)
	// Strict clock: two-digit minutes, plausible hour. "2:1" fails this and
	// is treated as a score.
	strictClockPattern = regexp.MustCompile(`^\s*([01]?\d|2[0-3]):[0-5]\d\s*$`)
	numericCellPattern = regexp.MustCompile(`^\s*[\d.+-]+\s*$`)
)

func matchesFromDOM(body string) []PartialRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var records []PartialRecord
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		round := 0
		if m := roundHeadingPattern.FindStringSubmatch(tbl.Find("caption, thead").Text()); m != nil {
			round, _ = strconv.Atoi(m[1])
		}
		tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if rec := matchRecordFromRow(row, round); rec != nil {
				records = append(records, rec)
			}
		})
	})
	if len(records) > 0 {
		return records
	}

	// Some layouts render fixtures as list items instead of table rows.
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		if rec := matchRecordFromListItem(item); rec != nil {
			records = append(records, rec)
		}
	})
	return records
}

func matchRecordFromRow(row *goquery.Selection, round int) PartialRecord {
	cells := cellTexts(row)
	if len(cells) < 3 {
		return nil
	}

	clock := ""
	scoreIdx := -1
	for i, cell := range cells {
		if !scoreCellPattern.MatchString(cell) {
			continue
		}
		if strictClockPattern.MatchString(cell) {
			if clock == "" {
				clock = strings.TrimSpace(cell)
			}
			continue
		}
		scoreIdx = i
		break
	}
	if scoreIdx < 0 {
		return nil
	}

	home := nearestTeamCell(cells, scoreIdx, -1)
	away := nearestTeamCell(cells, scoreIdx, +1)
	if home == "" || away == "" {
		return nil
	}

	if m := roundHeadingPattern.FindStringSubmatch(row.Text()); m != nil {
		round, _ = strconv.Atoi(m[1])
	}

	rec := PartialRecord{
		"home":  home,
		"away":  away,
		"score": strings.TrimSpace(cells[scoreIdx]),
	}
	if round > 0 {
		rec["round"] = round
	}
	if clock != "" {
		rec["time"] = clock
	}
	attachCrests(rec, row)
	return rec
}

func matchRecordFromListItem(item *goquery.Selection) PartialRecord {
	// Skip containers that themselves contain list items; only leaves can be
	// fixture rows.
	if item.Find("li").Length() > 0 {
		return nil
	}

	var teams []string
	item.Find("span, p, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" || scoreCellPattern.MatchString(text) || numericCellPattern.MatchString(text) {
			return
		}
		if len([]rune(text)) > 40 {
			return
		}
		teams = append(teams, text)
	})
	if len(teams) < 2 {
		return nil
	}

	score := ""
	item.Find("span, strong, b, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if scoreCellPattern.MatchString(text) && !strictClockPattern.MatchString(text) {
			score = text
			return false
		}
		return true
	})
	if score == "" {
		return nil
	}

	rec := PartialRecord{"home": teams[0], "away": teams[1], "score": score}
	if m := roundHeadingPattern.FindStringSubmatch(item.Text()); m != nil {
		if round, err := strconv.Atoi(m[1]); err == nil {
			rec["round"] = round
		}
	}
	if clock := strictClockPattern.FindString(item.Text()); clock != "" {
		rec["time"] = strings.TrimSpace(clock)
	}
	attachCrests(rec, item)
	return rec
}

func standingsFromDOM(body string) []PartialRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var records []PartialRecord
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 4 {
			return
		}

		pos, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(cells[0]), "."))
		if err != nil || pos < 1 || pos > 99 {
			return
		}

		team := ""
		teamIdx := -1
		for i := 1; i < len(cells); i++ {
			cell := strings.TrimSpace(cells[i])
			if cell == "" || numericCellPattern.MatchString(cell) || scoreCellPattern.MatchString(cell) {
				continue
			}
			team = cell
			teamIdx = i
			break
		}
		if team == "" {
			return
		}

		rec := PartialRecord{"position": pos, "team": team}

		for i := teamIdx + 1; i < len(cells); i++ {
			if sub := scoreCellPattern.FindStringSubmatch(cells[i]); sub != nil && !strictClockPattern.MatchString(cells[i]) {
				rec["goals"] = strings.TrimSpace(cells[i])
				break
			}
		}
		for i := len(cells) - 1; i > teamIdx; i-- {
			if pts, err := strconv.Atoi(strings.TrimSpace(cells[i])); err == nil && pts >= 0 {
				rec["points"] = pts
				break
			}
		}

		if trend := trendFromRow(row); trend != "" {
			rec["trend"] = trend
		}
		if src, ok := row.Find("img").First().Attr("src"); ok {
			rec["crest"] = src
		}
		records = append(records, rec)
	})
	return records
}

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

func nearestTeamCell(cells []string, from, step int) string {
	for i := from + step; i >= 0 && i < len(cells); i += step {
		cell := strings.TrimSpace(cells[i])
		if cell == "" || numericCellPattern.MatchString(cell) ||
			scoreCellPattern.MatchString(cell) || strictClockPattern.MatchString(cell) {
			continue
		}
		return cell
	}
	return ""
}

func attachCrests(rec PartialRecord, node *goquery.Selection) {
	var sources []string
	node.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
			sources = append(sources, src)
		}
	})
	if len(sources) >= 1 {
		rec["homeCrest"] = sources[0]
	}
	if len(sources) >= 2 {
		rec["awayCrest"] = sources[1]
	}
}

func trendFromRow(row *goquery.Selection) string {
	text := row.Text()
	switch {
	case strings.ContainsAny(text, "▲↑"):
		return "up"
	case strings.ContainsAny(text, "▼↓"):
		return "down"
	}

	class := strings.ToLower(row.AttrOr("class", ""))
	inner := strings.ToLower(row.Find("[class*=trend], [class*=arrow], [class*=change]").AttrOr("class", ""))
	combined := class + " " + inner
	switch {
	case strings.Contains(combined, "up"):
		return "up"
	case strings.Contains(combined, "down"):
		return "down"
	}
	return ""
}
