package sportradar

import (
	"regexp"
	"strconv"
	"strings"
)

// Text-scan strategies: the last resort when neither embedded state nor
// recognizable markup exists. They scan raw text windows around score-shaped
// tokens and accept more noise than the strategies above, which is why they
// run last and why the normalizer stays strict.

var (
	matchLinePattern = regexp.MustCompile(
		`(?m)([\p{L}][\p{L}\d .'&-]{1,38}[\p{L}.])\s+(\d{1,2}|[–—-])\s*:\s*(\d{1,2}|[–—-])\s+([\p{L}][\p{L}\d .'&-]{1,38}[\p{L}.])`,
	)
	standingLinePattern = regexp.MustCompile(
		`(?m)^\s*(\d{1,2})\.?\s+([\p{L}][\p{L}\d .'&-]{1,38}[\p{L}.])\s+(\d{1,3})\s*:\s*(\d{1,3})\s+(\d{1,3})\s*$`,
	)
	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

func matchesFromText(body string) []PartialRecord {
	text := stripMarkup(body)

	var records []PartialRecord
	for _, m := range matchLinePattern.FindAllStringSubmatch(text, -1) {
		home := strings.TrimSpace(m[1])
		away := strings.TrimSpace(m[4])
		if home == "" || away == "" || strings.EqualFold(home, away) {
			continue
		}
		records = append(records, PartialRecord{
			"home":  home,
			"away":  away,
			"score": m[2] + ":" + m[3],
		})
	}
	return records
}

func standingsFromText(body string) []PartialRecord {
	text := stripMarkup(body)

	var records []PartialRecord
	for _, m := range standingLinePattern.FindAllStringSubmatch(text, -1) {
		pos, err := strconv.Atoi(m[1])
		if err != nil || pos < 1 {
			continue
		}
		gf, _ := strconv.Atoi(m[3])
		ga, _ := strconv.Atoi(m[4])
		pts, _ := strconv.Atoi(m[5])
		records = append(records, PartialRecord{
			"position":     pos,
			"team":         strings.TrimSpace(m[2]),
			"goalsFor":     gf,
			"goalsAgainst": ga,
			"points":       pts,
		})
	}
	return records
}

// stripMarkup flattens HTML into scannable text lines. Tag boundaries become
// newlines so patterns anchored to line shape keep working.
func stripMarkup(body string) string {
	if !strings.Contains(body, "<") {
		return body
	}
	text := tagPattern.ReplaceAllString(body, "\n")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return text
}
