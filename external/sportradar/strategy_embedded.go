package sportradar

import (
	"regexp"
	"sort"

	sonic "github.com/bytedance/sonic"
)

// Embedded-JSON strategies. The upstream is a client-side app that ships its
// state inside the HTML: as a __NEXT_DATA__ script, as a window.__STATE__
// assignment, or as inline keyed arrays. These are the most reliable sources
// when present, so they run before any DOM or text heuristics.

var (
	nextDataPattern    = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)
	windowStatePattern = regexp.MustCompile(`(?s)window\.__(?:INITIAL_STATE|STATE|DATA)__\s*=\s*(\{.*?\});`)

	inlineMatchesKey   = regexp.MustCompile(`"(?:matches|fixtures)"\s*:\s*\[`)
	inlineStandingsKey = regexp.MustCompile(`"standings"\s*:\s*\[`)
)

// Keys worth descending into when hunting for record arrays inside a decoded
// state object.
var (
	matchArrayKeys    = []string{"matches", "fixtures", "events", "games", "schedule", "rows", "items"}
	standingArrayKeys = []string{"standings", "table", "rows", "items", "teams"}
)

const (
	// minEmbeddedRecords is the smallest array accepted while searching a
	// state object; shorter arrays are almost always widget chrome, not data.
	minEmbeddedRecords = 3
	maxSearchDepth     = 12
)

func matchesFromNextData(body string) []PartialRecord {
	return recordsFromScript(body, nextDataPattern, matchArrayKeys, plausibleMatch)
}

func matchesFromWindowState(body string) []PartialRecord {
	return recordsFromScript(body, windowStatePattern, matchArrayKeys, plausibleMatch)
}

func matchesFromInlineJSON(body string) []PartialRecord {
	return recordsFromInlineArray(body, inlineMatchesKey, plausibleMatch)
}

func standingsFromNextData(body string) []PartialRecord {
	return recordsFromScript(body, nextDataPattern, standingArrayKeys, plausibleStanding)
}

func standingsFromWindowState(body string) []PartialRecord {
	return recordsFromScript(body, windowStatePattern, standingArrayKeys, plausibleStanding)
}

func standingsFromInlineJSON(body string) []PartialRecord {
	return recordsFromInlineArray(body, inlineStandingsKey, plausibleStanding)
}

func recordsFromScript(body string, pattern *regexp.Regexp, keys []string, accept func(PartialRecord) bool) []PartialRecord {
	m := pattern.FindStringSubmatch(body)
	if len(m) != 2 {
		return nil
	}

	var state any
	if err := sonic.UnmarshalString(m[1], &state); err != nil {
		return nil
	}

	return findRecordArrays(state, keys, accept, 0)
}

func recordsFromInlineArray(body string, keyPattern *regexp.Regexp, accept func(PartialRecord) bool) []PartialRecord {
	loc := keyPattern.FindStringIndex(body)
	if loc == nil {
		return nil
	}

	raw := balancedSlice(body, loc[1]-1, '[', ']')
	if raw == "" {
		return nil
	}

	var items []any
	if err := sonic.UnmarshalString(raw, &items); err != nil {
		return nil
	}

	return acceptRecords(items, accept)
}

// findRecordArrays walks a decoded state object looking for the first array
// under a known key with enough plausible records. Map keys are visited in
// sorted order so the walk is deterministic.
func findRecordArrays(v any, keys []string, accept func(PartialRecord) bool, depth int) []PartialRecord {
	if depth > maxSearchDepth {
		return nil
	}

	obj, ok := v.(map[string]any)
	if !ok {
		if arr, isArr := v.([]any); isArr {
			for _, item := range arr {
				if found := findRecordArrays(item, keys, accept, depth+1); len(found) >= minEmbeddedRecords {
					return found
				}
			}
		}
		return nil
	}

	for _, key := range keys {
		arr, isArr := obj[key].([]any)
		if !isArr || len(arr) < minEmbeddedRecords {
			continue
		}
		if records := acceptRecords(arr, accept); len(records) >= minEmbeddedRecords {
			return records
		}
	}

	childKeys := make([]string, 0, len(obj))
	for key := range obj {
		childKeys = append(childKeys, key)
	}
	sort.Strings(childKeys)

	for _, key := range childKeys {
		if found := findRecordArrays(obj[key], keys, accept, depth+1); len(found) >= minEmbeddedRecords {
			return found
		}
	}

	return nil
}

func acceptRecords(items []any, accept func(PartialRecord) bool) []PartialRecord {
	records := make([]PartialRecord, 0, len(items))
	for _, item := range items {
		rec, isMap := item.(map[string]any)
		if !isMap || !accept(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// balancedSlice returns body[start..] up to and including the bracket that
// balances the one at start, skipping quoted strings. Empty when unbalanced.
func balancedSlice(body string, start int, open, close byte) string {
	if start < 0 || start >= len(body) || body[start] != open {
		return ""
	}

	depth := 0
	inString := false
	for i := start; i < len(body); i++ {
		c := body[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return body[start : i+1]
			}
		}
	}
	return ""
}
