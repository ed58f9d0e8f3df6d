package sportradar

// PartialRecord is the loosely typed shape a strategy emits before
// normalization. Field names and nesting vary per strategy and per upstream
// schema version; the normalizer owns the mapping to canonical types.
type PartialRecord = map[string]any

// Strategy is one self-contained heuristic for pulling records out of a raw
// document. Extract is pure: same body, same records, no shared state.
type Strategy struct {
	Name    string
	Extract func(body string) []PartialRecord
}

// Outcome reports what a registry run produced and which strategy won.
type Outcome struct {
	Strategy string
	Records  []PartialRecord
}

func (o Outcome) Count() int { return len(o.Records) }

// Registry runs strategies in a fixed order, most-specific first. A strategy
// wins outright at minYield records or more. Sub-threshold yields are noise
// and only used when no strategy reaches the threshold, in which case the
// largest yield wins with earlier strategies breaking ties.
type Registry struct {
	strategies []Strategy
	minYield   int
}

func NewRegistry(minYield int, strategies ...Strategy) *Registry {
	if minYield < 1 {
		minYield = 1
	}
	return &Registry{strategies: strategies, minYield: minYield}
}

func (r *Registry) Extract(body string) Outcome {
	var best Outcome
	if body == "" {
		return best
	}

	for _, s := range r.strategies {
		records := s.Extract(body)
		if len(records) >= r.minYield {
			return Outcome{Strategy: s.Name, Records: records}
		}
		if len(records) > best.Count() {
			best = Outcome{Strategy: s.Name, Records: records}
		}
	}
	return best
}

// MatchRegistry is the default strategy order for fixture pages.
func MatchRegistry(minYield int) *Registry {
	return NewRegistry(minYield,
		Strategy{Name: "next-data", Extract: matchesFromNextData},
		Strategy{Name: "window-state", Extract: matchesFromWindowState},
		Strategy{Name: "inline-json", Extract: matchesFromInlineJSON},
		Strategy{Name: "dom-table", Extract: matchesFromDOM},
		Strategy{Name: "text-scan", Extract: matchesFromText},
	)
}

// StandingsRegistry is the default strategy order for table pages.
func StandingsRegistry(minYield int) *Registry {
	return NewRegistry(minYield,
		Strategy{Name: "next-data", Extract: standingsFromNextData},
		Strategy{Name: "window-state", Extract: standingsFromWindowState},
		Strategy{Name: "inline-json", Extract: standingsFromInlineJSON},
		Strategy{Name: "dom-table", Extract: standingsFromDOM},
		Strategy{Name: "text-scan", Extract: standingsFromText},
	)
}
