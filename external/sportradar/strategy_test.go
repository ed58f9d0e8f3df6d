package sportradar

import "testing"

func constStrategy(name string, n int) Strategy {
	return Strategy{
		Name: name,
		Extract: func(string) []PartialRecord {
			records := make([]PartialRecord, n)
			for i := range records {
				records[i] = PartialRecord{"home": "A", "away": "B"}
			}
			return records
		},
	}
}

func TestRegistryFirstStrategyAtThresholdWins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(3,
		constStrategy("first", 3),
		constStrategy("second", 10),
	)

	out := reg.Extract("body")
	if out.Strategy != "first" {
		t.Fatalf("winner = %q, want first", out.Strategy)
	}
	if out.Count() != 3 {
		t.Fatalf("count = %d, want 3", out.Count())
	}
}

func TestRegistrySubThresholdLargestWins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(3,
		constStrategy("tiny", 1),
		constStrategy("small", 2),
	)

	out := reg.Extract("body")
	if out.Strategy != "small" {
		t.Fatalf("winner = %q, want small", out.Strategy)
	}
}

func TestRegistrySubThresholdTieKeepsEarlier(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(3,
		constStrategy("early", 2),
		constStrategy("late", 2),
	)

	out := reg.Extract("body")
	if out.Strategy != "early" {
		t.Fatalf("winner = %q, want early", out.Strategy)
	}
}

func TestRegistryEmptyBody(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(3, constStrategy("any", 5))
	out := reg.Extract("")
	if out.Count() != 0 || out.Strategy != "" {
		t.Fatalf("empty body must yield nothing, got %+v", out)
	}
}

// Same document, same outcome: registries must be pure functions of the body.
func TestRegistryDeterministic(t *testing.T) {
	t.Parallel()

	reg := MatchRegistry(3)
	body := `<script id="__NEXT_DATA__" type="application/json">{"props":{"zz":{"matches":[
		{"home":"Alpha","away":"Beta","homeScore":1,"awayScore":0},
		{"home":"Gamma","away":"Delta","homeScore":2,"awayScore":2},
		{"home":"Epsilon","away":"Zeta","homeScore":0,"awayScore":3}
	]},"aa":{"matches":[
		{"home":"One","away":"Two","homeScore":1,"awayScore":1},
		{"home":"Three","away":"Four","homeScore":0,"awayScore":0},
		{"home":"Five","away":"Six","homeScore":2,"awayScore":1}
	]}}}</script>`

	first := reg.Extract(body)
	for i := 0; i < 20; i++ {
		again := reg.Extract(body)
		if again.Strategy != first.Strategy || again.Count() != first.Count() {
			t.Fatalf("run %d diverged: %q/%d vs %q/%d",
				i, again.Strategy, again.Count(), first.Strategy, first.Count())
		}
		if again.Records[0]["home"] != first.Records[0]["home"] {
			t.Fatalf("run %d first record diverged", i)
		}
	}
}
