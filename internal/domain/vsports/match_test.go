package vsports

import "testing"

func intPtr(v int) *int { return &v }

func TestMatchValid_CompletedRequiresScores(t *testing.T) {
	t.Parallel()

	m := Match{Home: "Alpha", Away: "Beta", Status: StatusCompleted}
	if m.Valid() {
		t.Fatalf("completed match without scores must be invalid")
	}

	m.HomeScore = intPtr(2)
	m.AwayScore = intPtr(1)
	if !m.Valid() {
		t.Fatalf("completed match with scores must be valid")
	}
}

func TestMatchValid_UpcomingForbidsScores(t *testing.T) {
	t.Parallel()

	m := Match{Home: "Alpha", Away: "Beta", Status: StatusUpcoming}
	if !m.Valid() {
		t.Fatalf("upcoming match without scores must be valid")
	}

	m.HomeScore = intPtr(0)
	if m.Valid() {
		t.Fatalf("upcoming match with a score must be invalid")
	}
}

func TestMatchValid_RejectsSelfMatch(t *testing.T) {
	t.Parallel()

	m := Match{Home: "Alpha", Away: "alpha", Status: StatusUpcoming}
	if m.Valid() {
		t.Fatalf("self-match must be invalid")
	}
}

func TestIdentityKey_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := Match{Home: "Alpha", Away: "Beta"}
	b := Match{Home: "Beta", Away: "Alpha"}
	if a.IdentityKey() != b.IdentityKey() {
		t.Fatalf("identity key must not depend on home/away order: %q vs %q", a.IdentityKey(), b.IdentityKey())
	}
}

func TestDedupeMatches_DropsMirroredFixture(t *testing.T) {
	t.Parallel()

	in := []Match{
		{Home: "Alpha", Away: "Beta", Status: StatusUpcoming},
		{Home: "Beta", Away: "Alpha", Status: StatusUpcoming},
		{Home: "Gamma", Away: "Delta", Status: StatusUpcoming},
	}

	out := DedupeMatches(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 matches after dedupe, got=%d", len(out))
	}
	if out[0].Home != "Alpha" {
		t.Fatalf("dedupe must keep the first occurrence, got home=%q", out[0].Home)
	}
}

func TestDedupeMatches_Idempotent(t *testing.T) {
	t.Parallel()

	in := []Match{
		{Home: "Alpha", Away: "Beta"},
		{Home: "Beta", Away: "Alpha"},
		{Home: "Gamma", Away: "Delta"},
	}

	once := DedupeMatches(in)
	twice := DedupeMatches(once)
	if len(once) != len(twice) {
		t.Fatalf("dedupe must be idempotent: first=%d second=%d", len(once), len(twice))
	}
	seen := map[string]struct{}{}
	for _, m := range twice {
		key := m.IdentityKey()
		if _, dup := seen[key]; dup {
			t.Fatalf("dedupe output still contains duplicate key %q", key)
		}
		seen[key] = struct{}{}
	}
}
