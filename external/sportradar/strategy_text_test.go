package sportradar

import "testing"

func TestMatchesFromText(t *testing.T) {
	t.Parallel()

	body := `<div>Red United 2 : 1 Blue City</div>
	<div>Green Rovers – : – White Albion</div>
	<div>Noise without scores</div>`

	records := matchesFromText(body)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["home"] != "Red United" || records[0]["score"] != "2:1" {
		t.Fatalf("first record = %v", records[0])
	}
	if records[1]["score"] != "–:–" {
		t.Fatalf("second score = %v", records[1]["score"])
	}
}

func TestMatchesFromTextRejectsSelfMatch(t *testing.T) {
	t.Parallel()

	body := `Red United 2 : 1 Red United`
	if records := matchesFromText(body); len(records) != 0 {
		t.Fatalf("self-match must be dropped, got %d", len(records))
	}
}

func TestStandingsFromText(t *testing.T) {
	t.Parallel()

	body := `<pre>
1. Red United 20 : 5 30
2. Blue City 15 : 9 27
3. Green Rovers 12 : 12 20
not a table line
</pre>`

	records := standingsFromText(body)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	first := records[0]
	if first["position"] != 1 || first["team"] != "Red United" {
		t.Fatalf("first row = %v", first)
	}
	if first["goalsFor"] != 20 || first["goalsAgainst"] != 5 || first["points"] != 30 {
		t.Fatalf("first numbers = %v", first)
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	got := stripMarkup(`<td>Red&nbsp;&amp;&nbsp;Blue</td>`)
	if got != "\nRed & Blue\n" {
		t.Fatalf("stripMarkup = %q", got)
	}

	plain := "no markup here"
	if stripMarkup(plain) != plain {
		t.Fatal("plain text must pass through untouched")
	}
}
