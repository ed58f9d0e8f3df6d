package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
)

func TestFallbackStandingsSnapshot(t *testing.T) {
	t.Parallel()

	p := NewFallbackPolicy(nil)
	payload := p.StandingsSnapshot("upstream gone")

	assert.Equal(t, SourceFallback, payload.Source)
	assert.Equal(t, "upstream gone", payload.Error)
	require.True(t, vsports.ValidTable(payload.Standings), "snapshot must itself be a valid table")

	// Handing out the snapshot must not expose the internal slice.
	payload.Standings[0].Team = "mutated"
	again := p.StandingsSnapshot("again")
	assert.NotEqual(t, "mutated", again.Standings[0].Team)
}

func TestFallbackStandingsError(t *testing.T) {
	t.Parallel()

	payload := NewFallbackPolicy(nil).StandingsError("maintenance")
	assert.Equal(t, SourceError, payload.Source)
	assert.Equal(t, "maintenance", payload.Error)
	assert.NotNil(t, payload.Standings)
	assert.Empty(t, payload.Standings)
}

func TestFallbackMatchesErrorHasEmptyArrays(t *testing.T) {
	t.Parallel()

	payload := NewFallbackPolicy(nil).MatchesError("nothing extracted")
	assert.Equal(t, SourceError, payload.Source)
	assert.NotNil(t, payload.NextFixtures)
	assert.NotNil(t, payload.RecentResults)
	assert.Empty(t, payload.NextFixtures)
	assert.Nil(t, payload.NextRound)
}

func TestFallbackCustomSnapshot(t *testing.T) {
	t.Parallel()

	custom := []vsports.StandingRow{
		{Position: 1, Team: "Alpha", Points: 9, Trend: vsports.TrendSame},
		{Position: 2, Team: "Beta", Points: 6, Trend: vsports.TrendSame},
		{Position: 3, Team: "Gamma", Points: 3, Trend: vsports.TrendSame},
	}
	payload := NewFallbackPolicy(custom).StandingsSnapshot("r")
	require.Len(t, payload.Standings, 3)
	assert.Equal(t, "Alpha", payload.Standings[0].Team)
}
