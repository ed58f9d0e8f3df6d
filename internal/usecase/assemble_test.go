package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
)

func upcomingMatch(home, away string, round int) vsports.Match {
	m := vsports.Match{Home: home, Away: away, Status: vsports.StatusUpcoming}
	if round > 0 {
		m.Round = &round
	}
	return m
}

func completedMatch(home, away string, round, hs, as int) vsports.Match {
	m := vsports.Match{
		Home: home, Away: away,
		Status:    vsports.StatusCompleted,
		HomeScore: &hs, AwayScore: &as,
	}
	if round > 0 {
		m.Round = &round
	}
	return m
}

func TestAssembleMatchesBucketsByRound(t *testing.T) {
	t.Parallel()

	matches := []vsports.Match{
		upcomingMatch("A", "B", 6),
		upcomingMatch("C", "D", 5),
		upcomingMatch("E", "F", 5),
		completedMatch("G", "H", 4, 2, 1),
		completedMatch("I", "J", 3, 0, 0),
		completedMatch("K", "L", 2, 1, 1),
		completedMatch("M", "N", 1, 3, 0),
	}

	out := AssembleMatches(matches, 3)

	require.NotNil(t, out.NextRound)
	assert.Equal(t, 5, *out.NextRound)
	assert.Len(t, out.NextFixtures, 2, "only the minimum upcoming round belongs to the next batch")

	require.NotNil(t, out.LastRound)
	assert.Equal(t, 4, *out.LastRound)
	require.Len(t, out.RecentResults, 3, "round 1 is outside the 3-round window")
	assert.Equal(t, 4, *out.RecentResults[0].Round)
	assert.Equal(t, 3, *out.RecentResults[1].Round)
	assert.Equal(t, 2, *out.RecentResults[2].Round)
}

func TestAssembleMatchesRoundlessUpcomingStayInNextBatch(t *testing.T) {
	t.Parallel()

	matches := []vsports.Match{
		upcomingMatch("A", "B", 7),
		upcomingMatch("C", "D", 0),
	}

	out := AssembleMatches(matches, 3)
	require.NotNil(t, out.NextRound)
	assert.Equal(t, 7, *out.NextRound)
	assert.Len(t, out.NextFixtures, 2)
}

func TestAssembleMatchesNoRoundsAtAll(t *testing.T) {
	t.Parallel()

	matches := []vsports.Match{
		upcomingMatch("A", "B", 0),
		completedMatch("C", "D", 0, 1, 0),
	}

	out := AssembleMatches(matches, 3)
	assert.Nil(t, out.NextRound)
	assert.Nil(t, out.LastRound)
	assert.Len(t, out.NextFixtures, 1)
	assert.Len(t, out.RecentResults, 1)
}

func TestAssembleMatchesEmpty(t *testing.T) {
	t.Parallel()

	out := AssembleMatches(nil, 3)
	assert.Nil(t, out.NextRound)
	assert.Nil(t, out.LastRound)
	assert.Empty(t, out.NextFixtures)
	assert.Empty(t, out.RecentResults)
}
