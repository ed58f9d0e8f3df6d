package usecase

import (
	"sort"

	"github.com/g4biGTJS/vsport-elo/internal/domain/vsports"
)

// AssembledMatches buckets canonical matches into the next-round fixture
// list and the recent-results window.
type AssembledMatches struct {
	NextFixtures  []vsports.Match
	NextRound     *int
	RecentResults []vsports.Match
	LastRound     *int
}

// AssembleMatches groups by round: the next round is the minimum round among
// upcoming fixtures, recent results cover the recentRounds most recent
// distinct completed rounds sorted descending by round. When the document
// yields no round numbers at all, everything upcoming becomes one unlabeled
// next batch and everything completed one recent batch.
func AssembleMatches(matches []vsports.Match, recentRounds int) AssembledMatches {
	if recentRounds < 1 {
		recentRounds = 3
	}

	var upcoming, completed []vsports.Match
	for _, m := range matches {
		switch m.Status {
		case vsports.StatusUpcoming:
			upcoming = append(upcoming, m)
		case vsports.StatusCompleted:
			completed = append(completed, m)
		}
	}

	var out AssembledMatches

	nextRound := 0
	for _, m := range upcoming {
		if m.Round != nil && (nextRound == 0 || *m.Round < nextRound) {
			nextRound = *m.Round
		}
	}
	if nextRound > 0 {
		round := nextRound
		out.NextRound = &round
		for _, m := range upcoming {
			// Round-less upcoming fixtures cannot be assigned elsewhere;
			// keep them in the next batch.
			if m.Round == nil || *m.Round == round {
				out.NextFixtures = append(out.NextFixtures, m)
			}
		}
	} else {
		out.NextFixtures = upcoming
	}

	completedRounds := distinctRoundsDesc(completed)
	if len(completedRounds) > 0 {
		last := completedRounds[0]
		out.LastRound = &last

		if len(completedRounds) > recentRounds {
			completedRounds = completedRounds[:recentRounds]
		}
		keep := make(map[int]struct{}, len(completedRounds))
		for _, r := range completedRounds {
			keep[r] = struct{}{}
		}
		for _, m := range completed {
			if m.Round == nil {
				continue
			}
			if _, ok := keep[*m.Round]; ok {
				out.RecentResults = append(out.RecentResults, m)
			}
		}
		sort.SliceStable(out.RecentResults, func(i, j int) bool {
			return *out.RecentResults[i].Round > *out.RecentResults[j].Round
		})
	} else {
		out.RecentResults = completed
	}

	return out
}

func distinctRoundsDesc(matches []vsports.Match) []int {
	seen := make(map[int]struct{})
	var rounds []int
	for _, m := range matches {
		if m.Round == nil {
			continue
		}
		if _, ok := seen[*m.Round]; ok {
			continue
		}
		seen[*m.Round] = struct{}{}
		rounds = append(rounds, *m.Round)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rounds)))
	return rounds
}
