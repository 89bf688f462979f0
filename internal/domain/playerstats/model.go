package playerstats

import (
	"math"
	"sort"

	"github.com/matchsight/matchsight/internal/domain/lineup"
)

// indexDivisor normalizes the five summed components to a single score.
const indexDivisor = 3.33

// MatchStat captures one player's contribution to a single match.
type MatchStat struct {
	Starter      bool
	Entry        lineup.EntryState
	Minutes      int
	MinutesNorm  float64
	PlayedPoints int
	PlayedGD     int
	DiffPoints   int
	TotalPoints  int
	Index        float64
}

// Compute scores one player segment against the match timeline. totalPoints
// is the final-result points for the player's team.
//
// On-pitch goals are the timeline entries inside the segment's resolved
// minute range, both ends inclusive. The points differential compares the
// virtual result while on pitch against the one while off pitch; a player
// who covered the whole match has no off-pitch spell and the differential is
// pinned to 0 instead of being computed against an empty range.
func Compute(seg lineup.Segment, timeline []lineup.TimelineGoal, matchEnd, totalPoints int) MatchStat {
	minutes := seg.Minutes(matchEnd)
	scoredOn, concededOn := lineup.SegmentPoints(timeline, seg.Start, seg.ResolvedEnd(matchEnd))

	scoredAll, concededAll := 0, 0
	for _, g := range timeline {
		if g.TeamGoal {
			scoredAll++
		} else {
			concededAll++
		}
	}

	playedPoints := resultPoints(scoredOn, concededOn)
	playedGD := scoredOn - concededOn

	diffPoints := 0
	if without := matchEnd - minutes; without > 0 {
		withoutPoints := resultPoints(scoredAll-scoredOn, concededAll-concededOn)
		diffPoints = playedPoints - withoutPoints
	}

	minutesNorm := math.Min(float64(minutes)/90.0, 1.0)
	index := (minutesNorm + float64(playedPoints) + float64(diffPoints) + float64(playedGD) + float64(totalPoints)) / indexDivisor

	stat := MatchStat{
		Starter:      seg.Starter,
		Minutes:      minutes,
		MinutesNorm:  minutesNorm,
		PlayedPoints: playedPoints,
		PlayedGD:     playedGD,
		DiffPoints:   diffPoints,
		TotalPoints:  totalPoints,
		Index:        index,
	}
	if !seg.Starter {
		stat.Entry = lineup.EntryStateAt(timeline, seg.Start)
	}
	return stat
}

func resultPoints(scored, conceded int) int {
	switch {
	case scored > conceded:
		return 3
	case scored == conceded:
		return 1
	}
	return 0
}

// PlayerMatch ties a computed stat to the player it belongs to.
type PlayerMatch struct {
	Player string
	Stat   MatchStat
}

// RoleSplit is the slice of a player's matches in one role partition.
type RoleSplit struct {
	Matches   int
	Minutes   int
	MeanIndex float64
}

// Aggregate is a player's season line across every surviving match. Role
// partitions are nil when the player never appeared in that role; a missing
// partition is "no value", not zero.
type Aggregate struct {
	Player        string
	Matches       int
	TotalMinutes  int
	MeanIndex     float64
	SumPlayedGD   int
	SumDiffPoints int
	PctMinutes    float64
	Starter       *RoleSplit
	SubWinning    *RoleSplit
	SubDrawing    *RoleSplit
	SubLosing     *RoleSplit
}

type roleAccumulator struct {
	matches  int
	minutes  int
	indexSum float64
}

func (r *roleAccumulator) add(stat MatchStat) {
	r.matches++
	r.minutes += stat.Minutes
	r.indexSum += stat.Index
}

func (r *roleAccumulator) split() *RoleSplit {
	if r.matches == 0 {
		return nil
	}
	return &RoleSplit{Matches: r.matches, Minutes: r.minutes, MeanIndex: r.indexSum / float64(r.matches)}
}

// Collect folds per-match player stats into one aggregate row per player.
// matchCount is the number of surviving matches in the result set; it is the
// shared denominator for the minutes-share of every player, capped at 1.0 so
// stoppage time cannot push a share past a full season.
func Collect(entries []PlayerMatch, matchCount int) []Aggregate {
	type accumulator struct {
		matches       int
		minutes       int
		indexSum      float64
		sumPlayedGD   int
		sumDiffPoints int
		starter       roleAccumulator
		subWinning    roleAccumulator
		subDrawing    roleAccumulator
		subLosing     roleAccumulator
	}

	byPlayer := make(map[string]*accumulator)
	order := make([]string, 0)
	for _, entry := range entries {
		acc, ok := byPlayer[entry.Player]
		if !ok {
			acc = &accumulator{}
			byPlayer[entry.Player] = acc
			order = append(order, entry.Player)
		}
		stat := entry.Stat
		acc.matches++
		acc.minutes += stat.Minutes
		acc.indexSum += stat.Index
		acc.sumPlayedGD += stat.PlayedGD
		acc.sumDiffPoints += stat.DiffPoints

		switch {
		case stat.Starter:
			acc.starter.add(stat)
		case stat.Entry == lineup.EntryWinning:
			acc.subWinning.add(stat)
		case stat.Entry == lineup.EntryLosing:
			acc.subLosing.add(stat)
		default:
			acc.subDrawing.add(stat)
		}
	}

	available := float64(matchCount * 90)
	aggregates := make([]Aggregate, 0, len(byPlayer))
	for _, player := range order {
		acc := byPlayer[player]
		agg := Aggregate{
			Player:        player,
			Matches:       acc.matches,
			TotalMinutes:  acc.minutes,
			MeanIndex:     acc.indexSum / float64(acc.matches),
			SumPlayedGD:   acc.sumPlayedGD,
			SumDiffPoints: acc.sumDiffPoints,
			Starter:       acc.starter.split(),
			SubWinning:    acc.subWinning.split(),
			SubDrawing:    acc.subDrawing.split(),
			SubLosing:     acc.subLosing.split(),
		}
		if available > 0 {
			agg.PctMinutes = math.Min(float64(acc.minutes)/available, 1.0)
		}
		aggregates = append(aggregates, agg)
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].MeanIndex != aggregates[j].MeanIndex {
			return aggregates[i].MeanIndex > aggregates[j].MeanIndex
		}
		return aggregates[i].Player < aggregates[j].Player
	})
	return aggregates
}

// MinutesTotals sums minutes per player, dropping players who never took the
// pitch across the surviving matches.
func MinutesTotals(entries []PlayerMatch) map[string]int {
	totals := make(map[string]int)
	for _, entry := range entries {
		totals[entry.Player] += entry.Stat.Minutes
	}
	for player, minutes := range totals {
		if minutes <= 0 {
			delete(totals, player)
		}
	}
	return totals
}
