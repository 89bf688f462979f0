package standings

import (
	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/domain/match"
)

// Build folds match records into a ranked standings table. The records are
// expected to be date- and red-card-filtered already; venue, opponent and
// goal-sequence restrictions are evaluated here, per team perspective, so a
// match can count toward one side and not the other.
//
// With an opponent restriction active, a match is skipped outright (neither
// side registered) unless the restriction can apply to the requested venue:
// home-only needs the away team in the set, away-only the home team, and
// all-venues either one. Matches that survive register both teams in the
// table even when a per-side check later excludes their contribution.
func Build(records []match.Record, venue filter.Venue, opponents map[string]struct{}, advanced filter.Advanced) Table {
	rows := make(map[string]*Row)

	for _, rec := range records {
		if opponents != nil && !opponentRelevant(rec, venue, opponents) {
			continue
		}

		for _, team := range []string{rec.HomeTeam, rec.AwayTeam} {
			if _, ok := rows[team]; !ok {
				rows[team] = &Row{Team: team}
			}
		}

		if venue.IncludesHome() && opponentAllows(opponents, rec.AwayTeam) && sidePasses(rec, rec.HomeTeam, advanced) {
			applyResult(rows[rec.HomeTeam], rec.HomeGoals, rec.AwayGoals, rec.Points(rec.HomeTeam))
		}
		if venue.IncludesAway() && opponentAllows(opponents, rec.HomeTeam) && sidePasses(rec, rec.AwayTeam, advanced) {
			applyResult(rows[rec.AwayTeam], rec.AwayGoals, rec.HomeGoals, rec.Points(rec.AwayTeam))
		}
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		if maxPoints := row.Played * 3; maxPoints > 0 {
			row.PointsPct = float64(row.Points) / float64(maxPoints) * 100
		}
		out = append(out, *row)
	}
	return sortAndRank(out)
}

// BuildReference computes the unfiltered table (all venues, no opponent,
// date or goal-sequence restrictions) that rank ranges resolve against.
// Resolving "ranks 1-5" against an already filtered table would be circular:
// rank is itself a filter-sensitive property.
func BuildReference(records []match.Record) Table {
	return Build(records, filter.VenueAll, nil, filter.Advanced{})
}

func opponentRelevant(rec match.Record, venue filter.Venue, opponents map[string]struct{}) bool {
	_, homeIn := opponents[rec.HomeTeam]
	_, awayIn := opponents[rec.AwayTeam]
	switch venue {
	case filter.VenueHome:
		return awayIn
	case filter.VenueAway:
		return homeIn
	default:
		return homeIn || awayIn
	}
}

func opponentAllows(opponents map[string]struct{}, opponent string) bool {
	if opponents == nil {
		return true
	}
	_, ok := opponents[opponent]
	return ok
}

// sidePasses applies the per-perspective goal predicates. NoRedCards is a
// match-level exclusion handled before the fold.
func sidePasses(rec match.Record, team string, advanced filter.Advanced) bool {
	if !advanced.NeedsGoalFacts() {
		return true
	}
	return advanced.Pass(match.AnalyzeGoals(rec, team))
}

func applyResult(row *Row, goalsFor, goalsAgainst, points int) {
	row.Played++
	row.GoalsFor += goalsFor
	row.GoalsAgainst += goalsAgainst
	row.Points += points
	switch points {
	case 3:
		row.Won++
	case 1:
		row.Drawn++
	default:
		row.Lost++
	}
}
