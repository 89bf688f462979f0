package match

import "sort"

// Facts captures goal-sequence outcomes for one team in one match. With no
// goals all three flags are false; otherwise exactly one of ScoredFirst and
// ConcededFirst is true.
type Facts struct {
	ScoredFirst   bool
	ConcededFirst bool
	Comeback      bool
}

// SortGoals orders goal events by (period, minute), keeping source order for
// equal keys.
func SortGoals(goals []GoalEvent) []GoalEvent {
	sorted := make([]GoalEvent, len(goals))
	copy(sorted, goals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Period != sorted[j].Period {
			return sorted[i].Period < sorted[j].Period
		}
		return sorted[i].Minute < sorted[j].Minute
	})
	return sorted
}

// AnalyzeGoals determines who scored first and whether the named team came
// back from behind. A comeback requires conceding first, trailing at some
// point of the replayed sequence, and a final result that is a win or draw.
func AnalyzeGoals(rec Record, team string) Facts {
	if len(rec.Goals) == 0 {
		return Facts{}
	}

	teamID := rec.PerspectiveID(team)
	sorted := SortGoals(rec.Goals)

	first := sorted[0]
	facts := Facts{
		ScoredFirst:   first.ScoringTeamID == teamID,
		ConcededFirst: first.ScoringTeamID != teamID,
	}
	if !facts.ConcededFirst {
		return facts
	}

	teamScore, opponentScore := 0, 0
	wasLosing := false
	for _, goal := range sorted {
		if goal.ScoringTeamID == teamID {
			teamScore++
		} else {
			opponentScore++
		}
		if opponentScore > teamScore {
			wasLosing = true
		}
	}

	// The final standing of the match decides the comeback, not the replayed
	// tally: goal events may be incomplete relative to the aggregate score.
	facts.Comeback = wasLosing && rec.WonOrDrew(team)
	return facts
}
