package lineup

import "github.com/matchsight/matchsight/internal/domain/match"

// TimelineGoal is one goal of a match seen from a single team's perspective.
type TimelineGoal struct {
	Minute   int
	TeamGoal bool
}

// EntryState classifies the scoreboard a substitute walked into.
type EntryState string

const (
	EntryWinning EntryState = "winning"
	EntryDrawing EntryState = "drawing"
	EntryLosing  EntryState = "losing"
)

// GoalTimeline orders the match goals chronologically and marks each one as
// scored by the given team or conceded.
func GoalTimeline(rec match.Record, team string) []TimelineGoal {
	teamID := rec.PerspectiveID(team)
	goals := match.SortGoals(rec.Goals)
	timeline := make([]TimelineGoal, 0, len(goals))
	for _, g := range goals {
		timeline = append(timeline, TimelineGoal{Minute: g.Minute, TeamGoal: g.ScoringTeamID == teamID})
	}
	return timeline
}

// ScoreAt replays the timeline up to, but not including, the given minute.
// A substitute entering in the same minute a goal lands is not credited with
// being on the pitch for it.
func ScoreAt(timeline []TimelineGoal, minute int) (team, opponent int) {
	for _, g := range timeline {
		if g.Minute >= minute {
			continue
		}
		if g.TeamGoal {
			team++
		} else {
			opponent++
		}
	}
	return team, opponent
}

// EntryStateAt classifies the score situation a player entered into.
func EntryStateAt(timeline []TimelineGoal, entryMinute int) EntryState {
	team, opponent := ScoreAt(timeline, entryMinute)
	switch {
	case team > opponent:
		return EntryWinning
	case team < opponent:
		return EntryLosing
	default:
		return EntryDrawing
	}
}

// SegmentPoints replays the timeline across a closed minute range and returns
// the goals scored and conceded while the range was active, both endpoints
// inclusive.
func SegmentPoints(timeline []TimelineGoal, from, to int) (scored, conceded int) {
	for _, g := range timeline {
		if g.Minute < from || g.Minute > to {
			continue
		}
		if g.TeamGoal {
			scored++
		} else {
			conceded++
		}
	}
	return scored, conceded
}
