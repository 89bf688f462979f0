package match

import (
	"strings"
	"time"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

// StatusPlayed is the only match status the engine accepts. Scheduled,
// postponed, abandoned and every other status make a document unusable.
const StatusPlayed = "Played"

type Winner string

const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerDraw Winner = "draw"
)

// GoalEvent orders by (period, minute); equal keys keep source order.
type GoalEvent struct {
	Period        int
	Minute        int
	ScoringTeamID string
}

// Record is the canonical summary of one played match. It is produced only
// when both contestants are resolved and the status is exactly "Played".
type Record struct {
	MatchID   string
	Date      string
	HomeTeam  string
	HomeID    string
	AwayTeam  string
	AwayID    string
	HomeGoals int
	AwayGoals int
	Winner    Winner
	Goals     []GoalEvent
}

// FromDocument extracts a Record from a raw document. ok is false for any
// document that is not a fully resolved, played match; such documents are
// excluded from every downstream computation rather than reported as errors.
func FromDocument(doc rawmatch.Document) (Record, bool) {
	var homeTeam, homeID, awayTeam, awayID string
	for _, contestant := range doc.MatchInfo.Contestants {
		switch contestant.Position {
		case "home":
			homeTeam = contestant.Name
			homeID = contestant.ID
		case "away":
			awayTeam = contestant.Name
			awayID = contestant.ID
		}
	}
	if homeTeam == "" || awayTeam == "" {
		return Record{}, false
	}

	details := doc.LiveData.MatchDetails
	if details.MatchStatus != StatusPlayed {
		return Record{}, false
	}

	homeGoals := details.Scores.Total.Home
	awayGoals := details.Scores.Total.Away

	winner := WinnerDraw
	switch {
	case homeGoals > awayGoals:
		winner = WinnerHome
	case awayGoals > homeGoals:
		winner = WinnerAway
	}

	goals := make([]GoalEvent, 0, len(doc.LiveData.Goals))
	for _, g := range doc.LiveData.Goals {
		goals = append(goals, GoalEvent{
			Period:        g.PeriodID,
			Minute:        g.TimeMin,
			ScoringTeamID: g.ContestantID,
		})
	}

	return Record{
		MatchID:   doc.MatchID(),
		Date:      doc.MatchInfo.Date,
		HomeTeam:  homeTeam,
		HomeID:    homeID,
		AwayTeam:  awayTeam,
		AwayID:    awayID,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Winner:    winner,
		Goals:     goals,
	}, true
}

// ExtractAll maps documents to records, dropping unusable ones.
func ExtractAll(docs []rawmatch.Document) []Record {
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		if rec, ok := FromDocument(doc); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Involves reports whether the named team played in this match.
func (r Record) Involves(team string) bool {
	return r.HomeTeam == team || r.AwayTeam == team
}

// PerspectiveID resolves a team name to the contestant id used in goal
// events: the home id when the name matches the home side, the away id
// otherwise.
func (r Record) PerspectiveID(team string) string {
	if team == r.HomeTeam {
		return r.HomeID
	}
	return r.AwayID
}

// GoalsFor returns (scored, conceded) from the named team's perspective.
func (r Record) GoalsFor(team string) (int, int) {
	if team == r.HomeTeam {
		return r.HomeGoals, r.AwayGoals
	}
	return r.AwayGoals, r.HomeGoals
}

// Points returns the final-result points for the named team: 3 win, 1 draw,
// 0 loss.
func (r Record) Points(team string) int {
	switch r.Winner {
	case WinnerDraw:
		return 1
	case WinnerHome:
		if team == r.HomeTeam {
			return 3
		}
	case WinnerAway:
		if team == r.AwayTeam {
			return 3
		}
	}
	return 0
}

// WonOrDrew reports whether the final result is a win or draw for the team.
func (r Record) WonOrDrew(team string) bool {
	return r.Points(team) > 0
}

// DateLayout is the calendar-date layout used by the feed, optionally
// suffixed with a literal Z that ParseDate strips.
const DateLayout = "2006-01-02"

// ParseDate parses a feed date such as "2025-08-17Z". ok is false when the
// value does not parse; callers decide the filtering policy for that case.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "Z")
	if trimmed == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
