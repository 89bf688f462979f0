package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/domain/match"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

type stubCorpusSource struct {
	corpus rawmatch.Corpus
	err    error
}

func (s stubCorpusSource) Corpus(_ context.Context) (rawmatch.Corpus, error) {
	return s.corpus, s.err
}

// leagueCorpus builds four played matches across three teams:
//
//	m1 2025-08-17 Levante 2-1 Almeria (Almeria scored first, red card shown)
//	m2 2025-08-24 Racing  1-1 Levante
//	m3 2025-08-31 Almeria 0-3 Racing
//	m4 2025-09-14 Levante 1-0 Racing
//
// All venues, no filters: Levante 7 pts, Racing 4 pts, Almeria 0 pts.
func leagueCorpus() rawmatch.Corpus {
	m1 := playedDoc("m1", "2025-08-17Z", "Levante", "t1", "Almeria", "t2", 2, 1,
		goalAt("t2", 1, 10), goalAt("t1", 2, 55), goalAt("t1", 2, 80))
	m1.LiveData.LineUps = rawmatch.List[rawmatch.LineUp]{
		{ContestantID: "t1"},
		{ContestantID: "t2", Stats: rawmatch.List[rawmatch.Stat]{{Type: "totalRedCard", Value: "1"}}},
	}
	return rawmatch.Corpus{Documents: []rawmatch.Document{
		m1,
		playedDoc("m2", "2025-08-24Z", "Racing", "t3", "Levante", "t1", 1, 1,
			goalAt("t3", 1, 30), goalAt("t1", 2, 75)),
		playedDoc("m3", "2025-08-31Z", "Almeria", "t2", "Racing", "t3", 0, 3,
			goalAt("t3", 1, 12), goalAt("t3", 1, 44), goalAt("t3", 2, 77)),
		playedDoc("m4", "2025-09-14Z", "Levante", "t1", "Racing", "t3", 1, 0,
			goalAt("t1", 2, 64)),
	}}
}

func playedDoc(id, date, home, homeID, away, awayID string, homeGoals, awayGoals int, goals ...rawmatch.Goal) rawmatch.Document {
	return rawmatch.Document{
		MatchInfo: rawmatch.MatchInfo{
			ID:   id,
			Date: date,
			Contestants: rawmatch.List[rawmatch.Contestant]{
				{ID: homeID, Name: home, Position: "home"},
				{ID: awayID, Name: away, Position: "away"},
			},
		},
		LiveData: rawmatch.LiveData{
			MatchDetails: rawmatch.MatchDetails{
				MatchStatus: match.StatusPlayed,
				Scores:      rawmatch.Scores{Total: rawmatch.ScorePair{Home: homeGoals, Away: awayGoals}},
			},
			Goals: goals,
		},
	}
}

func goalAt(teamID string, period, minute int) rawmatch.Goal {
	return rawmatch.Goal{ContestantID: teamID, PeriodID: period, TimeMin: minute}
}

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	day, ok := match.ParseDate(value)
	if !ok {
		t.Fatalf("fixture date does not parse: %s", value)
	}
	return &day
}

func TestAnalyticsService_Standings_Unfiltered(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	table, err := svc.Standings(context.Background(), filter.Filter{Venue: filter.VenueAll})
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(table))
	}
	if table[0].Team != "Levante" || table[1].Team != "Racing" || table[2].Team != "Almeria" {
		t.Fatalf("unexpected rank order: %v", table.Teams())
	}

	leader := table[0]
	if leader.Played != 3 || leader.Won != 2 || leader.Drawn != 1 || leader.Lost != 0 {
		t.Fatalf("unexpected leader record: %+v", leader)
	}
	if leader.Points != 7 || leader.GoalsFor != 4 || leader.GoalsAgainst != 2 || leader.GoalDiff != 2 {
		t.Fatalf("unexpected leader totals: %+v", leader)
	}
}

func TestAnalyticsService_Standings_HomeVenue(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	table, err := svc.Standings(context.Background(), filter.Filter{Venue: filter.VenueHome})
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}

	row, ok := table.TeamRow("Levante")
	if !ok {
		t.Fatalf("missing Levante row")
	}
	if row.Played != 2 || row.Points != 6 {
		t.Fatalf("unexpected home record: played=%d points=%d", row.Played, row.Points)
	}
}

func TestAnalyticsService_Standings_NoRedCardsDropsMatchForBothSides(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	table, err := svc.Standings(context.Background(), filter.Filter{
		Venue:    filter.VenueAll,
		Advanced: filter.Advanced{NoRedCards: true},
	})
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}

	levante, ok := table.TeamRow("Levante")
	if !ok {
		t.Fatalf("missing Levante row")
	}
	if levante.Played != 2 || levante.Points != 4 {
		t.Fatalf("red-card match still counted: played=%d points=%d", levante.Played, levante.Points)
	}
	if almeria, ok := table.TeamRow("Almeria"); !ok || almeria.Played != 1 {
		t.Fatalf("expected Almeria with one remaining match, got=%+v ok=%v", almeria, ok)
	}
}

func TestAnalyticsService_Standings_RankRangeResolvesAgainstReference(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	// Rank 1 in the unfiltered reference is Levante, so only matches where
	// the perspective side faced Levante may count.
	table, err := svc.Standings(context.Background(), filter.Filter{
		Venue:    filter.VenueAll,
		RankFrom: 1,
		RankTo:   1,
	})
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}

	racing, ok := table.TeamRow("Racing")
	if !ok {
		t.Fatalf("missing Racing row")
	}
	if racing.Played != 2 || racing.Points != 1 {
		t.Fatalf("unexpected Racing record vs Levante: played=%d points=%d", racing.Played, racing.Points)
	}
	levante, ok := table.TeamRow("Levante")
	if !ok {
		t.Fatalf("Levante should stay registered in the table")
	}
	if levante.Played != 0 {
		t.Fatalf("Levante cannot be its own opponent: played=%d", levante.Played)
	}
}

func TestAnalyticsService_Standings_InvertedRankRange(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	_, err := svc.Standings(context.Background(), filter.Filter{RankFrom: 3, RankTo: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyticsService_Standings_ExplicitOpponentsWinOverRankRange(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	// The inverted rank range would fail, but explicit opponents take
	// precedence and the range is never resolved.
	table, err := svc.Standings(context.Background(), filter.Filter{
		Venue:     filter.VenueAll,
		Opponents: []string{"Racing"},
		RankFrom:  3,
		RankTo:    1,
	})
	if err != nil {
		t.Fatalf("Standings error: %v", err)
	}

	levante, ok := table.TeamRow("Levante")
	if !ok {
		t.Fatalf("missing Levante row")
	}
	if levante.Played != 2 || levante.Points != 4 {
		t.Fatalf("unexpected Levante record vs Racing: played=%d points=%d", levante.Played, levante.Points)
	}
}

func TestAnalyticsService_Matches_SortsDateDescWithUnparseableLast(t *testing.T) {
	t.Parallel()

	corpus := rawmatch.Corpus{Documents: []rawmatch.Document{
		playedDoc("m1", "2025-08-17Z", "Levante", "t1", "Almeria", "t2", 1, 0),
		playedDoc("m2", "TBD", "Racing", "t3", "Levante", "t1", 0, 0),
		playedDoc("m3", "2025-08-24Z", "Almeria", "t2", "Racing", "t3", 2, 2),
	}}
	svc := NewAnalyticsService(stubCorpusSource{corpus: corpus})

	records, err := svc.Matches(context.Background(), filter.Filter{})
	if err != nil {
		t.Fatalf("Matches error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 matches, got=%d", len(records))
	}
	if records[0].MatchID != "m3" || records[1].MatchID != "m1" || records[2].MatchID != "m2" {
		t.Fatalf("unexpected order: %s %s %s", records[0].MatchID, records[1].MatchID, records[2].MatchID)
	}
}

func TestAnalyticsService_Matches_DateRangeKeepsUnparseable(t *testing.T) {
	t.Parallel()

	corpus := rawmatch.Corpus{Documents: []rawmatch.Document{
		playedDoc("m1", "2025-08-17Z", "Levante", "t1", "Almeria", "t2", 1, 0),
		playedDoc("m2", "TBD", "Racing", "t3", "Levante", "t1", 0, 0),
		playedDoc("m3", "2025-08-24Z", "Almeria", "t2", "Racing", "t3", 2, 2),
	}}
	svc := NewAnalyticsService(stubCorpusSource{corpus: corpus})

	records, err := svc.Matches(context.Background(), filter.Filter{
		DateFrom: datePtr(t, "2025-08-20"),
	})
	if err != nil {
		t.Fatalf("Matches error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 matches, got=%d", len(records))
	}
	if records[0].MatchID != "m3" || records[1].MatchID != "m2" {
		t.Fatalf("unexpected surviving matches: %s %s", records[0].MatchID, records[1].MatchID)
	}
}

func TestAnalyticsService_TeamSummary(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	row, err := svc.TeamSummary(context.Background(), "Levante", filter.Filter{Venue: filter.VenueAll})
	if err != nil {
		t.Fatalf("TeamSummary error: %v", err)
	}
	if row.Rank != 1 || row.Points != 7 {
		t.Fatalf("unexpected summary: rank=%d points=%d", row.Rank, row.Points)
	}

	if _, err := svc.TeamSummary(context.Background(), "Oviedo", filter.Filter{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown team, got %v", err)
	}
	if _, err := svc.TeamSummary(context.Background(), "  ", filter.Filter{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank team, got %v", err)
	}
}

func TestAnalyticsService_GlobalStats(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	stats, err := svc.GlobalStats(context.Background(), filter.Filter{Venue: filter.VenueAll})
	if err != nil {
		t.Fatalf("GlobalStats error: %v", err)
	}

	if stats.TotalTeams != 3 || stats.TotalMatches != 4 || stats.TotalGoals != 9 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.AvgGoalsPerMatch != 2.25 {
		t.Fatalf("unexpected goal average: got=%v want=2.25", stats.AvgGoalsPerMatch)
	}
	if stats.Leader != "Levante" || stats.LeaderPoints != 7 {
		t.Fatalf("unexpected leader: %s %d", stats.Leader, stats.LeaderPoints)
	}
}

func TestAnalyticsService_Teams_Alphabetical(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{corpus: leagueCorpus()})

	teams, err := svc.Teams(context.Background())
	if err != nil {
		t.Fatalf("Teams error: %v", err)
	}

	want := []string{"Almeria", "Levante", "Racing"}
	if len(teams) != len(want) {
		t.Fatalf("unexpected team count: got=%d want=%d", len(teams), len(want))
	}
	for i := range want {
		if teams[i] != want[i] {
			t.Fatalf("unexpected team order: got=%v want=%v", teams, want)
		}
	}
}

func TestAnalyticsService_CorpusErrorPropagates(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(stubCorpusSource{err: errCorpusUnavailable})

	if _, err := svc.Standings(context.Background(), filter.Filter{}); !errors.Is(err, errCorpusUnavailable) {
		t.Fatalf("expected corpus error, got %v", err)
	}
	if _, err := svc.Teams(context.Background()); !errors.Is(err, errCorpusUnavailable) {
		t.Fatalf("expected corpus error, got %v", err)
	}
}

var errCorpusUnavailable = errors.New("corpus unavailable")
