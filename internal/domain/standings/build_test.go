package standings

import (
	"math"
	"testing"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/domain/match"
)

func record(home, away string, homeGoals, awayGoals int, goals ...match.GoalEvent) match.Record {
	winner := match.WinnerDraw
	switch {
	case homeGoals > awayGoals:
		winner = match.WinnerHome
	case awayGoals > homeGoals:
		winner = match.WinnerAway
	}
	return match.Record{
		MatchID:   home + "-" + away,
		HomeTeam:  home,
		HomeID:    "id-" + home,
		AwayTeam:  away,
		AwayID:    "id-" + away,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Winner:    winner,
		Goals:     goals,
	}
}

func fixtureRecords() []match.Record {
	return []match.Record{
		record("Levante", "Almeria", 2, 1),
		record("Almeria", "Racing", 0, 0),
		record("Racing", "Levante", 1, 3),
		record("Levante", "Racing", 0, 1),
	}
}

func TestBuild_RowIdentities(t *testing.T) {
	t.Parallel()

	table := Build(fixtureRecords(), filter.VenueAll, nil, filter.Advanced{})

	for _, row := range table {
		if got, want := row.Points, 3*row.Won+row.Drawn; got != want {
			t.Fatalf("%s points identity: got=%d want=%d", row.Team, got, want)
		}
		if got, want := row.GoalDiff, row.GoalsFor-row.GoalsAgainst; got != want {
			t.Fatalf("%s goal diff identity: got=%d want=%d", row.Team, got, want)
		}
		if row.Played == 0 {
			if row.PointsPct != 0 {
				t.Fatalf("%s pct without matches: got=%v want=0", row.Team, row.PointsPct)
			}
			continue
		}
		want := float64(row.Points) / float64(row.Played*3) * 100
		if math.Abs(row.PointsPct-want) > 1e-9 {
			t.Fatalf("%s pct identity: got=%v want=%v", row.Team, row.PointsPct, want)
		}
	}
}

func TestBuild_PlayedSumIsTwiceMatchCount(t *testing.T) {
	t.Parallel()

	records := fixtureRecords()
	table := Build(records, filter.VenueAll, nil, filter.Advanced{})

	playedSum := 0
	for _, row := range table {
		playedSum += row.Played
	}
	if playedSum != 2*len(records) {
		t.Fatalf("unexpected played sum: got=%d want=%d", playedSum, 2*len(records))
	}
}

func TestBuild_RanksFollowPointsThenGoalDiff(t *testing.T) {
	t.Parallel()

	table := Build(fixtureRecords(), filter.VenueAll, nil, filter.Advanced{})

	// Levante: W W L = 6 pts. Racing: D L W = 4 pts. Almeria: L D = 1 pt.
	if table[0].Team != "Levante" || table[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", table[0])
	}
	if table[1].Team != "Racing" || table[2].Team != "Almeria" {
		t.Fatalf("unexpected order: %q, %q", table[1].Team, table[2].Team)
	}
	for i, row := range table {
		if row.Rank != i+1 {
			t.Fatalf("rank not 1-based sequential: %+v", row)
		}
	}
}

func TestBuild_HomeVenueCountsHomeSidesOnly(t *testing.T) {
	t.Parallel()

	table := Build(fixtureRecords(), filter.VenueHome, nil, filter.Advanced{})

	levante, _ := table.TeamRow("Levante")
	if levante.Played != 2 {
		t.Fatalf("unexpected home matches for Levante: got=%d want=2", levante.Played)
	}
	almeria, _ := table.TeamRow("Almeria")
	if almeria.Played != 1 {
		t.Fatalf("unexpected home matches for Almeria: got=%d want=1", almeria.Played)
	}
}

func TestBuild_RegistersBothTeamsEvenWhenSideExcluded(t *testing.T) {
	t.Parallel()

	table := Build([]match.Record{record("Levante", "Almeria", 1, 0)}, filter.VenueHome, nil, filter.Advanced{})

	almeria, ok := table.TeamRow("Almeria")
	if !ok {
		t.Fatal("away team missing from home-venue table")
	}
	if almeria.Played != 0 || almeria.Points != 0 {
		t.Fatalf("away side must not contribute under home venue: %+v", almeria)
	}
}

func TestBuild_OpponentRestrictionIsPerPerspective(t *testing.T) {
	t.Parallel()

	records := []match.Record{record("Levante", "Almeria", 2, 1)}
	table := Build(records, filter.VenueAll, filter.OpponentSet([]string{"Almeria"}), filter.Advanced{})

	levante, _ := table.TeamRow("Levante")
	if levante.Played != 1 || levante.Points != 3 {
		t.Fatalf("match against restricted opponent must count for Levante: %+v", levante)
	}
	almeria, _ := table.TeamRow("Almeria")
	if almeria.Played != 0 {
		t.Fatalf("Almeria has no restricted opponent in this match: %+v", almeria)
	}
}

func TestBuild_OpponentRestrictionSkipsIrrelevantMatches(t *testing.T) {
	t.Parallel()

	records := []match.Record{
		record("Levante", "Almeria", 2, 1),
		record("Racing", "Castellon", 1, 1),
	}
	table := Build(records, filter.VenueAll, filter.OpponentSet([]string{"Almeria"}), filter.Advanced{})

	if _, ok := table.TeamRow("Racing"); ok {
		t.Fatal("match not touching the opponent set must not register teams")
	}
	if len(table) != 2 {
		t.Fatalf("unexpected table size: got=%d want=2", len(table))
	}
}

func TestBuild_HomeVenueOpponentRestrictionNeedsAwayOpponent(t *testing.T) {
	t.Parallel()

	records := []match.Record{record("Almeria", "Levante", 0, 2)}
	table := Build(records, filter.VenueHome, filter.OpponentSet([]string{"Almeria"}), filter.Advanced{})

	// The only restricted name plays at home, so under home venue no row can
	// face it; the match is skipped before registration.
	if len(table) != 0 {
		t.Fatalf("unexpected rows: %+v", table)
	}
}

func TestBuild_AdvancedFlagsEvaluatedPerSide(t *testing.T) {
	t.Parallel()

	comebackWin := record("Levante", "Almeria", 2, 1,
		match.GoalEvent{Period: 1, Minute: 10, ScoringTeamID: "id-Almeria"},
		match.GoalEvent{Period: 2, Minute: 60, ScoringTeamID: "id-Levante"},
		match.GoalEvent{Period: 2, Minute: 85, ScoringTeamID: "id-Levante"},
	)
	table := Build([]match.Record{comebackWin}, filter.VenueAll, nil, filter.Advanced{Comeback: true})

	levante, _ := table.TeamRow("Levante")
	if levante.Played != 1 {
		t.Fatalf("comeback side must contribute: %+v", levante)
	}
	almeria, _ := table.TeamRow("Almeria")
	if almeria.Played != 0 {
		t.Fatalf("non-comeback side must not contribute: %+v", almeria)
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	t.Parallel()

	first := Build(fixtureRecords(), filter.VenueAll, nil, filter.Advanced{})
	second := Build(fixtureRecords(), filter.VenueAll, nil, filter.Advanced{})

	if len(first) != len(second) {
		t.Fatalf("unexpected size difference: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestResolveRankRange_InclusiveAndIdempotent(t *testing.T) {
	t.Parallel()

	reference := BuildReference(fixtureRecords())

	top2 := ResolveRankRange(reference, 1, 2)
	if len(top2) != 2 || top2[0] != "Levante" || top2[1] != "Racing" {
		t.Fatalf("unexpected rank range: %v", top2)
	}

	again := ResolveRankRange(reference, 1, 2)
	if len(again) != len(top2) || again[0] != top2[0] || again[1] != top2[1] {
		t.Fatalf("re-resolution differs: %v vs %v", again, top2)
	}
}

func TestSummarize_GlobalStats(t *testing.T) {
	t.Parallel()

	table := Build(fixtureRecords(), filter.VenueAll, nil, filter.Advanced{})
	stats := Summarize(table)

	if stats.TotalTeams != 3 {
		t.Fatalf("unexpected team count: got=%d want=3", stats.TotalTeams)
	}
	if stats.TotalMatches != 4 {
		t.Fatalf("unexpected match count: got=%d want=4", stats.TotalMatches)
	}
	if stats.TotalGoals != 8 {
		t.Fatalf("unexpected goal count: got=%d want=8", stats.TotalGoals)
	}
	if math.Abs(stats.AvgGoalsPerMatch-2.0) > 1e-9 {
		t.Fatalf("unexpected average: got=%v want=2.0", stats.AvgGoalsPerMatch)
	}
	if stats.Leader != "Levante" || stats.LeaderPoints != 6 {
		t.Fatalf("unexpected leader: %+v", stats)
	}
}

func TestSummarize_EmptyTable(t *testing.T) {
	t.Parallel()

	stats := Summarize(Table{})
	if stats.TotalMatches != 0 || stats.AvgGoalsPerMatch != 0 || stats.Leader != "" {
		t.Fatalf("unexpected empty summary: %+v", stats)
	}
}
