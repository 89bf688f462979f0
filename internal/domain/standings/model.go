package standings

import "sort"

// Row is one team's standings line. PointsPct is kept unrounded; transport
// layers decide presentation precision.
type Row struct {
	Team         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
	PointsPct    float64
	Rank         int
}

type Table []Row

// sortAndRank orders rows by points, goal difference and goals for, all
// descending, with team name ascending as the deterministic tiebreak, then
// assigns 1-based ranks.
func sortAndRank(rows []Row) Table {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDiff != rows[j].GoalDiff {
			return rows[i].GoalDiff > rows[j].GoalDiff
		}
		if rows[i].GoalsFor != rows[j].GoalsFor {
			return rows[i].GoalsFor > rows[j].GoalsFor
		}
		return rows[i].Team < rows[j].Team
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// TeamRow finds the named team's row.
func (t Table) TeamRow(team string) (Row, bool) {
	for _, row := range t {
		if row.Team == team {
			return row, true
		}
	}
	return Row{}, false
}

// Teams returns table teams in rank order.
func (t Table) Teams() []string {
	names := make([]string, 0, len(t))
	for _, row := range t {
		names = append(names, row.Team)
	}
	return names
}

// ResolveRankRange returns the names whose rank falls inside the inclusive
// range. Resolving the same range against the same table is idempotent.
func ResolveRankRange(reference Table, from, to int) []string {
	names := make([]string, 0)
	for _, row := range reference {
		if row.Rank >= from && row.Rank <= to {
			names = append(names, row.Team)
		}
	}
	return names
}
