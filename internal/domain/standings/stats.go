package standings

// GlobalStats summarizes a standings table. TotalMatches halves the played
// sum since every match contributes to two rows; with venue filters active
// the value reflects the filtered table, same as the rest of the summary.
type GlobalStats struct {
	TotalTeams       int
	TotalMatches     int
	TotalGoals       int
	AvgGoalsPerMatch float64
	Leader           string
	LeaderPoints     int
}

func Summarize(table Table) GlobalStats {
	stats := GlobalStats{TotalTeams: len(table)}

	playedSum := 0
	for _, row := range table {
		playedSum += row.Played
		stats.TotalGoals += row.GoalsFor
	}
	stats.TotalMatches = playedSum / 2
	if playedSum > 0 {
		stats.AvgGoalsPerMatch = float64(stats.TotalGoals) / (float64(playedSum) / 2)
	}
	if len(table) > 0 {
		stats.Leader = table[0].Team
		stats.LeaderPoints = table[0].Points
	}
	return stats
}
