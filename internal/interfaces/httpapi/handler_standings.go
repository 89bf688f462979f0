package httpapi

import (
	"net/http"

	"github.com/matchsight/matchsight/internal/domain/standings"
)

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.analyticsService.Standings(ctx, f)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]standingsRowDTO, 0, len(table))
	for _, row := range table {
		rows = append(rows, standingsRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalStats")
	defer span.End()

	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.analyticsService.GlobalStats(ctx, f)
	if err != nil {
		h.logger.WarnContext(ctx, "get global stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, globalStatsDTO{
		TotalTeams:       stats.TotalTeams,
		TotalMatches:     stats.TotalMatches,
		TotalGoals:       stats.TotalGoals,
		AvgGoalsPerMatch: round2(stats.AvgGoalsPerMatch),
		Leader:           stats.Leader,
		LeaderPoints:     stats.LeaderPoints,
	})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.analyticsService.Teams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamsDTO{Teams: teams, Count: len(teams)})
}

type standingsRowDTO struct {
	Rank         int     `json:"rank"`
	Team         string  `json:"team"`
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	Drawn        int     `json:"drawn"`
	Lost         int     `json:"lost"`
	GoalsFor     int     `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
	GoalDiff     int     `json:"goal_diff"`
	Points       int     `json:"points"`
	PointsPct    float64 `json:"points_pct"`
}

type globalStatsDTO struct {
	TotalTeams       int     `json:"total_teams"`
	TotalMatches     int     `json:"total_matches"`
	TotalGoals       int     `json:"total_goals"`
	AvgGoalsPerMatch float64 `json:"avg_goals_per_match"`
	Leader           string  `json:"leader"`
	LeaderPoints     int     `json:"leader_points"`
}

type teamsDTO struct {
	Teams []string `json:"teams"`
	Count int      `json:"count"`
}

func standingsRowToDTO(row standings.Row) standingsRowDTO {
	return standingsRowDTO{
		Rank:         row.Rank,
		Team:         row.Team,
		Played:       row.Played,
		Won:          row.Won,
		Drawn:        row.Drawn,
		Lost:         row.Lost,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		GoalDiff:     row.GoalDiff,
		Points:       row.Points,
		PointsPct:    round1(row.PointsPct),
	}
}
