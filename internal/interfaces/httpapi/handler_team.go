package httpapi

import (
	"net/http"
	"strings"

	"github.com/matchsight/matchsight/internal/domain/playerstats"
)

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamSummary")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	row, err := h.analyticsService.TeamSummary(ctx, team, f)
	if err != nil {
		h.logger.WarnContext(ctx, "get team summary failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsRowToDTO(row))
}

func (h *Handler) GetTeamPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamPerformance")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	perf, err := h.squadService.Performance(ctx, team, f)
	if err != nil {
		h.logger.WarnContext(ctx, "get team performance failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamPerformanceDTO{
		Team:         perf.Team,
		Matches:      perf.Matches,
		Wins:         perf.Wins,
		Draws:        perf.Draws,
		Losses:       perf.Losses,
		GoalsFor:     perf.GoalsFor,
		GoalsAgainst: perf.GoalsAgainst,
		GoalDiff:     perf.GoalDiff,
		Points:       perf.Points,
		PointsPct:    round1(perf.PointsPct),
	})
}

func (h *Handler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamPlayers")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	players, err := h.squadService.Players(ctx, team)
	if err != nil {
		h.logger.WarnContext(ctx, "list team players failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamNamesDTO{Team: team, Names: players, Count: len(players)})
}

func (h *Handler) ListTeamManagers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamManagers")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	managers, err := h.squadService.Managers(ctx, team)
	if err != nil {
		h.logger.WarnContext(ctx, "list team managers failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamNamesDTO{Team: team, Names: managers, Count: len(managers)})
}

func (h *Handler) ListTeamPlayerMinutes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamPlayerMinutes")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	minutes, err := h.squadService.PlayerMinutes(ctx, team, f)
	if err != nil {
		h.logger.WarnContext(ctx, "list player minutes failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerMinutesDTO, 0, len(minutes))
	for _, entry := range minutes {
		items = append(items, playerMinutesDTO{Player: entry.Player, Minutes: entry.Minutes})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamPlayerCompetitiveness(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamPlayerCompetitiveness")
	defer span.End()

	team := strings.TrimSpace(r.PathValue("team"))
	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	aggregates, err := h.squadService.Competitiveness(ctx, team, f)
	if err != nil {
		h.logger.WarnContext(ctx, "list player competitiveness failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerCompetitivenessDTO, 0, len(aggregates))
	for _, agg := range aggregates {
		items = append(items, aggregateToDTO(agg))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type teamPerformanceDTO struct {
	Team         string  `json:"team"`
	Matches      int     `json:"matches"`
	Wins         int     `json:"wins"`
	Draws        int     `json:"draws"`
	Losses       int     `json:"losses"`
	GoalsFor     int     `json:"goals_for"`
	GoalsAgainst int     `json:"goals_against"`
	GoalDiff     int     `json:"goal_diff"`
	Points       int     `json:"points"`
	PointsPct    float64 `json:"points_pct"`
}

type teamNamesDTO struct {
	Team  string   `json:"team"`
	Names []string `json:"names"`
	Count int      `json:"count"`
}

type playerMinutesDTO struct {
	Player  string `json:"player"`
	Minutes int    `json:"minutes"`
}

type playerCompetitivenessDTO struct {
	Player        string        `json:"player"`
	Matches       int           `json:"matches"`
	TotalMinutes  int           `json:"total_minutes"`
	MeanIndex     float64       `json:"mean_index"`
	SumPlayedGD   int           `json:"sum_played_gd"`
	SumDiffPoints int           `json:"sum_diff_points"`
	PctMinutes    float64       `json:"pct_minutes"`
	Starter       *roleSplitDTO `json:"starter,omitempty"`
	SubWinning    *roleSplitDTO `json:"sub_winning,omitempty"`
	SubDrawing    *roleSplitDTO `json:"sub_drawing,omitempty"`
	SubLosing     *roleSplitDTO `json:"sub_losing,omitempty"`
}

type roleSplitDTO struct {
	Matches   int     `json:"matches"`
	Minutes   int     `json:"minutes"`
	MeanIndex float64 `json:"mean_index"`
}

func aggregateToDTO(agg playerstats.Aggregate) playerCompetitivenessDTO {
	return playerCompetitivenessDTO{
		Player:        agg.Player,
		Matches:       agg.Matches,
		TotalMinutes:  agg.TotalMinutes,
		MeanIndex:     agg.MeanIndex,
		SumPlayedGD:   agg.SumPlayedGD,
		SumDiffPoints: agg.SumDiffPoints,
		// The engine keeps the minutes share as a 0..1 fraction; the API
		// serves it on the same 0-100 scale as the other percentage fields.
		PctMinutes:    round1(agg.PctMinutes * 100),
		Starter:       roleSplitToDTO(agg.Starter),
		SubWinning:    roleSplitToDTO(agg.SubWinning),
		SubDrawing:    roleSplitToDTO(agg.SubDrawing),
		SubLosing:     roleSplitToDTO(agg.SubLosing),
	}
}

// roleSplitToDTO keeps the nil distinction: a missing role partition is "no
// value", not zero.
func roleSplitToDTO(split *playerstats.RoleSplit) *roleSplitDTO {
	if split == nil {
		return nil
	}
	return &roleSplitDTO{
		Matches:   split.Matches,
		Minutes:   split.Minutes,
		MeanIndex: split.MeanIndex,
	}
}
