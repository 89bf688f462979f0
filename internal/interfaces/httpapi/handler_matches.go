package httpapi

import (
	"net/http"
	"strings"

	"github.com/matchsight/matchsight/internal/domain/match"
)

// ListMatches serves the league-wide match listing; with team= it narrows to
// that team's perspective and unlocks the squad filter dimensions.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	f, err := h.parseMatchFilter(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	team := strings.TrimSpace(r.URL.Query().Get("team"))

	var records []match.Record
	if team == "" {
		records, err = h.analyticsService.Matches(ctx, f)
	} else {
		records, err = h.squadService.Matches(ctx, team, f)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "team", team, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, matchToDTO(rec))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type matchDTO struct {
	MatchID   string         `json:"match_id"`
	Date      string         `json:"date"`
	HomeTeam  string         `json:"home_team"`
	AwayTeam  string         `json:"away_team"`
	HomeGoals int            `json:"home_goals"`
	AwayGoals int            `json:"away_goals"`
	Winner    string         `json:"winner"`
	Goals     []goalEventDTO `json:"goals,omitempty"`
}

type goalEventDTO struct {
	Period        int    `json:"period"`
	Minute        int    `json:"minute"`
	ScoringTeamID string `json:"scoring_team_id"`
}

func matchToDTO(rec match.Record) matchDTO {
	goals := make([]goalEventDTO, 0, len(rec.Goals))
	for _, goal := range rec.Goals {
		goals = append(goals, goalEventDTO{
			Period:        goal.Period,
			Minute:        goal.Minute,
			ScoringTeamID: goal.ScoringTeamID,
		})
	}

	return matchDTO{
		MatchID:   rec.MatchID,
		Date:      rec.Date,
		HomeTeam:  rec.HomeTeam,
		AwayTeam:  rec.AwayTeam,
		HomeGoals: rec.HomeGoals,
		AwayGoals: rec.AwayGoals,
		Winner:    string(rec.Winner),
		Goals:     goals,
	}
}
