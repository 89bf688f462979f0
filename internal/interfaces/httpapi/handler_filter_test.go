package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/usecase"
)

func filterTestHandler() *Handler {
	return NewHandler(nil, nil, nil, logging.NewNop())
}

func filterRequest(rawQuery string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/v1/matches?"+rawQuery, nil)
}

func TestParseMatchFilter_Defaults(t *testing.T) {
	t.Parallel()

	h := filterTestHandler()
	f, err := h.parseMatchFilter(context.Background(), filterRequest(""))
	if err != nil {
		t.Fatalf("parseMatchFilter error: %v", err)
	}

	if f.Venue != filter.VenueAll {
		t.Fatalf("expected venue all, got %q", f.Venue)
	}
	if f.DateFrom != nil || f.DateTo != nil {
		t.Fatalf("expected no date range, got %v-%v", f.DateFrom, f.DateTo)
	}
	if f.HasRankRange() || f.HasExplicitOpponents() || f.Advanced.Any() {
		t.Fatalf("expected inactive dimensions, got %+v", f)
	}
	if len(f.IncludePlayers) != 0 || len(f.ExcludePlayers) != 0 || f.Manager != "" {
		t.Fatalf("expected inactive squad dimensions, got %+v", f)
	}
}

func TestParseMatchFilter_AllParams(t *testing.T) {
	t.Parallel()

	h := filterTestHandler()
	query := "venue=home&date_from=2025-08-01&date_to=2025-09-30" +
		"&opponents=Racing,%20Almeria&rank_from=1&rank_to=5" +
		"&scored_first=true&conceded_first=false&comeback=1&no_red_cards=t" +
		"&players_in=G.%20Soriano,R.%20Vega&players_out=C.%20Nueve&manager=J.%20Calleja"

	f, err := h.parseMatchFilter(context.Background(), filterRequest(query))
	if err != nil {
		t.Fatalf("parseMatchFilter error: %v", err)
	}

	if f.Venue != filter.VenueHome {
		t.Fatalf("unexpected venue: %q", f.Venue)
	}
	if f.DateFrom == nil || f.DateFrom.Format("2006-01-02") != "2025-08-01" {
		t.Fatalf("unexpected date_from: %v", f.DateFrom)
	}
	if f.DateTo == nil || f.DateTo.Format("2006-01-02") != "2025-09-30" {
		t.Fatalf("unexpected date_to: %v", f.DateTo)
	}
	if len(f.Opponents) != 2 || f.Opponents[0] != "Racing" || f.Opponents[1] != "Almeria" {
		t.Fatalf("unexpected opponents: %v", f.Opponents)
	}
	if f.RankFrom != 1 || f.RankTo != 5 {
		t.Fatalf("unexpected rank range: %d-%d", f.RankFrom, f.RankTo)
	}
	if !f.Advanced.ScoredFirst || f.Advanced.ConcededFirst || !f.Advanced.Comeback || !f.Advanced.NoRedCards {
		t.Fatalf("unexpected advanced flags: %+v", f.Advanced)
	}
	if len(f.IncludePlayers) != 2 || f.IncludePlayers[0] != "G. Soriano" {
		t.Fatalf("unexpected players_in: %v", f.IncludePlayers)
	}
	if len(f.ExcludePlayers) != 1 || f.ExcludePlayers[0] != "C. Nueve" {
		t.Fatalf("unexpected players_out: %v", f.ExcludePlayers)
	}
	if f.Manager != "J. Calleja" {
		t.Fatalf("unexpected manager: %q", f.Manager)
	}
}

func TestParseMatchFilter_RejectsMalformedParams(t *testing.T) {
	t.Parallel()

	queries := []string{
		"venue=neutral",
		"date_from=17-08-2025",
		"date_to=2025/09/30",
		"rank_from=abc&rank_to=5",
		"rank_from=-1&rank_to=5",
		"scored_first=maybe",
		"no_red_cards=2",
	}

	h := filterTestHandler()
	for _, query := range queries {
		if _, err := h.parseMatchFilter(context.Background(), filterRequest(query)); !errors.Is(err, usecase.ErrInvalidInput) {
			t.Fatalf("query %q: expected ErrInvalidInput, got %v", query, err)
		}
	}
}

func TestParseMatchFilter_RankPairRules(t *testing.T) {
	t.Parallel()

	h := filterTestHandler()

	if _, err := h.parseMatchFilter(context.Background(), filterRequest("rank_from=3")); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("lone rank_from: expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.parseMatchFilter(context.Background(), filterRequest("rank_to=3")); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("lone rank_to: expected ErrInvalidInput, got %v", err)
	}
	if _, err := h.parseMatchFilter(context.Background(), filterRequest("rank_from=5&rank_to=2")); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("inverted range: expected ErrInvalidInput, got %v", err)
	}
}

func TestParseMatchFilter_PlayerOverlapRejected(t *testing.T) {
	t.Parallel()

	h := filterTestHandler()
	_, err := h.parseMatchFilter(context.Background(), filterRequest("players_in=A,B&players_out=B,C"))
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "B") {
		t.Fatalf("expected overlapping name in error, got %q", err.Error())
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	if got := splitCSV(" , , "); got != nil {
		t.Fatalf("expected nil for blank csv, got %v", got)
	}
	got := splitCSV(" Racing , Almeria ,, Levante ")
	if len(got) != 3 || got[0] != "Racing" || got[1] != "Almeria" || got[2] != "Levante" {
		t.Fatalf("unexpected parts: %v", got)
	}
}
