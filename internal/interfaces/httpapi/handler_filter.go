package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/usecase"
)

const queryDateLayout = "2006-01-02"

// filterQuery is the transport form of the shared filter vocabulary. Every
// analytics route accepts the same parameter set; dimensions left empty stay
// inactive.
type filterQuery struct {
	Venue    string `validate:"omitempty,oneof=all home away"`
	RankFrom int    `validate:"omitempty,min=1"`
	RankTo   int    `validate:"omitempty,min=1"`

	ScoredFirst   bool
	ConcededFirst bool
	Comeback      bool
	NoRedCards    bool

	Opponents      []string
	IncludePlayers []string
	ExcludePlayers []string
	Manager        string
}

// parseMatchFilter reads the shared filter params off the query string. Any
// malformed value is an invalid-input error naming the offending parameter.
func (h *Handler) parseMatchFilter(ctx context.Context, r *http.Request) (filter.Filter, error) {
	ctx, span := startSpan(ctx, "httpapi.Handler.parseMatchFilter")
	defer span.End()

	query := r.URL.Query()
	req := filterQuery{
		Venue:          strings.TrimSpace(query.Get("venue")),
		Manager:        strings.TrimSpace(query.Get("manager")),
		Opponents:      splitCSV(query.Get("opponents")),
		IncludePlayers: splitCSV(query.Get("players_in")),
		ExcludePlayers: splitCSV(query.Get("players_out")),
	}

	var err error
	if req.RankFrom, err = intParam(query, "rank_from"); err != nil {
		return filter.Filter{}, err
	}
	if req.RankTo, err = intParam(query, "rank_to"); err != nil {
		return filter.Filter{}, err
	}
	if req.ScoredFirst, err = boolParam(query, "scored_first"); err != nil {
		return filter.Filter{}, err
	}
	if req.ConcededFirst, err = boolParam(query, "conceded_first"); err != nil {
		return filter.Filter{}, err
	}
	if req.Comeback, err = boolParam(query, "comeback"); err != nil {
		return filter.Filter{}, err
	}
	if req.NoRedCards, err = boolParam(query, "no_red_cards"); err != nil {
		return filter.Filter{}, err
	}

	dateFrom, err := dateParam(query, "date_from")
	if err != nil {
		return filter.Filter{}, err
	}
	dateTo, err := dateParam(query, "date_to")
	if err != nil {
		return filter.Filter{}, err
	}

	if err := h.validateRequest(ctx, req); err != nil {
		return filter.Filter{}, err
	}
	if (req.RankFrom > 0) != (req.RankTo > 0) {
		return filter.Filter{}, fmt.Errorf("%w: rank_from and rank_to must be provided together", usecase.ErrInvalidInput)
	}
	if req.RankFrom > req.RankTo {
		return filter.Filter{}, fmt.Errorf("%w: rank_from must not exceed rank_to", usecase.ErrInvalidInput)
	}
	if overlap := nameOverlap(req.IncludePlayers, req.ExcludePlayers); len(overlap) > 0 {
		return filter.Filter{}, fmt.Errorf("%w: players_in and players_out overlap: %s", usecase.ErrInvalidInput, strings.Join(overlap, ", "))
	}

	venue, _ := filter.NormalizeVenue(req.Venue)
	return filter.Filter{
		Venue:     venue,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Opponents: req.Opponents,
		RankFrom:  req.RankFrom,
		RankTo:    req.RankTo,
		Advanced: filter.Advanced{
			ScoredFirst:   req.ScoredFirst,
			ConcededFirst: req.ConcededFirst,
			Comeback:      req.Comeback,
			NoRedCards:    req.NoRedCards,
		},
		IncludePlayers: req.IncludePlayers,
		ExcludePlayers: req.ExcludePlayers,
		Manager:        req.Manager,
	}, nil
}

func intParam(query url.Values, name string) (int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func boolParam(query url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func dateParam(query url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be formatted YYYY-MM-DD", usecase.ErrInvalidInput, name)
	}
	return &day, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func nameOverlap(include, exclude []string) []string {
	if len(include) == 0 || len(exclude) == 0 {
		return nil
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	var overlap []string
	for _, name := range include {
		if _, ok := excluded[name]; ok {
			overlap = append(overlap, name)
		}
	}
	return overlap
}
