package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/domain/match"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/domain/standings"
)

// corpusSource is the read side every analytics service depends on.
type corpusSource interface {
	Corpus(ctx context.Context) (rawmatch.Corpus, error)
}

// AnalyticsService answers the league-wide queries: standings under the
// shared filter vocabulary, match listings and global aggregates.
type AnalyticsService struct {
	corpus corpusSource
}

func NewAnalyticsService(corpus corpusSource) *AnalyticsService {
	return &AnalyticsService{corpus: corpus}
}

// Standings builds the ranked table for the given filters. Date and red-card
// restrictions drop matches before the fold; venue, opponent and
// goal-sequence restrictions are evaluated inside it, per team perspective.
// A rank range resolves its opponent set against the unfiltered reference
// table built from every extracted match.
func (s *AnalyticsService) Standings(ctx context.Context, f filter.Filter) (standings.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Standings")
	defer span.End()

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]match.Record, 0, len(corpus.Documents))
	eligible := make([]match.Record, 0, len(corpus.Documents))
	for _, doc := range corpus.Documents {
		rec, ok := match.FromDocument(doc)
		if !ok {
			continue
		}
		all = append(all, rec)
		if !f.InDateRange(rec.Date) {
			continue
		}
		if f.Advanced.NoRedCards && match.HasRedCards(doc) {
			continue
		}
		eligible = append(eligible, rec)
	}

	opponents, err := resolveOpponents(f, all)
	if err != nil {
		return nil, err
	}

	return standings.Build(eligible, f.Venue, opponents, f.Advanced), nil
}

// Matches lists extracted matches, most recent first, honoring the
// perspective-free filter dimensions (date range, no-red-cards). Venue,
// opponent and goal-sequence restrictions need a team perspective and are
// the squad listing's business. Matches whose date does not parse sort
// after the dated ones, in corpus order.
func (s *AnalyticsService) Matches(ctx context.Context, f filter.Filter) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Matches")
	defer span.End()

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]match.Record, 0, len(corpus.Documents))
	for _, doc := range corpus.Documents {
		rec, ok := match.FromDocument(doc)
		if !ok {
			continue
		}
		if !f.InDateRange(rec.Date) {
			continue
		}
		if f.Advanced.NoRedCards && match.HasRedCards(doc) {
			continue
		}
		records = append(records, rec)
	}
	sortByDateDesc(records)
	return records, nil
}

// TeamSummary returns the named team's row under the given filters.
func (s *AnalyticsService) TeamSummary(ctx context.Context, team string, f filter.Filter) (standings.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.TeamSummary")
	defer span.End()

	team = strings.TrimSpace(team)
	if team == "" {
		return standings.Row{}, fmt.Errorf("%w: team is required", ErrInvalidInput)
	}

	table, err := s.Standings(ctx, f)
	if err != nil {
		return standings.Row{}, err
	}

	row, ok := table.TeamRow(team)
	if !ok {
		return standings.Row{}, fmt.Errorf("%w: team=%s", ErrNotFound, team)
	}
	return row, nil
}

// GlobalStats summarizes the table built for the given filters.
func (s *AnalyticsService) GlobalStats(ctx context.Context, f filter.Filter) (standings.GlobalStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.GlobalStats")
	defer span.End()

	table, err := s.Standings(ctx, f)
	if err != nil {
		return standings.GlobalStats{}, err
	}
	return standings.Summarize(table), nil
}

// Teams lists every team appearing in the corpus, alphabetically.
func (s *AnalyticsService) Teams(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Teams")
	defer span.End()

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	reference := standings.BuildReference(match.ExtractAll(corpus.Documents))
	teams := reference.Teams()
	sort.Strings(teams)
	return teams, nil
}

// resolveOpponents materializes the opponent restriction: explicit names
// always win; otherwise a rank range resolves against the reference table of
// all extracted matches. nil means no restriction.
func resolveOpponents(f filter.Filter, all []match.Record) (map[string]struct{}, error) {
	if f.HasExplicitOpponents() {
		return filter.OpponentSet(f.Opponents), nil
	}
	if !f.HasRankRange() {
		return nil, nil
	}
	if f.RankFrom > f.RankTo {
		return nil, fmt.Errorf("%w: rank range %d-%d is inverted", ErrInvalidInput, f.RankFrom, f.RankTo)
	}

	reference := standings.BuildReference(all)
	return filter.OpponentSet(standings.ResolveRankRange(reference, f.RankFrom, f.RankTo)), nil
}

func sortByDateDesc(records []match.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		di, iok := match.ParseDate(records[i].Date)
		dj, jok := match.ParseDate(records[j].Date)
		switch {
		case iok && jok:
			return di.After(dj)
		case iok:
			return true
		default:
			return false
		}
	})
}
