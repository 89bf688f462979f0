package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matchsight/matchsight/internal/domain/filter"
	"github.com/matchsight/matchsight/internal/domain/lineup"
	"github.com/matchsight/matchsight/internal/domain/match"
	"github.com/matchsight/matchsight/internal/domain/playerstats"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

// TeamPerformance is one team's scorecard over its surviving matches.
type TeamPerformance struct {
	Team         string
	Matches      int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
	PointsPct    float64
}

// PlayerMinutes is one player's summed on-pitch minutes.
type PlayerMinutes struct {
	Player  string
	Minutes int
}

// SquadService answers single-team queries over the full filter vocabulary,
// including the player include/exclude and manager dimensions the
// league-wide queries do not consume.
type SquadService struct {
	corpus corpusSource
}

func NewSquadService(corpus corpusSource) *SquadService {
	return &SquadService{corpus: corpus}
}

// Performance folds the team's surviving matches into a scorecard.
func (s *SquadService) Performance(ctx context.Context, team string, f filter.Filter) (TeamPerformance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Performance")
	defer span.End()

	team, err := validateSquadQuery(team, f)
	if err != nil {
		return TeamPerformance{}, err
	}

	surviving, err := s.survivingMatches(ctx, team, f)
	if err != nil {
		return TeamPerformance{}, err
	}

	perf := TeamPerformance{Team: team}
	for _, tm := range surviving {
		goalsFor, goalsAgainst := tm.rec.GoalsFor(team)
		points := tm.rec.Points(team)

		perf.Matches++
		perf.GoalsFor += goalsFor
		perf.GoalsAgainst += goalsAgainst
		perf.Points += points
		switch points {
		case 3:
			perf.Wins++
		case 1:
			perf.Draws++
		default:
			perf.Losses++
		}
	}
	perf.GoalDiff = perf.GoalsFor - perf.GoalsAgainst
	if maxPoints := perf.Matches * 3; maxPoints > 0 {
		perf.PointsPct = float64(perf.Points) / float64(maxPoints) * 100
	}
	return perf, nil
}

// Matches lists the team's surviving matches, most recent first.
func (s *SquadService) Matches(ctx context.Context, team string, f filter.Filter) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Matches")
	defer span.End()

	team, err := validateSquadQuery(team, f)
	if err != nil {
		return nil, err
	}

	surviving, err := s.survivingMatches(ctx, team, f)
	if err != nil {
		return nil, err
	}

	records := make([]match.Record, 0, len(surviving))
	for _, tm := range surviving {
		records = append(records, tm.rec)
	}
	sortByDateDesc(records)
	return records, nil
}

// PlayerMinutes sums on-pitch minutes per player across the team's
// surviving matches, largest first.
func (s *SquadService) PlayerMinutes(ctx context.Context, team string, f filter.Filter) ([]PlayerMinutes, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.PlayerMinutes")
	defer span.End()

	team, err := validateSquadQuery(team, f)
	if err != nil {
		return nil, err
	}

	surviving, err := s.survivingMatches(ctx, team, f)
	if err != nil {
		return nil, err
	}

	totals := playerstats.MinutesTotals(playerEntries(surviving, team))
	out := make([]PlayerMinutes, 0, len(totals))
	for player, minutes := range totals {
		out = append(out, PlayerMinutes{Player: player, Minutes: minutes})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Player < out[j].Player
	})
	return out, nil
}

// Competitiveness computes the per-player index aggregates over the team's
// surviving matches, mean index descending. Matches without a lineup block
// produce no segments but still widen the available-minutes denominator.
func (s *SquadService) Competitiveness(ctx context.Context, team string, f filter.Filter) ([]playerstats.Aggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Competitiveness")
	defer span.End()

	team, err := validateSquadQuery(team, f)
	if err != nil {
		return nil, err
	}

	surviving, err := s.survivingMatches(ctx, team, f)
	if err != nil {
		return nil, err
	}

	return playerstats.Collect(playerEntries(surviving, team), len(surviving)), nil
}

// Players lists the team's distinct starters across the whole corpus,
// alphabetically.
func (s *SquadService) Players(ctx context.Context, team string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Players")
	defer span.End()

	team = strings.TrimSpace(team)
	if team == "" {
		return nil, fmt.Errorf("%w: team is required", ErrInvalidInput)
	}

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, doc := range corpus.Documents {
		for _, name := range lineup.Starters(doc, team) {
			seen[name] = struct{}{}
		}
	}
	return sortedNames(seen), nil
}

// Managers lists the team's distinct managers across the whole corpus,
// alphabetically.
func (s *SquadService) Managers(ctx context.Context, team string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Managers")
	defer span.End()

	team = strings.TrimSpace(team)
	if team == "" {
		return nil, fmt.Errorf("%w: team is required", ErrInvalidInput)
	}

	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, doc := range corpus.Documents {
		if name, ok := lineup.Manager(doc, team); ok {
			seen[name] = struct{}{}
		}
	}
	return sortedNames(seen), nil
}

// teamMatch pairs an extracted record with the raw document it came from;
// lineup and red-card lookups need the document, everything else the record.
type teamMatch struct {
	doc rawmatch.Document
	rec match.Record
}

// survivingMatches runs the team's matches through every filter dimension.
// All dimensions combine by logical AND; the perspective-bound ones (venue,
// opponent, goal sequence, starters, manager) are evaluated for the
// requested team only.
func (s *SquadService) survivingMatches(ctx context.Context, team string, f filter.Filter) ([]teamMatch, error) {
	corpus, err := s.corpus.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]match.Record, 0, len(corpus.Documents))
	candidates := make([]teamMatch, 0, len(corpus.Documents))
	for _, doc := range corpus.Documents {
		rec, ok := match.FromDocument(doc)
		if !ok {
			continue
		}
		all = append(all, rec)
		if rec.Involves(team) {
			candidates = append(candidates, teamMatch{doc: doc, rec: rec})
		}
	}

	opponents, err := resolveOpponents(f, all)
	if err != nil {
		return nil, err
	}

	surviving := make([]teamMatch, 0, len(candidates))
	for _, tm := range candidates {
		atHome := tm.rec.HomeTeam == team
		if atHome && !f.Venue.IncludesHome() {
			continue
		}
		if !atHome && !f.Venue.IncludesAway() {
			continue
		}
		if !f.InDateRange(tm.rec.Date) {
			continue
		}
		if opponents != nil {
			opponent := tm.rec.AwayTeam
			if !atHome {
				opponent = tm.rec.HomeTeam
			}
			if _, ok := opponents[opponent]; !ok {
				continue
			}
		}
		if f.Advanced.NoRedCards && match.HasRedCards(tm.doc) {
			continue
		}
		if f.Advanced.NeedsGoalFacts() && !f.Advanced.Pass(match.AnalyzeGoals(tm.rec, team)) {
			continue
		}
		if !f.StartersSatisfy(lineup.Starters(tm.doc, team)) {
			continue
		}
		if f.Manager != "" {
			name, ok := lineup.Manager(tm.doc, team)
			if !ok || name != f.Manager {
				continue
			}
		}
		surviving = append(surviving, tm)
	}
	return surviving, nil
}

// playerEntries reconstructs segments and computes per-player match stats
// for every surviving match that carries a lineup block.
func playerEntries(surviving []teamMatch, team string) []playerstats.PlayerMatch {
	entries := make([]playerstats.PlayerMatch, 0, len(surviving)*14)
	for _, tm := range surviving {
		segments, ok := lineup.BuildSegments(tm.doc, team)
		if !ok {
			continue
		}
		timeline := lineup.GoalTimeline(tm.rec, team)
		matchEnd := lineup.MatchEnd(tm.doc)
		totalPoints := tm.rec.Points(team)
		for _, seg := range segments {
			entries = append(entries, playerstats.PlayerMatch{
				Player: seg.Name,
				Stat:   playerstats.Compute(seg, timeline, matchEnd, totalPoints),
			})
		}
	}
	return entries
}

func validateSquadQuery(team string, f filter.Filter) (string, error) {
	team = strings.TrimSpace(team)
	if team == "" {
		return "", fmt.Errorf("%w: team is required", ErrInvalidInput)
	}
	if name, overlap := playerSetOverlap(f.IncludePlayers, f.ExcludePlayers); overlap {
		return "", fmt.Errorf("%w: player %q is both included and excluded", ErrInvalidInput, name)
	}
	return team, nil
}

func playerSetOverlap(include, exclude []string) (string, bool) {
	if len(include) == 0 || len(exclude) == 0 {
		return "", false
	}
	set := make(map[string]struct{}, len(include))
	for _, name := range include {
		set[name] = struct{}{}
	}
	for _, name := range exclude {
		if _, ok := set[name]; ok {
			return name, true
		}
	}
	return "", false
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
