package filter

import (
	"strings"
	"time"

	"github.com/matchsight/matchsight/internal/domain/match"
)

type Venue string

const (
	VenueAll  Venue = "all"
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// NormalizeVenue maps a raw venue string to a Venue. Empty means all.
func NormalizeVenue(value string) (Venue, bool) {
	switch Venue(strings.ToLower(strings.TrimSpace(value))) {
	case "", VenueAll:
		return VenueAll, true
	case VenueHome:
		return VenueHome, true
	case VenueAway:
		return VenueAway, true
	default:
		return VenueAll, false
	}
}

func (v Venue) IncludesHome() bool { return v == VenueAll || v == VenueHome }
func (v Venue) IncludesAway() bool { return v == VenueAll || v == VenueAway }

// Advanced holds the goal-sequence predicates. Each active flag must hold
// for the perspective team; NoRedCards excludes the match for both sides.
type Advanced struct {
	ScoredFirst   bool
	ConcededFirst bool
	Comeback      bool
	NoRedCards    bool
}

func (a Advanced) Any() bool {
	return a.ScoredFirst || a.ConcededFirst || a.Comeback || a.NoRedCards
}

// NeedsGoalFacts reports whether any per-perspective goal predicate is set.
func (a Advanced) NeedsGoalFacts() bool {
	return a.ScoredFirst || a.ConcededFirst || a.Comeback
}

// Pass evaluates the per-perspective goal predicates against computed facts.
func (a Advanced) Pass(facts match.Facts) bool {
	if a.ScoredFirst && !facts.ScoredFirst {
		return false
	}
	if a.ConcededFirst && !facts.ConcededFirst {
		return false
	}
	if a.Comeback && !facts.Comeback {
		return false
	}
	return true
}

// Filter is the shared vocabulary of every analytics query. Dimensions are
// combined by logical AND; zero values mean "dimension inactive".
type Filter struct {
	Venue    Venue
	DateFrom *time.Time
	DateTo   *time.Time

	// Opponents are explicit opponent names and always win over a rank
	// range. RankFrom/RankTo (1-based, inclusive) are resolved against the
	// unfiltered reference standings before any fold runs.
	Opponents []string
	RankFrom  int
	RankTo    int

	Advanced Advanced

	// IncludePlayers must all have started; ExcludePlayers must none have
	// started. Disjointness is validated at the transport boundary.
	IncludePlayers []string
	ExcludePlayers []string
	Manager        string
}

func (f Filter) HasDateRange() bool {
	return f.DateFrom != nil || f.DateTo != nil
}

func (f Filter) HasRankRange() bool {
	return f.RankFrom > 0 && f.RankTo > 0
}

func (f Filter) HasExplicitOpponents() bool {
	return len(f.Opponents) > 0
}

// InDateRange applies the inclusive calendar-date check after stripping any
// trailing zone marker. A date that fails to parse is included: the corpus
// is mixed-quality and a missing date is not grounds for exclusion.
func (f Filter) InDateRange(dateValue string) bool {
	if !f.HasDateRange() {
		return true
	}
	day, ok := match.ParseDate(dateValue)
	if !ok {
		return true
	}
	if f.DateFrom != nil && day.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && day.After(*f.DateTo) {
		return false
	}
	return true
}

// StartersSatisfy applies the include/exclude starter sets to the resolved
// starter names of one match.
func (f Filter) StartersSatisfy(starters []string) bool {
	if len(f.IncludePlayers) == 0 && len(f.ExcludePlayers) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(starters))
	for _, name := range starters {
		set[name] = struct{}{}
	}
	for _, name := range f.IncludePlayers {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	for _, name := range f.ExcludePlayers {
		if _, ok := set[name]; ok {
			return false
		}
	}
	return true
}

// OpponentSet materializes a name list into a membership set. A nil result
// means the restriction is inactive.
func OpponentSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
