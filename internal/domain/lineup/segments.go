package lineup

import "github.com/matchsight/matchsight/internal/domain/rawmatch"

// Segment is one player's continuous spell on the pitch. EndMinute is nil
// while the player stays on until the final whistle; resolve it against
// MatchEnd only when minutes are actually needed.
type Segment struct {
	PlayerID  string
	Name      string
	Starter   bool
	Start     int
	EndMinute *int
}

// ResolvedEnd returns the segment's end minute, substituting matchEnd for an
// open segment.
func (s Segment) ResolvedEnd(matchEnd int) int {
	if s.EndMinute != nil {
		return *s.EndMinute
	}
	return matchEnd
}

// Minutes returns the minutes covered by the segment once resolved.
func (s Segment) Minutes(matchEnd int) int {
	return s.ResolvedEnd(matchEnd) - s.Start
}

// MatchEnd derives the effective final minute of a match: at least 90, pushed
// out by stoppage-time goals or substitutions recorded past that mark.
func MatchEnd(doc rawmatch.Document) int {
	end := 90
	for _, g := range doc.LiveData.Goals {
		if g.TimeMin > end {
			end = g.TimeMin
		}
	}
	for _, sub := range doc.LiveData.Substitutions {
		if sub.TimeMin > end {
			end = sub.TimeMin
		}
	}
	return end
}

// BuildSegments reconstructs the on-pitch spells for every player in the
// team's lineup. Starters begin at minute 0 and end at their exit
// substitution, if any. Substitutes begin at their entry substitution;
// players who never entered produce no segment. Substitutions belonging to
// the opposing lineup are ignored.
func BuildSegments(doc rawmatch.Document, team string) ([]Segment, bool) {
	lu, ok := TeamLineup(doc, team)
	if !ok {
		return nil, false
	}

	entries := make(map[string]int)
	exits := make(map[string]int)
	for _, sub := range doc.LiveData.Substitutions {
		if sub.ContestantID != lu.ContestantID {
			continue
		}
		if sub.PlayerOnID != "" {
			entries[sub.PlayerOnID] = sub.TimeMin
		}
		if sub.PlayerOffID != "" {
			exits[sub.PlayerOffID] = sub.TimeMin
		}
	}

	segments := make([]Segment, 0, len(lu.Players))
	for _, p := range lu.Players {
		seg := Segment{PlayerID: p.PlayerID, Name: p.DisplayName(), Starter: p.IsStarter()}
		if !seg.Starter {
			start, entered := entries[p.PlayerID]
			if !entered {
				continue
			}
			seg.Start = start
		}
		if exit, left := exits[p.PlayerID]; left {
			minute := exit
			seg.EndMinute = &minute
		}
		segments = append(segments, seg)
	}
	return segments, true
}
