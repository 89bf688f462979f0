package lineup

import (
	"strings"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

const officialTypeManager = "manager"

// TeamLineup finds the lineup block belonging to the named team: the block
// whose contestantId matches a matchInfo contestant carrying that name.
func TeamLineup(doc rawmatch.Document, team string) (rawmatch.LineUp, bool) {
	for _, lu := range doc.LiveData.LineUps {
		for _, contestant := range doc.MatchInfo.Contestants {
			if contestant.ID == lu.ContestantID && contestant.Name == team {
				return lu, true
			}
		}
	}
	return rawmatch.LineUp{}, false
}

// Starters lists the display names of the team's starting players. A missing
// lineup degrades to an empty list.
func Starters(doc rawmatch.Document, team string) []string {
	lu, ok := TeamLineup(doc, team)
	if !ok {
		return nil
	}
	starters := make([]string, 0, len(lu.Players))
	for _, p := range lu.Players {
		if p.IsStarter() {
			starters = append(starters, p.DisplayName())
		}
	}
	return starters
}

// Manager resolves the team's manager for one match: the first teamOfficial
// tagged "manager", preferring matchName, then first+last names with their
// short variants as fallbacks, then whichever half is present. ok is false
// when no usable name exists.
func Manager(doc rawmatch.Document, team string) (string, bool) {
	lu, found := TeamLineup(doc, team)
	if !found {
		return "", false
	}
	for _, official := range lu.TeamOfficials {
		if official.Type != officialTypeManager {
			continue
		}
		if name := strings.TrimSpace(official.MatchName); name != "" {
			return name, true
		}
		first := strings.TrimSpace(official.FirstName)
		if first == "" {
			first = strings.TrimSpace(official.ShortFirstName)
		}
		last := strings.TrimSpace(official.LastName)
		if last == "" {
			last = strings.TrimSpace(official.ShortLastName)
		}
		switch {
		case first != "" && last != "":
			return first + " " + last, true
		case last != "":
			return last, true
		case first != "":
			return first, true
		}
		return "", false
	}
	return "", false
}
