package match

import "github.com/matchsight/matchsight/internal/domain/rawmatch"

const statTotalRedCard = "totalRedCard"

// HasRedCards reports whether either team's lineup stats carry a positive
// totalRedCard counter. A missing lineup or stat reads as no red cards.
func HasRedCards(doc rawmatch.Document) bool {
	for _, lineup := range doc.LiveData.LineUps {
		for _, stat := range lineup.Stats {
			if stat.Type == statTotalRedCard && stat.Value.Int() > 0 {
				return true
			}
		}
	}
	return false
}
