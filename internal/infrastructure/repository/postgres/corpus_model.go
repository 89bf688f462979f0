package postgres

import (
	"time"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

// The consolidated corpus lives in a single snapshot row; saves upsert it.
const corpusSnapshotID = 1

var corpusSnapshotColumns = []string{
	"id",
	"competition",
	"season",
	"tournament_calendar_id",
	"last_update",
	"download_mode",
	"total_matches",
	"new_downloads",
	"errors",
	"from_cache",
	"only_played",
	"filter_date",
	"documents",
}

type corpusSnapshotModel struct {
	ID                   int       `db:"id"`
	Competition          string    `db:"competition"`
	Season               string    `db:"season"`
	TournamentCalendarID string    `db:"tournament_calendar_id"`
	LastUpdate           time.Time `db:"last_update"`
	DownloadMode         string    `db:"download_mode"`
	TotalMatches         int       `db:"total_matches"`
	NewDownloads         int       `db:"new_downloads"`
	Errors               int       `db:"errors"`
	FromCache            int       `db:"from_cache"`
	OnlyPlayed           bool      `db:"only_played"`
	FilterDate           string    `db:"filter_date"`
	Documents            string    `db:"documents"`
}

func newCorpusSnapshotModel(meta rawmatch.Meta, documents string) corpusSnapshotModel {
	return corpusSnapshotModel{
		ID:                   corpusSnapshotID,
		Competition:          meta.Competition,
		Season:               meta.Season,
		TournamentCalendarID: meta.TournamentCalendarID,
		LastUpdate:           meta.LastUpdate.UTC(),
		DownloadMode:         meta.DownloadMode,
		TotalMatches:         meta.TotalMatches,
		NewDownloads:         meta.NewDownloads,
		Errors:               meta.Errors,
		FromCache:            meta.FromCache,
		OnlyPlayed:           meta.OnlyPlayed,
		FilterDate:           meta.FilterDate,
		Documents:            documents,
	}
}

func (m corpusSnapshotModel) toMeta() rawmatch.Meta {
	return rawmatch.Meta{
		Competition:          m.Competition,
		Season:               m.Season,
		TournamentCalendarID: m.TournamentCalendarID,
		LastUpdate:           m.LastUpdate,
		DownloadMode:         m.DownloadMode,
		TotalMatches:         m.TotalMatches,
		NewDownloads:         m.NewDownloads,
		Errors:               m.Errors,
		FromCache:            m.FromCache,
		OnlyPlayed:           m.OnlyPlayed,
		FilterDate:           m.FilterDate,
	}
}

type cachedMatchModel struct {
	MatchID   string    `db:"match_id"`
	Payload   string    `db:"payload"`
	FetchedAt time.Time `db:"fetched_at"`
}
