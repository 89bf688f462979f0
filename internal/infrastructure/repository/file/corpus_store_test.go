package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/logging"
)

func testDocument(id string) rawmatch.Document {
	return rawmatch.Document{
		MatchInfo: rawmatch.MatchInfo{
			ID:   id,
			Date: "2025-08-17Z",
			Contestants: rawmatch.List[rawmatch.Contestant]{
				{ID: "t1", Name: "Levante", Position: "home"},
				{ID: "t2", Name: "Almeria", Position: "away"},
			},
		},
		LiveData: rawmatch.LiveData{
			MatchDetails: rawmatch.MatchDetails{
				MatchStatus: "Played",
				Scores:      rawmatch.Scores{Total: rawmatch.ScorePair{Home: 2, Away: 1}},
			},
		},
	}
}

func TestCorpusStore_LoadMissingFileIsNotFound(t *testing.T) {
	t.Parallel()

	store := NewCorpusStore(t.TempDir(), logging.NewNop())

	_, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if found {
		t.Fatal("expected empty dir to report no corpus")
	}
}

func TestCorpusStore_SaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewCorpusStore(dir, logging.NewNop())

	meta := rawmatch.Meta{
		Competition:          "Segunda Division",
		Season:               "2025/2026",
		TournamentCalendarID: "tmcl-1",
		LastUpdate:           time.Date(2025, time.September, 25, 12, 0, 0, 0, time.UTC),
		DownloadMode:         rawmatch.DownloadModeFull,
		TotalMatches:         2,
		NewDownloads:         2,
	}
	corpus := rawmatch.Corpus{
		Meta:      meta,
		Documents: []rawmatch.Document{testDocument("m1"), testDocument("m2")},
	}

	if err := store.SaveCorpus(context.Background(), corpus); err != nil {
		t.Fatalf("save corpus failed: %v", err)
	}

	got, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !found {
		t.Fatal("expected corpus to be found after save")
	}
	if len(got.Documents) != 2 || got.Documents[0].MatchID() != "m1" {
		t.Fatalf("unexpected documents: %+v", got.Documents)
	}
	if !got.Meta.LastUpdate.Equal(meta.LastUpdate) {
		t.Fatalf("unexpected last update: %v", got.Meta.LastUpdate)
	}
	gotMeta := got.Meta
	gotMeta.LastUpdate = meta.LastUpdate
	if gotMeta != meta {
		t.Fatalf("meta did not survive the round trip:\n got=%+v\nwant=%+v", gotMeta, meta)
	}

	ids, err := store.KnownIDs(context.Background())
	if err != nil {
		t.Fatalf("known ids failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 known ids, got %d", len(ids))
	}
	if _, ok := ids["m2"]; !ok {
		t.Fatal("expected m2 to be known")
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestCorpusStore_CorruptCorpusTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewCorpusStore(dir, logging.NewNop())

	if err := os.WriteFile(filepath.Join(dir, corpusFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if found {
		t.Fatal("expected corrupt corpus to report as absent")
	}
}

func TestCorpusStore_CachedDocumentsSkipsMissingAndCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewCorpusStore(dir, logging.NewNop())

	if err := store.CacheDocument(context.Background(), "m1", testDocument("m1")); err != nil {
		t.Fatalf("cache document failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cacheDirName, "m3.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt cache file: %v", err)
	}

	docs, err := store.CachedDocuments(context.Background(), []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("cached documents failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected only m1 in cache result, got %d entries", len(docs))
	}
	if docs["m1"].MatchInfo.Contestants[0].Name != "Levante" {
		t.Fatalf("unexpected cached document: %+v", docs["m1"])
	}
}

func TestCorpusStore_RejectsPathEscapingIDs(t *testing.T) {
	t.Parallel()

	store := NewCorpusStore(t.TempDir(), logging.NewNop())

	for _, id := range []string{"", "..", "../evil", `a\b`} {
		if err := store.CacheDocument(context.Background(), id, testDocument("m1")); err == nil {
			t.Fatalf("expected invalid id %q to be rejected", id)
		}
	}
}
