package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	corpusFileName   = "matches.json"
	cacheDirName     = "match_cache"
	cacheReadWorkers = 8
)

// CorpusStore persists the corpus as JSON files under a data directory: one
// consolidated matches.json plus a match_cache/ directory with one file per
// downloaded match. Writes go through a temp file and rename so a crashed
// sync never leaves a half-written corpus behind.
type CorpusStore struct {
	dir    string
	logger *logging.Logger
	mu     sync.RWMutex
}

func NewCorpusStore(dir string, logger *logging.Logger) *CorpusStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &CorpusStore{dir: dir, logger: logger}
}

// corpusFileModel is the on-disk shape of the consolidated corpus.
type corpusFileModel struct {
	Metadata rawmatch.Meta       `json:"metadata"`
	Matches  []rawmatch.Document `json:"matches"`
}

func (s *CorpusStore) Load(ctx context.Context) (rawmatch.Corpus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.corpusPath())
	if errors.Is(err, os.ErrNotExist) {
		return rawmatch.Corpus{}, false, nil
	}
	if err != nil {
		return rawmatch.Corpus{}, false, fmt.Errorf("read corpus file: %w", err)
	}

	var model corpusFileModel
	if err := sonic.Unmarshal(raw, &model); err != nil {
		s.logger.WarnContext(ctx, "corpus file is unreadable, treating as absent", "path", s.corpusPath(), "error", err)
		return rawmatch.Corpus{}, false, nil
	}

	return rawmatch.Corpus{Meta: model.Metadata, Documents: model.Matches}, true, nil
}

func (s *CorpusStore) KnownIDs(ctx context.Context) (map[string]struct{}, error) {
	corpus, found, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(corpus.Documents))
	if !found {
		return ids, nil
	}
	for _, doc := range corpus.Documents {
		if id := doc.MatchID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *CorpusStore) CachedDocuments(ctx context.Context, ids []string) (map[string]rawmatch.Document, error) {
	out := make(map[string]rawmatch.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	readers := pool.New().WithMaxGoroutines(cacheReadWorkers)
	for _, id := range ids {
		readers.Go(func() {
			doc, ok := s.readCachedDocument(ctx, id)
			if !ok {
				return
			}
			mu.Lock()
			out[id] = doc
			mu.Unlock()
		})
	}
	readers.Wait()

	return out, nil
}

func (s *CorpusStore) CacheDocument(ctx context.Context, matchID string, doc rawmatch.Document) error {
	if !validMatchID(matchID) {
		return fmt.Errorf("invalid match id %q", matchID)
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cached match %s: %w", matchID, err)
	}
	if err := os.MkdirAll(filepath.Join(s.dir, cacheDirName), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := writeFileAtomic(s.cachePath(matchID), raw); err != nil {
		return fmt.Errorf("write cached match %s: %w", matchID, err)
	}
	return nil
}

func (s *CorpusStore) SaveCorpus(ctx context.Context, corpus rawmatch.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := corpusFileModel{Metadata: corpus.Meta, Matches: corpus.Documents}
	if model.Matches == nil {
		model.Matches = []rawmatch.Document{}
	}
	raw, err := sonic.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := writeFileAtomic(s.corpusPath(), raw); err != nil {
		return fmt.Errorf("write corpus file: %w", err)
	}
	return nil
}

func (s *CorpusStore) readCachedDocument(ctx context.Context, matchID string) (rawmatch.Document, bool) {
	if !validMatchID(matchID) {
		return rawmatch.Document{}, false
	}

	raw, err := os.ReadFile(s.cachePath(matchID))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "cached match is unreadable", "match_id", matchID, "error", err)
		}
		return rawmatch.Document{}, false
	}

	var doc rawmatch.Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		s.logger.WarnContext(ctx, "cached match is corrupt, ignoring", "match_id", matchID, "error", err)
		return rawmatch.Document{}, false
	}
	if doc.MatchID() == "" {
		return rawmatch.Document{}, false
	}
	return doc, true
}

func (s *CorpusStore) corpusPath() string {
	return filepath.Join(s.dir, corpusFileName)
}

func (s *CorpusStore) cachePath(matchID string) string {
	return filepath.Join(s.dir, cacheDirName, matchID+".json")
}

// validMatchID keeps feed-issued ids from escaping the cache directory.
func validMatchID(matchID string) bool {
	if matchID == "" || matchID == "." || matchID == ".." {
		return false
	}
	return !strings.ContainsAny(matchID, `/\`)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
