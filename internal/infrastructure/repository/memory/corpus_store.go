package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
)

// CorpusStore is an in-memory rawmatch.Store used by tests and local runs
// that have no data directory or database behind them.
type CorpusStore struct {
	mu     sync.RWMutex
	corpus rawmatch.Corpus
	found  bool
	cache  map[string]rawmatch.Document
}

func NewCorpusStore() *CorpusStore {
	return &CorpusStore{cache: make(map[string]rawmatch.Document)}
}

func (s *CorpusStore) Load(_ context.Context) (rawmatch.Corpus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.found {
		return rawmatch.Corpus{}, false, nil
	}

	out := rawmatch.Corpus{Meta: s.corpus.Meta}
	out.Documents = make([]rawmatch.Document, 0, len(s.corpus.Documents))
	out.Documents = append(out.Documents, s.corpus.Documents...)

	return out, true, nil
}

func (s *CorpusStore) KnownIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.corpus.Documents))
	if !s.found {
		return ids, nil
	}
	for _, doc := range s.corpus.Documents {
		if id := doc.MatchID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *CorpusStore) CachedDocuments(_ context.Context, ids []string) (map[string]rawmatch.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]rawmatch.Document, len(ids))
	for _, id := range ids {
		if doc, ok := s.cache[id]; ok {
			out[id] = doc
		}
	}
	return out, nil
}

func (s *CorpusStore) CacheDocument(_ context.Context, matchID string, doc rawmatch.Document) error {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[matchID] = doc
	return nil
}

func (s *CorpusStore) SaveCorpus(_ context.Context, corpus rawmatch.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rawmatch.Corpus{Meta: corpus.Meta}
	stored.Documents = make([]rawmatch.Document, 0, len(corpus.Documents))
	stored.Documents = append(stored.Documents, corpus.Documents...)

	s.corpus = stored
	s.found = true
	return nil
}
