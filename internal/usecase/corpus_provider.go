package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/cache"
)

const corpusCacheKey = "corpus"

// CorpusProvider hands out the raw match corpus behind a time-boxed cache so
// analytics queries do not hit the store on every request. Every query still
// recomputes from the raw documents; only the corpus load is cached.
type CorpusProvider struct {
	store rawmatch.Store
	cache *cache.Store[rawmatch.Corpus]
}

func NewCorpusProvider(store rawmatch.Store, ttl time.Duration) *CorpusProvider {
	return &CorpusProvider{
		store: store,
		cache: cache.NewStore[rawmatch.Corpus](ttl),
	}
}

// Corpus returns the current corpus, loading it from the store on a cache
// miss. A store without a corpus yields ErrNotFound: the data has to be
// synced before anything can be answered.
func (p *CorpusProvider) Corpus(ctx context.Context) (rawmatch.Corpus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorpusProvider.Corpus")
	defer span.End()

	return p.cache.GetOrLoad(ctx, corpusCacheKey, func(ctx context.Context) (rawmatch.Corpus, error) {
		corpus, ok, err := p.store.Load(ctx)
		if err != nil {
			return rawmatch.Corpus{}, fmt.Errorf("load corpus: %w", err)
		}
		if !ok {
			return rawmatch.Corpus{}, fmt.Errorf("%w: corpus has not been downloaded", ErrNotFound)
		}
		return corpus, nil
	})
}

// Invalidate drops the cached corpus so the next query reloads it, typically
// right after a sync run rewrote the store.
func (p *CorpusProvider) Invalidate(ctx context.Context) {
	p.cache.Delete(ctx, corpusCacheKey)
}
