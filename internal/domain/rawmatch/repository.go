package rawmatch

import "context"

// Store persists raw match documents and the consolidated corpus snapshot.
// Implementations: file (per-match cache + consolidated JSON), postgres, memory.
type Store interface {
	// Load returns the consolidated corpus. found is false when no snapshot
	// has ever been written.
	Load(ctx context.Context) (Corpus, bool, error)
	// KnownIDs lists match ids already part of the consolidated corpus.
	KnownIDs(ctx context.Context) (map[string]struct{}, error)
	// CachedDocuments looks up previously fetched documents that never made
	// it into the consolidated snapshot (a partially completed earlier run).
	// Ids with no cached document are absent from the result.
	CachedDocuments(ctx context.Context, ids []string) (map[string]Document, error)
	CacheDocument(ctx context.Context, matchID string, doc Document) error
	SaveCorpus(ctx context.Context, corpus Corpus) error
}
