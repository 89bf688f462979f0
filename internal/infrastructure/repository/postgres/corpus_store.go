package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/logging"
	qb "github.com/matchsight/matchsight/internal/platform/querybuilder"
)

// CorpusStore keeps the consolidated corpus snapshot and the per-match
// download cache in Postgres. Documents are stored as JSON payloads; the
// engine re-decodes them on load.
type CorpusStore struct {
	db     *sqlx.DB
	logger *logging.Logger
	now    func() time.Time
}

func NewCorpusStore(db *sqlx.DB, logger *logging.Logger) *CorpusStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &CorpusStore{db: db, logger: logger, now: time.Now}
}

func (s *CorpusStore) Load(ctx context.Context) (rawmatch.Corpus, bool, error) {
	query, args, err := qb.Select(corpusSnapshotColumns...).
		From("corpus_snapshots").
		Where(qb.Eq("id", corpusSnapshotID)).
		ToSQL()
	if err != nil {
		return rawmatch.Corpus{}, false, fmt.Errorf("build load corpus query: %w", err)
	}

	var model corpusSnapshotModel
	if err := s.db.GetContext(ctx, &model, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return s.loadLiteral(ctx)
		}
		if isNotFound(err) {
			return rawmatch.Corpus{}, false, nil
		}
		return rawmatch.Corpus{}, false, fmt.Errorf("load corpus snapshot: %w", err)
	}

	return snapshotToCorpus(model)
}

// loadLiteral re-issues the snapshot select with the id inlined. The driver
// skips the extended query protocol for parameterless statements, which keeps
// loads working behind transaction-pooling proxies.
func (s *CorpusStore) loadLiteral(ctx context.Context) (rawmatch.Corpus, bool, error) {
	query := "SELECT " + strings.Join(corpusSnapshotColumns, ", ") +
		" FROM corpus_snapshots WHERE id = " + strconv.Itoa(corpusSnapshotID)

	var model corpusSnapshotModel
	if err := s.db.GetContext(ctx, &model, query); err != nil {
		if isNotFound(err) {
			return rawmatch.Corpus{}, false, nil
		}
		return rawmatch.Corpus{}, false, fmt.Errorf("load corpus snapshot literal fallback: %w", err)
	}

	return snapshotToCorpus(model)
}

func snapshotToCorpus(model corpusSnapshotModel) (rawmatch.Corpus, bool, error) {
	var documents []rawmatch.Document
	if err := sonic.Unmarshal([]byte(model.Documents), &documents); err != nil {
		return rawmatch.Corpus{}, false, fmt.Errorf("decode corpus documents: %w", err)
	}
	return rawmatch.Corpus{Meta: model.toMeta(), Documents: documents}, true, nil
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

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Select("match_id", "payload", "fetched_at").
		From("cached_match_documents").
		Where(qb.In("match_id", values)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build cached documents query: %w", err)
	}

	var rows []cachedMatchModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			rows, err = s.cachedDocumentsLiteral(ctx, ids)
		}
		if err != nil {
			return nil, fmt.Errorf("select cached documents: %w", err)
		}
	}

	for _, row := range rows {
		var doc rawmatch.Document
		if err := sonic.Unmarshal([]byte(row.Payload), &doc); err != nil {
			s.logger.WarnContext(ctx, "cached match payload is corrupt, ignoring", "match_id", row.MatchID, "error", err)
			continue
		}
		out[row.MatchID] = doc
	}
	return out, nil
}

func (s *CorpusStore) cachedDocumentsLiteral(ctx context.Context, ids []string) ([]cachedMatchModel, error) {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, quoteLiteral(id))
	}
	query := "SELECT match_id, payload, fetched_at FROM cached_match_documents" +
		" WHERE match_id IN (" + strings.Join(quoted, ", ") + ")"

	var rows []cachedMatchModel
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CorpusStore) CacheDocument(ctx context.Context, matchID string, doc rawmatch.Document) error {
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cached match %s: %w", matchID, err)
	}

	model := cachedMatchModel{MatchID: matchID, Payload: string(raw), FetchedAt: s.now().UTC()}
	query, args, err := qb.InsertModel("cached_match_documents", model, `ON CONFLICT (match_id)
DO UPDATE SET
    payload = EXCLUDED.payload,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build cache match query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("cache match %s: %w", matchID, err)
	}
	return nil
}

func (s *CorpusStore) SaveCorpus(ctx context.Context, corpus rawmatch.Corpus) error {
	raw, err := sonic.Marshal(corpus.Documents)
	if err != nil {
		return fmt.Errorf("encode corpus documents: %w", err)
	}

	model := newCorpusSnapshotModel(corpus.Meta, string(raw))
	query, args, err := qb.InsertModel("corpus_snapshots", model, `ON CONFLICT (id)
DO UPDATE SET
    competition = EXCLUDED.competition,
    season = EXCLUDED.season,
    tournament_calendar_id = EXCLUDED.tournament_calendar_id,
    last_update = EXCLUDED.last_update,
    download_mode = EXCLUDED.download_mode,
    total_matches = EXCLUDED.total_matches,
    new_downloads = EXCLUDED.new_downloads,
    errors = EXCLUDED.errors,
    from_cache = EXCLUDED.from_cache,
    only_played = EXCLUDED.only_played,
    filter_date = EXCLUDED.filter_date,
    documents = EXCLUDED.documents`)
	if err != nil {
		return fmt.Errorf("build save corpus query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save corpus snapshot: %w", err)
	}
	return nil
}
