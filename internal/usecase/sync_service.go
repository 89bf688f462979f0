package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matchsight/matchsight/internal/domain/match"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/platform/resilience"
	"github.com/panjf2000/ants/v2"
)

// MatchFeedProvider is the data-acquisition side of a sync run: the season
// schedule and one raw document per match.
type MatchFeedProvider interface {
	FetchTournamentSchedule(ctx context.Context) ([]ScheduledFixture, error)
	FetchMatchDocument(ctx context.Context, matchID string) (rawmatch.Document, error)
}

// ScheduledFixture is one schedule entry. Date keeps the feed's raw value
// (calendar date, usually with a trailing zone marker).
type ScheduledFixture struct {
	ID       string
	Date     string
	HomeTeam string
	AwayTeam string
}

type SyncConfig struct {
	Competition          string
	Season               string
	TournamentCalendarID string
	// Workers bounds the download pool; FetchDelay is the courtesy pause
	// after each feed fetch.
	Workers    int
	FetchDelay time.Duration
	// StaleAfter is the corpus age beyond which RunIfStale triggers a run.
	StaleAfter time.Duration
}

type SyncOptions struct {
	// Full ignores the stored corpus and redownloads the whole schedule.
	Full bool
	// OnlyPlayed drops fixtures dated after today; fixtures whose date does
	// not parse stay in.
	OnlyPlayed bool
}

type SyncReport struct {
	Outcome       string `json:"outcome"`
	Mode          string `json:"mode"`
	OnlyPlayed    bool   `json:"only_played"`
	ScheduleCount int    `json:"schedule_count"`
	KnownCount    int    `json:"known_count"`
	QueuedCount   int    `json:"queued_count"`
	Downloaded    int    `json:"downloaded"`
	FromCache     int    `json:"from_cache"`
	Errors        int    `json:"errors"`
	TotalMatches  int    `json:"total_matches"`
	WorkerCount   int    `json:"worker_count"`
	DurationMs    int64  `json:"duration_ms"`
}

type SyncStatus struct {
	Exists       bool      `json:"exists"`
	LastUpdate   time.Time `json:"last_update"`
	HoursAgo     float64   `json:"hours_ago"`
	TotalMatches int       `json:"total_matches"`
	DownloadMode string    `json:"download_mode"`
	NeedsUpdate  bool      `json:"needs_update"`
}

const (
	SyncOutcomeSynced = "synced"
	SyncOutcomeFresh  = "fresh"
)

type corpusInvalidator interface {
	Invalidate(ctx context.Context)
}

// SyncService orchestrates corpus acquisition: schedule fetch, incremental
// delta against the stored corpus, pooled match downloads with the per-match
// cache consulted first, and the consolidated snapshot write.
type SyncService struct {
	provider    MatchFeedProvider
	store       rawmatch.Store
	invalidator corpusInvalidator
	cfg         SyncConfig
	logger      *logging.Logger
	now         func() time.Time

	// flight collapses concurrent sync triggers into a single run.
	flight resilience.Flight[SyncReport]
}

func NewSyncService(
	provider MatchFeedProvider,
	store rawmatch.Store,
	invalidator corpusInvalidator,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}

	return &SyncService{
		provider:    provider,
		store:       store,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one sync. Concurrent callers collapse into a single run and
// share its report.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	report, err, _ := s.flight.Do("sync", func() (SyncReport, error) {
		return s.run(ctx, opts)
	})
	return report, err
}

func (s *SyncService) run(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer span.End()

	if s.provider == nil || s.store == nil {
		return SyncReport{}, fmt.Errorf("%w: match feed sync is not fully configured", ErrDependencyUnavailable)
	}

	start := s.now()
	mode := rawmatch.DownloadModeIncremental
	if opts.Full {
		mode = rawmatch.DownloadModeFull
	}

	fixtures, err := s.provider.FetchTournamentSchedule(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("fetch tournament schedule tmcl=%s: %w", s.cfg.TournamentCalendarID, err)
	}
	scheduleCount := len(fixtures)

	today := calendarDay(start)
	if opts.OnlyPlayed {
		fixtures = playedByDate(fixtures, today)
	}

	var existing []rawmatch.Document
	known := map[string]struct{}{}
	if !opts.Full {
		corpus, found, err := s.store.Load(ctx)
		if err != nil {
			return SyncReport{}, fmt.Errorf("load existing corpus: %w", err)
		}
		if found {
			existing = corpus.Documents
			if known, err = s.store.KnownIDs(ctx); err != nil {
				return SyncReport{}, fmt.Errorf("list known match ids: %w", err)
			}
		}
	}

	queued := make([]ScheduledFixture, 0, len(fixtures))
	for _, fx := range fixtures {
		if _, ok := known[fx.ID]; ok {
			continue
		}
		queued = append(queued, fx)
	}

	s.logger.InfoContext(ctx, "corpus sync started",
		"mode", mode,
		"only_played", opts.OnlyPlayed,
		"schedule_count", scheduleCount,
		"known_count", len(known),
		"queued_count", len(queued),
	)

	docs := make([]rawmatch.Document, len(queued))
	fetched := make([]bool, len(queued))
	fromCache := 0

	ids := make([]string, 0, len(queued))
	for _, fx := range queued {
		ids = append(ids, fx.ID)
	}
	cached, err := s.store.CachedDocuments(ctx, ids)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read match cache: %w", err)
	}
	for i, fx := range queued {
		if doc, ok := cached[fx.ID]; ok {
			docs[i] = doc
			fetched[i] = true
			fromCache++
		}
	}

	var downloaded atomic.Int32
	var fetchErrors atomic.Int32

	workerCount := normalizeSyncWorkerCount(s.cfg.Workers, len(queued)-fromCache)
	if len(queued) > fromCache {
		pool, err := ants.NewPool(workerCount)
		if err != nil {
			return SyncReport{}, fmt.Errorf("create download pool: %w", err)
		}
		defer pool.Release()

		var workers sync.WaitGroup
		for i := range queued {
			if fetched[i] {
				continue
			}
			i := i
			fx := queued[i]
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				doc, err := s.fetchAndCache(ctx, fx.ID)
				if err != nil {
					fetchErrors.Add(1)
					s.logger.WarnContext(ctx, "match download failed",
						"match_id", fx.ID,
						"home", fx.HomeTeam,
						"away", fx.AwayTeam,
						"error", err,
					)
					return
				}
				docs[i] = doc
				fetched[i] = true
				downloaded.Add(1)
			}); err != nil {
				workers.Done()
				return SyncReport{}, fmt.Errorf("submit download to worker pool: %w", err)
			}
		}
		workers.Wait()
	}

	consolidated := make([]rawmatch.Document, 0, len(existing)+len(queued))
	consolidated = append(consolidated, existing...)
	for i := range queued {
		if fetched[i] {
			consolidated = append(consolidated, docs[i])
		}
	}

	meta := rawmatch.Meta{
		Competition:          s.cfg.Competition,
		Season:               s.cfg.Season,
		TournamentCalendarID: s.cfg.TournamentCalendarID,
		LastUpdate:           s.now(),
		DownloadMode:         mode,
		TotalMatches:         len(consolidated),
		NewDownloads:         int(downloaded.Load()),
		Errors:               int(fetchErrors.Load()),
		FromCache:            fromCache,
		OnlyPlayed:           opts.OnlyPlayed,
	}
	if opts.OnlyPlayed {
		meta.FilterDate = today.Format(match.DateLayout)
	}

	if err := s.store.SaveCorpus(ctx, rawmatch.Corpus{Meta: meta, Documents: consolidated}); err != nil {
		return SyncReport{}, fmt.Errorf("save consolidated corpus: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	report := SyncReport{
		Outcome:       SyncOutcomeSynced,
		Mode:          mode,
		OnlyPlayed:    opts.OnlyPlayed,
		ScheduleCount: scheduleCount,
		KnownCount:    len(known),
		QueuedCount:   len(queued),
		Downloaded:    meta.NewDownloads,
		FromCache:     fromCache,
		Errors:        meta.Errors,
		TotalMatches:  meta.TotalMatches,
		WorkerCount:   workerCount,
		DurationMs:    s.now().Sub(start).Milliseconds(),
	}

	s.logger.InfoContext(ctx, "corpus sync finished",
		"mode", report.Mode,
		"downloaded", report.Downloaded,
		"from_cache", report.FromCache,
		"errors", report.Errors,
		"total_matches", report.TotalMatches,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

// fetchAndCache downloads one match document, writes it to the per-match
// cache and applies the courtesy delay.
func (s *SyncService) fetchAndCache(ctx context.Context, matchID string) (rawmatch.Document, error) {
	doc, err := s.provider.FetchMatchDocument(ctx, matchID)
	if err != nil {
		return rawmatch.Document{}, fmt.Errorf("fetch match document: %w", err)
	}
	if err := s.store.CacheDocument(ctx, matchID, doc); err != nil {
		return rawmatch.Document{}, fmt.Errorf("cache match document: %w", err)
	}
	sleepWithContext(ctx, s.cfg.FetchDelay)
	return doc, nil
}

// Status reports the stored corpus age. A store without a corpus needs an
// update by definition.
func (s *SyncService) Status(ctx context.Context) (SyncStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Status")
	defer span.End()

	corpus, found, err := s.store.Load(ctx)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("load corpus: %w", err)
	}
	if !found {
		return SyncStatus{NeedsUpdate: true}, nil
	}

	status := SyncStatus{
		Exists:       true,
		LastUpdate:   corpus.Meta.LastUpdate,
		TotalMatches: corpus.Meta.TotalMatches,
		DownloadMode: corpus.Meta.DownloadMode,
		NeedsUpdate:  true,
	}
	if !corpus.Meta.LastUpdate.IsZero() {
		age := s.now().Sub(corpus.Meta.LastUpdate)
		status.HoursAgo = age.Hours()
		status.NeedsUpdate = age >= s.cfg.StaleAfter
	}
	return status, nil
}

// RunIfStale runs an incremental, played-only sync when the corpus is
// missing or older than StaleAfter. force skips the staleness check. A
// status read failure does not block the run; the run surfaces the real
// store error if there is one.
func (s *SyncService) RunIfStale(ctx context.Context, force bool) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RunIfStale")
	defer span.End()

	if !force {
		status, err := s.Status(ctx)
		if err == nil && !status.NeedsUpdate {
			return SyncReport{
				Outcome:      SyncOutcomeFresh,
				Mode:         status.DownloadMode,
				TotalMatches: status.TotalMatches,
			}, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "corpus status check failed, attempting sync", "error", err)
		}
	}

	return s.Run(ctx, SyncOptions{OnlyPlayed: true})
}

// playedByDate keeps fixtures dated today or earlier. Dates that do not
// parse stay in: a malformed schedule date is not grounds for skipping the
// match.
func playedByDate(fixtures []ScheduledFixture, today time.Time) []ScheduledFixture {
	kept := make([]ScheduledFixture, 0, len(fixtures))
	for _, fx := range fixtures {
		if day, ok := match.ParseDate(fx.Date); ok && day.After(today) {
			continue
		}
		kept = append(kept, fx)
	}
	return kept
}

func calendarDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func normalizeSyncWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 2
	}
	if value > 4 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
