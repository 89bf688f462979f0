package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	rawmatchmock "github.com/matchsight/matchsight/internal/mocks/domain/rawmatch"
	"github.com/stretchr/testify/mock"
)

func TestSyncService_Run_SaveErrorPropagatesUsingMockery(t *testing.T) {
	t.Parallel()

	store := rawmatchmock.NewStore(t)
	feed := &stubFeed{
		schedule: []ScheduledFixture{scheduleEntry("m1", "2025-08-17Z")},
		docs: map[string]rawmatch.Document{
			"m1": playedDoc("m1", "2025-08-17Z", "Levante", "t1", "Almeria", "t2", 2, 1),
		},
	}
	errSaveFailed := errors.New("save failed")

	store.On("Load", mock.Anything).Return(rawmatch.Corpus{}, false, nil).Once()
	store.On("CachedDocuments", mock.Anything, []string{"m1"}).Return(map[string]rawmatch.Document{}, nil).Once()
	store.On("CacheDocument", mock.Anything, "m1", mock.Anything).Return(nil).Once()
	store.On("SaveCorpus", mock.Anything, mock.Anything).Return(errSaveFailed).Once()

	svc := NewSyncService(feed, store, nil, SyncConfig{Workers: 1}, nil)
	svc.now = func() time.Time { return syncTestNow }

	_, err := svc.Run(context.Background(), SyncOptions{})
	if !errors.Is(err, errSaveFailed) {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestCorpusProvider_LoadsThroughStoreUsingMockery(t *testing.T) {
	t.Parallel()

	store := rawmatchmock.NewStore(t)
	corpus := rawmatch.Corpus{Meta: rawmatch.Meta{TotalMatches: 7}}
	store.On("Load", mock.Anything).Return(corpus, true, nil).Once()

	provider := NewCorpusProvider(store, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := provider.Corpus(context.Background())
		if err != nil {
			t.Fatalf("Corpus error: %v", err)
		}
		if got.Meta.TotalMatches != 7 {
			t.Fatalf("unexpected corpus: %+v", got.Meta)
		}
	}
}
