package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/platform/resilience"
	"github.com/matchsight/matchsight/internal/usecase"
)

const (
	testOutletKey = "outlet-key-1"
	testSecretKey = "secret-key-1"
)

func newTestClient(srv *httptest.Server, maxRetries int, breaker resilience.BreakerConfig) *Client {
	client := NewClient(ClientConfig{
		BaseURL:              srv.URL,
		OAuthURL:             srv.URL + "/oauth/token",
		OutletKey:            testOutletKey,
		SecretKey:            testSecretKey,
		TournamentCalendarID: "tmcl-1",
		Timeout:              5 * time.Second,
		MaxRetries:           maxRetries,
		Logger:               logging.NewNop(),
		CircuitBreaker:       breaker,
	})
	client.retryDelay = func(int) time.Duration { return 0 }
	client.tokens.retryWait = func(int) time.Duration { return 0 }
	return client
}

func writeToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()

	if r.Method != http.MethodPost {
		t.Errorf("unexpected token method: %s", r.Method)
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
		t.Errorf("token request missing basic digest: %q", r.Header.Get("Authorization"))
	}
	if r.Header.Get("Timestamp") == "" {
		t.Errorf("token request missing timestamp header")
	}
	if got := r.PostFormValue("grant_type"); got != "client_credentials" {
		t.Errorf("unexpected grant_type: %s", got)
	}
	if got := r.PostFormValue("scope"); got != "b2b-feeds-auth" {
		t.Errorf("unexpected scope: %s", got)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"access_token":"tok-1"}`))
}

func TestClient_FetchTournamentSchedule_MapsFixtures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}

		if r.URL.Path != "/soccerdata/tournamentschedule/"+testOutletKey {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		query := r.URL.Query()
		if query.Get("tmcl") != "tmcl-1" || query.Get("_fmt") != "json" || query.Get("_rt") != "b" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matchDate": [
				{
					"date": "2025-08-17Z",
					"match": [
						{"id": "m1", "homeContestantName": "Levante", "awayContestantName": "Almeria"},
						{"id": "m2", "homeContestantName": "Racing", "awayContestantName": "Mirandes"}
					]
				},
				{
					"date": "2025-08-24Z",
					"match": {"id": "m3", "homeContestantName": "Almeria", "awayContestantName": "Racing"}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.BreakerConfig{Enabled: false})

	fixtures, err := client.FetchTournamentSchedule(context.Background())
	if err != nil {
		t.Fatalf("fetch schedule failed: %v", err)
	}
	if len(fixtures) != 3 {
		t.Fatalf("expected 3 fixtures, got %d", len(fixtures))
	}
	if fixtures[0].ID != "m1" || fixtures[0].Date != "2025-08-17Z" || fixtures[0].HomeTeam != "Levante" {
		t.Fatalf("unexpected first fixture: %+v", fixtures[0])
	}
	if fixtures[2].ID != "m3" || fixtures[2].Date != "2025-08-24Z" || fixtures[2].AwayTeam != "Racing" {
		t.Fatalf("unexpected single-object fixture: %+v", fixtures[2])
	}
}

func TestClient_FetchMatchDocument_ParsesDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}

		if r.URL.Path != "/soccerdata/matchstats/"+testOutletKey {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fx"); got != "m1" {
			t.Errorf("unexpected fx param: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matchInfo": {
				"id": "m1",
				"date": "2025-08-17Z",
				"contestant": [
					{"id": "t1", "name": "Levante", "position": "home"},
					{"id": "t2", "name": "Almeria", "position": "away"}
				]
			},
			"liveData": {
				"matchDetails": {"matchStatus": "Played", "scores": {"total": {"home": 2, "away": 1}}},
				"goal": {"contestantId": "t1", "periodId": 1, "timeMin": 10}
			}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.BreakerConfig{Enabled: false})

	doc, err := client.FetchMatchDocument(context.Background(), "m1")
	if err != nil {
		t.Fatalf("fetch match document failed: %v", err)
	}
	if doc.MatchID() != "m1" {
		t.Fatalf("unexpected match id: %s", doc.MatchID())
	}
	if len(doc.MatchInfo.Contestants) != 2 || doc.MatchInfo.Contestants[1].Name != "Almeria" {
		t.Fatalf("unexpected contestants: %+v", doc.MatchInfo.Contestants)
	}
	if len(doc.LiveData.Goals) != 1 || doc.LiveData.Goals[0].TimeMin != 10 {
		t.Fatalf("unexpected goals: %+v", doc.LiveData.Goals)
	}
	if doc.LiveData.MatchDetails.Scores.Total.Home != 2 {
		t.Fatalf("unexpected score: %+v", doc.LiveData.MatchDetails.Scores)
	}
}

func TestClient_ReusesOAuthToken(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			tokenCalls.Add(1)
			writeToken(t, w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matchInfo": {"id": "m1"}, "liveData": {}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.BreakerConfig{Enabled: false})

	for i := 0; i < 3; i++ {
		if _, err := client.FetchMatchDocument(context.Background(), "m1"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}

	if tokenCalls.Load() != 1 {
		t.Fatalf("expected one token request, got %d", tokenCalls.Load())
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var feedCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}
		if feedCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matchInfo": {"id": "m1"}, "liveData": {}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 2, resilience.BreakerConfig{Enabled: false})

	doc, err := client.FetchMatchDocument(context.Background(), "m1")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if doc.MatchID() != "m1" {
		t.Fatalf("unexpected match id: %s", doc.MatchID())
	}
	if feedCalls.Load() != 2 {
		t.Fatalf("expected 2 feed attempts, got %d", feedCalls.Load())
	}
}

func TestClient_ClientErrorFailsFast(t *testing.T) {
	t.Parallel()

	var feedCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}
		feedCalls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown fixture"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 3, resilience.BreakerConfig{Enabled: false})

	_, err := client.FetchMatchDocument(context.Background(), "m404")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "status=404") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if feedCalls.Load() != 1 {
		t.Fatalf("expected no retries on client error, got %d attempts", feedCalls.Load())
	}
}

func TestClient_ErrorCodePayloadFails(t *testing.T) {
	t.Parallel()

	var feedCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}
		feedCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errorCode": 10421, "message": "fixture not authorized"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 2, resilience.BreakerConfig{Enabled: false})

	_, err := client.FetchMatchDocument(context.Background(), "m1")
	if err == nil {
		t.Fatal("expected error for errorCode payload")
	}
	if !strings.Contains(err.Error(), "code=10421") {
		t.Fatalf("expected provider error code, got %v", err)
	}
	if feedCalls.Load() != 1 {
		t.Fatalf("expected single attempt for errorCode payload, got %d", feedCalls.Load())
	}
}

func TestClient_BreakerRejectsAfterFailures(t *testing.T) {
	t.Parallel()

	var feedCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/oauth/token/") {
			writeToken(t, w, r)
			return
		}
		feedCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.BreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		Cooldown:         time.Minute,
		ProbeLimit:       1,
	})

	if _, err := client.FetchMatchDocument(context.Background(), "m1"); err == nil {
		t.Fatal("expected first call to fail")
	}

	_, err := client.FetchMatchDocument(context.Background(), "m1")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open breaker, got %v", err)
	}
	if feedCalls.Load() != 1 {
		t.Fatalf("expected breaker to stop second request, got %d attempts", feedCalls.Load())
	}
}

func TestRedactFeedURL_HidesOutletKey(t *testing.T) {
	t.Parallel()

	raw := "https://api.performfeeds.com/soccerdata/matchstats/" + testOutletKey + "?_fmt=json&fx=m1"
	got := redactFeedURL(raw, testOutletKey)
	if strings.Contains(got, testOutletKey) {
		t.Fatalf("outlet key leaked: %s", got)
	}
	if !strings.Contains(got, "REDACTED") {
		t.Fatalf("expected redaction marker: %s", got)
	}
}

func TestSanitizeSensitiveText_ReplacesSecrets(t *testing.T) {
	t.Parallel()

	text := "dial failed for " + testOutletKey + " with secret " + testSecretKey
	got := sanitizeSensitiveText(text, testOutletKey, testSecretKey)
	if strings.Contains(got, testOutletKey) || strings.Contains(got, testSecretKey) {
		t.Fatalf("secret leaked: %s", got)
	}
}
