package statsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/matchsight/matchsight/internal/domain/rawmatch"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/platform/resilience"
	"github.com/matchsight/matchsight/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL   = "https://api.performfeeds.com"
	defaultOAuthURL  = "https://oauth.performgroup.com/oauth/token"
	defaultSport     = "soccer"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 6 << 20

	feedTournamentSchedule = "tournamentschedule"
	feedMatchStats         = "matchstats"

	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = 60 * time.Second
)

var errStatsFeedTransient = crerr.New("stats feed transient failure")

type ClientConfig struct {
	HTTPClient           *fasthttp.Client
	BaseURL              string
	OAuthURL             string
	OutletKey            string
	SecretKey            string
	TournamentCalendarID string
	Sport                string
	Timeout              time.Duration
	MaxRetries           int
	Logger               *logging.Logger
	CircuitBreaker       resilience.BreakerConfig
}

// Client talks to the Stats Perform SDAPI feeds. All calls are read-only
// GETs authenticated with a short-lived OAuth bearer token.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	sport          string
	outletKey      string
	tmclID         string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	flight         resilience.Flight[[]byte]
	tokens         *tokenSource
	retryDelay     func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "matchsight/1.0",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	oauthURL := strings.TrimRight(strings.TrimSpace(cfg.OAuthURL), "/")
	if oauthURL == "" {
		oauthURL = defaultOAuthURL
	}
	sport := strings.ToLower(strings.TrimSpace(cfg.Sport))
	if sport == "" {
		sport = defaultSport
	}
	outletKey := strings.TrimSpace(cfg.OutletKey)
	breakerCfg := resilience.NormalizeBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		sport:          sport,
		outletKey:      outletKey,
		tmclID:         strings.TrimSpace(cfg.TournamentCalendarID),
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		tokens:         newTokenSource(httpClient, oauthURL, outletKey, strings.TrimSpace(cfg.SecretKey), timeout, logger),
		retryDelay:     retryDelay,
	}
}

// FetchTournamentSchedule pulls the MA0 feed for the configured tournament
// calendar and flattens its per-day match lists into scheduled fixtures.
func (c *Client) FetchTournamentSchedule(ctx context.Context) ([]usecase.ScheduledFixture, error) {
	if c.tmclID == "" {
		return nil, fmt.Errorf("tournament calendar id is required")
	}

	params := url.Values{}
	params.Set("tmcl", c.tmclID)

	var envelope tournamentScheduleEnvelope
	if err := c.doFeed(ctx, feedTournamentSchedule, params, &envelope); err != nil {
		return nil, fmt.Errorf("tournament schedule feed tmcl=%s: %w", c.tmclID, err)
	}

	fixtures := make([]usecase.ScheduledFixture, 0, 64)
	for _, day := range envelope.MatchDates {
		for _, item := range day.Matches {
			id := strings.TrimSpace(item.ID)
			if id == "" {
				continue
			}
			fixtures = append(fixtures, usecase.ScheduledFixture{
				ID:       id,
				Date:     strings.TrimSpace(day.Date),
				HomeTeam: strings.TrimSpace(item.HomeContestantName),
				AwayTeam: strings.TrimSpace(item.AwayContestantName),
			})
		}
	}
	return fixtures, nil
}

// FetchMatchDocument pulls the matchstats feed for a single fixture.
func (c *Client) FetchMatchDocument(ctx context.Context, matchID string) (rawmatch.Document, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return rawmatch.Document{}, fmt.Errorf("match id is required")
	}

	params := url.Values{}
	params.Set("fx", matchID)

	var doc rawmatch.Document
	if err := c.doFeed(ctx, feedMatchStats, params, &doc); err != nil {
		return rawmatch.Document{}, fmt.Errorf("match stats feed fx=%s: %w", matchID, err)
	}
	if doc.MatchID() == "" {
		return rawmatch.Document{}, fmt.Errorf("match stats feed fx=%s: document has no match id", matchID)
	}
	return doc, nil
}

func (c *Client) doFeed(ctx context.Context, feed string, params url.Values, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "feed", feed, "state", c.breaker.State())
			return fmt.Errorf("%w: stats feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.buildFeedURL(feed, params)

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isStatsFeedCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	// Some feed errors arrive as HTTP 200 with an errorCode payload.
	var probe feedErrorEnvelope
	if decodeErr := sonic.Unmarshal(raw, &probe); decodeErr == nil && probe.ErrorCode != 0 {
		return fmt.Errorf("provider error code=%d message=%s", probe.ErrorCode, probe.Message)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) buildFeedURL(feed string, params url.Values) string {
	values := url.Values{}
	for key := range params {
		values.Set(key, params.Get(key))
	}
	values.Set("_fmt", "json")
	values.Set("_rt", "b")

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(c.baseURL)
	buf.WriteString("/")
	buf.WriteString(c.sport)
	buf.WriteString("data/")
	buf.WriteString(feed)
	buf.WriteString("/")
	buf.WriteString(c.outletKey)
	buf.WriteString("?")
	buf.WriteString(values.Encode())
	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain oauth token: %w", err)
		}

		raw, err := c.sendRequest(ctx, fullURL, token)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isStatsFeedCircuitFailure(err) {
			c.logger.WarnContext(ctx, "stats feed request rejected", "url", redactFeedURL(fullURL, c.outletKey), "error", err)
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "stats feed request failed", "url", redactFeedURL(fullURL, c.outletKey), "error", lastErr)
	return nil, lastErr
}

func (c *Client) sendRequest(ctx context.Context, fullURL, token string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errStatsFeedTransient, sanitizeSensitiveText(err.Error(), c.outletKey, c.tokens.secretKey))
	}

	status := resp.StatusCode()
	raw := append([]byte(nil), resp.Body()...)
	if status >= 200 && status < 300 {
		return raw, nil
	}
	if isRetryableStatus(status) {
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errStatsFeedTransient, status, abbreviateBody(raw))
	}
	return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(raw))
}

func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay << attempt
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

func isStatsFeedCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errStatsFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func redactFeedURL(rawURL, outletKey string) string {
	if outletKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, outletKey, "REDACTED")
}

func sanitizeSensitiveText(value string, secrets ...string) string {
	value = strings.TrimSpace(value)
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

// MA0 tournament schedule payload. Single-match days arrive as a bare
// object, so the list fields go through rawmatch.List.
type tournamentScheduleEnvelope struct {
	MatchDates rawmatch.List[scheduleMatchDate] `json:"matchDate"`
}

type scheduleMatchDate struct {
	Date    string                          `json:"date"`
	Matches rawmatch.List[scheduleMatchRef] `json:"match"`
}

type scheduleMatchRef struct {
	ID                 string `json:"id"`
	HomeContestantName string `json:"homeContestantName"`
	AwayContestantName string `json:"awayContestantName"`
}

type feedErrorEnvelope struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}
