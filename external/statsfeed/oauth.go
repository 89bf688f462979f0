package statsfeed

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	oauthGrantType   = "client_credentials"
	oauthScope       = "b2b-feeds-auth"
	tokenMaxAttempts = 3

	// The provider issues 60 second tokens; refresh with a margin.
	tokenLifetime = 55 * time.Second
)

// tokenSource caches the short-lived OAuth bearer token and refreshes it on
// expiry. The token endpoint authenticates with a SHA-512 digest of
// outletKey+timestamp+secretKey sent as a Basic authorization value.
type tokenSource struct {
	httpClient *fasthttp.Client
	oauthURL   string
	outletKey  string
	secretKey  string
	timeout    time.Duration
	logger     *logging.Logger
	retryWait  func(attempt int) time.Duration

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func newTokenSource(httpClient *fasthttp.Client, oauthURL, outletKey, secretKey string, timeout time.Duration, logger *logging.Logger) *tokenSource {
	return &tokenSource{
		httpClient: httpClient,
		oauthURL:   oauthURL,
		outletKey:  outletKey,
		secretKey:  secretKey,
		timeout:    timeout,
		logger:     logger,
		retryWait: func(attempt int) time.Duration {
			return time.Duration(attempt) * 2 * time.Second
		},
		now: time.Now,
	}
}

// Token returns a valid bearer token, reusing the cached one until it nears
// expiry. Refreshes are serialized so concurrent fetches cannot stampede the
// token endpoint.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.now().Before(t.expiresAt) {
		return t.accessToken, nil
	}
	if t.outletKey == "" || t.secretKey == "" {
		return "", fmt.Errorf("outlet key and secret key are required")
	}

	var lastErr error
	for attempt := 1; attempt <= tokenMaxAttempts; attempt++ {
		token, err := t.request(ctx)
		if err == nil {
			t.accessToken = token
			t.expiresAt = t.now().Add(tokenLifetime)
			return token, nil
		}
		lastErr = err
		t.logger.WarnContext(ctx, "oauth token request failed", "attempt", attempt, "error", err)

		if attempt == tokenMaxAttempts {
			break
		}
		timer := time.NewTimer(t.retryWait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}

func (t *tokenSource) request(ctx context.Context) (string, error) {
	digest, millis := requestSignature(t.outletKey, t.secretKey, t.now())

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	body.WriteString("grant_type=")
	body.WriteString(oauthGrantType)
	body.WriteString("&scope=")
	body.WriteString(oauthScope)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.oauthURL + "/" + t.outletKey + "?_fmt=json&_rt=b")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set(fasthttp.HeaderAuthorization, "Basic "+digest)
	req.Header.Set("Timestamp", strconv.FormatInt(millis, 10))
	req.SetBody(body.B)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(t.timeout)
	}
	if err := t.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("send token request: %s", sanitizeSensitiveText(err.Error(), t.outletKey, t.secretKey))
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return "", fmt.Errorf("token endpoint status=%d body=%s", status, sanitizeSensitiveText(abbreviateBody(resp.Body()), t.outletKey, t.secretKey))
	}

	var payload oauthTokenResponse
	if err := sonic.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response has no access token")
	}
	return payload.AccessToken, nil
}

func requestSignature(outletKey, secretKey string, at time.Time) (string, int64) {
	millis := at.UnixMilli()
	sum := sha512.Sum512([]byte(outletKey + strconv.FormatInt(millis, 10) + secretKey))
	return hex.EncodeToString(sum[:]), millis
}

type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
}
