package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/cache"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
)

// Requester performs authenticated Web API requests with response caching and retries.
//
// It is safe for concurrent use.
type Requester struct {
	baseURL    string
	token      *oauth2.Token
	httpClient *http.Client
	cache      *cache.Memory[[]byte]
	retry      RetryPolicy
	logger     *log.Logger
}

// NewRequester builds a [Requester] from opts, filling unset fields with defaults.
func NewRequester(opts ClientOpts) (*Requester, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	r := &Requester{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		retry:      opts.Retry.withDefaults(),
		logger:     opts.Logger,
	}

	if opts.CacheMaxEntries < 0 {
		return nil, fmt.Errorf("%w: cache max entries must not be negative, got %d", shared.ErrInvalidConfig, opts.CacheMaxEntries)
	}
	if opts.CacheTTL > 0 {
		c, err := cache.NewMemory[[]byte](opts.CacheTTL, opts.CacheMaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
		r.cache = c
	}

	return r, nil
}

// Do sends method to endpoint (relative to the base URL) with params in the query string and
// body encoded as JSON, and returns the raw response body. Empty responses return nil.
func (r *Requester) Do(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	if r.token == nil || r.token.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	endpointURL := r.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	requestURL := cache.Key(endpointURL, compact(params))
	cacheable := method == http.MethodGet && r.cache != nil

	if cacheable {
		if data, ok, _ := r.cache.Get(ctx, requestURL); ok {
			r.logger.Debug("cache hit", "url", requestURL)
			return data, nil
		}
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var (
		result   []byte
		lastErr  error
		attempts int
	)
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempts++
		data, err := r.send(ctx, method, requestURL, payload)
		if err != nil {
			lastErr = err
			r.logger.Debug("request attempt failed", "method", method, "url", endpointURL, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		result = data
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("request failed", "method", method, "url", endpointURL, "attempts", attempts, "error", lastErr)
		return nil, &shared.RequestFailedError{Method: method, URL: endpointURL, Attempts: attempts, Err: lastErr}
	}

	if cacheable {
		_ = r.cache.Set(ctx, requestURL, result)
	}
	return result, nil
}

// backoff returns a fresh backoff sequence; sequences are stateful and must not be shared between calls.
func (r *Requester) backoff() retry.Backoff {
	b := retry.NewExponential(r.retry.Base)
	b = retry.WithCappedDuration(r.retry.Cap, b)
	return retry.WithMaxRetries(uint64(r.retry.Attempts-1), b)
}

// send performs a single HTTP exchange.
func (r *Requester) send(ctx context.Context, method, requestURL string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// compact drops parameters without a non-empty value.
func compact(params url.Values) url.Values {
	if len(params) == 0 {
		return nil
	}
	out := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				out.Add(k, v)
			}
		}
	}
	return out
}
