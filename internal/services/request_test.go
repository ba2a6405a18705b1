package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/shared"
	tu "github.com/desertthunder/spotylog/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, Base: time.Millisecond, Cap: 5 * time.Millisecond}
}

func newTestRequester(t *testing.T, rt http.RoundTripper, ttl time.Duration) *Requester {
	t.Helper()
	r, err := NewRequester(ClientOpts{
		BaseURL:    "https://api.test/v1",
		Token:      &oauth2.Token{AccessToken: "test-token"},
		HTTPClient: &http.Client{Transport: rt},
		CacheTTL:   ttl,
		Retry:      fastRetry(),
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)
	return r
}

func TestNewRequester_RejectsNegativeCacheBound(t *testing.T) {
	for _, ttl := range []time.Duration{time.Minute, -1} {
		r, err := NewRequester(ClientOpts{
			Token:           &oauth2.Token{AccessToken: "x"},
			CacheTTL:        ttl,
			CacheMaxEntries: -1,
			Logger:          log.New(io.Discard),
		})
		require.ErrorIs(t, err, shared.ErrInvalidConfig)
		assert.Nil(t, r)
	}

	client, err := NewSpotifyClient(ClientOpts{
		Token:           &oauth2.Token{AccessToken: "x"},
		CacheMaxEntries: -1,
		Logger:          log.New(io.Discard),
	})
	require.ErrorIs(t, err, shared.ErrInvalidConfig)
	assert.Nil(t, client)
}

func TestRequesterDo_SetsHeadersAndQuery(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 200, Body: `{"ok":true}`})
	r := newTestRequester(t, rt, -1)

	params := url.Values{}
	params.Set("q", "Imagine Dragons")
	params.Set("type", "track")
	params.Set("market", "")

	data, err := r.Do(context.Background(), http.MethodGet, "search", params, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	req, _ := rt.Request(0)
	assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "/v1/search", req.URL.Path)
	assert.Equal(t, "Imagine Dragons", req.URL.Query().Get("q"))
	assert.False(t, req.URL.Query().Has("market"), "empty parameters must not be sent")
}

func TestRequesterDo_EncodesBody(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 201, Body: `{"snapshot_id":"s1"}`})
	r := newTestRequester(t, rt, -1)

	_, err := r.Do(context.Background(), http.MethodPost, "playlists/p1/tracks", nil, map[string]any{"uris": []string{"spotify:track:1"}})
	require.NoError(t, err)

	req, body := rt.Request(0)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"uris":["spotify:track:1"]}`, body)
}

func TestRequesterDo_EmptyBody(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 204})
	r := newTestRequester(t, rt, -1)

	data, err := r.Do(context.Background(), http.MethodPut, "me/player/pause", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRequesterDo_RequiresToken(t *testing.T) {
	r, err := NewRequester(ClientOpts{Logger: log.New(io.Discard)})
	require.NoError(t, err)

	_, err = r.Do(context.Background(), http.MethodGet, "me", nil, nil)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestRequesterDo_RetriesThenSucceeds(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(
		tu.StubResponse{Err: errors.New("connection reset")},
		tu.StubResponse{Status: 503, Body: `{"error":"unavailable"}`},
		tu.StubResponse{Status: 200, Body: `{"id":"me"}`},
	)
	r := newTestRequester(t, rt, -1)

	data, err := r.Do(context.Background(), http.MethodGet, "me", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"me"}`, string(data))
	assert.Equal(t, 3, rt.Calls())
}

func TestRequesterDo_ExhaustsRetries(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 500, Body: "boom"})
	r := newTestRequester(t, rt, -1)

	_, err := r.Do(context.Background(), http.MethodGet, "me", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, rt.Calls())

	var failed *shared.RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, http.MethodGet, failed.Method)
	assert.Equal(t, "https://api.test/v1/me", failed.URL)

	var apiErr *shared.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestRequesterDo_RetriesMutations(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(
		tu.StubResponse{Status: 502},
		tu.StubResponse{Status: 200, Body: `{"snapshot_id":"s2"}`},
	)
	r := newTestRequester(t, rt, time.Minute)

	_, err := r.Do(context.Background(), http.MethodPost, "playlists/p1/tracks", nil, map[string]any{"uris": []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Calls())

	_, body := rt.Request(1)
	assert.JSONEq(t, `{"uris":["a"]}`, body, "body must be resent on retry")
}

func TestRequesterDo_ContextCancelled(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 500})
	r, err := NewRequester(ClientOpts{
		BaseURL:    "https://api.test/v1",
		Token:      &oauth2.Token{AccessToken: "t"},
		HTTPClient: &http.Client{Transport: rt},
		Retry:      RetryPolicy{Attempts: 3, Base: time.Hour, Cap: time.Hour},
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = r.Do(ctx, http.MethodGet, "me", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, rt.Calls())
}

func TestRequesterDo_CachesGET(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 200, Body: `{"tracks":{"items":[]}}`})
	r := newTestRequester(t, rt, time.Minute)
	ctx := context.Background()

	a := url.Values{"q": {"Believer"}, "type": {"track"}}
	b := url.Values{"type": {"track"}, "q": {"Believer"}}

	first, err := r.Do(ctx, http.MethodGet, "search", a, nil)
	require.NoError(t, err)
	second, err := r.Do(ctx, http.MethodGet, "search", b, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, rt.Calls(), "identical GETs within the TTL should hit the network once")
	assert.Equal(t, first, second)
}

func TestRequesterDo_CacheExpires(t *testing.T) {
	rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 200, Body: `{"id":"me"}`})
	r := newTestRequester(t, rt, 100*time.Millisecond)
	ctx := context.Background()

	_, err := r.Do(ctx, http.MethodGet, "me", nil, nil)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	_, err = r.Do(ctx, http.MethodGet, "me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Calls())
}

func TestRequesterDo_DoesNotCacheFailuresOrMutations(t *testing.T) {
	t.Run("failures", func(t *testing.T) {
		rt := tu.NewSequenceRoundTripper(
			tu.StubResponse{Status: 404, Body: "missing"},
			tu.StubResponse{Status: 404, Body: "missing"},
			tu.StubResponse{Status: 404, Body: "missing"},
			tu.StubResponse{Status: 200, Body: `{"id":"t1"}`},
		)
		r := newTestRequester(t, rt, time.Minute)

		_, err := r.Do(context.Background(), http.MethodGet, "tracks/t1", nil, nil)
		require.Error(t, err)

		data, err := r.Do(context.Background(), http.MethodGet, "tracks/t1", nil, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"t1"}`, string(data))
		assert.Equal(t, 4, rt.Calls())
	})

	t.Run("mutations", func(t *testing.T) {
		rt := tu.NewSequenceRoundTripper(tu.StubResponse{Status: 200, Body: `{}`})
		r := newTestRequester(t, rt, time.Minute)

		for range 2 {
			_, err := r.Do(context.Background(), http.MethodPut, "me/tracks", nil, map[string]any{"ids": []string{"a"}})
			require.NoError(t, err)
		}
		assert.Equal(t, 2, rt.Calls())
	})
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	assert.Equal(t, DefaultRetryPolicy(), p)

	r := newTestRequester(t, tu.NewSequenceRoundTripper(tu.StubResponse{Status: 200}), -1)
	b := r.backoff()

	var waits []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			break
		}
		waits = append(waits, d)
	}
	assert.Len(t, waits, 2, "three attempts leave two waits")
}
