// package services implements the Spotify Web API client: a resilient request helper and the typed API surface
package services

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL         = "https://api.spotify.com/v1"
	DefaultCacheTTL        = time.Hour
	DefaultRetryAttempts   = 3
	DefaultRetryBase       = 2 * time.Second
	DefaultRetryCap        = 10 * time.Second
	DefaultSearchLimit     = 10
	DefaultListLimit       = 20
	DefaultRecentLimit     = 50
	DefaultGenerateSeeds   = 5
	DefaultRecommendations = 20
)

// RetryPolicy configures how failed requests are retried.
//
// Attempts counts the first try. Waits start at Base, double after each failure and never exceed Cap.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
}

// DefaultRetryPolicy returns three attempts with 2s, 4s waits capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: DefaultRetryAttempts,
		Base:     DefaultRetryBase,
		Cap:      DefaultRetryCap,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.Attempts <= 0 {
		p.Attempts = d.Attempts
	}
	if p.Base <= 0 {
		p.Base = d.Base
	}
	if p.Cap <= 0 {
		p.Cap = d.Cap
	}
	return p
}

// ClientOpts contains configuration options for creating a [SpotifyClient].
//
// A zero CacheTTL selects [DefaultCacheTTL]; a negative CacheTTL disables response caching.
// CacheMaxEntries of 0 leaves the cache unbounded.
type ClientOpts struct {
	BaseURL         string
	Token           *oauth2.Token
	HTTPClient      *http.Client
	CacheTTL        time.Duration
	CacheMaxEntries int
	Retry           RetryPolicy
	Logger          *log.Logger
}
