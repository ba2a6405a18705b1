// Package auth obtains a user access token through the OAuth2 authorization-code flow
// with a one-shot loopback redirect listener.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/server"
	"github.com/desertthunder/spotylog/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	DefaultRedirectURI = "http://localhost:8080/callback"
	DefaultTimeout     = 2 * time.Minute
	shutdownTimeout    = 5 * time.Second
)

// DefaultScopes covers every operation of the API client.
var DefaultScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserTopRead,
}

// Options configures an [Acquirer].
//
// A zero Timeout waits for the redirect until ctx is done.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	Timeout      time.Duration
	OpenBrowser  shared.BrowserOpener
	HTTPClient   *http.Client
	Output       io.Writer
	Logger       *log.Logger
}

// Acquirer runs the authorization-code flow and returns an access token.
type Acquirer struct {
	config     *oauth2.Config
	redirect   *url.URL
	timeout    time.Duration
	open       shared.BrowserOpener
	httpClient *http.Client
	output     io.Writer
	logger     *log.Logger
}

// New validates opts and creates an [Acquirer].
func New(opts Options) (*Acquirer, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	if opts.RedirectURI == "" {
		opts.RedirectURI = DefaultRedirectURI
	}
	redirect, err := url.Parse(opts.RedirectURI)
	if err != nil || redirect.Scheme != "http" || redirect.Host == "" {
		return nil, fmt.Errorf("%w: redirect URI %q must be an http loopback URL", shared.ErrInvalidConfig, opts.RedirectURI)
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = DefaultScopes
	}
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyauth.AuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyauth.TokenURL
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Acquirer{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  opts.AuthURL,
				TokenURL: opts.TokenURL,
			},
		},
		redirect:   redirect,
		timeout:    opts.Timeout,
		open:       opts.OpenBrowser,
		httpClient: opts.HTTPClient,
		output:     opts.Output,
		logger:     opts.Logger,
	}, nil
}

// AuthorizationURL returns the provider URL the user visits to grant access.
func (a *Acquirer) AuthorizationURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Addr is the host:port the redirect listener binds, taken from the redirect URI.
func (a *Acquirer) Addr() string {
	if a.redirect.Port() == "" {
		return net.JoinHostPort(a.redirect.Hostname(), "80")
	}
	return a.redirect.Host
}

// AccessToken binds the redirect listener, sends the user to the authorization URL and
// exchanges the code delivered to the first redirect for a token.
//
// The listener serves one callback and is shut down before the exchange.
func (a *Acquirer) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", a.Addr())
	if errors.Is(err, syscall.EADDRINUSE) {
		return nil, &shared.PortInUseError{Addr: a.Addr(), Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to bind redirect listener on %s: %w", a.Addr(), err)
	}

	handler := server.NewCallbackHandler(a.redirect.Path)
	router := server.NewBasicRouter()
	router.Use(server.Logging(a.logger))
	router.Handler(handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(func() { a.shutdown(srv) }) }
	defer stop()

	state := shared.GenerateState()
	authURL := a.AuthorizationURL(state)
	fmt.Fprintf(a.output, "Open the following URL to authorize spotylog:\n\n%s\n\n", authURL)
	if err := a.open(authURL); err != nil {
		a.logger.Warn("could not open browser, visit the URL manually", "error", err)
	}

	var timeout <-chan time.Time
	if a.timeout > 0 {
		timer := time.NewTimer(a.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	a.logger.Info("waiting for authorization", "addr", a.Addr(), "path", a.redirect.Path)

	var callback *url.URL
	select {
	case callback = <-handler.Result():
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-timeout:
		return nil, &shared.AuthorizationTimeoutError{After: a.timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	stop()
	return a.Exchange(ctx, callback, state)
}

// Exchange validates a captured redirect against state and trades its code for a token.
func (a *Acquirer) Exchange(ctx context.Context, callback *url.URL, state string) (*oauth2.Token, error) {
	q := callback.Query()
	if e := q.Get("error"); e != "" {
		reason := "provider returned " + e
		if desc := q.Get("error_description"); desc != "" {
			reason += ": " + desc
		}
		return nil, &shared.AuthorizationError{Reason: reason}
	}
	if q.Get("state") != state {
		return nil, &shared.AuthorizationError{Reason: "state parameter mismatch"}
	}

	code := q.Get("code")
	if code == "" {
		return nil, &shared.AuthorizationError{Reason: "no authorization code in redirect"}
	}

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, &shared.TokenExchangeError{Err: err}
	}

	a.logger.Info("authorization complete", "expires", token.Expiry)
	return token, nil
}

// shutdown gracefully stops the callback server.
func (a *Acquirer) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Warn("callback server shutdown", "error", err)
	}
}
