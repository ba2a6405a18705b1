package auth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/shared"
	"golang.org/x/oauth2"
)

// freeAddr returns a loopback address with a port that was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func tokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse token request: %v", err)
		}
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected grant_type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// redirectWith simulates the provider sending the browser back with the query built from the state.
func redirectWith(query func(state string) string) shared.BrowserOpener {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		state := u.Query().Get("state")
		redirect := u.Query().Get("redirect_uri")
		go func() {
			resp, err := http.Get(redirect + "?" + query(state))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func newTestAcquirer(t *testing.T, addr, tokenURL string, open shared.BrowserOpener, timeout time.Duration) *Acquirer {
	t.Helper()
	a, err := New(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://" + addr + "/callback",
		AuthURL:      "https://accounts.test/authorize",
		TokenURL:     tokenURL,
		Timeout:      timeout,
		OpenBrowser:  open,
		Output:       io.Discard,
		Logger:       log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create acquirer: %v", err)
	}
	return a
}

func TestNew(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := New(Options{ClientID: "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Invalid Redirect", func(t *testing.T) {
		_, err := New(Options{ClientID: "id", ClientSecret: "secret", RedirectURI: "https://example.com/cb"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		a, err := New(Options{ClientID: "id", ClientSecret: "secret", Output: io.Discard, Logger: log.New(io.Discard)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Addr() != "localhost:8080" {
			t.Errorf("expected localhost:8080, got %s", a.Addr())
		}
		if !strings.HasPrefix(a.AuthorizationURL("s"), "https://accounts.spotify.com/authorize") {
			t.Errorf("unexpected authorization URL %s", a.AuthorizationURL("s"))
		}
	})
}

func TestAuthorizationURL(t *testing.T) {
	a := newTestAcquirer(t, "127.0.0.1:9999", "https://accounts.test/token", nil, 0)

	u, err := url.Parse(a.AuthorizationURL("state-123"))
	if err != nil {
		t.Fatalf("invalid URL: %v", err)
	}

	q := u.Query()
	checks := map[string]string{
		"client_id":     "client-id",
		"redirect_uri":  "http://127.0.0.1:9999/callback",
		"response_type": "code",
		"state":         "state-123",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if !strings.Contains(q.Get("scope"), "playlist-modify-private") {
		t.Errorf("expected default scopes, got %q", q.Get("scope"))
	}
}

func TestAccessToken(t *testing.T) {
	const okToken = `{"access_token":"tok-123","token_type":"Bearer","expires_in":3600,"refresh_token":"ref"}`

	t.Run("Success", func(t *testing.T) {
		tokens := tokenServer(t, http.StatusOK, okToken)
		open := redirectWith(func(state string) string { return "code=abc&state=" + state })
		a := newTestAcquirer(t, freeAddr(t), tokens.URL, open, 5*time.Second)

		token, err := a.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "tok-123" {
			t.Errorf("expected tok-123, got %s", token.AccessToken)
		}
		if token.Expiry.IsZero() {
			t.Error("expected expiry to be set")
		}

		if _, err := net.DialTimeout("tcp", a.Addr(), 200*time.Millisecond); err == nil {
			t.Error("listener should be closed after the flow")
		}
	})

	t.Run("Browser Failure Is Not Fatal", func(t *testing.T) {
		tokens := tokenServer(t, http.StatusOK, okToken)
		redirect := redirectWith(func(state string) string { return "code=abc&state=" + state })
		open := func(u string) error {
			redirect(u)
			return errors.New("no browser")
		}
		a := newTestAcquirer(t, freeAddr(t), tokens.URL, open, 5*time.Second)

		if _, err := a.AccessToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Authorization Errors", func(t *testing.T) {
		tc := []struct {
			name   string
			query  func(state string) string
			reason string
		}{
			{"provider denied", func(state string) string { return "error=access_denied&state=" + state }, "access_denied"},
			{"missing code", func(state string) string { return "state=" + state }, "no authorization code"},
			{"state mismatch", func(string) string { return "code=abc&state=forged" }, "state"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				tokens := tokenServer(t, http.StatusOK, okToken)
				a := newTestAcquirer(t, freeAddr(t), tokens.URL, redirectWith(tt.query), 5*time.Second)

				_, err := a.AccessToken(context.Background())

				var authErr *shared.AuthorizationError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthorizationError, got %v", err)
				}
				if !strings.Contains(authErr.Reason, tt.reason) {
					t.Errorf("expected reason containing %q, got %q", tt.reason, authErr.Reason)
				}
				if !errors.Is(err, shared.ErrAuthFailed) {
					t.Error("expected ErrAuthFailed in chain")
				}
			})
		}
	})

	t.Run("Exchange Rejected", func(t *testing.T) {
		tokens := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid authorization code"}`)
		open := redirectWith(func(state string) string { return "code=bad&state=" + state })
		a := newTestAcquirer(t, freeAddr(t), tokens.URL, open, 5*time.Second)

		_, err := a.AccessToken(context.Background())

		var exErr *shared.TokenExchangeError
		if !errors.As(err, &exErr) {
			t.Fatalf("expected TokenExchangeError, got %v", err)
		}
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) {
			t.Errorf("expected oauth2.RetrieveError in chain, got %v", err)
		}
	})

	t.Run("Port In Use", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer l.Close()

		a := newTestAcquirer(t, l.Addr().String(), "https://accounts.test/token", func(string) error { return nil }, time.Second)

		_, err = a.AccessToken(context.Background())

		var portErr *shared.PortInUseError
		if !errors.As(err, &portErr) {
			t.Fatalf("expected PortInUseError, got %v", err)
		}
		if portErr.Addr != l.Addr().String() {
			t.Errorf("expected addr %s, got %s", l.Addr(), portErr.Addr)
		}
	})

	t.Run("Other Bind Failures", func(t *testing.T) {
		a := newTestAcquirer(t, "127.0.0.1:99999", "https://accounts.test/token", func(string) error { return nil }, time.Second)

		_, err := a.AccessToken(context.Background())
		if err == nil {
			t.Fatal("expected bind error for an invalid port")
		}
		var portErr *shared.PortInUseError
		if errors.As(err, &portErr) || errors.Is(err, shared.ErrPortInUse) {
			t.Errorf("invalid address should not be reported as port in use: %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		a := newTestAcquirer(t, freeAddr(t), "https://accounts.test/token", func(string) error { return nil }, 50*time.Millisecond)

		_, err := a.AccessToken(context.Background())

		var timeoutErr *shared.AuthorizationTimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("expected AuthorizationTimeoutError, got %v", err)
		}
		if !errors.Is(err, shared.ErrTimeout) {
			t.Error("expected ErrTimeout in chain")
		}
	})

	t.Run("Context Cancelled Without Timeout", func(t *testing.T) {
		a := newTestAcquirer(t, freeAddr(t), "https://accounts.test/token", func(string) error { return nil }, 0)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := a.AccessToken(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context deadline, got %v", err)
		}
	})
}
