package server

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sync"
)

// CallbackHandler serves the OAuth2 redirect exactly once.
//
// The first request's URL is delivered on [CallbackHandler.Result]; every later request is refused.
// The handler does not interpret the query: parsing the code and exchanging it is left to the caller.
type CallbackHandler struct {
	path   string
	result chan *url.URL
	once   sync.Once
	hit    bool
	mu     sync.Mutex
}

// NewCallbackHandler creates a handler for the redirect path, "/callback" when empty.
func NewCallbackHandler(path string) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{
		path:   path,
		result: make(chan *url.URL, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP captures the redirect and answers with a static page telling the user to return to the terminal.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusConflict)
		return
	}
	h.hit = true
	h.mu.Unlock()

	captured := *r.URL
	h.send(&captured)

	q := r.URL.Query()
	title, message, status := "Authorization Successful", "You can close this window and return to the terminal.", http.StatusOK
	if q.Get("code") == "" {
		title, status = "Authorization Failed", http.StatusBadRequest
		message = "No authorization code was received."
		if e := q.Get("error"); e != "" {
			message = fmt.Sprintf("The provider returned %q.", e)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, callbackPage, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
}

func (h *CallbackHandler) send(u *url.URL) {
	h.once.Do(func() {
		h.result <- u
		close(h.result)
	})
}

// Result returns the channel receiving the captured redirect URL.
//
// Channel will receive exactly one value and then be closed.
func (h *CallbackHandler) Result() <-chan *url.URL {
	return h.result
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .container { text-align: center; background: #181818; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`
