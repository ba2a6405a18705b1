// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// StubResponse describes one canned transport outcome. A non-nil Err simulates a network failure.
type StubResponse struct {
	Status int
	Body   string
	Err    error
}

// SequenceRoundTripper replays responses in order and repeats the last one once exhausted.
// It records every request it sees.
type SequenceRoundTripper struct {
	mu        sync.Mutex
	responses []StubResponse
	requests  []*http.Request
	bodies    []string
}

// NewSequenceRoundTripper creates a transport replaying responses.
func NewSequenceRoundTripper(responses ...StubResponse) *SequenceRoundTripper {
	return &SequenceRoundTripper{responses: responses}
}

func (s *SequenceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}

	idx := len(s.requests)
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)

	r := s.responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return JSONResponse(r.Status, r.Body), nil
}

// Calls returns the number of requests seen.
func (s *SequenceRoundTripper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Request returns the i-th recorded request and its body.
func (s *SequenceRoundTripper) Request(i int) (*http.Request, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i], s.bodies[i]
}

// Client wraps the transport in an [http.Client].
func (s *SequenceRoundTripper) Client() *http.Client {
	return &http.Client{Transport: s}
}

// JSONResponse builds an [http.Response] with a JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// APIServer is an httptest server routing "METHOD /path" keys to handlers and counting hits per key.
type APIServer struct {
	*httptest.Server
	mu    sync.Mutex
	hits  map[string]int
	total atomic.Int64
}

// NewAPIServer starts a server for routes; unknown routes answer 404. The server is closed with the test.
func NewAPIServer(t *testing.T, routes map[string]http.HandlerFunc) *APIServer {
	t.Helper()
	s := &APIServer{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.hits[key]++
		s.mu.Unlock()
		s.total.Add(1)

		h, ok := routes[key]
		if !ok {
			http.Error(w, `{"error":{"status":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns the number of requests received for "METHOD /path".
func (s *APIServer) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// Total returns the number of requests received.
func (s *APIServer) Total() int {
	return int(s.total.Load())
}

// JSONHandler answers every request with status and body.
func JSONHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
