package server

import (
	"net/http"
)

// BasicRouter dispatches the redirect listener's requests through an [http.ServeMux] using method-qualified
// patterns, so a wrong method answers 405 without reaching the handler.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	notFound    http.Handler
	paths       map[string]struct{}
}

// NewBasicRouter creates a router whose unmatched requests (favicon probes and the like) answer 404.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:      http.NewServeMux(),
		notFound: http.NotFoundHandler(),
		paths:    map[string]struct{}{},
	}
}

// Use appends middleware. The first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.paths[path] = struct{}{}
	r.mux.Handle(method+" "+path, r.Apply(handler))
}

// Handler registers every route of handler for GET requests.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.paths[route] = struct{}{}
		r.mux.Handle(http.MethodGet+" "+route, wrapped)
	}
}

// NotFound replaces the fallback used for paths no route matches.
func (r *BasicRouter) NotFound(handler http.Handler) {
	r.notFound = handler
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// The mux reports no pattern for both unknown paths and known paths hit with the wrong method.
	if _, known := r.paths[req.URL.Path]; !known {
		r.notFound.ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler with the registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}
