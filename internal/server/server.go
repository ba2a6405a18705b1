package server

import (
	"net/http"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the paths it answers on the redirect listener.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and middleware for the redirect listener.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	NotFound(handler http.Handler)
}

var _ Router = (*BasicRouter)(nil)
