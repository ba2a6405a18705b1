package shared

import (
	"fmt"
	"time"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExchange    = fmt.Errorf("token exchange failed")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrPortInUse        = fmt.Errorf("callback port unavailable")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrNoSeedTracks       = fmt.Errorf("no seed tracks available")
	ErrPartialPlaylist    = fmt.Errorf("playlist created but not populated")

	// Storage errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrUnknownFormat   = fmt.Errorf("unknown export format")
)

// AuthorizationError is returned when the redirect carries no usable authorization code.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAuthFailed, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrAuthFailed }

// TokenExchangeError wraps a rejection from the token endpoint.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrTokenExchange, e.Err)
}

func (e *TokenExchangeError) Unwrap() []error { return []error{ErrTokenExchange, e.Err} }

// AuthorizationTimeoutError is returned when no redirect arrives before the deadline.
type AuthorizationTimeoutError struct {
	After time.Duration
}

func (e *AuthorizationTimeoutError) Error() string {
	return fmt.Sprintf("no authorization callback received within %s: %v", e.After, ErrTimeout)
}

func (e *AuthorizationTimeoutError) Unwrap() error { return ErrTimeout }

// PortInUseError is returned when the redirect listener cannot bind its address.
type PortInUseError struct {
	Addr string
	Err  error
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrPortInUse, e.Addr, e.Err)
}

func (e *PortInUseError) Unwrap() []error { return []error{ErrPortInUse, e.Err} }

// APIError is a non-2xx response from the Web API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", ErrAPIRequest, e.Status)
	}
	return fmt.Sprintf("%v: status %d: %s", ErrAPIRequest, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return ErrAPIRequest }

// RequestFailedError is returned once every retry attempt of a request has failed.
//
// Err holds the failure of the final attempt.
type RequestFailedError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// PartialPlaylistError reports a generated playlist that exists remotely but whose tracks were not added.
type PartialPlaylistError struct {
	PlaylistID string
	Err        error
}

func (e *PartialPlaylistError) Error() string {
	return fmt.Sprintf("%v (id %s): %v", ErrPartialPlaylist, e.PlaylistID, e.Err)
}

func (e *PartialPlaylistError) Unwrap() []error { return []error{ErrPartialPlaylist, e.Err} }
