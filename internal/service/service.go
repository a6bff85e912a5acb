// Package service defines the transport contract the todo client talks to.
package service

import "context"

// HTTP methods as they appear in a request Config.
const (
	MethodGet    = "get"
	MethodPost   = "post"
	MethodPut    = "put"
	MethodDelete = "delete"
)

// Service performs a single request-response exchange with the backend.
// Callers never deal with base URLs, headers or auth; the implementation
// owns all of it.
type Service interface {
	// Do sends the request described by cfg.
	// cfg.Params and cfg.Data are read-only for the implementation.
	// On a non-2xx status both the response and a *Error are returned.
	Do(ctx context.Context, cfg Config) (*Response, error)
}
