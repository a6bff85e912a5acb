package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Config describes one request relative to the backend base URL.
type Config struct {
	URL    string
	Method string // "get", "post", "put" or "delete"
	Params url.Values
	Data   any
}

// Response is a completed exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return errors.New("decode: nil response")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Error is the normalized failure returned by a Service.
// StatusCode is 0 when the request never produced a response.
type Error struct {
	StatusCode int
	Method     string
	URL        string
	Detail     string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsAuth reports whether the backend rejected the credentials or the caller's rights.
func IsAuth(err error) bool {
	code := statusOf(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsClient reports whether err is any 4xx response.
func IsClient(err error) bool {
	code := statusOf(err)
	return code >= 400 && code < 500
}

func statusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
