package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Option configures a Client in New.
type Option func(*Client) error

// WithTimeout bounds every exchange, including connect and reading the body.
// A zero value keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return errors.New("timeout must be >= 0")
		}
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithToken attaches tok as a bearer token to every request.
func WithToken(tok *oauth2.Token) Option {
	return func(c *Client) error {
		if tok == nil || tok.AccessToken == "" {
			return errors.New("token has no access token")
		}
		c.token = tok
		return nil
	}
}

// WithHTTPClient sends requests through hc. hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		c.hc = hc
		return nil
	}
}

// WithLogger replaces the global zerolog logger for request logs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}
