// Package httpapi implements service.Service against the todo backend over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"todoctl/internal/config"
	"todoctl/internal/service"
)

const (
	// DefaultTimeout bounds a single exchange when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request id for correlating backend logs.
	RequestIDHeader = "X-Request-ID"

	// maxDetailLen caps how much of a non-JSON error body ends up in Error.Detail.
	maxDetailLen = 200
)

// Client implements service.Service with resty.
type Client struct {
	rc      *resty.Client
	baseURL string
	timeout time.Duration
	token   *oauth2.Token
	hc      *http.Client
	logger  zerolog.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url cannot be empty")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Work on a copy so the caller's http.Client keeps its transport.
	hc := &http.Client{}
	if c.hc != nil {
		*hc = *c.hc
	}
	if c.token != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(c.token),
			Base:   base,
		}
	}

	c.rc = resty.NewWithClient(hc).
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	c.rc.OnBeforeRequest(c.beforeRequest)
	c.rc.OnAfterResponse(c.afterResponse)
	c.rc.OnError(c.onError)

	return c, nil
}

// NewFromConfig creates a client from the resolved CLI configuration.
// A missing token is not an error: requests then go out unauthenticated.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	opts := []Option{WithTimeout(cfg.Timeout)}

	tok, err := cfg.LoadToken()
	switch {
	case err == nil:
		opts = append(opts, WithToken(tok))
	case errors.Is(err, config.ErrNoToken):
	default:
		return nil, err
	}

	return New(cfg.BaseURL, opts...)
}

// BaseURL returns the backend base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Do implements service.Service.
func (c *Client) Do(ctx context.Context, cfg service.Config) (*service.Response, error) {
	req := c.rc.R().SetContext(ctx)
	if len(cfg.Params) > 0 {
		req.SetQueryParamsFromValues(cfg.Params)
	}
	if cfg.Data != nil {
		req.SetBody(cfg.Data)
	}

	resp, err := req.Execute(strings.ToUpper(cfg.Method), cfg.URL)
	if err != nil {
		return nil, &service.Error{Method: cfg.Method, URL: cfg.URL, Err: err}
	}

	out := &service.Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}
	if resp.IsError() {
		return out, &service.Error{
			StatusCode: out.StatusCode,
			Method:     cfg.Method,
			URL:        cfg.URL,
			Detail:     errorDetail(out.Body),
			Body:       out.Body,
		}
	}
	return out, nil
}

// errorDetail extracts a message from an error body. The backend answers
// {"detail": "..."} for domain errors and {"detail": [{"msg": ...}]} for
// rejected payloads.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxDetailLen {
			text = text[:maxDetailLen]
		}
		return text
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
				continue
			}
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(envelope.Detail)
}
