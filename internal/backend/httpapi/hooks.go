package httpapi

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "todoctl",
			Name:      "http_requests_total",
			Help:      "Requests sent to the todo backend, by method and status code.",
		},
		[]string{"method", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "todoctl",
			Name:      "http_request_duration_seconds",
			Help:      "Round-trip time of requests to the todo backend.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func (c *Client) beforeRequest(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(RequestIDHeader) == "" {
		r.SetHeader(RequestIDHeader, uuid.NewString())
	}
	c.logger.Debug().
		Str("method", r.Method).
		Str("url", r.URL).
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Msg("HTTP request")
	return nil
}

func (c *Client) afterResponse(_ *resty.Client, resp *resty.Response) error {
	r := resp.Request
	requestsTotal.WithLabelValues(r.Method, strconv.Itoa(resp.StatusCode())).Inc()
	requestDuration.WithLabelValues(r.Method).Observe(resp.Time().Seconds())

	ev := c.logger.Debug()
	if resp.IsError() {
		ev = c.logger.Warn()
	}
	ev.Str("method", r.Method).
		Str("url", r.URL).
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Int("status_code", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Msg("HTTP response")
	return nil
}

func (c *Client) onError(r *resty.Request, err error) {
	requestsTotal.WithLabelValues(r.Method, "error").Inc()
	if !r.Time.IsZero() {
		requestDuration.WithLabelValues(r.Method).Observe(time.Since(r.Time).Seconds())
	}
	c.logger.Warn().
		Err(err).
		Str("method", r.Method).
		Str("url", r.URL).
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Msg("HTTP request failed")
}
