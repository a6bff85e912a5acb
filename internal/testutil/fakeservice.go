// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"todoctl/internal/service"
)

// FakeService is a service.Service that records requests and replays scripted results.
type FakeService struct {
	mu    sync.Mutex
	calls []service.Config

	// Respond, when set, produces the result for every request.
	Respond func(cfg service.Config) (*service.Response, error)

	// Err is returned for every request when Respond is nil.
	Err error
}

// NewFakeService creates a FakeService answering 200 with an empty JSON array.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// Do implements service.Service.
func (f *FakeService) Do(ctx context.Context, cfg service.Config) (*service.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cfg)
	respond := f.Respond
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &service.Error{Method: cfg.Method, URL: cfg.URL, Err: err}
	}
	if respond != nil {
		return respond(cfg)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &service.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("[]")}, nil
}

// Calls returns a copy of the recorded requests in arrival order.
func (f *FakeService) Calls() []service.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Config, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastCall returns the most recent request. ok is false if none was made.
func (f *FakeService) LastCall() (cfg service.Config, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return service.Config{}, false
	}
	return f.calls[len(f.calls)-1], true
}

// JSONResponse builds a 200 response whose body is v encoded as JSON.
// It panics if v cannot be encoded.
func JSONResponse(v any) *service.Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &service.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	}
}

// RespondWith makes every request succeed with v as the JSON body.
func (f *FakeService) RespondWith(v any) {
	resp := JSONResponse(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Respond = func(service.Config) (*service.Response, error) { return resp, nil }
}

// FailWith makes every request fail with the given status and detail.
func (f *FakeService) FailWith(status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Respond = func(cfg service.Config) (*service.Response, error) {
		body, _ := json.Marshal(map[string]string{"detail": detail})
		resp := &service.Response{StatusCode: status, Header: http.Header{}, Body: body}
		return resp, &service.Error{StatusCode: status, Method: cfg.Method, URL: cfg.URL, Detail: detail, Body: body}
	}
}
