// Package todo maps todo item operations onto backend requests.
package todo

import (
	"context"
	"net/url"

	"todoctl/internal/service"
)

const (
	listPrefix = "/todo/"
	itemPath   = "/todo/item/"
)

// Payload holds the fields of a todo item for create and update.
// Its shape is owned by the backend.
type Payload map[string]any

// Client issues todo item requests through a service.Service.
// It holds no state of its own and is safe for concurrent use.
type Client struct {
	svc service.Service
}

// New returns a Client that sends every request through svc.
func New(svc service.Service) *Client {
	return &Client{svc: svc}
}

// ListItems fetches the todo items of a group. params may be nil.
func (c *Client) ListItems(ctx context.Context, groupID string, params url.Values) (*service.Response, error) {
	return c.svc.Do(ctx, service.Config{
		URL:    listPrefix + url.PathEscape(groupID),
		Method: service.MethodGet,
		Params: params,
	})
}

// CreateItem creates a todo item from data.
func (c *Client) CreateItem(ctx context.Context, data Payload) (*service.Response, error) {
	return c.svc.Do(ctx, service.Config{
		URL:    itemPath,
		Method: service.MethodPost,
		Data:   data,
	})
}

// UpdateItem replaces a todo item. data must carry the item id.
func (c *Client) UpdateItem(ctx context.Context, data Payload) (*service.Response, error) {
	return c.svc.Do(ctx, service.Config{
		URL:    itemPath,
		Method: service.MethodPut,
		Data:   data,
	})
}

// DeleteItem removes the todo item with the given id.
func (c *Client) DeleteItem(ctx context.Context, todoID string) (*service.Response, error) {
	return c.svc.Do(ctx, service.Config{
		URL:    itemPath + url.PathEscape(todoID),
		Method: service.MethodDelete,
	})
}
