// Package client is a typed Go client for the marketplace API. Queries are
// cached per resource path and filter values; every mutation drops the
// cached paths it can change.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"
)

// ErrUnauthorized is returned for any 401 answer.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL  string
	Token    string // bearer token from the identity provider
	LoginURL string
	// OnUnauthorized runs on every 401, typically to send the user to LoginURL.
	OnUnauthorized func(loginURL string)
	Timeout        time.Duration

	cache *cache
	group singleflight.Group
}

// New returns a client whose cached queries live for ttl.
func New(baseURL, token string, ttl time.Duration) *Client {
	return &Client{
		BaseURL:  baseURL,
		Token:    token,
		LoginURL: "/api/login",
		Timeout:  10 * time.Second,
		cache:    newCache(ttl),
	}
}

// Invalidate drops cached queries under the given resource paths.
func (c *Client) Invalidate(paths ...string) { c.cache.invalidate(paths...) }

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.BaseURL + path)
	if c.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.Token)
	}
	if body != nil {
		a.JSON(body)
	}
	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, err
	}

	code, resp, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	switch {
	case code == fiber.StatusUnauthorized:
		if c.OnUnauthorized != nil {
			c.OnUnauthorized(c.LoginURL)
		}
		return nil, ErrUnauthorized
	case code < 200 || code > 299:
		apiErr := &APIError{Status: code}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return nil, apiErr
	}
	return resp, nil
}

// fetch serves k from the cache or performs one shared GET for it.
func (c *Client) fetch(ctx context.Context, k key, uri string) ([]byte, error) {
	if b, ok := c.cache.get(k); ok {
		return b, nil
	}
	gen := c.cache.generation(k.path)
	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		b, err := c.do(ctx, fiber.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		c.cache.set(k, b, gen)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func query[T any](ctx context.Context, c *Client, k key, uri string) (T, error) {
	var out T
	raw, err := c.fetch(ctx, k, uri)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// mutate sends a write and, on success, invalidates paths.
func mutate[T any](ctx context.Context, c *Client, method, uri string, body any, paths ...string) (T, error) {
	var out T
	raw, err := c.do(ctx, method, uri, body)
	if err != nil {
		return out, err
	}
	c.cache.invalidate(paths...)
	if len(raw) == 0 {
		return out, nil
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
