// Package client provides a basic client for the veildesk monitor API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veildesk/veildesk/pkg/overlay/event"
	"github.com/veildesk/veildesk/pkg/overlay/render"
)

// httpClient allows http.Client to be mocked for tests.
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client accesses the veildesk monitor API v1.
type Client struct {
	client  httpClient
	baseURL *url.URL
}

// New creates a monitor client given the base URL of a veildesk daemon, ex:
// "http://localhost:9600".
func New(baseURL string) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: parsedURL,
	}, nil
}

// Frame fetches the current overlay frame.
func (c *Client) Frame(ctx context.Context) (render.Frame, error) {
	var frame render.Frame
	err := c.doJSON(ctx, "GET", "/api/v1/frame", &frame)
	return frame, err
}

// Watch connects to the monitor event stream.  Events arrive on the returned
// channel, history buffer first; the channel closes when ctx is canceled or
// the connection drops.
func (c *Client) Watch(ctx context.Context) (<-chan event.MonitorEvent, error) {
	wsURL := *c.baseURL.JoinPath("/api/v1/events")
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %q: %w", wsURL.String(), err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	events := make(chan event.MonitorEvent, 100)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev event.MonitorEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// PostIntent injects an intent into the engine; body is the JSON intent
// request, ex: `{"op":"toggle","id":"abc"}`.
func (c *Client) PostIntent(ctx context.Context, body []byte) error {
	resp, err := c.do(ctx, "POST", "/api/v1/intent", body)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected HTTP response status %v: %s", resp.StatusCode, resp.Status)
	}
	return nil
}

// CompleteTransition reports a genuine end-of-transition signal for key.
func (c *Client) CompleteTransition(ctx context.Context, key string) error {
	resp, err := c.do(ctx, "POST", "/api/v1/transition/"+url.PathEscape(key), nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected HTTP response status %v: %s", resp.StatusCode, resp.Status)
	}
	return nil
}

// do performs an HTTP request with this client and returns the response.
func (c *Client) do(ctx context.Context, method, uri string, body []byte) (*http.Response, error) {
	url := c.baseURL.JoinPath(uri)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

// doJSON performs an HTTP request with this client and unmarshals the JSON
// response into v.
func (c *Client) doJSON(ctx context.Context, method string, uri string, v interface{}) error {
	resp, err := c.do(ctx, method, uri, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusOK {
		if v == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return fmt.Errorf("%s for %q, unexpected %v: %s", method, uri, resp.StatusCode, resp.Status)
}
