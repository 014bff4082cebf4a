package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/imagestrip/internal/protocol"
)

// StatusFetcher retrieves session summaries. It is implemented by *Client and
// can be faked in tests.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, id string) (*protocol.Status, error)
}

// Transport runs interaction cycles for one session.
type Transport interface {
	Cycle(ctx context.Context, sig protocol.Signals) (protocol.Directives, error)
	Close() error
}

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ StatusFetcher = (*Client)(nil)
	_ Transport     = (*sessionTransport)(nil)
	_ Transport     = (*Conn)(nil)
)

// Client talks to the imagestrip HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultListen    = "127.0.0.1:7490"
	defaultUserAgent = "imagestrip/0.1"
	requestTimeout   = 30 * time.Second
)

// APIError is returned for responses with a status of 400 or above.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// NewClient builds a Client for the server listening on addr (host:port or URL).
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// CreateSession opens a new strip session.
func (c *Client) CreateSession(ctx context.Context) (protocol.Session, error) {
	var payload protocol.Session
	if err := c.do(ctx, http.MethodPost, "/api/strips", nil, &payload); err != nil {
		return protocol.Session{}, err
	}
	return payload, nil
}

// CloseSession discards a session on the server.
func (c *Client) CloseSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id), nil, nil)
}

// Cycle posts one batch of signals and returns the resulting directives.
func (c *Client) Cycle(ctx context.Context, id string, sig protocol.Signals) (protocol.Directives, error) {
	var payload protocol.Directives
	if err := c.do(ctx, http.MethodPost, sessionPath(id)+"/cycle", sig, &payload); err != nil {
		return protocol.Directives{}, err
	}
	return payload, nil
}

// Register adds an image to a session. kind is "file" or "url".
func (c *Client) Register(ctx context.Context, id, kind, location string) (protocol.RegisterResponse, error) {
	req := protocol.RegisterRequest{Kind: kind, Location: location}
	var payload protocol.RegisterResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(id)+"/images", req, &payload); err != nil {
		return protocol.RegisterResponse{}, err
	}
	return payload, nil
}

// FetchStatus retrieves the session summary.
func (c *Client) FetchStatus(ctx context.Context, id string) (*protocol.Status, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload protocol.Status
	if err := c.do(ctx, http.MethodGet, sessionPath(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SessionTransport returns a Transport running cycles over plain HTTP.
func (c *Client) SessionTransport(id string) Transport {
	return &sessionTransport{client: c, id: id}
}

// AssetURL resolves an asset locator against the server URL.
func (c *Client) AssetURL(locator string) string {
	rel, err := url.Parse(locator)
	if err != nil {
		return locator
	}
	return c.baseURL.ResolveReference(rel).String()
}

type sessionTransport struct {
	client *Client
	id     string
}

func (t *sessionTransport) Cycle(ctx context.Context, sig protocol.Signals) (protocol.Directives, error) {
	return t.client.Cycle(ctx, t.id, sig)
}

func (t *sessionTransport) Close() error { return nil }

func sessionPath(id string) string {
	return "/api/strips/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Path: rel.String(), Status: resp.StatusCode}
		var payload protocol.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultListen
	}
	if strings.HasPrefix(trimmed, ":") {
		trimmed = "127.0.0.1" + trimmed
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server address %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
