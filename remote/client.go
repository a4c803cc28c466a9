package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
)

// DefaultBaseURL is the public Launch Library 2 endpoint.
const DefaultBaseURL = "https://ll.thespacedevs.com/2.2.0"

// DefaultUserAgent identifies the client to the upstream API.
const DefaultUserAgent = "launchsync/1.0"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("remote: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client fetches launch pages from Launch Library 2.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	paths      map[launch.Partition]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client for baseURL; an empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  DefaultUserAgent,
		paths: map[launch.Partition]string{
			launch.Upcoming: "/launch/upcoming/",
			launch.Past:     "/launch/previous/",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests limit launches of partition p starting at offset.
func (c *Client) Fetch(ctx context.Context, p launch.Partition, limit, offset int) (Page, error) {
	path, ok := c.paths[p]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", launch.ErrUnknownPartition, p)
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	target := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, &StatusError{StatusCode: resp.StatusCode, URL: target, Body: strings.TrimSpace(string(body))}
	}

	var envelope launchPage
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return Page{}, fmt.Errorf("remote: decode response: %w", err)
	}

	page := Page{HasMore: envelope.hasMore(), Launches: make([]launch.Launch, 0, len(envelope.Results))}
	for _, dto := range envelope.Results {
		l, err := dto.toLaunch(p)
		if err != nil {
			return Page{}, err
		}
		page.Launches = append(page.Launches, l)
	}
	logger.DebugCtx(ctx, "remote page fetched",
		logger.KeyURL, target,
		logger.KeyItems, len(page.Launches),
		logger.KeyHasMore, page.HasMore)
	return page, nil
}

// Ensure Client satisfies the Source interface.
var _ Source = (*Client)(nil)
