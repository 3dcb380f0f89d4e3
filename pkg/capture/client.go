package capture

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent matches a desktop Chrome so the API treats the direct
// request like the page's own.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// ClientOptions configures the listing-API client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// Client issues the rewritten listing-API request.
type Client struct {
	http *resty.Client
}

// NewClient returns a client with the given timeout and user agent.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "application/json")
	client.SetTimeout(opts.Timeout)

	return &Client{http: client}
}

// FetchGuestList GETs endpoint with the browser's cookies and returns the
// response body. Non-2xx responses wrap ErrUpstreamStatus.
func (c *Client) FetchGuestList(ctx context.Context, endpoint string, cookies []*http.Cookie) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetCookies(cookies).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, res.Status())
	}
	return res.Body(), nil
}
