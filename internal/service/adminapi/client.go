package adminapi

import (
	"context"
	"strings"

	domrepo "SentinelConsole/internal/domain/repository"
	xhttp "SentinelConsole/pkg/http"
	applogger "SentinelConsole/pkg/logger"
)

// Backend paths consumed by the console.
const (
	PathLogin        = "/auth/login"
	PathLogout       = "/auth/logout"
	PathMarketData   = "/market/data"
	PathSymbols      = "/market/symbols"
	PathOrderBook    = "/orders/book"
	PathTrades       = "/trades/history"
	PathAlerts       = "/surveillance/alerts"
	PathModelMetrics = "/ml/metrics"
)

// Credentials supplies the bearer token and forgets it when the backend rejects it.
type Credentials interface {
	Token() string
	Clear()
}

// Client talks to the admin backend on behalf of the signed-in operator.
type Client struct {
	http    *xhttp.Client
	baseURL string
	creds   Credentials
	nav     domrepo.Navigator
	log     *applogger.Logger
}

// New creates a backend client. nav may be nil when nothing renders pages.
func New(baseURL string, creds Credentials, nav domrepo.Navigator, log *applogger.Logger, opts ...xhttp.ClientOption) *Client {
	if log == nil {
		log = applogger.Nop()
	}
	return &Client{
		http:    xhttp.NewClient(opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		nav:     nav,
		log:     log,
	}
}

// Send issues one request and decodes the JSON body into dest when dest is non-nil.
// A 401 clears the session and sends the operator to the login page before the
// error is returned.
func (c *Client) Send(ctx context.Context, method, path string, body, dest interface{}) error {
	headers := map[string]string{"Accept": "application/json"}
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			headers["Authorization"] = "Bearer " + tok
		}
	}

	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  method,
		URL:     c.baseURL + path,
		Headers: headers,
		Body:    body,
	}, dest)
	if err != nil && xhttp.IsUnauthorized(err) {
		c.log.Warn("admin api: session rejected",
			applogger.String("method", method),
			applogger.String("path", path),
		)
		if c.creds != nil {
			c.creds.Clear()
		}
		if c.nav != nil {
			c.nav.ToLogin("unauthorized")
		}
	}
	return err
}

// Get fetches path into dest.
func (c *Client) Get(ctx context.Context, path string, dest interface{}) error {
	return c.Send(ctx, xhttp.MethodGet, path, nil, dest)
}

// Post sends body to path and decodes the reply into dest.
func (c *Client) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.Send(ctx, xhttp.MethodPost, path, body, dest)
}
