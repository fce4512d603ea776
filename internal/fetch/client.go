package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"rsff-cap-mcp/internal/store"
)

const DefaultBaseURL = "https://sheets.googleapis.com/v4"

// StateFunc observes breaker transitions (0 closed, 1 half-open, 2 open).
type StateFunc func(name string, state int)

type Client struct {
	HTTP         *http.Client
	Store        *store.JSONStore // raw response cache; nil disables it
	BaseURL      string
	UserAgent    string
	APIKey       string
	PrettyWrite  bool
	DisableWrite bool
	Log          logrus.FieldLogger

	breaker *gobreaker.CircuitBreaker
}

// NewClient wraps httpClient (typically an oauth2 client) with a circuit
// breaker that opens after 3 consecutive failures.
func NewClient(httpClient *http.Client, st *store.JSONStore, onState StateFunc) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	c := &Client{
		HTTP:        httpClient,
		Store:       st,
		BaseURL:     DefaultBaseURL,
		UserAgent:   "rsff-cap-mcp/1.0",
		PrettyWrite: true,
		Log:         logrus.StandardLogger(),
	}
	settings := gobreaker.Settings{
		Name:     "sheets",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.Log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state change")
			if onState != nil {
				onState(name, int(to))
			}
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker(settings)
	return c
}

// FetchRaw GETs urlPath (like "/spreadsheets/ID/values:batchGet") and, when
// a store is configured, keeps a copy of the body at relPath.
func (c *Client) FetchRaw(ctx context.Context, urlPath string, query url.Values, relPath string) ([]byte, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, urlPath, query)
	})
	if err != nil {
		return nil, err
	}
	body := out.([]byte)

	if c.Store != nil && !c.DisableWrite && relPath != "" {
		if err := c.Store.WriteRaw(relPath, body, c.PrettyWrite); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, urlPath string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.APIKey != "" {
		query.Set("key", c.APIKey)
	}
	u := c.BaseURL + urlPath
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s failed: %d body=%s", urlPath, resp.StatusCode, string(body))
	}
	return body, nil
}
