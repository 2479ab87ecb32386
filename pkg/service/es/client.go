package es

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const defaultTimeout = 30 * time.Second

// Client is a thin Elasticsearch REST client scoped to the complaint
// corpus. It speaks plain JSON over HTTP; the query language never leaks
// past this package.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	complaintsIndex string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Elasticsearch client
func New(baseURL, apiKey, complaintsIndex string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		complaintsIndex: complaintsIndex,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// search posts a search body to the index and decodes the response into out
func (c *Client) search(ctx context.Context, index string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return goerr.Wrap(err, "failed to encode search body")
	}

	endpoint := c.baseURL + "/" + index + "/_search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return goerr.Wrap(err, "failed to build search request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "search request failed",
			goerr.V("index", index))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read search response")
	}

	if resp.StatusCode != http.StatusOK {
		return goerr.New("search returned non-OK status",
			goerr.V("index", index),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return goerr.Wrap(err, "failed to decode search response",
			goerr.V("index", index))
	}

	return nil
}
