// Package client talks to the coin counter HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultServer = "http://localhost:3001"

// TransportError is a request that did not produce a successful response:
// either the server could not be reached (Status is zero) or it answered
// with a non-2xx status.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("server responded %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithTimeout bounds each request. Requests are unbounded by default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

func New(server string, options ...Option) *Client {
	c := &Client{
		server: strings.TrimRight(server, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Client issues one request per call and never retries.
type Client struct {
	server string
	http   *http.Client
}

type countsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

type totalResponse struct {
	Total decimal.Decimal `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Coins(ctx context.Context) (map[string]int64, error) {
	var response countsResponse
	if err := c.do(ctx, http.MethodGet, "/api/coins", nil, &response); err != nil {
		return nil, err
	}

	return response.Counts, nil
}

func (c *Client) Increment(ctx context.Context, denomination string) (map[string]int64, error) {
	var response countsResponse
	body := map[string]string{"denomination": denomination}
	if err := c.do(ctx, http.MethodPost, "/api/coins/increment", body, &response); err != nil {
		return nil, err
	}

	return response.Counts, nil
}

func (c *Client) ResetCoins(ctx context.Context) (map[string]int64, error) {
	var response countsResponse
	if err := c.do(ctx, http.MethodPost, "/api/coins/reset", nil, &response); err != nil {
		return nil, err
	}

	return response.Counts, nil
}

func (c *Client) Denominations(ctx context.Context) ([]string, error) {
	var response struct {
		Denominations []string `json:"denominations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/denominations", nil, &response); err != nil {
		return nil, err
	}

	return response.Denominations, nil
}

func (c *Client) Total(ctx context.Context) (decimal.Decimal, error) {
	var response totalResponse
	if err := c.do(ctx, http.MethodGet, "/api/data", nil, &response); err != nil {
		return decimal.Zero, err
	}

	return response.Total, nil
}

func (c *Client) Add(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	var response totalResponse
	body := map[string]json.RawMessage{"coinCount": json.RawMessage(amount.String())}
	if err := c.do(ctx, http.MethodPost, "/api/data", body, &response); err != nil {
		return decimal.Zero, err
	}

	return response.Total, nil
}

func (c *Client) ResetTotal(ctx context.Context) (decimal.Decimal, error) {
	var response totalResponse
	if err := c.do(ctx, http.MethodDelete, "/api/data", nil, &response); err != nil {
		return decimal.Zero, err
	}

	return response.Total, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.server+path, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.http.Do(request)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return &TransportError{Status: response.StatusCode, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var failure errorResponse
		_ = json.Unmarshal(payload, &failure)
		return &TransportError{Status: response.StatusCode, Message: failure.Error}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Status: response.StatusCode, Err: err}
	}

	return nil
}
