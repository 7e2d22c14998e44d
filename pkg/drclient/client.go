// Package drclient is a small client for the DataRobot REST API: deployment
// predictions and read access to custom model versions.
package drclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the DataRobot cloud API root.
const DefaultEndpoint = "https://app.datarobot.com/api/v2"

const (
	defaultRetryInterval = 5 * time.Second
	defaultMaxWait       = 300 * time.Second
)

type clientOptions struct {
	httpClient    *http.Client
	logger        *zap.Logger
	retryInterval time.Duration
	maxWait       time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithRetryInterval sets the pause between prediction attempts while the inference server starts.
func WithRetryInterval(interval time.Duration) Option {
	return func(o *clientOptions) {
		o.retryInterval = interval
	}
}

// WithMaxWait caps the time spent waiting for the inference server to start.
func WithMaxWait(maxWait time.Duration) Option {
	return func(o *clientOptions) {
		o.maxWait = maxWait
	}
}

// Client talks to a DataRobot API endpoint with a bearer token.
type Client struct {
	endpoint      string
	token         string
	httpClient    *http.Client
	logger        *zap.Logger
	retryInterval time.Duration
	maxWait       time.Duration
}

// New creates a Client. An empty endpoint selects DefaultEndpoint.
func New(endpoint, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("api token is required")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	options := &clientOptions{
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		logger:        zap.NewNop(),
		retryInterval: defaultRetryInterval,
		maxWait:       defaultMaxWait,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Client{
		endpoint:      strings.TrimSuffix(endpoint, "/"),
		token:         token,
		httpClient:    options.httpClient,
		logger:        options.logger,
		retryInterval: options.retryInterval,
		maxWait:       options.maxWait,
	}, nil
}

// Endpoint returns the API root the client sends requests to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do sends the request and returns the response when its status is 2xx.
// Callers must close the response body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.logger.Debug("sending request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer resp.Body.Close()

	return nil, newAPIError(resp)
}

// getJSON decodes the JSON body of a GET request into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", path, err)
	}

	return nil
}
