// Package client talks to the linviz numerical backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/CK6170/Linviz-go/models"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// ErrDecode wraps a response body that is not the expected JSON.
var ErrDecode = errors.New("client: malformed response body")

// StatusError is returned for any non-2xx response. The body is not parsed.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %s", e.Status)
}

// Client calls the backend endpoints. Transport failures are retried with a
// fixed delay; HTTP status and decode failures are not.
type Client struct {
	base     string
	hc       *http.Client
	attempts uint
	delay    time.Duration
	debug    bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithRetry sets the total number of attempts and the delay between them.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// WithDebug logs every failed attempt.
func WithDebug(debug bool) Option { return func(c *Client) { c.debug = debug } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		hc:       &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Transform(ctx context.Context, req models.TransformRequest) (*models.TransformResponse, error) {
	var out models.TransformResponse
	if err := c.do(ctx, http.MethodPost, "/transform", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PowerMethod(ctx context.Context, req models.PowerMethodRequest) (*models.PowerMethodResponse, error) {
	var out models.PowerMethodResponse
	if err := c.do(ctx, http.MethodPost, "/power-method", req, &out); err != nil {
		return nil, err
	}
	if len(out.Eigenvalues) != len(out.Vectors) {
		return nil, fmt.Errorf("%w: %d eigenvalues vs %d vectors", ErrDecode, len(out.Eigenvalues), len(out.Vectors))
	}
	if len(out.Eigenvalues) == 0 {
		return nil, fmt.Errorf("%w: no iterates", ErrDecode)
	}
	return &out, nil
}

func (c *Client) PCA(ctx context.Context, data [][]float64) (*models.PCAResponse, error) {
	var out models.PCAResponse
	if err := c.do(ctx, http.MethodPost, "/pca", models.PCARequest{Matrix: data}, &out); err != nil {
		return nil, err
	}
	if err := out.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &out, nil
}

func (c *Client) Insight(ctx context.Context, m [][]float64) (*models.InsightResponse, error) {
	var out models.InsightResponse
	if err := c.do(ctx, http.MethodPost, "/api/insight", models.InsightRequest{Matrix: m}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns nil when the backend answers /api/health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("%w: health not ok", ErrDecode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("Accept", "application/json")
			resp, err := c.hc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return retry.Unrecoverable(&StatusError{Code: resp.StatusCode, Status: resp.Status})
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%s %s: %w: %v", method, path, ErrDecode, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if c.debug {
				log.Printf("%s %s: attempt %d failed: %v", method, path, n+1, err)
			}
		}),
	)
}
