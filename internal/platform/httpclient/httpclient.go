// Package httpclient is the JSON-over-HTTP client used by analyzers that
// delegate scoring to a remote service.
//
// Every call is a single attempt. Failures come back classified through
// platform/errors so the retry policy can decide what to do with them.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	xrate "golang.org/x/time/rate"

	"trustlens/internal/platform/errors"
	"trustlens/internal/platform/logx"
)

// Config holds the client settings. Zero fields take DefaultConfig values,
// except RateLimit where 0 disables throttling.
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	RateLimit      float64 // requests per second
	RateLimitBurst int
	MaxBodyBytes   int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		UserAgent:      "TrustLens/1.0",
		RateLimitBurst: 1,
		MaxBodyBytes:   1 << 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = d.RateLimitBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}

// Client sends JSON requests with an optional shared rate limit.
type Client struct {
	http    *http.Client
	limiter *xrate.Limiter
	logger  logx.Logger
	config  Config
}

func New(config Config, logger logx.Logger) *Client {
	config = config.withDefaults()
	if logger == nil {
		logger = logx.NewNop()
	}

	c := &Client{
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger.With("component", "httpclient"),
		config: config,
	}
	if config.RateLimit > 0 {
		c.limiter = xrate.NewLimiter(xrate.Limit(config.RateLimit), config.RateLimitBurst)
	}
	return c
}

// GetJSON decodes the response of a GET into out. out may be nil.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	return c.exchange(ctx, http.MethodGet, url, nil, headers, out)
}

// PostJSON sends in as a JSON body and decodes the response into out.
// out may be nil when the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, url string, in any, headers map[string]string, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "encode request body: %v", err)
	}
	return c.exchange(ctx, http.MethodPost, url, payload, headers, out)
}

func (c *Client) exchange(ctx context.Context, method, url string, body []byte, headers map[string]string, out any) error {
	resp, err := c.send(ctx, method, url, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		return errors.Wrapf(err, "%s %s", method, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return errors.Wrapf(errors.ErrConnectionFailed, "read body of %s: %v", url, err)
	}
	if int64(len(data)) > c.config.MaxBodyBytes {
		return errors.Wrapf(errors.ErrInvalidResponse, "body of %s exceeds %d bytes", url, c.config.MaxBodyBytes)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "decode %s: %v", url, err)
	}
	return nil
}

// send waits for the limiter and performs the request once. Transport
// failures are wrapped with ErrTimeout or ErrConnectionFailed. A cancelled
// or expired ctx is returned as is.
func (c *Client) send(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limit wait")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "build %s %s: %v", method, url, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Warn("HTTP request failed", "method", method, "url", url, "error", err.Error(), "duration_ms", elapsed)
		switch {
		case ctx.Err() != nil:
			return nil, errors.Wrapf(ctx.Err(), "%s %s", method, url)
		case errors.IsTimeout(err):
			return nil, errors.Wrapf(errors.ErrTimeout, "%s %s: %v", method, url, err)
		default:
			return nil, errors.Wrapf(errors.ErrConnectionFailed, "%s %s: %v", method, url, err)
		}
	}
	c.logger.Debug("HTTP response", "method", method, "url", url, "status", resp.StatusCode, "duration_ms", elapsed)
	return resp, nil
}

// CheckStatus maps a non-2xx response onto an *errors.StatusError.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	return errors.FromStatus(resp.StatusCode)
}
