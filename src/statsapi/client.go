// Package statsapi fetches pre-aggregated statistics from the analytics backend.
package statsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBody caps a single response; aggregated payloads are small.
const maxBody = 8 << 20

type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// NewClient returns a client resolving endpoints against baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}, logger: logger}, nil
}

func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Fetch GETs endpoint and returns its top-level JSON object. A body carrying a
// non-empty "error" field is reported as *ServerError regardless of status.
func (c *Client) Fetch(ctx context.Context, endpoint string) (Payload, error) {
	target, err := c.resolve(endpoint)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("fetched",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	var p Payload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil || p == nil {
		if !ok {
			return nil, &TransportError{Endpoint: endpoint, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
		}
		if err == nil {
			err = errors.New("null body")
		}
		return nil, &ShapeError{Endpoint: endpoint, Reason: "body is not a JSON object", Err: err}
	}
	if msg, has := p.errorMessage(); has {
		return nil, &ServerError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}
	if !ok {
		return nil, &TransportError{Endpoint: endpoint, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return p, nil
}
