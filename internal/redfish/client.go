// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package redfish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ServiceRootPath is the well-known entry point of every Redfish service.
	ServiceRootPath = "/redfish/v1/"

	authTokenHeader = "X-Auth-Token"
)

// Transport sets the client identification headers on every request and
// optionally dumps requests and responses for debugging.
type Transport struct {
	RoundTripper  http.RoundTripper
	Agent         string
	CorrelationID string
	Debug         bool
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	r.Header.Set("User-Agent", t.Agent)
	r.Header.Set("X-Correlation-Id", t.CorrelationID)

	if t.Debug {
		dump, err := httputil.DumpRequestOut(r, true)
		if err != nil {
			return nil, err
		}
		fmt.Println(string(dump))
	}
	res, err := t.RoundTripper.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if t.Debug {
		dump, err := httputil.DumpResponse(res, true)
		if err != nil {
			return res, err
		}
		fmt.Println(string(dump))
	}
	return res, nil
}

// StatusError carries the HTTP status and the service-reported message of a
// failed request.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Client is a thin JSON client for a single Redfish endpoint. It owns
// transport concerns only; resource semantics live in App.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the X-Auth-Token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the debug logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the endpoint at baseURL, e.g.
// "https://10.0.0.8".
func NewClient(baseURL string, debug bool, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     zap.NewNop(),
		http: &http.Client{
			Transport: &Transport{
				RoundTripper:  http.DefaultTransport,
				Agent:         "rfctl",
				CorrelationID: uuid.NewString(),
				Debug:         debug,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the session token, if any.
func (c *Client) Token() string {
	return c.token
}

// Get fetches path and decodes the JSON body into a generic map. Transient
// failures (transport errors and 5xx responses) are retried with exponential
// backoff; 4xx responses fail immediately.
func (c *Client) Get(ctx context.Context, path string) (map[string]any, error) {
	body, err := c.GetRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrapf(err, "decoding response from %s", path)
	}
	return data, nil
}

// GetRaw fetches path and returns the raw body.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	operation := func() ([]byte, error) {
		body, status, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, c.statusError(status, body)
		}
		if status >= http.StatusBadRequest {
			return nil, backoff.Permanent(c.statusError(status, body))
		}
		return body, nil
	}
	eb := &backoff.ExponentialBackOff{
		InitialInterval:     500 * time.Millisecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         5 * time.Second,
	}
	body, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	return body, nil
}

// Post sends payload as JSON and returns the body and response headers.
// No retries: POSTs are not assumed idempotent.
func (c *Client) Post(ctx context.Context, path string, payload any) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "POST %s", path)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, nil, errors.Wrapf(c.statusError(res.StatusCode, body), "POST %s", path)
	}
	return body, res.Header, nil
}

// Delete issues a DELETE on path.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "DELETE %s", path)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Wrapf(c.statusError(res.StatusCode, body), "DELETE %s", path)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return data, res.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(authTokenHeader, c.token)
	}
	return req, nil
}

// statusError extracts the Redfish error message, if one is present, from an
// error response body.
func (c *Client) statusError(status int, body []byte) error {
	se := &StatusError{Status: status}
	var wrapper struct {
		Error struct {
			Message      string `json:"message"`
			ExtendedInfo []struct {
				Message string `json:"Message"`
			} `json:"@Message.ExtendedInfo"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil {
		if len(wrapper.Error.ExtendedInfo) > 0 && wrapper.Error.ExtendedInfo[0].Message != "" {
			se.Message = wrapper.Error.ExtendedInfo[0].Message
		} else {
			se.Message = wrapper.Error.Message
		}
	}
	return se
}
