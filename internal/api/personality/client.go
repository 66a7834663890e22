package personality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = time.Second
)

// Client for requests to the personality backend API
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	userAgent    string
	maxAttempts  int
	retryBackoff time.Duration
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:       logger,
		userAgent:    "Personality-Bot/1.0",
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
}

// request describes one backend call. Token may be empty for anonymous calls.
type request struct {
	method      string
	path        string
	params      url.Values
	body        []byte
	contentType string
	token       string
}

func (r request) idempotent() bool {
	return r.method == http.MethodGet
}

// doRequest sends r, retrying idempotent requests on transport errors,
// rate limiting and server errors.
func (c *Client) doRequest(ctx context.Context, r request) ([]byte, error) {
	fullURL := c.baseURL + r.path
	if len(r.params) > 0 {
		fullURL += "?" + r.params.Encode()
	}

	attempts := 1
	if r.idempotent() {
		attempts = c.maxAttempts
	}

	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.retryBackoff
			c.logger.Debug("retrying request",
				zap.String("url", fullURL),
				zap.String("request_id", requestID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		body, retry, err := c.send(ctx, r, fullURL, requestID)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after retries: %w", lastErr)
}

// send performs one attempt and reports whether a failure is worth retrying.
func (c *Client) send(ctx context.Context, r request, fullURL, requestID string) ([]byte, bool, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, reader)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, &APIError{Detail: err.Error(), kind: ErrUnavailable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("successful request",
			zap.String("method", r.method),
			zap.String("url", fullURL),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return body, false, nil
	}

	apiErr := newAPIError(resp.StatusCode, body)

	c.logger.Error("API error",
		zap.String("method", r.method),
		zap.String("url", fullURL),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", apiErr.Detail),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn("rate limit hit, backing off")
		return nil, true, apiErr
	case resp.StatusCode >= 500:
		return nil, true, apiErr
	default:
		return nil, false, apiErr
	}
}

func (c *Client) get(ctx context.Context, path, token string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, request{method: http.MethodGet, path: path, params: params, token: token})
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.doRequest(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
		token:       token,
	})
}

func (c *Client) postForm(ctx context.Context, path, token string, form url.Values) ([]byte, error) {
	return c.doRequest(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		token:       token,
	})
}

// parseResponse unmarshals a JSON response into dest
func (c *Client) parseResponse(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func pageParams(limit, offset int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprint(offset))
	} else {
		params.Set("offset", "0")
	}
	return params
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
