// Package api is the HTTP client for the cinelume REST backend. Every
// request is augmented with a bearer token read from the token source at
// send time; there is no retry, no backoff and no response caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cinelume/internal/apperr"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://localhost:8080/api"
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 100 * time.Millisecond
	rateBurst        = 4
	userAgent        = "cinelume-cli/1.0"
	maxResponseSize  = 5 * 1024 * 1024 // 5MB
)

// TokenSource yields the currently persisted token, or "" when there is
// none. tokenstore.Store satisfies it.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter
	userAgent  string
	tokens     TokenSource
}

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  time.Duration
	UserAgent  string
	Logger     *logrus.Logger
	Tokens     TokenSource
	HTTPClient *http.Client
}

func NewClient(tokens TokenSource) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:   defaultBaseURL,
		Timeout:   defaultTimeout,
		RateLimit: defaultRateLimit,
		UserAgent: userAgent,
		Logger:    logrus.New(),
		Tokens:    tokens,
	})
}

func NewClientWithConfig(config *ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = userAgent
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Every(config.RateLimit)
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     config.Logger,
		limiter:    rate.NewLimiter(limit, rateBurst),
		userAgent:  config.UserAgent,
		tokens:     config.Tokens,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a 2xx JSON body into out (when out is
// non-nil). It returns the response status so callers can insist on a
// specific success code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(jsonData)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, apperr.Wrap(apperr.KindRequest, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"op":    op,
			"error": err.Error(),
		}).Warn("API request failed")
		return 0, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to make HTTP request: %w", err))
	}
	defer resp.Body.Close()

	data, err := readRespBody(resp)
	if err != nil {
		return resp.StatusCode, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.WithFields(logrus.Fields{
		"op":            op,
		"status":        resp.StatusCode,
		"response_size": len(data),
		"elapsed":       time.Since(start),
	}).Debug("API request finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &apperr.Error{
			Kind:    apperr.KindRequest,
			Op:      op,
			Status:  resp.StatusCode,
			Message: backendMessage(data),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to decode response: %w", err))
		}
	}

	return resp.StatusCode, nil
}

// authorize attaches the bearer header when a token is persisted. A token
// store that cannot be read is treated as having no token.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Get(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to read persisted token")
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func readRespBody(resp *http.Response) ([]byte, error) {
	if resp.ContentLength > maxResponseSize {
		return nil, fmt.Errorf("response too large: %d bytes", resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseSize {
		return nil, errors.New("response too large: exceeded 5MB")
	}
	return body, nil
}

// backendMessage pulls the {"error": "..."} text the backend sends with
// failures. Anything else yields "".
func backendMessage(data []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
