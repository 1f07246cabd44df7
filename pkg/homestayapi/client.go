// Package homestayapi is the HTTP client for the homestay admin API.
package homestayapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const homestaysPath = "/api/homestays"

// APIError represents a non-2xx response from the admin API
type APIError struct {
	StatusCode int
	Code       string // machine readable "error" field, if any
	Message    string // human readable message
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Config holds client configuration
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; overrides Timeout
	Logger     logrus.FieldLogger
	UserAgent  string
}

// Client talks to the homestay admin API
type Client struct {
	baseURL   string
	client    *http.Client
	logger    logrus.FieldLogger
	userAgent string
}

// NewClient creates a new admin API client
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    httpClient,
		logger:    logger,
		userAgent: cfg.UserAgent,
	}
}

// SearchHomestays handles GET /api/homestays?search=<query>&limit=<n>
func (c *Client) SearchHomestays(ctx context.Context, query string, limit int) ([]Homestay, error) {
	params := url.Values{}
	params.Set("search", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.do(ctx, http.MethodGet, homestaysPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// GetHomestay handles GET /api/homestays/:id
func (c *Client) GetHomestay(ctx context.Context, id string) (*Homestay, error) {
	body, err := c.do(ctx, http.MethodGet, homestaysPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeEntity(body)
}

// CreateHomestay handles POST /api/homestays
func (c *Client) CreateHomestay(ctx context.Context, payload Payload) (*Homestay, error) {
	body, err := c.do(ctx, http.MethodPost, homestaysPath, payload)
	if err != nil {
		return nil, err
	}
	return decodeEntity(body)
}

// UpdateHomestay handles PUT /api/homestays/:id
func (c *Client) UpdateHomestay(ctx context.Context, id string, payload Payload) (*Homestay, error) {
	body, err := c.do(ctx, http.MethodPut, homestaysPath+"/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	return decodeEntity(body)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("admin api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var errBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil {
		apiErr.Code = errBody.Error
		apiErr.Message = errBody.Message
		if apiErr.Message == "" {
			apiErr.Message = errBody.Error
		}
	}
	return apiErr
}

// decodeList accepts {"data": [...]} or a bare array
func decodeList(body []byte) ([]Homestay, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Homestay
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse search response: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Data []Homestay `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return envelope.Data, nil
}

// decodeEntity accepts a bare entity or {"data": {...}}
func decodeEntity(body []byte) (*Homestay, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw := body
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		raw = envelope.Data
	}

	var h Homestay
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("failed to parse homestay: %w", err)
	}
	if h.ID == "" {
		return nil, errors.New("homestay response is missing id")
	}
	return &h, nil
}
