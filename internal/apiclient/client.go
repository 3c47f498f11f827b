package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/phambaophuc/ecovision/internal/models"
	"go.uber.org/zap"
)

const (
	identifyPath = "/api/identify"
	tokenPath    = "/api/token"
	healthPath   = "/api/health"

	maxResponseSize = 1 << 20
	maxErrorBody    = 512
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned for any non-2xx answer. Body holds the start of
// the response for diagnostics only.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client talks to an EcoVision server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Identify sends req to POST /api/identify and decodes the result.
func (c *Client) Identify(ctx context.Context, req models.IdentificationRequest) (models.IdentificationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.IdentificationResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	data, err := c.post(ctx, identifyPath, body)
	if err != nil {
		return models.IdentificationResult{}, err
	}

	return models.DecodeIdentificationResult(data)
}

// IssueToken asks the server for a short-lived access token.
func (c *Client) IssueToken(ctx context.Context) (models.AccessToken, error) {
	data, err := c.post(ctx, tokenPath, nil)
	if err != nil {
		return models.AccessToken{}, err
	}

	var token models.AccessToken
	if err := json.Unmarshal(data, &token); err != nil {
		return models.AccessToken{}, fmt.Errorf("failed to decode token: %w", err)
	}
	if token.Token == "" {
		return models.AccessToken{}, errors.New("server returned an empty token")
	}
	return token, nil
}

// Health fetches GET /api/health. An unhealthy server still yields a report.
func (c *Client) Health(ctx context.Context) (models.HealthCheck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return models.HealthCheck{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.HealthCheck{}, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Data models.HealthCheck `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&envelope); err != nil {
		return models.HealthCheck{}, fmt.Errorf("failed to decode health report (status %d): %w", resp.StatusCode, err)
	}
	return envelope.Data, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("Server answered with error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", resp.Header.Get("X-Request-ID")),
		)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}
