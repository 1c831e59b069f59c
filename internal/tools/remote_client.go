package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/uc-mcp/internal/auth"
	"github.com/bobmcallan/uc-mcp/internal/common"
)

// maxResponseSize caps the upstream response body.
const maxResponseSize = 50 << 20 // 50MB

// RemoteClient performs the upstream REST calls behind remote tools.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// NewRemoteClient creates a client targeting baseURL.
func NewRemoteClient(baseURL string, timeout time.Duration, logger *common.Logger) *RemoteClient {
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the configured upstream URL.
func (c *RemoteClient) BaseURL() string {
	return c.baseURL
}

// Do sends one request to the upstream. A non-nil data value is sent as a
// JSON body. The caller identity found in ctx is forwarded as X-Forwarded-Email.
func (c *RemoteClient) Do(ctx context.Context, method, path string, data any) ([]byte, error) {
	c.logger.Debug().Str("method", method).Str("path", path).Msg("remote tool request")

	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := auth.IdentityFromContext(ctx); ok {
		req.Header.Set(auth.HeaderForwardedEmail, id.Label)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().
			Str("method", method).
			Str("path", path).
			Int64("duration_ms", duration.Milliseconds()).
			Str("error", err.Error()).
			Msg("remote tool request failed")
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("remote tool response")

	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	return body, nil
}

// parseErrorResponse extracts a meaningful error message from an HTTP error response.
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		if errResp.Detail != "" {
			return fmt.Errorf("%s", errResp.Detail)
		}
	}
	return fmt.Errorf("upstream returned %d: %s", statusCode, string(body))
}
