package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/metrics"
)

// Client issues requests against the flights REST API.
// Every call is a single attempt; cancellation comes only from ctx.
type Client struct {
	BaseURL string
	Client  *http.Client
	Metrics *metrics.MetricsRegistry
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, reg *metrics.MetricsRegistry) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
		Metrics: reg,
	}
}

// Do sends one request and returns the raw JSON body of a 2xx response.
// An empty success body is returned as JSON null.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	start := time.Now()
	raw, status, err := c.do(ctx, method, path, body)
	c.observe(method, path, start, err)

	if err != nil {
		logging.Warn("Flights API call failed",
			"method", method,
			"path", path,
			"status", status,
			"error", err,
		)
		return nil, err
	}
	logging.Debug("Flights API call completed",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}

// Request is Do followed by decoding the body into out (when out is non-nil)
func (c *Client) Request(ctx context.Context, method, path string, body any, out any) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Code:    constants.ErrCodeDecodeError,
			Message: constants.GetErrorMessage(constants.ErrCodeDecodeError),
			Details: string(raw),
			Err:     err,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, &APIError{
				Code:    constants.ErrCodeInvalidRequest,
				Message: "Failed to marshal request body",
				Err:     err,
			}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, 0, &APIError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequest),
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, &APIError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &APIError{
			Code:    constants.ErrCodeNetworkError,
			Status:  resp.StatusCode,
			Message: "Failed to read response body",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, buildHTTPError(resp, bodyBytes)
	}

	trimmed := bytes.TrimSpace(bodyBytes)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), resp.StatusCode, nil
	}
	if !json.Valid(trimmed) {
		return nil, resp.StatusCode, &APIError{
			Code:    constants.ErrCodeDecodeError,
			Status:  resp.StatusCode,
			Message: constants.GetErrorMessage(constants.ErrCodeDecodeError),
			Details: string(bodyBytes),
		}
	}
	return json.RawMessage(trimmed), resp.StatusCode, nil
}

// buildHTTPError prefers the server's message and falls back to the status line
func buildHTTPError(resp *http.Response, body []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg = strings.TrimSpace(envelope.Message)
	}
	if msg == "" {
		msg = fmt.Sprintf("Error %d: %s", resp.StatusCode, statusText(resp))
	}
	return &APIError{
		Code:    constants.ErrCodeHTTPError,
		Status:  resp.StatusCode,
		Message: msg,
		Details: string(body),
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func (c *Client) observe(method, path string, start time.Time, err error) {
	if c.Metrics == nil {
		return
	}
	endpoint := endpointLabel(path)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.Metrics.APIRequestsTotal.WithLabelValues(method, endpoint, outcome).Inc()
	c.Metrics.APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

// endpointLabel drops query strings and record ids to keep metric cardinality bounded
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if strings.HasPrefix(path, flightItemPrefix) && len(path) > len(flightItemPrefix) {
		return flightItemPrefix + "{id}"
	}
	return path
}
