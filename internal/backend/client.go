package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/allforone/afo-portal/pkg/logger"
)

// Client talks to the AFO backend. It holds no session state: protected
// calls take the caller's bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. A nil httpClient gets a plain
// http.Client; no timeout is set beyond what the request context carries.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelopeStatus struct {
	Success *bool `json:"success"`
}

// do sends one request and decodes a successful envelope into out. Every
// failure comes back as an *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("backend unreachable", "method", method, "path", path, "error", err)
		return unreachable(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return unreachable(err)
	}

	logger.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode)

	var status envelopeStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: MsgUnknown, Err: err}
	}

	failed := resp.StatusCode >= http.StatusBadRequest
	if status.Success != nil {
		failed = failed || !*status.Success
	}
	if failed {
		return parseFailure(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: MsgUnknown, Err: err}
	}
	return nil
}

// messageEnvelope is the shape of calls that only report a message.
type messageEnvelope struct {
	Message string `json:"message"`
}

func (c *Client) doMessage(ctx context.Context, method, path, token string, body any) (string, error) {
	var out messageEnvelope
	if err := c.do(ctx, method, path, token, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
