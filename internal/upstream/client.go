// Package upstream is the gateway's client for the core platform API. All
// server-owned entities (merchants, transactions, plans, drivers, menus) are
// read and written through here; the gateway holds no invariant over them
// beyond issuing a write and refetching.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const fallbackMessage = "Something went wrong. Please try again."

// Error is a failed upstream call: either a transport failure or a business
// rejection carried in the platform envelope. Message is always readable;
// the envelope message wins over the generic fallback.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// envelope is the platform response shape: {success, data} on the happy
// path, {success:false, error, message} otherwise.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Err     string          `json:"error"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Get(ctx context.Context, path string, token string, out any) error {
	return c.Do(ctx, http.MethodGet, path, token, nil, out)
}

// Do issues a JSON request and decodes the envelope's data into out. The
// bearer token is attached when present; requests are tied to ctx so an
// abandoned page stops its in-flight calls.
func (c *Client) Do(ctx context.Context, method string, path string, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Status: 0, Message: fallbackMessage}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: fallbackMessage}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// non-envelope success body
			if out != nil {
				return json.Unmarshal(payload, out)
			}
			return nil
		}
		return &Error{Status: resp.StatusCode, Message: fallbackMessage}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = fallbackMessage
		}
		if c.logger != nil {
			c.logger.Warn("upstream call rejected",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("code", env.Err),
			)
		}
		return &Error{Status: resp.StatusCode, Code: env.Err, Message: message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Download streams a file endpoint (exports). The caller owns the response
// body and the Content-Disposition header.
func (c *Client) Download(ctx context.Context, path string, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Status: 0, Message: fallbackMessage}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var env envelope
		message := fallbackMessage
		code := ""
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); decodeErr == nil && strings.TrimSpace(env.Message) != "" {
			message = env.Message
			code = env.Err
		}
		return nil, &Error{Status: resp.StatusCode, Code: code, Message: message}
	}
	return resp, nil
}

// AsError unwraps an upstream error, substituting the generic fallback for
// anything else so pages never surface a raw failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*Error); ok {
		return ue
	}
	return &Error{Status: 0, Message: fallbackMessage}
}
