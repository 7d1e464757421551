package jsonsql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the production Client: one JSONSQL request per POST to a
// fixed endpoint, decoded straight into a Result. Retry policy is the
// collaborator's own responsibility per the Client contract, so HTTPClient
// retries transient transport failures itself and leaves everything else
// (4xx/5xx bodies) to the caller.
type HTTPClient struct {
	Endpoint   string
	HTTPClient *http.Client
	MaxRetries int
	RetryWait  time.Duration
}

// NewHTTPClient returns an HTTPClient pointed at endpoint with sane
// defaults: a 30s request timeout and up to 2 retries on transport
// failure.
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 2,
		RetryWait:  500 * time.Millisecond,
	}
}

type errorPayload struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	AccessDenied bool   `json:"access_denied"`
}

// Execute posts req's wire envelope to c.Endpoint and decodes the response
// as a Result. Transport failures (dial/timeout/context) are retried up to
// MaxRetries times with a fixed backoff; a well-formed error response from
// the remote is surfaced immediately as an ApiError, never retried.
func (c *HTTPClient) Execute(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("jsonsql: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.RetryWait):
			}
		}

		result, err := c.once(ctx, body)
		if err == nil {
			return result, nil
		}
		if _, isAPIErr := err.(*ApiError); isAPIErr {
			return nil, err
		}
		lastErr = err
	}
	return nil, &TransportError{Op: "execute", Err: lastErr}
}

func (c *HTTPClient) once(ctx context.Context, body []byte) (Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden {
		var payload errorPayload
		_ = json.Unmarshal(respBody, &payload)
		return nil, &ApiError{Message: payload.Error, Code: payload.Code, AccessDenied: true}
	}
	if resp.StatusCode >= 400 {
		var payload errorPayload
		if err := json.Unmarshal(respBody, &payload); err == nil && payload.Error != "" {
			return nil, &ApiError{Message: payload.Error, Code: payload.Code, AccessDenied: payload.AccessDenied}
		}
		return nil, &ApiError{Message: string(respBody), Code: fmt.Sprintf("%d", resp.StatusCode)}
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("jsonsql: decode response: %w", err)
	}
	return result, nil
}
