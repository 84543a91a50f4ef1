// File: services/assistant/remote.go
package assistant

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

	"ruach/models"
)

// RemoteStatusError is returned when a remote action endpoint answers with
// a non-success status.
type RemoteStatusError struct {
	Status int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("remote action returned status %d", e.Status)
}

// RemoteExecutor turns a RemoteAction descriptor into one HTTP call and a
// text result. Endpoint, query and body resolvers run at call time so the
// active page and user are never stale.
type RemoteExecutor struct {
	client *http.Client
}

// NewRemoteExecutor builds an executor whose client enforces the given
// timeout. A hung endpoint errors the turn instead of suspending the
// assistant indefinitely.
func NewRemoteExecutor(timeout time.Duration) *RemoteExecutor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RemoteExecutor{client: &http.Client{Timeout: timeout}}
}

// Execute resolves the descriptor against the current input and context,
// performs the call and maps the result to reply text.
func (e *RemoteExecutor) Execute(ctx context.Context, ra *models.RemoteAction, input string, conv models.ConversationContext) (string, error) {
	endpoint := ra.Endpoint
	if ra.EndpointFunc != nil {
		endpoint = ra.EndpointFunc(input, conv)
	}
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("remote action resolved to an empty endpoint")
	}

	query := ra.Query
	if ra.QueryFunc != nil {
		query = ra.QueryFunc(input, conv)
	}
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			if v == nil {
				continue
			}
			values.Set(k, fmt.Sprintf("%v", v))
		}
		if encoded := values.Encode(); encoded != "" {
			sep := "?"
			if strings.Contains(endpoint, "?") {
				sep = "&"
			}
			endpoint += sep + encoded
		}
	}

	rawBody := ra.Body
	if ra.BodyFunc != nil {
		rawBody = ra.BodyFunc(input, conv)
	}
	var reader io.Reader
	jsonBody := false
	switch b := rawBody.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return "", fmt.Errorf("failed to encode remote action body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		jsonBody = true
	}

	method := ra.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return "", fmt.Errorf("failed to build remote action request: %w", err)
	}
	for k, v := range ra.Headers {
		req.Header.Set(k, v)
	}
	// Caller-specified headers always win over the implicit JSON one.
	if jsonBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote action call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RemoteStatusError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read remote action response: %w", err)
	}

	var parsed any = string(raw)
	structured := false
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", fmt.Errorf("failed to decode remote action response: %w", err)
		}
		parsed = decoded
		structured = true
	}

	if ra.TransformResponse != nil {
		return ra.TransformResponse(parsed, input, conv)
	}
	if structured {
		pretty, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return string(raw), nil
		}
		return string(pretty), nil
	}
	return string(raw), nil
}
