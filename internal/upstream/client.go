// Package upstream performs HTTP GET calls for task collaborators and
// classifies failures as transient or permanent.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/tracing"
)

// DefaultTimeout bounds a single request when the client sets none.
const DefaultTimeout = 10 * time.Second

// maxBody limits the response size read into memory.
const maxBody = 4 << 20

// NewClient creates an HTTP client with the default timeout.
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Get fetches URL. Network failures, 408, 429 and 5xx responses are transient;
// other non 2xx responses are permanent.
func Get(ctx context.Context, client *http.Client, URL string, header http.Header) ([]byte, error) {
	if client == nil {
		client = NewClient()
	}
	ctx, span := tracing.StartSpan(ctx, "upstream.get", "CLIENT")
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, types.NewPermanentError(fmt.Sprintf("invalid request: %v", err), err)
	}
	for k, values := range header {
		for _, value := range values {
			request.Header.Add(k, value)
		}
	}
	response, err := client.Do(request)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, types.NewTransientError(fmt.Sprintf("request failed: %v", err), err)
	}
	defer response.Body.Close()
	span.SetStatusFromHTTPCode(response.StatusCode)
	data, err := io.ReadAll(io.LimitReader(response.Body, maxBody))
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, types.NewTransientError(fmt.Sprintf("failed to read response: %v", err), err)
	}
	if err = StatusError(response.StatusCode, response.Status); err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}
	tracing.EndSpan(span, nil)
	return data, nil
}

// StatusError classifies a non 2xx status code; it returns nil for 2xx.
func StatusError(code int, status string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests || code >= 500 || code == http.StatusRequestTimeout:
		return types.NewTransientError(fmt.Sprintf("upstream responded %s", status), nil)
	}
	return types.NewPermanentError(fmt.Sprintf("upstream responded %s", status), nil)
}
