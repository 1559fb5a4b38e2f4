// Package transport holds the HTTP round tripper shared by the LLM clients.
package transport

import (
	"net/http"
	"time"

	"agent-bridge/internal/application/port/output"
)

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// NewLoggingClient returns an HTTP client that logs every request and response.
// Bodies are not logged: requests carry base64 screenshots.
func NewLoggingClient(logger output.LoggerPort, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if logger != nil {
		client.Transport = &loggingTransport{
			base:   http.DefaultTransport,
			logger: logger,
		}
	}
	return client
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("HTTP request",
		"method", req.Method,
		"url", req.URL.String(),
		"bytes", req.ContentLength,
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Error("HTTP request failed",
			"url", req.URL.String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	t.logger.Debug("HTTP response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
