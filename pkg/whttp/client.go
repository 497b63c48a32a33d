package whttp

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/manzanit0/tourplanner/pkg/middleware"
)

// maxLoggedBody caps how much of an upstream response ends up in the logs.
const maxLoggedBody = 2048

type LoggingRoundTripper struct {
	Proxied http.RoundTripper
}

func (lrt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	t0 := time.Now()

	u := *req.URL
	u.RawQuery = middleware.RedactQuery(req.URL.Query()).Encode()

	res, err := lrt.Proxied.RoundTrip(req)
	if err != nil {
		slog.ErrorContext(ctx, "outbound request failed",
			"method", req.Method,
			"url", u.String(),
			"duration_ms", time.Since(t0).Milliseconds(),
			"error", err.Error())
		return res, err
	}

	defer res.Body.Close()

	b := bytes.NewBuffer(make([]byte, 0))
	body, err := io.ReadAll(io.TeeReader(res.Body, b))
	if err != nil {
		return nil, err
	}

	res.Body = io.NopCloser(b)

	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	slog.DebugContext(ctx, "outbound request",
		"method", req.Method,
		"url", u.String(),
		"status", res.StatusCode,
		"duration_ms", time.Since(t0).Milliseconds(),
		"body", string(body))

	return res, nil
}

func NewLoggingClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Transport: LoggingRoundTripper{Proxied: http.DefaultTransport},
		Timeout:   timeout,
	}
}
