package middleware

import (
	"bytes"
	"log/slog"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// redactedParams never reach the logs in clear text.
var redactedParams = []string{"access_key", "api_key", "key"}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func Logger(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Response bodies are only captured when they will be logged.
		var w *responseBodyWriter
		if debug {
			w = &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
			c.Writer = w
		}

		t0 := time.Now()

		c.Next()

		body := "<redacted>"
		if w != nil {
			body = w.body.String()
		}

		logFields := []any{
			slog.Group("http",
				slog.Group("request",
					"duration_ms", time.Since(t0).Milliseconds(),
					"method", c.Request.Method,
					"content_length", c.Request.ContentLength,
					"route", c.FullPath(),
					slog.Group("url",
						"path", c.Request.URL.Path,
						"query_params", RedactQuery(c.Request.URL.Query()),
					),
				),
				slog.Group("response",
					"status", c.Writer.Status(),
					"size", c.Writer.Size(),
					"body", body,
				),
			),
		}

		if len(c.Errors) > 0 {
			logFields = append(logFields, "errors", c.Errors.String())
		}

		slog.InfoContext(c.Request.Context(), "inbound request", logFields...)
	}
}

// RedactQuery masks credentials in a copy of q.
func RedactQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}

	for _, k := range redactedParams {
		if out.Has(k) {
			out.Set(k, "*****")
		}
	}

	return out
}
