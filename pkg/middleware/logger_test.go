package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		desc        string
		debug       bool
		wantWrapped bool
		wantBody    string
	}{
		{desc: "response body is not captured outside debug", debug: false, wantWrapped: false, wantBody: "<redacted>"},
		{desc: "response body is logged in debug", debug: true, wantWrapped: true, wantBody: `{"ok":true}`},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var logs bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
			t.Cleanup(func() { slog.SetDefault(prev) })

			var wrapped bool
			r := gin.New()
			r.Use(Logger(tC.debug))
			r.GET("/things", func(c *gin.Context) {
				_, wrapped = c.Writer.(*responseBodyWriter)
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things?api_key=secret", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"ok":true}`, w.Body.String())
			assert.Equal(t, tC.wantWrapped, wrapped)

			var entry struct {
				HTTP struct {
					Request struct {
						URL struct {
							QueryParams map[string][]string `json:"query_params"`
						} `json:"url"`
					} `json:"request"`
					Response struct {
						Status int    `json:"status"`
						Body   string `json:"body"`
					} `json:"response"`
				} `json:"http"`
			}
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))

			assert.Equal(t, http.StatusOK, entry.HTTP.Response.Status)
			assert.Equal(t, tC.wantBody, entry.HTTP.Response.Body)
			assert.Equal(t, []string{"*****"}, entry.HTTP.Request.URL.QueryParams["api_key"])
		})
	}
}
