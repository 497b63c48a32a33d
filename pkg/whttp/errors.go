package whttp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/apperr"
)

type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// HandleError writes err as an ErrorResponse. Typed domain errors keep their
// status; anything else is a 500 and is logged.
func HandleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status = domainErr.HTTPStatus()
		message = domainErr.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err.Error())
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    c.Request.URL.Path,
	})
}

func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
		Path:    c.Request.URL.Path,
	})
}
