package respond

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
)

const errorCodeKey = "errorCode"

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Op      string `json:"op,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response. The request logger picks the
// code up from the context.
func Error(c *gin.Context, status int, code, message string, details any) {
	c.Set(errorCodeKey, code)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// AppError writes err using its classification. details may carry a partial result.
func AppError(c *gin.Context, err error, details any) {
	d := apperr.DetailOf(err)
	status := StatusFor(d.Code)
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	c.Set(errorCodeKey, string(d.Code))
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    string(d.Code),
			Message: d.Message,
			Op:      d.Op,
			Details: details,
		},
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeHistory, apperr.CodeMutation, apperr.CodeTool:
		return http.StatusUnprocessableEntity
	case apperr.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCodeFromContext returns the code written by Error or AppError.
func ErrorCodeFromContext(c *gin.Context) string {
	return c.GetString(errorCodeKey)
}
