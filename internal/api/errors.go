package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/service"
)

// ErrorBody is the JSON shape of every failed response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// StatusFor maps a service error kind to an HTTP status code
func StatusFor(kind service.Kind) int {
	switch kind {
	case service.KindMissingCredential,
		service.KindMalformedCredential,
		service.KindInvalidCredential,
		service.KindExpiredCredential,
		service.KindUnknownUser,
		service.KindInvalidLogin:
		return http.StatusUnauthorized
	case service.KindForbiddenRole:
		return http.StatusForbidden
	case service.KindInvalidInput,
		service.KindInvalidLineInput,
		service.KindInvalidStateTransition,
		service.KindInvalidStatus:
		return http.StatusBadRequest
	case service.KindCategoryNotFound,
		service.KindMenuNotFound,
		service.KindOrderNotFound:
		return http.StatusNotFound
	case service.KindDuplicateIdentity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as an error envelope and aborts the request.
// Unclassified errors are logged and reported with a generic message.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindInternal {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(RequestIDKey),
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrorBody{
			Code:    string(service.KindInternal),
			Message: "internal server error",
		}})
		return
	}

	c.AbortWithStatusJSON(StatusFor(svcErr.Kind), gin.H{"error": ErrorBody{
		Code:    string(svcErr.Kind),
		Message: svcErr.Message,
		Line:    svcErr.Line,
	}})
}

// BadRequest reports a request the transport could not decode
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBody{
		Code:    string(service.KindInvalidInput),
		Message: message,
	}})
}

// TooLarge reports a request body over the accepted size
func TooLarge(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": ErrorBody{
		Code:    string(service.KindInvalidInput),
		Message: message,
	}})
}

// BadLine reports an undecodable order line
func BadLine(c *gin.Context, line int, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBody{
		Code:    string(service.KindInvalidLineInput),
		Message: message,
		Line:    line,
	}})
}

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"
