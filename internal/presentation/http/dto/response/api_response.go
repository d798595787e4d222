package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// newMeta prefers the request ID assigned by the logging middleware.
func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func write(c *gin.Context, status int, body APIResponse) {
	body.Success = status < http.StatusBadRequest
	body.Meta = newMeta(c)
	c.JSON(status, body)
}

func OK(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, APIResponse{Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, APIResponse{Message: message, Data: data})
}

// SuccessWithPagination writes one page; data carries items and pagination.
func SuccessWithPagination[T any](c *gin.Context, statusCode int, message string, result *pagination.PaginatedResult[T]) {
	write(c, statusCode, APIResponse{Message: message, Data: result})
}

// Error maps err onto its status. The kind tells clients whether the request
// was rejected up front (validation), by record state (policy) or by the
// store (remote). The error is also attached to the gin context so the
// logging middleware reports it.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	_ = c.Error(err)

	body := APIResponse{Message: appErr.Message, Kind: string(appErr.Kind)}
	if len(appErr.Errors) > 0 {
		body.Errors = appErr.Errors
	}
	write(c, appErr.Code, body)
}

func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	write(c, statusCode, APIResponse{Message: message})
}

// ValidationError reports request binding failures field by field.
func ValidationError(c *gin.Context, errors []apperror.FieldError) {
	write(c, http.StatusUnprocessableEntity, APIResponse{
		Message: "Validation failed",
		Kind:    string(apperror.KindValidation),
		Errors:  errors,
	})
}

func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusForbidden, message)
}

func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusTooManyRequests, message)
}
