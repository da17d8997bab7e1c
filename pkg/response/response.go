package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes. Clients branch on these, never on messages.
const (
	CodeEntryNotFound  = "entry_not_found"
	CodeEntryTooLarge  = "entry_too_large"
	CodeScopeForbidden = "scope_forbidden"
	CodeBadRequest     = "bad_request"
	CodeUnauthorized   = "unauthorized"
	CodeInternal       = "internal_error"
)

type APIResponse struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"error_code,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "ok", Data: data})
}

func Error(c *gin.Context, httpStatus int, errorCode string, message string) {
	c.JSON(httpStatus, APIResponse{Code: httpStatus, Message: message, ErrorCode: errorCode})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeScopeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeEntryNotFound, message)
}

func PayloadTooLarge(c *gin.Context, message string) {
	Error(c, http.StatusRequestEntityTooLarge, CodeEntryTooLarge, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}
