package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"keygate/internal/shared/errors"
)

// APIResponse represents a standard API response structure.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorInfo represents error information in an API response.
type ErrorInfo struct {
	Type          string   `json:"type"`
	Reason        string   `json:"reason,omitempty"`
	Message       string   `json:"message"`
	Details       string   `json:"details,omitempty"`
	AllowedModels []string `json:"allowed_models,omitempty"`
}

// SuccessResponse sends a successful response with custom status code.
func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// CreatedResponse sends a created response.
func CreatedResponse(c *gin.Context, data any, message ...string) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Message: "resource created successfully",
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(http.StatusCreated, response)
}

// ErrorResponse sends an error response with custom status code and message.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// ErrorResponseWithError maps an application error onto the wire format.
// Non-AppError values hide their details to avoid leaking internals.
func ErrorResponseWithError(c *gin.Context, err error) {
	var statusCode int
	var errorInfo ErrorInfo

	if appErr := errors.GetAppError(err); appErr != nil {
		statusCode = appErr.Code
		errorInfo = ErrorInfo{
			Type:          string(appErr.Type),
			Reason:        appErr.Reason,
			Message:       appErr.Message,
			Details:       appErr.Details,
			AllowedModels: appErr.AllowedModels,
		}
	} else {
		statusCode = http.StatusInternalServerError
		errorInfo = ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: "internal server error occurred",
		}
	}

	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &errorInfo,
	})
}
