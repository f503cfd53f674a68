package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope every error travels in.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler translates errors into JSON responses.
type GinErrorHandler struct {
	// Debug keeps underlying messages in 500 responses. Must be false in
	// production so internals never leak.
	Debug bool
}

var defaultHandler = &GinErrorHandler{}

// SetDebug configures the package-level handler. Called once at startup.
func SetDebug(debug bool) {
	defaultHandler.Debug = debug
}

// HandleGinError writes err to the response, wrapping non-AppErrors as 500s.
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.Error("server error", "code", appErr.Code, "domain", appErr.Domain, "error", appErr.Error())
		if !h.Debug {
			sanitized := *appErr
			sanitized.Message = "Internal server error"
			sanitized.Details = nil
			appErr = &sanitized
		}
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleError is the shorthand used by handlers.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
