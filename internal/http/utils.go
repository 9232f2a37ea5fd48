package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/sandbox"
)

// statusFor maps a file operation error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sandbox.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sandbox.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, sandbox.ErrPathEscape):
		return http.StatusBadRequest
	case errors.Is(err, sandbox.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fileError renders a file operation error with its taxonomy kind so the
// UI can branch without parsing messages.
func fileError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  sandbox.KindOf(err),
	})
}
