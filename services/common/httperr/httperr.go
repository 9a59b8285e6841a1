// Package httperr holds the shared HTTP error taxonomy. Controllers map
// service failures onto these and hand them straight to gin.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error with an HTTP status.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Respond writes e as the response body with its status code.
func Respond(c *gin.Context, e *Error) {
	c.JSON(e.Code, gin.H{"error": e.Message})
}

var (
	ErrBadRequest          = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized        = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound            = New(http.StatusNotFound, "Not found", nil)
	ErrConflict            = New(http.StatusConflict, "Conflict", nil)
	ErrInternalServer      = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrUpstreamUnavailable = New(http.StatusBadGateway, "Upstream service unavailable", nil)
)
