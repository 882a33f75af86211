package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shulebooks/backend/internal/models"
)

var (
	ErrRequestBodyEmpty = errors.New("the request body must not be empty")
	ErrInvalidBody      = errors.New("the body of your request contains invalid or un-parseable data. Please check and try again")
	ErrInvalidUUID      = errors.New("the specified resource ID is not a valid UUID")
)

// HTTPError is the response body for all error responses.
type HTTPError struct {
	Error string `json:"error" example:"there is no account matching your query"`
}

// NewError writes an error response with an explicit status code.
func NewError(c *gin.Context, status int, err error) {
	c.JSON(status, HTTPError{
		Error: err.Error(),
	})
}

// Error writes an error response, deriving the status code from the error.
func Error(c *gin.Context, err error) {
	NewError(c, status(c, err), err)
}

// status maps an error to its HTTP status code. Every error a handler
// sees wraps one of the model base errors; anything else is a client
// error from request parsing.
func status(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnavailable):
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
