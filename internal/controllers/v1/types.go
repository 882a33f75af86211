// Package v1 implements the v1 HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shulebooks/backend/internal/httputil"
)

// URIID is the URI binding for all detail routes.
type URIID struct {
	ID string `uri:"id" binding:"required"`
}

// parseID parses the ID path parameter. On failure it writes the error
// response and reports false, the handler must return immediately.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, httputil.ErrInvalidUUID)
		return uuid.Nil, false
	}

	return id, true
}
