package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/compucar/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Tuning file uploads are the largest payloads the API accepts, so the
// limit is configured per deployment.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		// Wrap the body with a limited reader for streaming requests
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
