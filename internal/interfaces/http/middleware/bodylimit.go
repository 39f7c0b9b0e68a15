package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meterly/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body at maxBytes. Requests declaring a
// larger Content-Length are rejected up front; chunked bodies are capped
// while being read via http.MaxBytesReader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge,
					"Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
