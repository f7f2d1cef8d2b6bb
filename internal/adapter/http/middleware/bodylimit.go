package middleware

import (
	"fmt"
	"net/http"

	"federated-bank/pkg/apperror"
	"federated-bank/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects requests that declare a body over maxBytes and caps
// the reader for the rest, so an undeclared oversized body fails to bind.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.Validation(fmt.Sprintf("request body exceeds %d bytes", maxBytes)))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
