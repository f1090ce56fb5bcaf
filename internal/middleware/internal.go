package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verifai/proctor-backend/internal/response"
)

const internalKeyHeader = "X-Internal-Api-Key"

// RequireInternalKey guards the service-to-service endpoints the bouncer
// calls. The shared secret comes from config; an empty secret disables
// the whole internal surface rather than leaving it open.
func RequireInternalKey(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.AbortFail(c, http.StatusForbidden, response.ErrInternalOnly)
			return
		}

		got := c.GetHeader(internalKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			response.AbortFail(c, http.StatusForbidden, response.ErrInternalOnly)
			return
		}

		c.Next()
	}
}
