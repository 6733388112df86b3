package contact

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSHeaders writes the fixed CORS policy for the public endpoint. The
// caller's origin is echoed back when it is in the configured allow-list,
// otherwise the first configured entry is used as the default.
func CORSHeaders(c *gin.Context, allowedOrigins []string) {
	origin := c.GetHeader("Origin")

	allowed := ""
	if len(allowedOrigins) > 0 {
		allowed = allowedOrigins[0]
	}
	for _, o := range allowedOrigins {
		if strings.EqualFold(o, origin) {
			allowed = origin
			break
		}
	}

	c.Header("Access-Control-Allow-Origin", allowed)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Access-Control-Max-Age", "86400")
}
