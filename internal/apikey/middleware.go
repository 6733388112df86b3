package apikey

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"formgate/internal/constants"
	"formgate/internal/logger"
	pkgerrors "formgate/pkg/errors"
)

// Middleware guards the admin API: every request must carry a valid key in
// the X-Api-Key header.
func Middleware(service *Service, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := service.Validate(c.Request.Context(), c.GetHeader(constants.APIKeyHeader))
		if err != nil {
			if pkgerrors.IsUnauthorized(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, pkgerrors.ToErrorResponse(err))
				return
			}
			log.ErrorwCtx(c.Request.Context(), "API key validation failed",
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, pkgerrors.ToErrorResponse(pkgerrors.ErrInternal))
			return
		}

		c.Set("api_key_id", key.ID)
		c.Next()
	}
}
