package contact

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"formgate/internal/logger"
	"formgate/pkg/logging"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, corsOrigins []string) {
	router.POST("/v1/contact/:siteId", h.Submit(corsOrigins))
	router.OPTIONS("/v1/contact/:siteId", h.Preflight(corsOrigins))
}

func (h *Handler) Preflight(corsOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		CORSHeaders(c, corsOrigins)
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) Submit(corsOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		CORSHeaders(c, corsOrigins)

		siteID := c.Param("siteId")
		clientIP := ClientIP(c.Request)

		ctx := logging.WithSiteID(c.Request.Context(), siteID)
		ctx = logging.WithClientIP(ctx, clientIP)

		result := h.service.Process(ctx, siteID, c.GetHeader("Origin"), clientIP, c.Request)

		switch result.Outcome {
		case OutcomeSuccess:
			c.JSON(http.StatusOK, gin.H{"ok": true, "redirect": result.Redirect})
		case OutcomeHoneypotSilent:
			c.Status(http.StatusNoContent)
		case OutcomeRateLimited:
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "validation", "rateLimit": true})
		case OutcomeOriginRejected:
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation", "origin": false})
		case OutcomeValidationFailed:
			fields := gin.H{}
			for field, absent := range result.Missing {
				fields[field] = !absent
			}
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation", "fields": fields})
		case OutcomeSignatureInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation", "signature": false})
		case OutcomeUnknownSite:
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "server"})
		}
	}
}

// ClientIP resolves the submitting client behind proxies: first entry of
// X-Forwarded-For, then X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
