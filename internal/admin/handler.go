package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"formgate/internal/apikey"
	"formgate/internal/logger"
	"formgate/internal/site"
	"formgate/internal/submission"
	"formgate/internal/webhook"
	"formgate/pkg/errors"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	v1 := router.Group("/api/v1", auth)
	{
		sites := v1.Group("/sites")
		{
			sites.GET("", h.ListSites)
			sites.POST("", h.CreateSite)
			sites.GET("/:id", h.GetSite)
			sites.PUT("/:id", h.UpdateSite)
			sites.DELETE("/:id", h.DeleteSite)
		}

		webhooks := v1.Group("/webhooks")
		{
			webhooks.GET("", h.ListWebhooks)
			webhooks.POST("", h.CreateWebhook)
			webhooks.GET("/:id", h.GetWebhook)
			webhooks.PUT("/:id", h.UpdateWebhook)
			webhooks.DELETE("/:id", h.DeleteWebhook)
			webhooks.POST("/:id/trigger", h.TriggerWebhook)
		}

		keys := v1.Group("/apikeys")
		{
			keys.GET("", h.ListAPIKeys)
			keys.POST("", h.CreateAPIKey)
			keys.DELETE("/:id", h.DeleteAPIKey)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("", h.ListSubmissions)
			submissions.GET("/stats", h.SubmissionStats)
			submissions.GET("/:id", h.GetSubmission)
			submissions.DELETE("/:id", h.DeleteSubmission)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error",
		"error", err,
		"path", c.Request.URL.Path,
	)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) ListSites(c *gin.Context) {
	sites, err := h.service.ListSites(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *Handler) CreateSite(c *gin.Context) {
	var req site.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	created, err := h.service.CreateSite(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetSite(c *gin.Context) {
	s, err := h.service.GetSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSite(c *gin.Context) {
	var req site.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	updated, err := h.service.UpdateSite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteSite(c *gin.Context) {
	if err := h.service.DeleteSite(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListWebhooks(c *gin.Context) {
	hooks, err := h.service.ListWebhooks(c.Request.Context(), c.Query("siteId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hooks)
}

func (h *Handler) CreateWebhook(c *gin.Context) {
	var req webhook.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	created, err := h.service.CreateWebhook(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetWebhook(c *gin.Context) {
	hook, err := h.service.GetWebhook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

func (h *Handler) UpdateWebhook(c *gin.Context) {
	var req webhook.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	updated, err := h.service.UpdateWebhook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteWebhook(c *gin.Context) {
	if err := h.service.DeleteWebhook(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TriggerWebhook(c *gin.Context) {
	hook, err := h.service.TriggerWebhook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

func (h *Handler) ListAPIKeys(c *gin.Context) {
	keys, err := h.service.ListAPIKeys(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, keys)
}

func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req apikey.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	created, err := h.service.CreateAPIKey(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) DeleteAPIKey(c *gin.Context) {
	if err := h.service.DeleteAPIKey(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := submission.ListFilter{
		SiteID: c.Query("siteId"),
		Limit:  limit,
		Offset: offset,
	}

	records, err := h.service.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetSubmission(c *gin.Context) {
	rec, err := h.service.GetSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteSubmission(c *gin.Context) {
	if err := h.service.DeleteSubmission(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubmissionStats(c *gin.Context) {
	stats, err := h.service.SubmissionStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
