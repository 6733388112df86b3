package webhook

import "time"

// Webhook is an admin-registered delivery target for a site's submissions.
// Delivery status fields record the most recent attempt.
type Webhook struct {
	ID              string     `json:"id"`
	SiteID          string     `json:"siteId"`
	URL             string     `json:"url"`
	Enabled         bool       `json:"enabled"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
	LastSuccess     *bool      `json:"lastSuccess,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateWebhookRequest struct {
	SiteID  string `json:"siteId" binding:"required"`
	URL     string `json:"url" binding:"required,url"`
	Enabled *bool  `json:"enabled"`
}

type UpdateWebhookRequest struct {
	URL     *string `json:"url"`
	Enabled *bool   `json:"enabled"`
}
