package submission

import "time"

// Record is a stored contact submission.
type Record struct {
	ID          string            `json:"id"`
	SiteID      string            `json:"siteId"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Message     string            `json:"message"`
	ClientIP    string            `json:"clientIp,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ListFilter narrows and pages the admin submission listing.
type ListFilter struct {
	SiteID string
	Limit  int
	Offset int
}

// SiteStats aggregates submission counts for one site.
type SiteStats struct {
	SiteID string `json:"siteId"`
	Total  int64  `json:"total"`
	Last7d int64  `json:"last7d"`
}
