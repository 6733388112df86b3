package site

import "time"

// Site is a registered tenant of the contact endpoint. The ID is the public
// slug embedded in form URLs; the secret never leaves the server. An empty
// secret disables signature verification for the tenant.
type Site struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Secret         string    `json:"-"`
	RecipientEmail string    `json:"recipientEmail"`
	FromEmail      string    `json:"fromEmail"`
	AllowedOrigins []string  `json:"allowedOrigins"`
	RedirectURL    string    `json:"redirectUrl,omitempty"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateSiteRequest struct {
	ID             string   `json:"id" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	Secret         string   `json:"secret"`
	RecipientEmail string   `json:"recipientEmail" binding:"required,email"`
	FromEmail      string   `json:"fromEmail" binding:"required,email"`
	AllowedOrigins []string `json:"allowedOrigins"`
	RedirectURL    string   `json:"redirectUrl"`
	Enabled        *bool    `json:"enabled"`
}

type UpdateSiteRequest struct {
	Name           *string   `json:"name"`
	Secret         *string   `json:"secret"`
	RecipientEmail *string   `json:"recipientEmail"`
	FromEmail      *string   `json:"fromEmail"`
	AllowedOrigins *[]string `json:"allowedOrigins"`
	RedirectURL    *string   `json:"redirectUrl"`
	Enabled        *bool     `json:"enabled"`
}
