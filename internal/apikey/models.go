package apikey

import "time"

// Key is an admin API credential. Only the SHA-256 hash is stored; the
// plaintext is returned exactly once at creation. The prefix is kept so
// operators can tell keys apart in listings.
type Key struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	KeyHash    string     `json:"-"`
	Enabled    bool       `json:"enabled"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type CreateKeyRequest struct {
	Name      string     `json:"name" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// CreatedKey is the creation response carrying the one-time plaintext.
type CreatedKey struct {
	Key
	Plaintext string `json:"key"`
}
