package broker

import (
	"context"
	"time"
)

// Event is the envelope published for every accepted submission.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	SiteID    string                 `json:"siteId"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

type Producer interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}
