package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"formgate/internal/config"
	"formgate/internal/logger"
	"formgate/pkg/circuitbreaker"
	"formgate/pkg/metrics"
	"formgate/pkg/retry"
)

// Notifier delivers submission payloads to a site's registered webhooks.
// Delivery is detached from the triggering request: Notify returns
// immediately and each endpoint is attempted in the background, bounded by
// a semaphore so a slow endpoint cannot pile up goroutines.
type Notifier struct {
	repo    Repository
	client  *http.Client
	breaker *circuitbreaker.Wrapper
	sem     *semaphore.Weighted
	policy  retry.Policy
	logger  logger.Logger
}

func NewNotifier(repo Repository, cfg config.WebhookConfig, log logger.Logger) *Notifier {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}

	return &Notifier{
		repo: repo,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		breaker: circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("webhook-delivery")),
		sem:     semaphore.NewWeighted(maxConcurrent),
		policy: retry.Policy{
			MaxAttempts:     cfg.MaxAttempts,
			InitialInterval: cfg.InitialInterval,
			MaxInterval:     cfg.MaxInterval,
			Multiplier:      cfg.Multiplier,
		},
		logger: log,
	}
}

// Notify fans the payload out to every enabled webhook of the site. Fire and
// forget: the lookup and every delivery run detached from the caller, so a
// saturated semaphore or a slow endpoint never stalls the triggering request.
// Errors are recorded on the webhook row and logged, never returned.
func (n *Notifier) Notify(siteID string, payload map[string]interface{}) {
	go n.fanOut(siteID, payload)
}

func (n *Notifier) fanOut(siteID string, payload map[string]interface{}) {
	ctx := context.Background()

	hooks, err := n.repo.ListEnabled(ctx, siteID)
	if err != nil {
		n.logger.Errorw("Failed to list webhooks for delivery",
			"error", err,
			"site_id", siteID,
		)
		return
	}

	for _, hook := range hooks {
		hook := hook
		if err := n.sem.Acquire(ctx, 1); err != nil {
			return
		}
		go func() {
			defer n.sem.Release(1)
			n.deliver(ctx, &hook, payload)
		}()
	}
}

// Trigger delivers the payload to one webhook synchronously. Used by the
// admin API's manual test endpoint.
func (n *Notifier) Trigger(ctx context.Context, hook *Webhook, payload map[string]interface{}) error {
	return n.deliver(ctx, hook, payload)
}

func (n *Notifier) deliver(ctx context.Context, hook *Webhook, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	start := time.Now()
	attempt := 0

	err = retry.RetryWithCallback(ctx, n.policy, func() error {
		attempt++
		_, execErr := n.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return nil, n.post(ctx, hook.URL, body)
		})
		return execErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.WebhookRetryAttemptsTotal.Inc()
		n.logger.Warnw("Retrying webhook delivery",
			"webhook_id", hook.ID,
			"site_id", hook.SiteID,
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})

	if err != nil {
		metrics.ObserveWebhookDelivery(time.Since(start), "error")
		n.logger.Errorw("Webhook delivery failed",
			"webhook_id", hook.ID,
			"site_id", hook.SiteID,
			"url", hook.URL,
			"attempts", attempt,
			"error", err,
		)
		n.recordDelivery(hook.ID, false, err.Error())
		return err
	}

	metrics.ObserveWebhookDelivery(time.Since(start), "success")
	n.logger.Infow("Webhook delivered",
		"webhook_id", hook.ID,
		"site_id", hook.SiteID,
		"attempts", attempt,
	)
	n.recordDelivery(hook.ID, true, "")
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (n *Notifier) recordDelivery(id string, success bool, deliveryErr string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.repo.RecordDelivery(ctx, id, success, deliveryErr); err != nil {
		n.logger.Errorw("Failed to record webhook delivery status",
			"error", err,
			"webhook_id", id,
		)
	}
}
