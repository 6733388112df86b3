package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"formgate/internal/apikey"
	"formgate/internal/logger"
	"formgate/internal/site"
	"formgate/internal/submission"
	"formgate/internal/webhook"
)

// Service bundles the admin-side operations over the four resource types.
type Service struct {
	sites       site.Repository
	webhooks    webhook.Repository
	notifier    *webhook.Notifier
	keys        *apikey.Service
	submissions submission.Repository
	logger      logger.Logger
}

func NewService(
	sites site.Repository,
	webhooks webhook.Repository,
	notifier *webhook.Notifier,
	keys *apikey.Service,
	submissions submission.Repository,
	log logger.Logger,
) *Service {
	return &Service{
		sites:       sites,
		webhooks:    webhooks,
		notifier:    notifier,
		keys:        keys,
		submissions: submissions,
		logger:      log,
	}
}

func (s *Service) CreateSite(ctx context.Context, req site.CreateSiteRequest) (*site.Site, error) {
	secret := req.Secret
	if secret == "" {
		generated, err := generateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate site secret: %w", err)
		}
		secret = generated
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	newSite := &site.Site{
		ID:             req.ID,
		Name:           req.Name,
		Secret:         secret,
		RecipientEmail: req.RecipientEmail,
		FromEmail:      req.FromEmail,
		AllowedOrigins: req.AllowedOrigins,
		RedirectURL:    req.RedirectURL,
		Enabled:        enabled,
	}

	if err := s.sites.Create(ctx, newSite); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Site created", "site_id", newSite.ID)
	return newSite, nil
}

func (s *Service) GetSite(ctx context.Context, id string) (*site.Site, error) {
	return s.sites.Get(ctx, id)
}

func (s *Service) ListSites(ctx context.Context) ([]site.Site, error) {
	return s.sites.List(ctx)
}

func (s *Service) UpdateSite(ctx context.Context, id string, req site.UpdateSiteRequest) (*site.Site, error) {
	existing, err := s.sites.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Secret != nil {
		existing.Secret = *req.Secret
	}
	if req.RecipientEmail != nil {
		existing.RecipientEmail = *req.RecipientEmail
	}
	if req.FromEmail != nil {
		existing.FromEmail = *req.FromEmail
	}
	if req.AllowedOrigins != nil {
		existing.AllowedOrigins = *req.AllowedOrigins
	}
	if req.RedirectURL != nil {
		existing.RedirectURL = *req.RedirectURL
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := s.sites.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Site updated", "site_id", id)
	return existing, nil
}

func (s *Service) DeleteSite(ctx context.Context, id string) error {
	if err := s.sites.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfowCtx(ctx, "Site deleted", "site_id", id)
	return nil
}

func (s *Service) CreateWebhook(ctx context.Context, req webhook.CreateWebhookRequest) (*webhook.Webhook, error) {
	// The target site must exist; a webhook for an unknown site would never fire.
	if _, err := s.sites.Get(ctx, req.SiteID); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	hook := &webhook.Webhook{
		SiteID:  req.SiteID,
		URL:     req.URL,
		Enabled: enabled,
	}

	if err := s.webhooks.Create(ctx, hook); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Webhook created", "webhook_id", hook.ID, "site_id", hook.SiteID)
	return hook, nil
}

func (s *Service) GetWebhook(ctx context.Context, id string) (*webhook.Webhook, error) {
	return s.webhooks.Get(ctx, id)
}

func (s *Service) ListWebhooks(ctx context.Context, siteID string) ([]webhook.Webhook, error) {
	return s.webhooks.List(ctx, siteID)
}

func (s *Service) UpdateWebhook(ctx context.Context, id string, req webhook.UpdateWebhookRequest) (*webhook.Webhook, error) {
	existing, err := s.webhooks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		existing.URL = *req.URL
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := s.webhooks.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *Service) DeleteWebhook(ctx context.Context, id string) error {
	return s.webhooks.Delete(ctx, id)
}

// TriggerWebhook sends a synthetic test payload to one webhook so operators
// can verify the endpoint without submitting a real form.
func (s *Service) TriggerWebhook(ctx context.Context, id string) (*webhook.Webhook, error) {
	hook, err := s.webhooks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"siteId":      hook.SiteID,
		"name":        "Test Contact",
		"email":       "test@example.com",
		"message":     "Manual webhook test",
		"metadata":    map[string]string{},
		"submittedAt": time.Now().UTC().Format(time.RFC3339),
		"test":        true,
	}

	if err := s.notifier.Trigger(ctx, hook, payload); err != nil {
		return nil, err
	}

	return s.webhooks.Get(ctx, id)
}

func (s *Service) CreateAPIKey(ctx context.Context, req apikey.CreateKeyRequest) (*apikey.CreatedKey, error) {
	return s.keys.Create(ctx, req)
}

func (s *Service) ListAPIKeys(ctx context.Context) ([]apikey.Key, error) {
	return s.keys.List(ctx)
}

func (s *Service) DeleteAPIKey(ctx context.Context, id string) error {
	return s.keys.Delete(ctx, id)
}

func (s *Service) ListSubmissions(ctx context.Context, filter submission.ListFilter) ([]submission.Record, error) {
	return s.submissions.List(ctx, filter)
}

func (s *Service) GetSubmission(ctx context.Context, id string) (*submission.Record, error) {
	return s.submissions.Get(ctx, id)
}

func (s *Service) DeleteSubmission(ctx context.Context, id string) error {
	return s.submissions.Delete(ctx, id)
}

func (s *Service) SubmissionStats(ctx context.Context) ([]submission.SiteStats, error) {
	return s.submissions.Stats(ctx)
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
