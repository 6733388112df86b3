package contact

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"formgate/internal/broker"
	"formgate/internal/config"
	"formgate/internal/constants"
	"formgate/internal/logger"
	"formgate/internal/site"
	"formgate/internal/submission"
	"formgate/pkg/metrics"
)

type SiteResolver interface {
	Resolve(ctx context.Context, id string) (*site.Site, error)
}

type RateLimiter interface {
	TryAcquire(ctx context.Context, siteID, clientIP string) bool
}

type SignatureVerifier interface {
	Verify(secret, siteID, ts, email, name, message string, metadata map[string]string, sig string) bool
}

type Mailer interface {
	SendSubmission(ctx context.Context, s *site.Site, sub Submission, metadata map[string]string) error
}

type SubmissionStore interface {
	Save(ctx context.Context, rec *submission.Record) error
}

type Notifier interface {
	Notify(siteID string, payload map[string]interface{})
}

// Service runs the submission pipeline. Stages are strictly ordered and each
// failing stage short-circuits with its own outcome; side effects after a
// full pass are best-effort and never fail the response.
type Service struct {
	sites    SiteResolver
	limiter  RateLimiter
	verifier SignatureVerifier
	mailer   Mailer
	store    SubmissionStore
	notifier Notifier
	producer broker.Producer
	cfg      config.ContactConfig
	topic    string
	logger   logger.Logger
}

func NewService(
	sites SiteResolver,
	limiter RateLimiter,
	verifier SignatureVerifier,
	mailer Mailer,
	store SubmissionStore,
	notifier Notifier,
	producer broker.Producer,
	cfg config.ContactConfig,
	topic string,
	log logger.Logger,
) *Service {
	return &Service{
		sites:    sites,
		limiter:  limiter,
		verifier: verifier,
		mailer:   mailer,
		store:    store,
		notifier: notifier,
		producer: producer,
		cfg:      cfg,
		topic:    topic,
		logger:   log,
	}
}

// Process runs the ordered pipeline for one submission. Panics anywhere in
// the pipeline are converted to a ServerError outcome so the caller always
// gets the generic failure response.
func (s *Service) Process(ctx context.Context, siteID, origin, clientIP string, r *http.Request) (result Result) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorwCtx(ctx, "Panic in submission pipeline",
				"panic", rec,
				"site_id", siteID,
				"client_ip", clientIP,
			)
			result = Result{Outcome: OutcomeServerError}
		}
		metrics.ContactSubmissionsTotal.WithLabelValues(result.Outcome.String()).Inc()
		metrics.ObservePipelineDuration(time.Since(start), result.Outcome.String())
	}()

	cfg, err := s.sites.Resolve(ctx, siteID)
	if err != nil {
		s.logger.InfowCtx(ctx, "Rejected submission for unknown site",
			"site_id", siteID,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeUnknownSite}
	}

	if !s.limiter.TryAcquire(ctx, siteID, clientIP) {
		s.logger.InfowCtx(ctx, "Rate limited submission",
			"site_id", siteID,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeRateLimited}
	}

	sub, err := ParseBody(r, s.cfg.MaxBodyBytes)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Failed to parse submission body",
			"error", err,
			"site_id", siteID,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeServerError}
	}

	if HoneypotTriggered(sub) {
		// Silent by design: bots get the least informative response.
		s.logger.InfowCtx(ctx, "Honeypot triggered",
			"site_id", siteID,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeHoneypotSilent}
	}

	if !OriginAllowed(origin, cfg.AllowedOrigins) {
		s.logger.InfowCtx(ctx, "Rejected submission from disallowed origin",
			"site_id", siteID,
			"origin", origin,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeOriginRejected}
	}

	ok, missing := CheckRequired(sub)
	if !ok {
		return Result{Outcome: OutcomeValidationFailed, Missing: missing}
	}

	metadata := sub.Metadata()

	if !s.verifier.Verify(cfg.Secret, siteID, sub.Timestamp(), sub.Email(), sub.Name(), sub.Message(), metadata, sub.Signature()) {
		s.logger.WarnwCtx(ctx, "Rejected submission with invalid signature",
			"site_id", siteID,
			"client_ip", clientIP,
		)
		return Result{Outcome: OutcomeSignatureInvalid}
	}

	s.dispatch(ctx, cfg, sub, metadata, clientIP)

	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = s.cfg.DefaultRedirect
	}

	return Result{Outcome: OutcomeSuccess, Redirect: redirect}
}

// dispatch runs the post-validation side effects. Each one is independent
// and swallowed on failure; the submitter already earned their success.
func (s *Service) dispatch(ctx context.Context, cfg *site.Site, sub Submission, metadata map[string]string, clientIP string) {
	submittedAt := time.Now().UTC()

	if s.mailer != nil {
		if err := s.mailer.SendSubmission(ctx, cfg, sub, metadata); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to send submission email",
				"error", err,
				"site_id", cfg.ID,
				"client_ip", clientIP,
			)
		}
	}

	if s.store != nil {
		rec := &submission.Record{
			SiteID:      cfg.ID,
			Name:        sub.Name(),
			Email:       sub.Email(),
			Message:     sub.Message(),
			ClientIP:    clientIP,
			Metadata:    metadata,
			SubmittedAt: submittedAt,
		}
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to persist submission",
				"error", err,
				"site_id", cfg.ID,
			)
		}
	}

	payload := map[string]interface{}{
		"siteId":      cfg.ID,
		"name":        sub.Name(),
		"email":       sub.Email(),
		"message":     sub.Message(),
		"metadata":    metadata,
		"submittedAt": submittedAt.Format(time.RFC3339),
	}

	if s.notifier != nil {
		s.notifier.Notify(cfg.ID, payload)
	}

	if s.producer != nil {
		event := broker.Event{
			ID:        uuid.New().String(),
			Type:      constants.SubmissionEventType,
			SiteID:    cfg.ID,
			Timestamp: submittedAt,
			Payload:   payload,
		}
		if err := s.producer.Publish(ctx, s.topic, event); err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to publish submission event",
				"error", err,
				"site_id", cfg.ID,
			)
		}
	}
}
