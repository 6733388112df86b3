package contact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formgate/internal/config"
	"formgate/internal/logger"
	"formgate/internal/site"
	"formgate/internal/submission"
	pkgerrors "formgate/pkg/errors"
)

type stubResolver struct {
	site *site.Site
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, id string) (*site.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.site, nil
}

type stubLimiter struct {
	allow bool
}

func (s *stubLimiter) TryAcquire(ctx context.Context, siteID, clientIP string) bool {
	return s.allow
}

type stubVerifier struct {
	ok     bool
	called bool
}

func (s *stubVerifier) Verify(secret, siteID, ts, email, name, message string, metadata map[string]string, sig string) bool {
	s.called = true
	return s.ok
}

type spyMailer struct {
	calls    int
	lastSite *site.Site
	lastSub  Submission
	lastMeta map[string]string
	err      error
}

func (s *spyMailer) SendSubmission(ctx context.Context, cfg *site.Site, sub Submission, metadata map[string]string) error {
	s.calls++
	s.lastSite = cfg
	s.lastSub = sub
	s.lastMeta = metadata
	return s.err
}

type spyStore struct {
	saved []*submission.Record
	err   error
}

func (s *spyStore) Save(ctx context.Context, rec *submission.Record) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, rec)
	return nil
}

type spyNotifier struct {
	calls    int
	lastSite string
	lastData map[string]interface{}
}

func (s *spyNotifier) Notify(siteID string, payload map[string]interface{}) {
	s.calls++
	s.lastSite = siteID
	s.lastData = payload
}

type pipelineFixture struct {
	resolver *stubResolver
	limiter  *stubLimiter
	verifier *stubVerifier
	mailer   *spyMailer
	store    *spyStore
	notifier *spyNotifier
	service  *Service
}

func newFixture() *pipelineFixture {
	f := &pipelineFixture{
		resolver: &stubResolver{site: &site.Site{
			ID:             "acme",
			RecipientEmail: "owner@acme.com",
			FromEmail:      "noreply@acme.com",
			RedirectURL:    "/thanks",
			Enabled:        true,
		}},
		limiter:  &stubLimiter{allow: true},
		verifier: &stubVerifier{ok: true},
		mailer:   &spyMailer{},
		store:    &spyStore{},
		notifier: &spyNotifier{},
	}

	cfg := config.ContactConfig{
		MaxBodyBytes:    65536,
		DefaultRedirect: "/form-sent",
	}

	f.service = NewService(
		f.resolver, f.limiter, f.verifier,
		f.mailer, f.store, f.notifier, nil,
		cfg, "", logger.NopLogger(),
	)
	return f
}

func formRequest(body string) *http.Request {
	r := httptest.NewRequest("POST", "/v1/contact/acme", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestProcessSuccess(t *testing.T) {
	f := newFixture()

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi&phone=555"))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "/thanks", result.Redirect)
	assert.Equal(t, 1, f.mailer.calls)
	require.Len(t, f.store.saved, 1)
	assert.Equal(t, "acme", f.store.saved[0].SiteID)
	assert.Equal(t, "1.2.3.4", f.store.saved[0].ClientIP)
	assert.Equal(t, map[string]string{"phone": "555"}, f.store.saved[0].Metadata)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, "acme", f.notifier.lastSite)
}

func TestProcessDefaultRedirect(t *testing.T) {
	f := newFixture()
	f.resolver.site.RedirectURL = ""

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "/form-sent", result.Redirect)
}

func TestProcessUnknownSite(t *testing.T) {
	f := newFixture()
	f.resolver.err = pkgerrors.ErrValidation

	result := f.service.Process(context.Background(), "ghost", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeUnknownSite, result.Outcome)
	assert.Zero(t, f.mailer.calls)
}

func TestProcessRateLimited(t *testing.T) {
	f := newFixture()
	f.limiter.allow = false

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeRateLimited, result.Outcome)
	assert.Zero(t, f.mailer.calls)
}

func TestProcessHoneypotSilentAndNoSideEffects(t *testing.T) {
	f := newFixture()

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi&_hp=bot"))

	assert.Equal(t, OutcomeHoneypotSilent, result.Outcome)
	assert.Zero(t, f.mailer.calls)
	assert.Empty(t, f.store.saved)
	assert.Zero(t, f.notifier.calls)
}

func TestProcessHoneypotRunsBeforeOriginAndFieldChecks(t *testing.T) {
	f := newFixture()
	f.resolver.site.AllowedOrigins = []string{"https://acme.com"}

	// Bad origin AND missing fields, but the filled honeypot wins.
	result := f.service.Process(context.Background(), "acme", "https://evil.com", "1.2.3.4",
		formRequest("_hp=bot"))

	assert.Equal(t, OutcomeHoneypotSilent, result.Outcome)
}

func TestProcessOriginRejected(t *testing.T) {
	f := newFixture()
	f.resolver.site.AllowedOrigins = []string{"https://acme.com"}

	result := f.service.Process(context.Background(), "acme", "https://evil.com", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeOriginRejected, result.Outcome)
	assert.Zero(t, f.mailer.calls)
}

func TestProcessValidationFailed(t *testing.T) {
	f := newFixture()

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeValidationFailed, result.Outcome)
	assert.True(t, result.Missing["name"])
	assert.False(t, result.Missing["email"])
	assert.False(t, result.Missing["message"])
	assert.Zero(t, f.mailer.calls)
}

func TestProcessSignatureInvalid(t *testing.T) {
	f := newFixture()
	f.verifier.ok = false

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeSignatureInvalid, result.Outcome)
	assert.Zero(t, f.mailer.calls)
}

func TestProcessEmailFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.mailer.err = assert.AnError

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.Len(t, f.store.saved, 1)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestProcessStoreFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.store.err = assert.AnError

	result := f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, f.mailer.calls)
}

func TestProcessMetadataExcludedFromPayloadReservedKeys(t *testing.T) {
	f := newFixture()

	f.service.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi&_ts=123&_sig=abc&company=Acme"))

	require.Equal(t, 1, f.mailer.calls)
	assert.Equal(t, map[string]string{"company": "Acme"}, f.mailer.lastMeta)

	meta, ok := f.notifier.lastData["metadata"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"company": "Acme"}, meta)
}

type panickyLimiter struct{}

func (panickyLimiter) TryAcquire(ctx context.Context, siteID, clientIP string) bool {
	panic("boom")
}

func TestProcessPanicBecomesServerError(t *testing.T) {
	f := newFixture()
	svc := NewService(
		f.resolver, panickyLimiter{}, f.verifier,
		f.mailer, f.store, f.notifier, nil,
		config.ContactConfig{MaxBodyBytes: 65536}, "", logger.NopLogger(),
	)

	result := svc.Process(context.Background(), "acme", "", "1.2.3.4",
		formRequest("name=Ada&email=a%40b.com&message=hi"))

	assert.Equal(t, OutcomeServerError, result.Outcome)
}
