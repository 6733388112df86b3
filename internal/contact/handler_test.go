package contact

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formgate/internal/config"
	"formgate/internal/logger"
	pkgerrors "formgate/pkg/errors"
)

func newTestRouter(f *pipelineFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHandler(f.service, logger.NopLogger())
	handler.RegisterRoutes(router, []string{"https://default.example", "https://acme.com"})
	return router
}

func doRequest(router *gin.Engine, method, path, origin, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandlerOptionsPreflight(t *testing.T) {
	router := newTestRouter(newFixture())

	w := doRequest(router, "OPTIONS", "/v1/contact/acme", "https://acme.com", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://acme.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.Empty(t, w.Body.String())
}

func TestHandlerCORSFallsBackToDefaultOrigin(t *testing.T) {
	router := newTestRouter(newFixture())

	w := doRequest(router, "OPTIONS", "/v1/contact/acme", "https://stranger.example", "")

	assert.Equal(t, "https://default.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlerSuccess(t *testing.T) {
	router := newTestRouter(newFixture())

	w := doRequest(router, "POST", "/v1/contact/acme", "https://acme.com",
		"name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "/thanks", body["redirect"])
	assert.Equal(t, "https://acme.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlerUnknownSite(t *testing.T) {
	f := newFixture()
	f.resolver.err = pkgerrors.ErrValidation
	router := newTestRouter(f)

	w := doRequest(router, "POST", "/v1/contact/ghost", "", "name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "validation", body["error"])
	assert.NotContains(t, body, "fields")
	assert.NotContains(t, body, "signature")
}

func TestHandlerRateLimited(t *testing.T) {
	f := newFixture()
	f.limiter.allow = false
	router := newTestRouter(f)

	w := doRequest(router, "POST", "/v1/contact/acme", "", "name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, true, body["rateLimit"])
}

func TestHandlerHoneypotSilent(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f)

	w := doRequest(router, "POST", "/v1/contact/acme", "", "name=Ada&email=a%40b.com&message=hi&_hp=bot")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Zero(t, f.mailer.calls)
}

func TestHandlerOriginRejected(t *testing.T) {
	f := newFixture()
	f.resolver.site.AllowedOrigins = []string{"https://acme.com"}
	router := newTestRouter(f)

	w := doRequest(router, "POST", "/v1/contact/acme", "https://evil.com", "name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, false, body["origin"])
}

func TestHandlerValidationFailedFields(t *testing.T) {
	router := newTestRouter(newFixture())

	w := doRequest(router, "POST", "/v1/contact/acme", "", "email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation", body["error"])

	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, fields["name"])
	assert.Equal(t, true, fields["email"])
	assert.Equal(t, true, fields["message"])
}

func TestHandlerSignatureInvalid(t *testing.T) {
	f := newFixture()
	f.verifier.ok = false
	router := newTestRouter(f)

	w := doRequest(router, "POST", "/v1/contact/acme", "", "name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation", body["error"])
	assert.Equal(t, false, body["signature"])
}

func TestHandlerServerError(t *testing.T) {
	f := newFixture()
	svc := NewService(
		f.resolver, panickyLimiter{}, f.verifier,
		f.mailer, f.store, f.notifier, nil,
		config.ContactConfig{MaxBodyBytes: 65536}, "", logger.NopLogger(),
	)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router, nil)

	w := doRequest(router, "POST", "/v1/contact/acme", "", "name=Ada&email=a%40b.com&message=hi")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "server", body["error"])
}

func TestClientIPResolution(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.1:33445"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "9.8.7.6")
	assert.Equal(t, "9.8.7.6", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", ClientIP(r))
}
