package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formgate/internal/config"
	"formgate/internal/logger"
)

type fakeRepo struct {
	mu       sync.Mutex
	hooks    []Webhook
	recorded []recordedDelivery
}

type recordedDelivery struct {
	id      string
	success bool
	err     string
}

func (f *fakeRepo) Create(ctx context.Context, w *Webhook) error          { return nil }
func (f *fakeRepo) Get(ctx context.Context, id string) (*Webhook, error) { return nil, nil }
func (f *fakeRepo) List(ctx context.Context, siteID string) ([]Webhook, error) {
	return f.hooks, nil
}
func (f *fakeRepo) ListEnabled(ctx context.Context, siteID string) ([]Webhook, error) {
	return f.hooks, nil
}
func (f *fakeRepo) Update(ctx context.Context, w *Webhook) error { return nil }
func (f *fakeRepo) Delete(ctx context.Context, id string) error  { return nil }
func (f *fakeRepo) RecordDelivery(ctx context.Context, id string, success bool, deliveryErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, recordedDelivery{id: id, success: success, err: deliveryErr})
	return nil
}

func (f *fakeRepo) deliveries() []recordedDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedDelivery, len(f.recorded))
	copy(out, f.recorded)
	return out
}

func testConfig() config.WebhookConfig {
	return config.WebhookConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
		RequestTimeout:  time.Second,
		MaxConcurrent:   4,
	}
}

func TestTriggerDeliversPayload(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeRepo{}
	n := NewNotifier(repo, testConfig(), logger.NopLogger())

	hook := &Webhook{ID: "wh-1", SiteID: "acme", URL: server.URL}
	err := n.Trigger(context.Background(), hook, map[string]interface{}{"siteId": "acme", "name": "Ada"})

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, string(gotBody), `"siteId":"acme"`)

	deliveries := repo.deliveries()
	require.Len(t, deliveries, 1)
	assert.True(t, deliveries[0].success)
	assert.Empty(t, deliveries[0].err)
}

func TestTriggerRetriesOnServerError(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeRepo{}
	n := NewNotifier(repo, testConfig(), logger.NopLogger())

	hook := &Webhook{ID: "wh-1", SiteID: "acme", URL: server.URL}
	err := n.Trigger(context.Background(), hook, map[string]interface{}{})

	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestTriggerRecordsFailureAfterExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := &fakeRepo{}
	n := NewNotifier(repo, testConfig(), logger.NopLogger())

	hook := &Webhook{ID: "wh-1", SiteID: "acme", URL: server.URL}
	err := n.Trigger(context.Background(), hook, map[string]interface{}{})

	require.Error(t, err)
	deliveries := repo.deliveries()
	require.Len(t, deliveries, 1)
	assert.False(t, deliveries[0].success)
	assert.NotEmpty(t, deliveries[0].err)
}

func TestNotifyFansOutToAllEnabledWebhooks(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeRepo{hooks: []Webhook{
		{ID: "wh-1", SiteID: "acme", URL: server.URL + "/a", Enabled: true},
		{ID: "wh-2", SiteID: "acme", URL: server.URL + "/b", Enabled: true},
	}}
	n := NewNotifier(repo, testConfig(), logger.NopLogger())

	n.Notify("acme", map[string]interface{}{"siteId": "acme"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return hits["/a"] == 1 && hits["/b"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(repo.deliveries()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyReturnsWhileDeliveriesAreInFlight(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxConcurrent = 1

	// More hooks than delivery slots while the endpoint is stuck.
	repo := &fakeRepo{hooks: []Webhook{
		{ID: "wh-1", SiteID: "acme", URL: server.URL, Enabled: true},
		{ID: "wh-2", SiteID: "acme", URL: server.URL, Enabled: true},
	}}
	n := NewNotifier(repo, cfg, logger.NopLogger())

	done := make(chan struct{})
	go func() {
		n.Notify("acme", map[string]interface{}{"siteId": "acme"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Notify blocked on webhook delivery")
	}

	close(release)
	assert.Eventually(t, func() bool {
		return len(repo.deliveries()) == 2
	}, 5*time.Second, 10*time.Millisecond)
}
