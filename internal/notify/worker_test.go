package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/tourist_safety/internal/config"
)

type fakeQueue struct {
	mu       sync.Mutex
	pushed   [][]byte
	parked   [][]byte
	restored int
}

func (q *fakeQueue) Push(_ context.Context, raw []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushed = append(q.pushed, raw)
	return nil
}

func (q *fakeQueue) Pop(context.Context, time.Duration) ([]byte, error) {
	return nil, ErrQueueEmpty
}

func (q *fakeQueue) Park(_ context.Context, raw []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.parked = append(q.parked, raw)
	return nil
}

func (q *fakeQueue) Restore(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.parked)
	// отложенные события возвращаются в основную очередь
	q.pushed = append(q.pushed, q.parked...)
	q.parked = nil
	q.restored += n
	return n, nil
}

type fakeDeliverer struct {
	observers int
}

func (d *fakeDeliverer) Deliver(context.Context, Event) (int, error) {
	return d.observers, nil
}

func newTestWorker(cfg *config.Config, observers int) (*Worker, *fakeQueue) {
	q := &fakeQueue{}
	return NewWorker(q, &fakeDeliverer{observers: observers}, silentLogger(), cfg, nil), q
}

func rawEvent(t *testing.T, at time.Time) []byte {
	t.Helper()
	ev := testEvent(t, TopicAlertCreated)
	ev.Timestamp = at
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return raw
}

func TestWorker_DeliversToObservers(t *testing.T) {
	w, q := newTestWorker(&config.Config{}, 1)

	assert.True(t, w.handle(context.Background(), rawEvent(t, time.Now())))
	assert.Empty(t, q.pushed)
}

func TestWorker_WebhookSignedDelivery(t *testing.T) {
	type capture struct {
		sig  string
		body []byte
	}
	got := make(chan capture, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- capture{sig: r.Header.Get("X-Webhook-Signature"), body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.Config{
		WebhookURL:        srv.URL,
		WebhookSecret:     "secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	w, q := newTestWorker(cfg, 0)
	raw := rawEvent(t, time.Now())

	assert.True(t, w.handle(context.Background(), raw))
	assert.Empty(t, q.pushed)
	c := <-got
	assert.Equal(t, raw, c.body)
	assert.Equal(t, generateHMACSHA256(raw, "secret"), c.sig)
}

func TestWorker_WebhookRetriesThenRequeues(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := &config.Config{
		WebhookURL:        srv.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	w, q := newTestWorker(cfg, 0)
	raw := rawEvent(t, time.Now())

	assert.False(t, w.handle(context.Background(), raw))
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, q.pushed, 1)
	assert.Equal(t, raw, q.pushed[0])
}

func TestWorker_RequeuesWithoutWebhook(t *testing.T) {
	w, q := newTestWorker(&config.Config{WebhookBaseDelay: time.Millisecond}, 0)

	assert.False(t, w.handle(context.Background(), rawEvent(t, time.Now())))
	assert.Len(t, q.pushed, 1)
}

func TestWorker_ParksStaleEventInsteadOfDropping(t *testing.T) {
	w, q := newTestWorker(&config.Config{}, 0)
	raw := rawEvent(t, time.Now().Add(-StaleAfter-time.Minute))

	assert.True(t, w.handle(context.Background(), raw))
	assert.Empty(t, q.pushed)
	require.Len(t, q.parked, 1)
	assert.Equal(t, raw, q.parked[0])
}

func TestWorker_RestoresParkedEventsWhenObserversReturn(t *testing.T) {
	q := &fakeQueue{}
	deliverer := &fakeDeliverer{}
	w := NewWorker(q, deliverer, silentLogger(), &config.Config{}, nil)
	stale := rawEvent(t, time.Now().Add(-2*StaleAfter))

	assert.True(t, w.handle(context.Background(), stale))
	require.Len(t, q.parked, 1)

	deliverer.observers = 1
	assert.True(t, w.handle(context.Background(), rawEvent(t, time.Now())))
	assert.Equal(t, 1, q.restored)
	assert.Empty(t, q.parked)
	require.Len(t, q.pushed, 1)
	assert.Equal(t, stale, q.pushed[0])
}

func TestWorker_DropsMalformedEvent(t *testing.T) {
	w, q := newTestWorker(&config.Config{}, 0)

	assert.True(t, w.handle(context.Background(), []byte("{not json")))
	assert.Empty(t, q.pushed)
}
