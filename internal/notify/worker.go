package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/config"
	"github.com/shenikar/tourist_safety/internal/metrics"
)

const popTimeout = 5 * time.Second

// Worker - воркер отложенной доставки. Забирает события из очереди и
// отдает их наблюдателям, если они подключились, иначе вебхуку.
type Worker struct {
	queue      Queue
	observers  Deliverer
	logger     *logrus.Logger
	cfg        *config.Config
	httpClient *http.Client
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewWorker создает новый Worker
func NewWorker(queue Queue, observers Deliverer, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) *Worker {
	return &Worker{
		queue:     queue,
		observers: observers,
		logger:    logger,
		cfg:       cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		metrics: m,
		now:     time.Now,
	}
}

// Start запускает горутину для обработки очереди
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notify worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notify worker.")
				return
			default:
				raw, err := w.queue.Pop(ctx, popTimeout)
				if err != nil {
					if errors.Is(err, ErrQueueEmpty) || errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notify event")
					sleepCtx(ctx, w.cfg.WebhookTimeout) // Ждем перед повторной попыткой
					continue
				}

				w.handle(ctx, raw)
			}
		}
	}()
}

// handle обрабатывает одно событие из очереди. Возвращает true, если событие
// доставлено или отложено, и false, если оно возвращено в очередь.
func (w *Worker) handle(ctx context.Context, raw []byte) bool {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		w.logger.WithError(err).Error("Failed to unmarshal notify event")
		return true
	}
	log := w.logger.WithFields(logrus.Fields{
		"component": "notify_worker",
		"topic":     event.Topic,
		"event_id":  event.ID,
	})

	delivered, err := w.observers.Deliver(ctx, event)
	if err != nil {
		log.WithError(err).Warn("Failed to deliver queued event to observers")
	}
	if delivered > 0 {
		w.metrics.IncNotify("observer")
		log.WithField("observers", delivered).Info("Queued event delivered to observers")
		w.restoreParked(ctx, log)
		return true
	}

	if w.cfg.WebhookURL != "" {
		if err := w.deliverWebhook(ctx, log, raw); err == nil {
			w.metrics.IncNotify("webhook")
			return true
		}
	}

	// Слишком старое событие уходит в отстойник до появления наблюдателей
	if w.now().Sub(event.Timestamp) > StaleAfter {
		err := w.queue.Park(ctx, raw)
		if err == nil {
			log.Warn("Event undelivered for too long, parked until observers reconnect")
			return true
		}
		log.WithError(err).Error("Failed to park stale event, requeueing")
	}

	// Некому доставить: возвращаем в хвост очереди и ждем
	if err := w.queue.Push(ctx, raw); err != nil {
		log.WithError(err).Error("Failed to requeue event, event lost")
		return true
	}
	sleepCtx(ctx, w.cfg.WebhookBaseDelay)
	return false
}

// restoreParked возвращает отложенные события в очередь, раз наблюдатели снова на связи
func (w *Worker) restoreParked(ctx context.Context, log *logrus.Entry) {
	moved, err := w.queue.Restore(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to restore parked events")
		return
	}
	if moved > 0 {
		log.WithField("restored", moved).Info("Parked events returned to the queue")
	}
}

func (w *Worker) deliverWebhook(ctx context.Context, log *logrus.Entry, rawPayload []byte) error {
	maxRetries := w.cfg.WebhookMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	baseDelay := w.cfg.WebhookBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(rawPayload))
		if err != nil {
			return fmt.Errorf("failed to create webhook request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		// Добавляем HMAC подпись, если WEBHOOK_SECRET задан
		if w.cfg.WebhookSecret != "" {
			req.Header.Set("X-Webhook-Signature", generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send webhook for event. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
		} else {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				log.Info("Webhook delivered successfully.")
				return nil
			}
			log.Warnf("Webhook delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		}

		if i < maxRetries-1 {
			sleepCtx(ctx, baseDelay)
			baseDelay *= 2 // Экспоненциальная задержка
		}
	}

	log.Errorf("Failed to deliver webhook for event after %d retries.", maxRetries)
	return fmt.Errorf("webhook delivery failed after %d attempts", maxRetries)
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
