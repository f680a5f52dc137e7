package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/metrics"
)

// Broadcaster доставляет события подключенным сотрудникам. Если никого нет,
// событие ставится в очередь и не теряется. Все события дублируются в sink,
// если он задан.
type Broadcaster struct {
	observers Deliverer
	queue     Publisher
	sink      Publisher
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

// NewBroadcaster создает Broadcaster. sink может быть nil.
func NewBroadcaster(observers Deliverer, queue Publisher, sink Publisher, logger *logrus.Logger, m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{
		observers: observers,
		queue:     queue,
		sink:      sink,
		logger:    logger,
		metrics:   m,
	}
}

// Publish реализует Publisher
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	log := b.logger.WithFields(logrus.Fields{
		"component": "broadcaster",
		"topic":     event.Topic,
		"event_id":  event.ID,
	})

	delivered, err := b.observers.Deliver(ctx, event)
	if err != nil {
		log.WithError(err).Warn("Failed to deliver event to observers")
	}

	if delivered == 0 {
		if err := b.queue.Publish(ctx, event); err != nil {
			log.WithError(err).Error("Failed to queue event for later delivery")
			return fmt.Errorf("notify: could not queue event %s: %w", event.ID, err)
		}
		b.metrics.IncNotify("queue")
		log.Debug("No observers connected, event queued")
	} else {
		b.metrics.IncNotify("observer")
		log.WithField("observers", delivered).Debug("Event delivered to observers")
	}

	if b.sink != nil {
		if err := b.sink.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("Failed to mirror event to sink")
		} else {
			b.metrics.IncNotify("kafka")
		}
	}
	return nil
}
