package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRegistryClosed - реестр остановлен, регистрация и доставка невозможны
var ErrRegistryClosed = errors.New("observer registry is closed")

// Deliverer доставляет событие подключенным наблюдателям и возвращает их число
type Deliverer interface {
	Deliver(ctx context.Context, event Event) (int, error)
}

type observer struct {
	authorityID string
	ch          chan Event
}

type request struct {
	apply func(observers map[string]*observer)
	done  chan struct{}
}

// Registry - реестр подключенных сотрудников. Картой наблюдателей владеет
// только горутина Run, остальные обращаются к ней через канал запросов.
type Registry struct {
	requests chan request
	stopped  chan struct{}
	buffer   int
	logger   *logrus.Logger
}

// NewRegistry создает реестр. buffer - размер очереди событий одного наблюдателя.
func NewRegistry(logger *logrus.Logger, buffer int) *Registry {
	if buffer < 1 {
		buffer = 1
	}
	return &Registry{
		requests: make(chan request),
		stopped:  make(chan struct{}),
		buffer:   buffer,
		logger:   logger,
	}
}

// Run обслуживает запросы до отмены ctx, затем закрывает каналы всех наблюдателей
func (r *Registry) Run(ctx context.Context) {
	observers := make(map[string]*observer)
	defer func() {
		for id, o := range observers {
			close(o.ch)
			delete(observers, id)
		}
		close(r.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-r.requests:
			req.apply(observers)
			close(req.done)
		}
	}
}

func (r *Registry) do(ctx context.Context, apply func(observers map[string]*observer)) error {
	req := request{apply: apply, done: make(chan struct{})}
	select {
	case r.requests <- req:
	case <-r.stopped:
		return ErrRegistryClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-req.done
	return nil
}

// Register подключает наблюдателя. Канал закрывается при отключении или
// остановке реестра, unregister можно вызывать повторно.
func (r *Registry) Register(ctx context.Context, authorityID string) (<-chan Event, func(), error) {
	id := uuid.NewString()
	o := &observer{authorityID: authorityID, ch: make(chan Event, r.buffer)}

	if err := r.do(ctx, func(observers map[string]*observer) {
		observers[id] = o
	}); err != nil {
		return nil, nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"component":    "registry",
		"authority_id": authorityID,
		"observer_id":  id,
	}).Info("Observer connected")

	unregister := func() {
		_ = r.do(context.Background(), func(observers map[string]*observer) {
			if existing, ok := observers[id]; ok {
				close(existing.ch)
				delete(observers, id)
			}
		})
		r.logger.WithFields(logrus.Fields{
			"component":    "registry",
			"authority_id": authorityID,
			"observer_id":  id,
		}).Info("Observer disconnected")
	}
	return o.ch, unregister, nil
}

// Deliver отправляет событие всем наблюдателям. Наблюдатель с переполненным
// буфером пропускает событие и не учитывается в результате.
func (r *Registry) Deliver(ctx context.Context, event Event) (int, error) {
	delivered := 0
	err := r.do(ctx, func(observers map[string]*observer) {
		for id, o := range observers {
			select {
			case o.ch <- event:
				delivered++
			default:
				r.logger.WithFields(logrus.Fields{
					"component":    "registry",
					"authority_id": o.authorityID,
					"observer_id":  id,
					"topic":        event.Topic,
				}).Warn("Observer buffer full, event skipped")
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}

// Count возвращает число подключенных наблюдателей
func (r *Registry) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.do(ctx, func(observers map[string]*observer) {
		n = len(observers)
	})
	return n, err
}
