package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task - фоновая задача. Ошибка уходит в лог, вызывающий ее не ждет.
type Task func(ctx context.Context) error

// Runner запускает фоновые задачи (запись в реестр, публикация событий)
// с собственным таймаутом и логированием ошибок.
type Runner struct {
	ctx     context.Context
	logger  *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner создает Runner. Отмена ctx отменяет все незавершенные задачи.
func NewRunner(ctx context.Context, logger *logrus.Logger, timeout time.Duration) *Runner {
	return &Runner{
		ctx:     ctx,
		logger:  logger,
		timeout: timeout,
	}
}

// Go запускает задачу name в отдельной горутине
func (r *Runner) Go(name string, task Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log := r.logger.WithFields(logrus.Fields{
			"component": "background",
			"task":      name,
		})

		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		if err := r.run(ctx, task); err != nil {
			log.WithError(err).Error("Background task failed")
			return
		}
		log.Debug("Background task finished")
	}()
}

func (r *Runner) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task(ctx)
}

// Wait ждет завершения всех запущенных задач
func (r *Runner) Wait() {
	r.wg.Wait()
}
