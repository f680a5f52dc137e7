package service_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/background"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// newRunner создает Runner, который тест может дождаться через Wait
func newRunner(t *testing.T) *background.Runner {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return background.NewRunner(ctx, silentLogger(), 5*time.Second)
}

// stepClock возвращает моменты по очереди, последний повторяется
func stepClock(times ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func ptr[T any](v T) *T {
	return &v
}
