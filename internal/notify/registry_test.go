package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func startRegistry(t *testing.T, buffer int) (*Registry, context.CancelFunc) {
	t.Helper()
	r := NewRegistry(silentLogger(), buffer)
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(cancel)
	return r, cancel
}

func testEvent(t *testing.T, topic string) Event {
	t.Helper()
	ev, err := NewEvent(topic, "tourist-1", map[string]string{"k": "v"})
	require.NoError(t, err)
	return ev
}

func TestRegistry_DeliverToAllObservers(t *testing.T) {
	r, _ := startRegistry(t, 4)
	ctx := context.Background()

	ch1, unregister1, err := r.Register(ctx, "officer-1")
	require.NoError(t, err)
	defer unregister1()
	ch2, unregister2, err := r.Register(ctx, "officer-1")
	require.NoError(t, err)
	defer unregister2()

	ev := testEvent(t, TopicAlertCreated)
	n, err := r.Deliver(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, ev.ID, (<-ch1).ID)
	assert.Equal(t, ev.ID, (<-ch2).ID)
}

func TestRegistry_NoObservers(t *testing.T) {
	r, _ := startRegistry(t, 4)

	n, err := r.Deliver(context.Background(), testEvent(t, TopicAlertResolved))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_UnregisterClosesChannel(t *testing.T) {
	r, _ := startRegistry(t, 4)
	ctx := context.Background()

	ch, unregister, err := r.Register(ctx, "officer-1")
	require.NoError(t, err)

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unregister()
	unregister() // повторный вызов безопасен

	_, ok := <-ch
	assert.False(t, ok)

	count, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegistry_FullBufferSkipsObserver(t *testing.T) {
	r, _ := startRegistry(t, 1)
	ctx := context.Background()

	_, unregister, err := r.Register(ctx, "slow-officer")
	require.NoError(t, err)
	defer unregister()

	n, err := r.Deliver(ctx, testEvent(t, TopicAlertAssigned))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.Deliver(ctx, testEvent(t, TopicAlertAssigned))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegistry_StopClosesObservers(t *testing.T) {
	r, cancel := startRegistry(t, 1)
	ctx := context.Background()

	ch, unregister, err := r.Register(ctx, "officer-1")
	require.NoError(t, err)

	cancel()
	<-r.stopped

	_, ok := <-ch
	assert.False(t, ok)
	unregister()

	_, _, err = r.Register(ctx, "officer-2")
	assert.ErrorIs(t, err, ErrRegistryClosed)

	_, err = r.Deliver(ctx, testEvent(t, TopicAlertCreated))
	assert.ErrorIs(t, err, ErrRegistryClosed)
}
