package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey = "notify_events"
	staleKey = "notify_events:stale"
	// StaleAfter - после этого срока недоставленное событие уходит в отстойник
	// и больше не крутится в основной очереди
	StaleAfter = time.Hour
)

// ErrQueueEmpty - за время ожидания в очереди ничего не появилось
var ErrQueueEmpty = errors.New("notify queue is empty")

// Queue - очередь отложенной доставки
type Queue interface {
	Push(ctx context.Context, raw []byte) error
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Park(ctx context.Context, raw []byte) error
	Restore(ctx context.Context) (int, error)
}

// RedisQueue - очередь в Redis для событий, которые некому было доставить
type RedisQueue struct {
	redisClient *redis.Client
}

// NewRedisQueue создает новый RedisQueue
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (q *RedisQueue) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notify event: %w", err)
	}
	return q.Push(ctx, payload)
}

// Push добавляет событие в левую часть списка. Срок жизни у очереди нет:
// событие лежит, пока его не доставят.
func (q *RedisQueue) Push(ctx context.Context, raw []byte) error {
	if err := q.redisClient.LPush(ctx, queueKey, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish notify event to Redis: %w", err)
	}
	return nil
}

// Park откладывает давно недоставленное событие в отдельный список
func (q *RedisQueue) Park(ctx context.Context, raw []byte) error {
	if err := q.redisClient.LPush(ctx, staleKey, raw).Err(); err != nil {
		return fmt.Errorf("failed to park notify event in Redis: %w", err)
	}
	return nil
}

// Restore возвращает отложенные события в основную очередь, самые старые первыми
func (q *RedisQueue) Restore(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.redisClient.LMove(ctx, staleKey, queueKey, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to restore parked notify events: %w", err)
		}
		moved++
	}
}

// Pop блокирующе извлекает событие из правой части списка
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.redisClient.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to pop notify event from Redis: %w", err)
	}
	// result[0] - ключ, result[1] - значение
	return []byte(result[1]), nil
}

// Len возвращает число ожидающих событий
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.redisClient.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read notify queue length: %w", err)
	}
	return n, nil
}

// StaleLen возвращает число отложенных событий
func (q *RedisQueue) StaleLen(ctx context.Context) (int64, error) {
	n, err := q.redisClient.LLen(ctx, staleKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read parked notify queue length: %w", err)
	}
	return n, nil
}
