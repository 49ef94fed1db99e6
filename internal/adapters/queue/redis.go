// Package queue implements the message queue port on a Redis stream.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/poyrazK/zonecontrol/internal/infrastructure/metrics"
	"github.com/redis/go-redis/v9"
)

// ChangeStream is the stream the async applier consumes from.
const ChangeStream = "zonecontrol:changes"

type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(addr string, password string, db int) *RedisQueue {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisQueue{client: rdb}
}

// Send appends the change to the stream. The XADD acknowledgment is the
// only delivery confirmation the orchestrator waits for.
func (q *RedisQueue) Send(ctx context.Context, change domain.ZoneChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encoding change %q: %w", change.ID, err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: ChangeStream,
		Values: map[string]interface{}{
			"changeId":   change.ID,
			"changeType": string(change.ChangeType),
			"change":     payload,
		},
	}).Err()
	if err != nil {
		metrics.QueueSendFailures.Inc()
		return err
	}

	metrics.ChangesEnqueued.WithLabelValues(string(change.ChangeType)).Inc()
	return nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}
