package gateway

import (
	"context"
	"encoding/json"

	pkgredis "github.com/youth-club/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// RedisRelay shares events between nodes over Redis pub/sub.
type RedisRelay struct {
	rc     *pkgredis.Client
	logger *zap.Logger
}

func NewRedisRelay(rc *pkgredis.Client, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{rc: rc, logger: logger.Named("gateway.relay")}
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.rc.Publish(ctx, redisChanEvents, string(data))
}

// Subscribe returns envelopes published by any node, including this one.
// The channel closes when ctx is done.
func (r *RedisRelay) Subscribe(ctx context.Context) <-chan Envelope {
	out := make(chan Envelope, queueSize)
	pubsub := r.rc.Subscribe(ctx, redisChanEvents)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.logger.Warn("gateway relay decode failed", zap.Error(err))
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
