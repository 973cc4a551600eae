package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Breaker defaults for the Redis publish path.
const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 10 * time.Second
	publishTimeout          = 2 * time.Second
	resubscribeDelay        = 5 * time.Second
)

// RedisBridge publishes messages on a per-user Redis channel and relays every
// message it receives on those channels to the local hub. When Redis is
// unavailable the breaker opens and messages are delivered locally only.
type RedisBridge struct {
	rdb     *goredis.Client
	hub     *Hub
	prefix  string
	breaker *gobreaker.CircuitBreaker[any]
	logger  logger.Logger
}

// NewRedisBridge connects hub to Redis at addr. Channels are named prefix+"user:"+id.
func NewRedisBridge(addr, prefix string, hub *Hub) *RedisBridge {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		MaxRetries:  1,
	})
	return newRedisBridge(rdb, prefix, hub)
}

func newRedisBridge(rdb *goredis.Client, prefix string, hub *Hub) *RedisBridge {
	b := &RedisBridge{
		rdb:    rdb,
		hub:    hub,
		prefix: prefix,
		logger: logger.Get().Named("redis-bridge"),
	}
	b.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "redis-publish",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return b
}

func (b *RedisBridge) channel(userID string) string { return b.prefix + "user:" + userID }

// Publish implements Publisher.
func (b *RedisBridge) Publish(ctx context.Context, userID string, msg Message) error {
	if userID == "" {
		return ErrNoRecipient
	}
	payload, err := json.Marshal(envelope{UserID: userID, Message: msg})
	if err != nil {
		return err
	}

	_, err = b.breaker.Execute(func() (any, error) {
		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return nil, b.rdb.Publish(pctx, b.channel(userID), payload).Err()
	})
	if err == nil {
		metrics.RecordChatPublish("redis")
		return nil
	}

	metrics.RecordErrorByComponent("realtime", "redis_publish")
	b.logger.Debug(ctx, "redis publish failed, delivering locally",
		logger.String("userID", userID), logger.Error(err))
	return b.hub.Publish(ctx, userID, msg)
}

// BreakerState returns the breaker state for health reporting.
func (b *RedisBridge) BreakerState() string { return b.breaker.State().String() }

// Run relays messages from every user channel to the hub until ctx is done.
// A lost subscription is re-established after resubscribeDelay.
func (b *RedisBridge) Run(ctx context.Context) error {
	for {
		err := b.subscribe(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn(ctx, "redis subscription lost", logger.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(resubscribeDelay):
		}
	}
}

func (b *RedisBridge) subscribe(ctx context.Context) error {
	pattern := b.prefix + "user:*"
	sub := b.rdb.PSubscribe(ctx, pattern)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.logger.Info(ctx, "relaying redis messages", logger.String("pattern", pattern))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return ErrSubscriptionClosed
			}
			b.relay(ctx, m.Channel, m.Payload)
		}
	}
}

func (b *RedisBridge) relay(ctx context.Context, channel, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn(ctx, "bad redis payload", logger.Error(err))
		return
	}
	if env.UserID == "" {
		env.UserID = strings.TrimPrefix(channel, b.prefix+"user:")
	}
	frame, err := json.Marshal(env.Message)
	if err != nil {
		return
	}
	b.hub.deliver(env.UserID, frame)
}

// Close closes the Redis client.
func (b *RedisBridge) Close() error { return b.rdb.Close() }
