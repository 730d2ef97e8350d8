package realtime

import (
	"context"

	"floreria/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Topic identifies one invalidation channel. Signals carry no payload; on any
// signal consumers must re-query authoritative storage rather than trust
// whatever view they were holding.
type Topic string

const (
	TopicBlocks Topic = "blocks"
	TopicOrders Topic = "orders"
	TopicConfig Topic = "config"
)

// ValidTopic reports whether t names a known invalidation channel.
func ValidTopic(t Topic) bool {
	return t == TopicBlocks || t == TopicOrders || t == TopicConfig
}

// channelPrefix namespaces the Redis pub/sub channels.
const channelPrefix = "floreria:invalidate:"

// Invalidator fans "something in topic X changed" out to open sessions
// (customer booking forms, staff dashboards).
type Invalidator interface {
	// Publish signals the topic. Best-effort: a lost signal degrades freshness,
	// never correctness, since consumers re-validate on their next action too.
	Publish(ctx context.Context, topic Topic)
	// Subscribe returns a channel of topic signals and a stop function.
	Subscribe(ctx context.Context, topics ...Topic) (<-chan Topic, func())
}

// RedisInvalidator implements Invalidator over Redis pub/sub, so signals reach
// every app instance, not just the one that performed the mutation.
type RedisInvalidator struct {
	Client *redis.Client
}

// NewRedisInvalidator constructs a RedisInvalidator.
func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{Client: client}
}

func (inv *RedisInvalidator) Publish(ctx context.Context, topic Topic) {
	if err := inv.Client.Publish(ctx, channelPrefix+string(topic), "1").Err(); err != nil {
		utils.GetLogger().Warn("failed to publish invalidation signal",
			zap.String("topic", string(topic)), zap.Error(err))
	}
}

func (inv *RedisInvalidator) Subscribe(ctx context.Context, topics ...Topic) (<-chan Topic, func()) {
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, channelPrefix+string(t))
	}
	pubsub := inv.Client.Subscribe(ctx, channels...)

	out := make(chan Topic, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			topic := Topic(msg.Channel[len(channelPrefix):])
			select {
			case out <- topic:
			default:
				// Slow consumer; dropping is fine, the signal is topic-only.
			}
		}
	}()

	stop := func() { _ = pubsub.Close() }
	return out, stop
}
