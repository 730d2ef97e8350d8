package realtime

import (
	"context"
	"sync"
)

// MemoryInvalidator is an in-process Invalidator. Suitable for single-instance
// deployments and for tests; the contract is identical to the Redis one.
type MemoryInvalidator struct {
	mu   sync.Mutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	topics map[Topic]bool
	ch     chan Topic
}

// NewMemoryInvalidator constructs a MemoryInvalidator.
func NewMemoryInvalidator() *MemoryInvalidator {
	return &MemoryInvalidator{subs: make(map[int]subscriber)}
}

func (inv *MemoryInvalidator) Publish(ctx context.Context, topic Topic) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, sub := range inv.subs {
		if !sub.topics[topic] {
			continue
		}
		select {
		case sub.ch <- topic:
		default:
			// Slow consumer; dropping is fine, the signal is topic-only.
		}
	}
}

func (inv *MemoryInvalidator) Subscribe(ctx context.Context, topics ...Topic) (<-chan Topic, func()) {
	wanted := make(map[Topic]bool, len(topics))
	for _, t := range topics {
		wanted[t] = true
	}

	inv.mu.Lock()
	id := inv.next
	inv.next++
	sub := subscriber{topics: wanted, ch: make(chan Topic, 16)}
	inv.subs[id] = sub
	inv.mu.Unlock()

	stop := func() {
		inv.mu.Lock()
		defer inv.mu.Unlock()
		if s, ok := inv.subs[id]; ok {
			delete(inv.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, stop
}
