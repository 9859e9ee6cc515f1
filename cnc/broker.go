package cnc

import (
	"context"
	"sync"
)

const subscriberBufferCap = 16

// broker fans snapshots out to subscribers. Publishing never blocks. When a
// subscriber falls behind, its oldest pending snapshot is dropped.
type broker struct {
	mu     sync.Mutex
	subs   map[uint64]chan Snapshot
	nextID uint64
	closed bool

	done     chan struct{}
	watchers sync.WaitGroup
}

func newBroker() *broker {
	return &broker{
		subs: make(map[uint64]chan Snapshot),
		done: make(chan struct{}),
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBufferCap)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)

		return ch
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.watchers.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.watchers.Done()

		select {
		case <-ctx.Done():
			b.unsubscribe(id)
		case <-b.done:
		}
	}()

	return ch
}

func (b *broker) publish(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- s:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}

		select {
		case ch <- s:
		default:
		}
	}
}

func (b *broker) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[id]
	if !ok {
		return
	}

	delete(b.subs, id)
	close(ch)
}

func (b *broker) numSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.done)

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
