// Package results provides the push-based notification surface for sign-in
// lifecycle outcomes: independent broadcast streams with ordered, at-most-once
// delivery to the subscribers active at publish time.
package results

import "sync"

// DefaultBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing events rather than blocking publishers.
const DefaultBuffer = 16

// Broadcaster fans events out to every active subscriber in publish order.
// Late subscribers miss earlier events; there is no replay. A Broadcaster
// never closes its streams during normal operation.
type Broadcaster[T any] struct {
	lock   sync.Mutex
	subs   map[int]chan T
	nextID int
	buffer int
}

// NewBroadcaster creates a broadcaster with the default subscriber buffer.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs:   make(map[int]chan T),
		buffer: DefaultBuffer,
	}
}

// Subscribe registers a new subscriber and returns its receive channel along
// with a cancel func. Cancel removes the subscription and closes the channel.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.lock.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan T, b.buffer)
	b.subs[id] = ch
	b.lock.Unlock()

	cancel := func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber active at the time of the
// call. Delivery is FIFO per subscriber relative to Publish calls. Events are
// dropped for subscribers whose buffer is full.
func (b *Broadcaster[T]) Publish(event T) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.subs)
}
