// Package pubsub carries "data updated" signals from the reconciliation core
// to presentation layers. The core depends only on the Publisher interface;
// Nop keeps it free of any messaging transport.
package pubsub

import "sync"

// Publisher announces that data under a topic has changed. Publishing is
// fire-and-forget: implementations must never block the caller or return.
type Publisher interface {
	Publish(topic string)
}

// Nop discards all publications. It is the default for callers that have no
// live consumers.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(string) {}

// Broker is a minimal in-process fan-out for dashboard consumers. Slow
// subscribers miss messages rather than slowing settlement down.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan string
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan string)}
}

// Publish delivers the topic to every subscriber with room in its buffer.
func (b *Broker) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- topic:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function that must be called when the consumer goes away.
func (b *Broker) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan string, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
