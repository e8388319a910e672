package relay

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/glassbox/internal/signal"
)

const subscriberBufSize = 256

// Event is one encoded broadcast ready to be written to a stream client.
type Event struct {
	Name string
	Data []byte
}

// Broker fans out topic events to all subscribed stream clients.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
	published   atomic.Int64
	closed      bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a new client. Returns the subscriber ID and a channel
// to receive events on. The channel is buffered; slow consumers will have
// events dropped. On a closed broker the returned channel is already closed.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subscribers[id] = ch
	}
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish encodes a broadcast and sends it to all subscribers. Non-blocking:
// slow clients have events dropped. Returns the number of subscribers the
// event was handed to.
func (b *Broker) Publish(bc signal.Broadcast) (int, error) {
	data, err := json.Marshal(bc)
	if err != nil {
		return 0, fmt.Errorf("relay: encode broadcast: %w", err)
	}
	evt := Event{Name: string(bc.Event), Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	b.published.Add(1)
	delivered := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
			delivered++
		default:
		}
	}
	return delivered, nil
}

// Close drops every subscriber. Stream handlers observe their closed
// channel and return.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Published returns how many events have been published since start.
func (b *Broker) Published() int64 {
	return b.published.Load()
}
