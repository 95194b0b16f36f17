package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Signal types delivered to subscribers. Signals carry no session data;
// subscribers re-fetch the snapshot on every signal, so concurrent
// mutations collapse naturally.
const (
	SignalConnected = "connected"
	SignalChanged   = "changed"
	SignalKeepAlive = "keepalive"
)

type Signal struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Broker fans a change signal out to other server instances. The
// in-process bus alone only reaches subscribers on this instance.
type Broker interface {
	PublishSessionChanged(ctx context.Context, pin string) error
}

// Bus is the per-session change notification channel, keyed by PIN.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Signal]struct{}
	broker Broker
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[chan Signal]struct{}),
	}
}

// AttachBroker routes every published change through an external broker
// as well, so subscribers on other instances see it.
func (b *Bus) AttachBroker(broker Broker) {
	b.broker = broker
}

// Subscribe registers a new subscriber for the given PIN. The returned
// channel is buffered; a subscriber that falls behind misses intermediate
// signals, which is harmless since every signal means "re-fetch".
func (b *Bus) Subscribe(pin string) chan Signal {
	ch := make(chan Signal, 8)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subs[pin]; !exists {
		b.subs[pin] = make(map[chan Signal]struct{})
	}
	b.subs[pin][ch] = struct{}{}

	return ch
}

func (b *Bus) Unsubscribe(pin string, ch chan Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, exists := b.subs[pin]; exists {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(b.subs, pin)
		}
	}
}

// SessionChanged publishes a "changed" signal to every subscriber of the
// PIN, locally and through the broker when one is attached.
func (b *Bus) SessionChanged(pin string) {
	b.Fanout(pin)

	if b.broker != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.broker.PublishSessionChanged(ctx, pin); err != nil {
				log.Printf("Failed to publish session change for %s: %v", pin, err)
			}
		}()
	}
}

// Fanout delivers a "changed" signal to local subscribers only. The
// broker consumer calls this for changes that originated elsewhere.
func (b *Bus) Fanout(pin string) {
	sig := Signal{Type: SignalChanged, Timestamp: time.Now()}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[pin] {
		select {
		case ch <- sig:
		default:
			// Subscriber buffer full; it will re-fetch on the next signal.
		}
	}
}

// SubscriberCount reports the number of local subscribers for a PIN.
func (b *Bus) SubscriberCount(pin string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[pin])
}
