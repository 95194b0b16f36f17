package notify

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan Signal) Signal {
	t.Helper()
	select {
	case sig := <-ch:
		return sig
	case <-time.After(time.Second):
		t.Fatal("no signal received")
		return Signal{}
	}
}

func TestSessionChangedReachesSubscriber(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("AB12")
	defer bus.Unsubscribe("AB12", ch)

	bus.SessionChanged("AB12")

	sig := receive(t, ch)
	if sig.Type != SignalChanged {
		t.Fatalf("signal type = %q, want %q", sig.Type, SignalChanged)
	}
}

func TestSignalsAreScopedToPIN(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("AB12")
	defer bus.Unsubscribe("AB12", ch)

	bus.SessionChanged("CD34")

	select {
	case sig := <-ch:
		t.Fatalf("received %+v for a different session", sig)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAllSubscribersReceive(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe("AB12")
	second := bus.Subscribe("AB12")
	defer bus.Unsubscribe("AB12", first)
	defer bus.Unsubscribe("AB12", second)

	bus.SessionChanged("AB12")

	receive(t, first)
	receive(t, second)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("AB12")
	bus.Unsubscribe("AB12", ch)

	bus.SessionChanged("AB12")

	select {
	case sig := <-ch:
		t.Fatalf("received %+v after unsubscribe", sig)
	case <-time.After(50 * time.Millisecond):
	}
	if got := bus.SubscriberCount("AB12"); got != 0 {
		t.Fatalf("subscriber count = %d, want 0", got)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe("AB12")
	defer bus.Unsubscribe("AB12", ch)

	// Overflow the buffer; publishing must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.SessionChanged("AB12")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on a slow subscriber")
	}
}

func TestSubscriberCount(t *testing.T) {
	bus := NewBus()
	if got := bus.SubscriberCount("AB12"); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}

	first := bus.Subscribe("AB12")
	second := bus.Subscribe("AB12")
	if got := bus.SubscriberCount("AB12"); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}

	bus.Unsubscribe("AB12", first)
	if got := bus.SubscriberCount("AB12"); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	bus.Unsubscribe("AB12", second)
	if got := bus.SubscriberCount("AB12"); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

type recordingBroker struct {
	published chan string
}

func (b *recordingBroker) PublishSessionChanged(_ context.Context, pin string) error {
	b.published <- pin
	return nil
}

func TestAttachedBrokerSeesChanges(t *testing.T) {
	bus := NewBus()
	broker := &recordingBroker{published: make(chan string, 1)}
	bus.AttachBroker(broker)

	bus.SessionChanged("AB12")

	select {
	case pin := <-broker.published:
		if pin != "AB12" {
			t.Fatalf("broker received %q, want AB12", pin)
		}
	case <-time.After(time.Second):
		t.Fatal("broker never received the change")
	}
}

func TestFanoutSkipsBroker(t *testing.T) {
	bus := NewBus()
	broker := &recordingBroker{published: make(chan string, 1)}
	bus.AttachBroker(broker)

	// Fanout is what the broker consumer calls; routing it back through
	// the broker would loop forever.
	bus.Fanout("AB12")

	select {
	case pin := <-broker.published:
		t.Fatalf("broker received %q from a local fanout", pin)
	case <-time.After(50 * time.Millisecond):
	}
}
