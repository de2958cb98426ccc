package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func receive[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
	var zero T
	return zero
}

func TestBasicPubSub(t *testing.T) {
	hub := New[string](0)
	defer hub.Shutdown()

	sub, err := hub.Subscribe(context.Background(), "alerts.slack")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if n := hub.Publish("alerts.slack", "hello"); n != 1 {
		t.Errorf("Publish delivered to %d, want 1", n)
	}
	if msg := receive(t, sub); msg != "hello" {
		t.Errorf("got %q, want hello", msg)
	}
	if sub.Topic() != "alerts.slack" {
		t.Errorf("Topic() = %q", sub.Topic())
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := New[int](0)
	defer hub.Shutdown()

	if n := hub.Publish("nobody", 1); n != 0 {
		t.Errorf("Publish delivered to %d, want 0", n)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := New[int](0)
	defer hub.Shutdown()

	const numSubscribers = 5
	subs := make([]*Subscription[int], numSubscribers)
	for i := range subs {
		sub, err := hub.Subscribe(context.Background(), "broadcast")
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		subs[i] = sub
	}
	if got := hub.SubscriberCount("broadcast"); got != numSubscribers {
		t.Fatalf("SubscriberCount = %d, want %d", got, numSubscribers)
	}

	if n := hub.Publish("broadcast", 42); n != numSubscribers {
		t.Errorf("Publish delivered to %d, want %d", n, numSubscribers)
	}
	for i, sub := range subs {
		if msg := receive(t, sub); msg != 42 {
			t.Errorf("Subscriber %d: got %d, want 42", i, msg)
		}
	}
}

func TestTopicIsolation(t *testing.T) {
	hub := New[string](0)
	defer hub.Shutdown()

	slack, _ := hub.Subscribe(context.Background(), "alerts.slack")
	email, _ := hub.Subscribe(context.Background(), "alerts.email")

	hub.Publish("alerts.slack", "only slack")
	if msg := receive(t, slack); msg != "only slack" {
		t.Errorf("slack got %q", msg)
	}
	select {
	case msg := <-email.C():
		t.Errorf("email subscriber received %q", msg)
	default:
	}
}

func TestFullBufferSkipsSubscriber(t *testing.T) {
	hub := New[int](1)
	defer hub.Shutdown()

	sub, _ := hub.Subscribe(context.Background(), "t")
	if n := hub.Publish("t", 1); n != 1 {
		t.Fatalf("first publish delivered to %d", n)
	}
	if n := hub.Publish("t", 2); n != 0 {
		t.Errorf("publish to a full buffer delivered to %d, want 0", n)
	}
	if msg := receive(t, sub); msg != 1 {
		t.Errorf("got %d, want 1", msg)
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := New[int](0)
	defer hub.Shutdown()

	sub, _ := hub.Subscribe(context.Background(), "t")
	sub.Unsubscribe()
	sub.Unsubscribe()

	if hub.SubscriberCount("t") != 0 {
		t.Error("subscription still registered")
	}
	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed")
	}
	if n := hub.Publish("t", 1); n != 0 {
		t.Errorf("Publish delivered to %d after unsubscribe", n)
	}
}

func TestContextCancellation(t *testing.T) {
	hub := New[int](0)
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := hub.Subscribe(ctx, "t")
	cancel()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	if hub.SubscriberCount("t") != 0 {
		t.Error("subscription still registered after cancel")
	}
}

func TestShutdown(t *testing.T) {
	hub := New[int](0)
	sub, _ := hub.Subscribe(context.Background(), "t")

	hub.Shutdown()
	hub.Shutdown()

	if _, ok := <-sub.C(); ok {
		t.Error("channel should be closed after shutdown")
	}
	if n := hub.Publish("t", 1); n != 0 {
		t.Errorf("Publish after shutdown delivered to %d", n)
	}
	if _, err := hub.Subscribe(context.Background(), "t"); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after shutdown: err = %v, want ErrClosed", err)
	}
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	hub := New[int](4)
	defer hub.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		sub, err := hub.Subscribe(context.Background(), "t")
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				hub.Publish("t", j)
			}
		}()
		go func(s *Subscription[int]) {
			defer wg.Done()
			s.Unsubscribe()
		}(sub)
	}
	wg.Wait()
}
