// Package pubsub is an in-process topic hub. Publishing never blocks: a
// subscriber whose buffer is full misses the message.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Subscribe after Shutdown.
var ErrClosed = errors.New("pubsub: hub is shut down")

// DefaultBuffer is the per-subscription buffer used when none is given.
const DefaultBuffer = 100

// Hub fans messages of type T out to the subscribers of a topic.
type Hub[T any] struct {
	subscribers map[string]map[*Subscription[T]]struct{}
	buffer      int
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription receives the messages published on one topic.
type Subscription[T any] struct {
	topic     string
	channel   chan T
	hub       *Hub[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a hub whose subscriptions buffer up to buffer messages.
// buffer <= 0 selects DefaultBuffer.
func New[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub[T]{
		subscribers: make(map[string]map[*Subscription[T]]struct{}),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

func (h *Hub[T]) closed() bool {
	h.shutdownMu.Lock()
	defer h.shutdownMu.Unlock()
	return h.isShutdown
}

// Subscribe registers a subscription on topic. It is removed when ctx is
// done, when Unsubscribe is called or when the hub shuts down; its channel
// is closed in every case.
func (h *Hub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	if h.closed() {
		return nil, ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, h.buffer),
		hub:     h,
		cancel:  cancel,
	}

	h.mu.Lock()
	if h.closed() {
		h.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[*Subscription[T]]struct{})
	}
	h.subscribers[topic][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-h.shutdown:
			// Shutdown closes the channel under the hub lock.
			cancel()
		}
	}()

	return sub, nil
}

// Publish offers msg to every subscriber of topic and returns how many
// accepted it. Subscribers with a full buffer are skipped.
func (h *Hub[T]) Publish(topic string, msg T) int {
	if h.closed() {
		return 0
	}

	// Snapshot under the read lock; sends happen outside it.
	h.mu.RLock()
	subs := make([]*Subscription[T], 0, len(h.subscribers[topic]))
	for sub := range h.subscribers[topic] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.offer(msg) {
			delivered++
		}
	}
	return delivered
}

// SubscriberCount returns the number of live subscriptions on topic.
func (h *Hub[T]) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Shutdown closes every subscription. Later publishes deliver nothing.
func (h *Hub[T]) Shutdown() {
	h.shutdownMu.Lock()
	if h.isShutdown {
		h.shutdownMu.Unlock()
		return
	}
	h.isShutdown = true
	h.shutdownMu.Unlock()

	close(h.shutdown)

	h.mu.Lock()
	for topic, subs := range h.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(h.subscribers, topic)
	}
	h.mu.Unlock()
}

// C returns the subscription's message channel.
func (s *Subscription[T]) C() <-chan T {
	return s.channel
}

func (s *Subscription[T]) Topic() string { return s.topic }

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.hub.mu.Lock()
	if subs := s.hub.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.subscribers, s.topic)
		}
	}
	s.hub.mu.Unlock()

	s.close()
}

// offer is a non-blocking send. The hub's read lock is held so the channel
// cannot be closed by Unsubscribe or Shutdown mid-send.
func (s *Subscription[T]) offer(msg T) (ok bool) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	if _, live := s.hub.subscribers[s.topic][s]; !live {
		return false
	}
	select {
	case s.channel <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
