// Package pubsub is the in-process event bus that stands in for a broker.
// Routing keys are dotted topics ("order.status.updated",
// "storage.orders") and subscription patterns support the usual topic
// wildcards: '*' matches exactly one segment, '#' matches any number of
// trailing or embedded segments.
package pubsub

import (
	"strings"
	"sync"
	"time"
)

type Event struct {
	Key     string
	Payload any
	At      time.Time
}

type Handler func(Event)

type Bus struct {
	mu   sync.RWMutex
	subs []subscription
}

type subscription struct {
	pattern []string
	handler Handler
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every event whose key matches pattern.
// Handlers run synchronously on the publisher's goroutine and must not
// block.
func (b *Bus) Subscribe(pattern string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{
		pattern: strings.Split(pattern, "."),
		handler: handler,
	})
	b.mu.Unlock()
}

// Publish dispatches the event to every matching subscriber, in
// subscription order.
func (b *Bus) Publish(key string, payload any) {
	event := Event{Key: key, Payload: payload, At: time.Now()}
	segments := strings.Split(key, ".")

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if matchTopic(sub.pattern, segments) {
			sub.handler(event)
		}
	}
}

func matchTopic(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	if pattern[0] == "#" {
		if matchTopic(pattern[1:], key) {
			return true
		}
		return len(key) > 0 && matchTopic(pattern, key[1:])
	}
	if len(key) == 0 {
		return false
	}
	if pattern[0] == "*" || pattern[0] == key[0] {
		return matchTopic(pattern[1:], key[1:])
	}
	return false
}
