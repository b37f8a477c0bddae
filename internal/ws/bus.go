package ws

import (
	"log"
	"sync"

	"github.com/wl39/todo-sync/internal/dto"
)

// Listener observes events published to a channel without holding a live
// connection.
type Listener func(evt dto.Event)

// Subscription identifies one registered listener; pass it to Unsubscribe.
type Subscription struct {
	channel string
	fn      Listener
}

// Bus is the in-process event bus. Publish takes a snapshot of the listener
// set, so listeners added or removed during delivery do not affect the
// in-flight publish. A panicking listener is logged and skipped; the rest
// still receive the event.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string]map[*Subscription]struct{}
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a listener on a channel.
func (b *Bus) Subscribe(channel string, fn Listener) *Subscription {
	sub := &Subscription{channel: channel, fn: fn}
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.listeners[channel]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.listeners[channel] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a listener. No-op if already removed.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.listeners[sub.channel]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.listeners, sub.channel)
	}
}

// Publish invokes every currently registered listener for the channel with
// the event. Each listener is invoked at most once per publish.
func (b *Bus) Publish(channel string, evt dto.Event) {
	b.mu.RLock()
	set := b.listeners[channel]
	subs := make([]*Subscription, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		invoke(channel, sub.fn, evt)
	}
}

func invoke(channel string, fn Listener, evt dto.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ws: bus listener panic on %s: %v", channel, r)
		}
	}()
	fn(evt)
}
