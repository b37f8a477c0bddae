package ws

import "sync"

// Registry maps a channel name to its set of live connections. It is the only
// mutable shared state of the delivery layer; all reads hand out snapshots so
// delivery iterates outside the lock.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]map[Conn]struct{})}
}

// Register adds a connection under a channel. Registering the same connection
// twice is a no-op.
func (r *Registry) Register(channel string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.channels[channel]
	if !ok {
		set = make(map[Conn]struct{})
		r.channels[channel] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a connection from a channel. No-op if absent. An empty
// channel is dropped so the map does not accumulate dead keys.
func (r *Registry) Unregister(channel string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.channels[channel]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.channels, channel)
	}
}

// SubscribersOf returns a snapshot of the current subscribers. Operating on
// an unknown channel behaves as an empty set.
func (r *Registry) SubscribersOf(channel string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.channels[channel]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Len returns the number of subscribers on a channel.
func (r *Registry) Len(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}
