package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/wl39/todo-sync/internal/dto"
)

// fakeConn records delivered events and can be told to fail sends.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []dto.Event
	fail   bool
	closed bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(evt dto.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("peer gone")
	}
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	c := newFakeConn("a")

	r.Register("user:1", c)
	assert.Equal(t, 1, r.Len("user:1"))

	// Duplicate registration is a no-op.
	r.Register("user:1", c)
	assert.Equal(t, 1, r.Len("user:1"))

	r.Unregister("user:1", c)
	assert.Equal(t, 0, r.Len("user:1"))

	// Unregistering again, or on an unknown channel, is a no-op.
	r.Unregister("user:1", c)
	r.Unregister("calendar:nope", c)
}

func TestRegistryUnknownChannelIsEmptySet(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, len(r.SubscribersOf("calendar:missing")))
}

func TestRegistrySnapshotIsNotLive(t *testing.T) {
	r := NewRegistry()
	a, b := newFakeConn("a"), newFakeConn("b")
	r.Register("user:1", a)
	r.Register("user:1", b)

	snap := r.SubscribersOf("user:1")
	assert.Equal(t, 2, len(snap))

	// Mutating the registry does not affect the snapshot already taken.
	r.Unregister("user:1", a)
	r.Unregister("user:1", b)
	assert.Equal(t, 2, len(snap))
	assert.Equal(t, 0, r.Len("user:1"))
}
