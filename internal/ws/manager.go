package ws

import (
	"log"

	"github.com/wl39/todo-sync/internal/dto"
)

// Conn is one live connection bound to a channel. Send must not block
// indefinitely; a failed send marks the connection dead.
type Conn interface {
	ID() string
	Send(evt dto.Event) error
	Close()
}

// Manager owns the lifecycle of live connections: it binds them to channels,
// fans events out to them and forwards every published event to the bus so
// non-connection listeners observe it too. It holds no todo data.
type Manager struct {
	registry *Registry
	bus      *Bus
}

func NewManager(bus *Bus) *Manager {
	if bus == nil {
		bus = NewBus()
	}
	return &Manager{registry: NewRegistry(), bus: bus}
}

// Bus returns the event bus fed by Publish.
func (m *Manager) Bus() *Bus { return m.bus }

// Connect binds a connection to a channel. Authorization happens at the
// transport edge before the bind.
func (m *Manager) Connect(c Conn, channel string) {
	m.registry.Register(channel, c)
	log.Printf("ws: %s subscribed to %s", c.ID(), channel)
}

// Disconnect unbinds a connection and closes it. Safe to call multiple times.
func (m *Manager) Disconnect(c Conn, channel string) {
	m.registry.Unregister(channel, c)
	c.Close()
}

// Deliver sends the event to every connection currently on the channel.
// A send failure drops that connection but never stops delivery to the rest
// and is never surfaced to the caller: per-subscriber delivery is
// best-effort and must not fail the mutation that triggered it.
func (m *Manager) Deliver(channel string, evt dto.Event) {
	for _, c := range m.registry.SubscribersOf(channel) {
		if err := c.Send(evt); err != nil {
			log.Printf("ws: dropping %s from %s: %v", c.ID(), channel, err)
			m.Disconnect(c, channel)
		}
	}
}

// Publish is the composed operation: live delivery plus the event bus, so
// both kinds of subscriber observe every event exactly once.
func (m *Manager) Publish(channel string, evt dto.Event) {
	m.Deliver(channel, evt)
	m.bus.Publish(channel, evt)
}
