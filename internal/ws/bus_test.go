package ws

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/wl39/todo-sync/internal/dto"
)

func TestBusSubscribePublish(t *testing.T) {
	b := NewBus()
	var got []dto.Event
	sub := b.Subscribe("user:1", func(evt dto.Event) {
		got = append(got, evt)
	})

	b.Publish("user:1", dto.Event{Type: dto.EventTodoCreated})
	b.Publish("user:2", dto.Event{Type: dto.EventTodoUpdated}) // other channel

	assert.Equal(t, 1, len(got))
	assert.Equal(t, dto.EventTodoCreated, got[0].Type)

	b.Unsubscribe(sub)
	b.Publish("user:1", dto.Event{Type: dto.EventTodoToggled})
	assert.Equal(t, 1, len(got))
}

func TestBusUnsubscribeTwice(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe("user:1", func(dto.Event) {})
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	b.Unsubscribe(nil)
}

func TestBusListenerAddedDuringPublishMissesInFlightEvent(t *testing.T) {
	b := NewBus()
	lateCalls := 0
	b.Subscribe("user:1", func(dto.Event) {
		// Subscribing during delivery must not affect the in-flight publish.
		b.Subscribe("user:1", func(dto.Event) { lateCalls++ })
	})

	b.Publish("user:1", dto.Event{Type: dto.EventTodoCreated})
	assert.Equal(t, 0, lateCalls)

	b.Publish("user:1", dto.Event{Type: dto.EventTodoUpdated})
	assert.Equal(t, 1, lateCalls)
}

func TestBusPanickingListenerDoesNotAbortDelivery(t *testing.T) {
	b := NewBus()
	delivered := 0
	b.Subscribe("user:1", func(dto.Event) { panic("listener bug") })
	b.Subscribe("user:1", func(dto.Event) { delivered++ })
	b.Subscribe("user:1", func(dto.Event) { delivered++ })

	b.Publish("user:1", dto.Event{Type: dto.EventTodoCreated})
	assert.Equal(t, 2, delivered)
}
