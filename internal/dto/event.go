package dto

// EventType tags a live-update envelope. The set is closed: deletes are not
// broadcast.
type EventType string

const (
	EventTodoCreated EventType = "todo_created"
	EventTodoUpdated EventType = "todo_updated"
	EventTodoToggled EventType = "todo_toggled"
)

// Event is the envelope delivered over live connections and the event bus.
// Both directions use the same todo representation.
type Event struct {
	Type    EventType    `json:"type"`
	Payload TodoResponse `json:"payload"`
}
