package dto

import (
	"encoding/json"
	"time"

	dom "github.com/wl39/todo-sync/internal/domain"
)

// AuditResponse is one immutable mutation record of a todo.
type AuditResponse struct {
	ID           int64           `json:"id"`
	TodoID       int64           `json:"todo_id"`
	Action       string          `json:"action"`
	FromStatus   *string         `json:"from_status"`
	ToStatus     *string         `json:"to_status"`
	EditorUserID *int64          `json:"editor_user_id"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewAuditResponses maps an audit trail.
func NewAuditResponses(records []dom.TodoAudit) []AuditResponse {
	out := make([]AuditResponse, len(records))
	for i, a := range records {
		out[i] = AuditResponse{
			ID:           a.ID,
			TodoID:       a.TodoID,
			Action:       string(a.Action),
			FromStatus:   (*string)(a.FromStatus),
			ToStatus:     (*string)(a.ToStatus),
			EditorUserID: a.EditorUserID,
			Payload:      json.RawMessage(a.Payload),
			CreatedAt:    a.CreatedAt,
		}
	}
	return out
}
