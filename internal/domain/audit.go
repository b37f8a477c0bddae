package domain

import "time"

// AuditAction is the kind of mutation an audit record documents.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditToggle AuditAction = "toggle"
	AuditDelete AuditAction = "delete"
)

// TodoAudit is an immutable log entry for one todo mutation. Exactly one is
// appended per successful mutation, in the same transaction. EditorUserID is
// nil for anonymous public edits.
type TodoAudit struct {
	ID           int64
	TodoID       int64
	Action       AuditAction
	FromStatus   *Status
	ToStatus     *Status
	EditorUserID *int64
	Payload      []byte
	CreatedAt    time.Time
}
