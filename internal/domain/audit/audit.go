// Package audit records the change history of ledger mutations.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"coldledger/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionReverse Action = "reverse"
)

// Entry is a single audit record for one voucher mutation.
type Entry struct {
	ID         id.ID           `db:"id"`
	EntityType string          `db:"entity_type"` // "receipt" | "delivery"
	EntityID   id.ID           `db:"entity_id"`
	Action     Action          `db:"action"`
	Actor      string          `db:"actor"`
	Changes    json.RawMessage `db:"changes"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Recorder persists audit entries. Recording is best-effort on read
// of the trail but must not fail the business transaction it rides on.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NewEntry builds an entry with a fresh id and timestamp; payload is
// marshalled to JSON and may be nil.
func NewEntry(entityType string, entityID id.ID, action Action, actor string, payload any) Entry {
	var changes json.RawMessage
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			changes = b
		}
	}
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}
}

// Nop is a Recorder that drops entries; used in tests and when the
// audit trail is disabled.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(ctx context.Context, entry Entry) error { return nil }
