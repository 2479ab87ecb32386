package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// ScannerActorName is the display name recorded on scanner-generated
// audit entries
const ScannerActorName = "VerdictTrace Scanner"

// AuditEntry is one immutable record in a case's audit trail. Entries are
// only ever appended; canonical order is insertion order.
type AuditEntry struct {
	Action    types.AuditAction `json:"action" firestore:"action"`
	ActorID   types.ActorID     `json:"actorId" firestore:"actor_id"`
	ActorName string            `json:"actorName" firestore:"actor_name"`
	Reason    string            `json:"reason" firestore:"reason"`
	Timestamp time.Time         `json:"timestamp" firestore:"timestamp"`
}

// NewAuditEntry creates a new audit entry stamped with the current time
func NewAuditEntry(action types.AuditAction, actorID types.ActorID, actorName, reason string) (*AuditEntry, error) {
	if !action.IsValid() {
		return nil, goerr.New("invalid audit action", goerr.V("action", action))
	}
	if actorID == "" {
		return nil, goerr.New("actor ID is required")
	}

	return &AuditEntry{
		Action:    action,
		ActorID:   actorID,
		ActorName: actorName,
		Reason:    reason,
		Timestamp: time.Now(),
	}, nil
}

// Validate validates the audit entry
func (e *AuditEntry) Validate() error {
	if !e.Action.IsValid() {
		return goerr.New("invalid audit action", goerr.V("action", e.Action))
	}
	if e.ActorID == "" {
		return goerr.New("actor ID is required")
	}
	if e.Timestamp.IsZero() {
		return goerr.New("timestamp is required")
	}
	return nil
}
