package types

import (
	"fmt"

	"github.com/google/uuid"
)

// CaseID represents an investigation case identifier
type CaseID string

// String returns the string representation
func (id CaseID) String() string {
	return string(id)
}

// NewCaseID creates a new CaseID
func NewCaseID() CaseID {
	return CaseID(uuid.New().String())
}

// ComplaintID represents a complaint document identifier
type ComplaintID string

// String returns the string representation
func (id ComplaintID) String() string {
	return string(id)
}

// NotificationID represents an in-app notification identifier
type NotificationID string

// String returns the string representation
func (id NotificationID) String() string {
	return string(id)
}

// NewNotificationID creates a new NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(fmt.Sprintf("ntf-%s", uuid.New().String()))
}

// ActorID identifies who performed a case mutation. The scanner uses
// ActorSystem; human actions carry the caller's user ID.
type ActorID string

// String returns the string representation
func (id ActorID) String() string {
	return string(id)
}

// ActorSystem is the actor recorded for scanner-generated mutations
const ActorSystem ActorID = "system"
