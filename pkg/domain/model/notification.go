package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/verdicttrace/verdicttrace/pkg/domain/types"
)

// NotificationType categorizes in-app notifications
type NotificationType string

const (
	NotificationTypeEscalation NotificationType = "escalation"
)

// Notification is an in-app notification record tied to a case
type Notification struct {
	ID        types.NotificationID `json:"id" firestore:"id"`
	CaseID    types.CaseID         `json:"caseId" firestore:"case_id"`
	Type      NotificationType     `json:"type" firestore:"type"`
	Title     string               `json:"title" firestore:"title"`
	Message   string               `json:"message" firestore:"message"`
	CreatedAt time.Time            `json:"createdAt" firestore:"created_at"`
}

// NewNotification creates a new in-app notification
func NewNotification(caseID types.CaseID, ntype NotificationType, title, message string) (*Notification, error) {
	if caseID == "" {
		return nil, goerr.New("case ID is required")
	}
	if title == "" {
		return nil, goerr.New("notification title is required")
	}

	return &Notification{
		ID:        types.NewNotificationID(),
		CaseID:    caseID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}, nil
}
