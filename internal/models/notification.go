package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type NotificationType string

const (
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationTaskUpdated     NotificationType = "task_updated"
	NotificationProjectAssigned NotificationType = "project_assigned"
	NotificationGeneral         NotificationType = "general"
)

// Notification is only ever created as a side effect of a task or project
// mutation. It has exactly one recipient; after creation the read flag is the
// only mutable field, and the recipient may delete it.
type Notification struct {
	ID          uuid.UUID        `json:"id" gorm:"primaryKey;type:uuid"`
	RecipientID uuid.UUID        `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Message     string           `json:"message" gorm:"not null"`
	Type        NotificationType `json:"type" gorm:"not null;default:'general'"`
	RelatedID   *uuid.UUID       `json:"related_id,omitempty" gorm:"type:uuid"`
	Link        string           `json:"link,omitempty"`
	Read        bool             `json:"read" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}
