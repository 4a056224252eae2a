package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string        `json:"name" gorm:"unique;not null"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"not null;default:'not_started'"`

	// CreatedBy is set once at creation and never changes afterwards.
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectCancelled:
		return true
	}
	return false
}
