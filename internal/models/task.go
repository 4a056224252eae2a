package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	TaskToDo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'todo'"`
	Priority    TaskPriority `json:"priority" gorm:"not null;default:'medium'"`
	Deadline    *time.Time   `json:"deadline,omitempty"`

	// ProjectID and AssigneeID are mutable: a task may move between projects
	// and change hands. ReporterID is set once at creation and never changes.
	ProjectID  uuid.UUID  `json:"project_id" gorm:"type:uuid;not null"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid"`
	ReporterID uuid.UUID  `json:"reporter_id" gorm:"type:uuid;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskDone, TaskBlocked:
		return true
	}
	return false
}

// Terminal statuses are the ones reporters may not set unless they are also
// the assignee or hold a Developer/Tester/elevated role.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskBlocked
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (t *Task) IsAssignee(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

func (t *Task) IsReporter(userID uuid.UUID) bool {
	return t.ReporterID == userID
}
