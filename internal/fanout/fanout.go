// Package fanout propagates a committed mutation to everyone who cares about
// it: connected clients through the realtime hub, and affected offline users
// through persisted notifications. Both channels are always attempted; a
// failure in one never blocks the other, and neither failure reaches back
// into the mutation that triggered them.
package fanout

import (
	"fmt"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/models"
	"taskfan/internal/realtime"
	"taskfan/internal/worker"
)

type Broadcaster interface {
	Broadcast(event realtime.Event)
}

type Fanout struct {
	db    *gorm.DB
	hub   Broadcaster
	queue *worker.JobQueue
}

// New builds a Fanout. The queue is optional; without it notifications are
// persisted but no delivery job is enqueued.
func New(db *gorm.DB, hub Broadcaster, queue *worker.JobQueue) *Fanout {
	return &Fanout{db: db, hub: hub, queue: queue}
}

// DeletionMarker is the payload broadcast for deleted entities: enough for a
// client to drop the entity from whatever scope it is watching.
type DeletionMarker struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

func TaskLink(projectID, taskID uuid.UUID) string {
	return fmt.Sprintf("/projects/%s/tasks/%s", projectID, taskID)
}

func ProjectLink(projectID uuid.UUID) string {
	return fmt.Sprintf("/projects/%s", projectID)
}

func (f *Fanout) TaskCreated(actor uuid.UUID, task models.Task) []models.Notification {
	f.hub.Broadcast(realtime.Event{
		Name:    realtime.EventCreated,
		Scope:   realtime.ProjectScope(task.ProjectID),
		Payload: task,
	})

	var issued []models.Notification
	if task.AssigneeID != nil && *task.AssigneeID != actor {
		issued = f.persist(issued, models.Notification{
			RecipientID: *task.AssigneeID,
			Message:     fmt.Sprintf("You have been assigned task %q", task.Title),
			Type:        models.NotificationTaskAssigned,
			RelatedID:   &task.ID,
			Link:        TaskLink(task.ProjectID, task.ID),
		})
	}
	return issued
}

// TaskUpdated broadcasts to the task's scope, or to both the old and the new
// scope when the task moved between projects, so clients viewing either
// project converge. Notification triggers are evaluated most-specific first
// and each recipient is notified at most once per mutation.
func (f *Fanout) TaskUpdated(actor uuid.UUID, before, after models.Task) []models.Notification {
	if before.ProjectID != after.ProjectID {
		f.hub.Broadcast(realtime.Event{
			Name:    realtime.EventDeleted,
			Scope:   realtime.ProjectScope(before.ProjectID),
			Payload: DeletionMarker{ID: after.ID, ProjectID: &before.ProjectID},
		})
		f.hub.Broadcast(realtime.Event{
			Name:    realtime.EventCreated,
			Scope:   realtime.ProjectScope(after.ProjectID),
			Payload: after,
		})
	} else {
		f.hub.Broadcast(realtime.Event{
			Name:    realtime.EventUpdated,
			Scope:   realtime.ProjectScope(after.ProjectID),
			Payload: after,
		})
	}

	assigneeChanged := !sameAssignee(before.AssigneeID, after.AssigneeID)
	statusChanged := before.Status != after.Status
	completed := statusChanged && after.Status == models.TaskDone

	notified := make(map[uuid.UUID]bool)
	var issued []models.Notification

	if assigneeChanged && after.AssigneeID != nil && *after.AssigneeID != actor {
		issued = f.persist(issued, models.Notification{
			RecipientID: *after.AssigneeID,
			Message:     fmt.Sprintf("You have been assigned task %q", after.Title),
			Type:        models.NotificationTaskAssigned,
			RelatedID:   &after.ID,
			Link:        TaskLink(after.ProjectID, after.ID),
		})
		notified[*after.AssigneeID] = true
	}

	if completed && after.ReporterID != actor && !notified[after.ReporterID] {
		issued = f.persist(issued, models.Notification{
			RecipientID: after.ReporterID,
			Message:     fmt.Sprintf("Task %q has been completed", after.Title),
			Type:        models.NotificationTaskUpdated,
			RelatedID:   &after.ID,
			Link:        TaskLink(after.ProjectID, after.ID),
		})
		notified[after.ReporterID] = true
	}

	if statusChanged && after.AssigneeID != nil && *after.AssigneeID != actor && !notified[*after.AssigneeID] {
		issued = f.persist(issued, models.Notification{
			RecipientID: *after.AssigneeID,
			Message:     fmt.Sprintf("Task %q moved to status %s", after.Title, after.Status),
			Type:        models.NotificationTaskUpdated,
			RelatedID:   &after.ID,
			Link:        TaskLink(after.ProjectID, after.ID),
		})
		notified[*after.AssigneeID] = true
	}

	return issued
}

func (f *Fanout) TaskDeleted(actor uuid.UUID, task models.Task) []models.Notification {
	f.hub.Broadcast(realtime.Event{
		Name:    realtime.EventDeleted,
		Scope:   realtime.ProjectScope(task.ProjectID),
		Payload: DeletionMarker{ID: task.ID, ProjectID: &task.ProjectID},
	})

	var issued []models.Notification
	if task.AssigneeID != nil && *task.AssigneeID != actor {
		issued = f.persist(issued, models.Notification{
			RecipientID: *task.AssigneeID,
			Message:     fmt.Sprintf("Task %q assigned to you has been deleted", task.Title),
			Type:        models.NotificationGeneral,
			RelatedID:   &task.ProjectID,
			Link:        ProjectLink(task.ProjectID),
		})
	}
	return issued
}

func (f *Fanout) ProjectCreated(actor uuid.UUID, project models.Project) []models.Notification {
	f.broadcastProject(realtime.EventCreated, project.ID, project)
	return nil
}

func (f *Fanout) ProjectUpdated(actor uuid.UUID, project models.Project) []models.Notification {
	f.broadcastProject(realtime.EventUpdated, project.ID, project)
	return nil
}

func (f *Fanout) ProjectDeleted(actor uuid.UUID, project models.Project) []models.Notification {
	f.broadcastProject(realtime.EventDeleted, project.ID, DeletionMarker{ID: project.ID})
	return nil
}

// Project events go to the project's own scope and to the all-projects list
// scope, since either view changes.
func (f *Fanout) broadcastProject(name string, projectID uuid.UUID, payload interface{}) {
	f.hub.Broadcast(realtime.Event{Name: name, Scope: realtime.ProjectScope(projectID), Payload: payload})
	f.hub.Broadcast(realtime.Event{Name: name, Scope: realtime.ScopeAllProjects, Payload: payload})
}

func (f *Fanout) persist(issued []models.Notification, n models.Notification) []models.Notification {
	n.ID = uuid.Must(uuid.NewV4())
	n.CreatedAt = time.Now()

	if err := f.db.Create(&n).Error; err != nil {
		log.Printf("failed to persist notification for %s: %v", n.RecipientID, err)
		return issued
	}

	if f.queue != nil {
		err := f.queue.Enqueue(worker.QueueNotifications, worker.JobTypeNotificationDelivery, map[string]interface{}{
			"notification_id": n.ID.String(),
			"recipient_id":    n.RecipientID.String(),
		})
		if err != nil {
			log.Printf("failed to enqueue delivery for notification %s: %v", n.ID, err)
		}
	}

	return append(issued, n)
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
