// Package authz holds the authorization decision engine for the mutation
// pipeline. Decisions are pure functions of the actor, the action, and the
// target's current state; nothing here touches the database or the request.
// The rule matrix is fixed and small on purpose: this is not a policy engine.
package authz

import (
	"github.com/gofrs/uuid"

	"taskfan/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Reason codes are machine-distinguishable so the orchestrator can map each
// denial onto the correct externally visible error.
type Reason string

const (
	ReasonRoleInsufficient       Reason = "role-insufficient"
	ReasonNotAssigneeOrReporter  Reason = "not-assignee-or-reporter"
	ReasonReporterTerminalStatus Reason = "reporter-terminal-status-forbidden"
	ReasonMissingReference       Reason = "entity-not-found-for-reference"
)

// Actor is passed explicitly into every orchestrator call. Handlers build it
// from the verified token; nothing downstream reads identity from ambient
// request state.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason, message string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: message}
}

// TaskChange describes the parts of a proposed task update that authorization
// cares about. Status is non-nil only when the update actually moves the task
// to a different status.
type TaskChange struct {
	Status *models.TaskStatus
}

// CanCreateTask allows Admin, ProjectManager, Developer and Tester. Testers
// are deliberately included: every role that can update a task through the
// assignee relationship can also create one.
func CanCreateTask(actor Actor) Decision {
	switch actor.Role {
	case models.RoleAdmin, models.RoleProjectManager, models.RoleDeveloper, models.RoleTester:
		return Allow()
	}
	return Deny(ReasonRoleInsufficient, "role may not create tasks")
}

// CanUpdateTask allows elevated roles always, and otherwise requires the
// actor to be the task's assignee or reporter. A reporter who is not also the
// assignee and does not hold a Developer or Tester role may edit any field
// except a status change into Done or Blocked; that carve-out short-circuits
// with its own reason so clients can tell it apart from a plain denial.
func CanUpdateTask(actor Actor, task models.Task, change TaskChange) Decision {
	if actor.Role.Elevated() {
		return Allow()
	}

	isAssignee := task.IsAssignee(actor.ID)
	isReporter := task.IsReporter(actor.ID)

	if !isAssignee && !isReporter {
		return Deny(ReasonNotAssigneeOrReporter, "only the assignee or reporter may update this task")
	}

	if isReporter && !isAssignee &&
		actor.Role != models.RoleDeveloper && actor.Role != models.RoleTester &&
		change.Status != nil && change.Status.Terminal() {
		return Deny(ReasonReporterTerminalStatus, "reporter may not move the task to a terminal status")
	}

	return Allow()
}

// CanDeleteTask allows elevated roles and the task's reporter.
func CanDeleteTask(actor Actor, task models.Task) Decision {
	if actor.Role.Elevated() || task.IsReporter(actor.ID) {
		return Allow()
	}
	return Deny(ReasonRoleInsufficient, "only the reporter or an elevated role may delete this task")
}

func CanCreateProject(actor Actor) Decision {
	if actor.Role.Elevated() {
		return Allow()
	}
	return Deny(ReasonRoleInsufficient, "role may not create projects")
}

// CanUpdateProject allows elevated roles and the project's creator.
func CanUpdateProject(actor Actor, project models.Project) Decision {
	if actor.Role.Elevated() || project.CreatedBy == actor.ID {
		return Allow()
	}
	return Deny(ReasonRoleInsufficient, "only the creator or an elevated role may update this project")
}

// CanDeleteProject mirrors CanUpdateProject.
func CanDeleteProject(actor Actor, project models.Project) Decision {
	if actor.Role.Elevated() || project.CreatedBy == actor.ID {
		return Allow()
	}
	return Deny(ReasonRoleInsufficient, "only the creator or an elevated role may delete this project")
}
