package models

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleProjectManager, RoleDeveloper, RoleTester, RoleViewer} {
		assert.True(t, role.Valid(), "role %s", role)
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleElevated(t *testing.T) {
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleProjectManager.Elevated())
	assert.False(t, RoleDeveloper.Elevated())
	assert.False(t, RoleTester.Elevated())
	assert.False(t, RoleViewer.Elevated())
}

func TestTaskStatusValid(t *testing.T) {
	for _, status := range []TaskStatus{TaskToDo, TaskInProgress, TaskDone, TaskBlocked} {
		assert.True(t, status.Valid(), "status %s", status)
	}
	assert.False(t, TaskStatus("cancelled").Valid())
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.True(t, TaskDone.Terminal())
	assert.True(t, TaskBlocked.Terminal())
	assert.False(t, TaskToDo.Terminal())
	assert.False(t, TaskInProgress.Terminal())
}

func TestTaskPriorityValid(t *testing.T) {
	for _, priority := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, priority.Valid(), "priority %s", priority)
	}
	assert.False(t, TaskPriority("urgent").Valid())
}

func TestProjectStatusValid(t *testing.T) {
	for _, status := range []ProjectStatus{
		ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectCancelled,
	} {
		assert.True(t, status.Valid(), "status %s", status)
	}
	assert.False(t, ProjectStatus("archived").Valid())
}

func TestTaskParticipantHelpers(t *testing.T) {
	reporter := uuid.Must(uuid.NewV4())
	assignee := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())

	unassigned := Task{ReporterID: reporter}
	assert.True(t, unassigned.IsReporter(reporter))
	assert.False(t, unassigned.IsReporter(other))
	assert.False(t, unassigned.IsAssignee(reporter), "no assignee means nobody matches")

	assigned := Task{ReporterID: reporter, AssigneeID: &assignee}
	assert.True(t, assigned.IsAssignee(assignee))
	assert.False(t, assigned.IsAssignee(other))
}
