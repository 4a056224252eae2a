package services

import (
	"errors"
	"log"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/authz"
	"taskfan/internal/cache"
	"taskfan/internal/fanout"
	"taskfan/internal/models"
)

type EntityKind string

const (
	EntityTask    EntityKind = "task"
	EntityProject EntityKind = "project"
)

type TaskCreateInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Deadline    *time.Time
	ProjectID   uuid.UUID
	AssigneeID  *uuid.UUID
}

// TaskUpdateInput carries only the fields the caller wants to change; nil
// means untouched. Clearing an optional field is expressed separately so a
// nil pointer stays unambiguous.
type TaskUpdateInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
	ProjectID     *uuid.UUID
	AssigneeID    *uuid.UUID
	ClearAssignee bool
}

type ProjectCreateInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
}

type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
}

type MutationResult struct {
	Entity        interface{}
	Notifications []models.Notification
}

// Orchestrator runs every write through the same fixed sequence: resolve
// references, authorize, commit, invalidate cache, fan out. It is the only
// entry point route handlers call for mutations, and it owns the read-through
// cache for the query shapes those mutations must keep coherent.
type Orchestrator struct {
	db       *gorm.DB
	cache    *cache.RedisCache
	fan      *fanout.Fanout
	tasks    TaskService
	projects ProjectService
	users    UserService
	cacheTTL time.Duration
}

// NewOrchestrator wires the pipeline. cacheStore may be nil, in which case
// every read goes straight to the store and invalidation is a no-op.
func NewOrchestrator(db *gorm.DB, cacheStore *cache.RedisCache, fan *fanout.Fanout, cacheTTL time.Duration) *Orchestrator {
	return &Orchestrator{
		db:       db,
		cache:    cacheStore,
		fan:      fan,
		tasks:    NewTaskService(),
		projects: NewProjectService(),
		users:    NewUserService(),
		cacheTTL: cacheTTL,
	}
}

// Mutate is the single write entry point. The payload must match the
// action/kind pair: TaskCreateInput, TaskUpdateInput, ProjectCreateInput or
// ProjectUpdateInput; deletes take no payload.
func (o *Orchestrator) Mutate(actor authz.Actor, action authz.Action, kind EntityKind, id *uuid.UUID, payload interface{}) (*MutationResult, error) {
	switch kind {
	case EntityTask:
		switch action {
		case authz.ActionCreate:
			in, ok := payload.(TaskCreateInput)
			if !ok {
				return nil, ValidationError("invalid task payload")
			}
			return o.createTask(actor, in)
		case authz.ActionUpdate:
			in, ok := payload.(TaskUpdateInput)
			if !ok || id == nil {
				return nil, ValidationError("invalid task payload")
			}
			return o.updateTask(actor, *id, in)
		case authz.ActionDelete:
			if id == nil {
				return nil, ValidationError("missing task identifier")
			}
			return o.deleteTask(actor, *id)
		}
	case EntityProject:
		switch action {
		case authz.ActionCreate:
			in, ok := payload.(ProjectCreateInput)
			if !ok {
				return nil, ValidationError("invalid project payload")
			}
			return o.createProject(actor, in)
		case authz.ActionUpdate:
			in, ok := payload.(ProjectUpdateInput)
			if !ok || id == nil {
				return nil, ValidationError("invalid project payload")
			}
			return o.updateProject(actor, *id, in)
		case authz.ActionDelete:
			if id == nil {
				return nil, ValidationError("missing project identifier")
			}
			return o.deleteProject(actor, *id)
		}
	}
	return nil, ValidationError("unsupported mutation")
}

func (o *Orchestrator) createTask(actor authz.Actor, in TaskCreateInput) (*MutationResult, error) {
	if in.Title == "" {
		return nil, ValidationError("task title is required")
	}
	if in.Status == "" {
		in.Status = models.TaskToDo
	}
	if !in.Status.Valid() {
		return nil, ValidationError("invalid task status")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, ValidationError("invalid task priority")
	}

	// Reference resolution comes before authorization: creating a task in a
	// project that does not exist is a not-found outcome, not a denial.
	if _, err := o.projects.GetProjectByID(o.db, in.ProjectID); err != nil {
		return nil, mapLookupError(err, "project not found")
	}
	if in.AssigneeID != nil {
		if _, err := o.users.GetUserByID(o.db, *in.AssigneeID); err != nil {
			return nil, mapLookupError(err, "assignee not found")
		}
	}

	if decision := authz.CanCreateTask(actor); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Deadline:    in.Deadline,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		ReporterID:  actor.ID,
	}

	if err := o.tasks.CreateTask(o.db, task); err != nil {
		return nil, UnexpectedError("failed to create task", err)
	}

	o.invalidate(cache.KeyAllTasks(), cache.KeyProjectTasks(task.ProjectID))

	notifications := o.fan.TaskCreated(actor.ID, task)
	return &MutationResult{Entity: task, Notifications: notifications}, nil
}

func (o *Orchestrator) updateTask(actor authz.Actor, id uuid.UUID, in TaskUpdateInput) (*MutationResult, error) {
	task, err := o.tasks.GetTaskByID(o.db, id)
	if err != nil {
		return nil, mapLookupError(err, "task not found")
	}
	before := task

	if in.Status != nil && !in.Status.Valid() {
		return nil, ValidationError("invalid task status")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, ValidationError("invalid task priority")
	}
	if in.Title != nil && *in.Title == "" {
		return nil, ValidationError("task title is required")
	}

	if in.ProjectID != nil && *in.ProjectID != task.ProjectID {
		if _, err := o.projects.GetProjectByID(o.db, *in.ProjectID); err != nil {
			return nil, mapLookupError(err, "project not found")
		}
	}
	if in.AssigneeID != nil {
		if _, err := o.users.GetUserByID(o.db, *in.AssigneeID); err != nil {
			return nil, mapLookupError(err, "assignee not found")
		}
	}

	change := authz.TaskChange{}
	if in.Status != nil && *in.Status != task.Status {
		change.Status = in.Status
	}

	if decision := authz.CanUpdateTask(actor, task, change); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.ClearDeadline {
		task.Deadline = nil
	} else if in.Deadline != nil {
		task.Deadline = in.Deadline
	}
	if in.ProjectID != nil {
		task.ProjectID = *in.ProjectID
	}
	if in.ClearAssignee {
		task.AssigneeID = nil
	} else if in.AssigneeID != nil {
		task.AssigneeID = in.AssigneeID
	}

	if err := o.tasks.SaveTask(o.db, task); err != nil {
		return nil, UnexpectedError("failed to update task", err)
	}

	// Old and new project keys both go: a task that moved must drop out of
	// one list and appear in the other before the response returns.
	keys := []string{cache.KeyAllTasks(), cache.KeyProjectTasks(before.ProjectID)}
	if task.ProjectID != before.ProjectID {
		keys = append(keys, cache.KeyProjectTasks(task.ProjectID))
	}
	o.invalidate(keys...)

	notifications := o.fan.TaskUpdated(actor.ID, before, task)
	return &MutationResult{Entity: task, Notifications: notifications}, nil
}

func (o *Orchestrator) deleteTask(actor authz.Actor, id uuid.UUID) (*MutationResult, error) {
	task, err := o.tasks.GetTaskByID(o.db, id)
	if err != nil {
		return nil, mapLookupError(err, "task not found")
	}

	if decision := authz.CanDeleteTask(actor, task); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	if err := o.tasks.DeleteTask(o.db, id); err != nil {
		return nil, UnexpectedError("failed to delete task", err)
	}

	o.invalidate(cache.KeyAllTasks(), cache.KeyProjectTasks(task.ProjectID))

	notifications := o.fan.TaskDeleted(actor.ID, task)
	return &MutationResult{Entity: task, Notifications: notifications}, nil
}

func (o *Orchestrator) createProject(actor authz.Actor, in ProjectCreateInput) (*MutationResult, error) {
	if in.Name == "" {
		return nil, ValidationError("project name is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectNotStarted
	}
	if !in.Status.Valid() {
		return nil, ValidationError("invalid project status")
	}

	if decision := authz.CanCreateProject(actor); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	taken, err := o.projects.NameTaken(o.db, in.Name, nil)
	if err != nil {
		return nil, UnexpectedError("failed to check project name", err)
	}
	if taken {
		return nil, ConflictError("a project with this name already exists")
	}

	project := models.Project{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		CreatedBy:   actor.ID,
	}

	if err := o.projects.CreateProject(o.db, project); err != nil {
		return nil, UnexpectedError("failed to create project", err)
	}

	o.invalidatePattern(cache.PatternProjectLists())

	notifications := o.fan.ProjectCreated(actor.ID, project)
	return &MutationResult{Entity: project, Notifications: notifications}, nil
}

func (o *Orchestrator) updateProject(actor authz.Actor, id uuid.UUID, in ProjectUpdateInput) (*MutationResult, error) {
	project, err := o.projects.GetProjectByID(o.db, id)
	if err != nil {
		return nil, mapLookupError(err, "project not found")
	}

	if in.Name != nil && *in.Name == "" {
		return nil, ValidationError("project name is required")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ValidationError("invalid project status")
	}

	if decision := authz.CanUpdateProject(actor, project); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	if in.Name != nil && *in.Name != project.Name {
		taken, err := o.projects.NameTaken(o.db, *in.Name, &id)
		if err != nil {
			return nil, UnexpectedError("failed to check project name", err)
		}
		if taken {
			return nil, ConflictError("a project with this name already exists")
		}
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = *in.Status
	}

	if err := o.projects.SaveProject(o.db, project); err != nil {
		return nil, UnexpectedError("failed to update project", err)
	}

	o.invalidatePattern(cache.PatternProjectLists())
	o.invalidate(cache.KeyProjectDetail(project.ID))

	notifications := o.fan.ProjectUpdated(actor.ID, project)
	return &MutationResult{Entity: project, Notifications: notifications}, nil
}

func (o *Orchestrator) deleteProject(actor authz.Actor, id uuid.UUID) (*MutationResult, error) {
	project, err := o.projects.GetProjectByID(o.db, id)
	if err != nil {
		return nil, mapLookupError(err, "project not found")
	}

	if decision := authz.CanDeleteProject(actor, project); !decision.Allowed {
		return nil, ForbiddenError(decision)
	}

	// The project and its tasks go in one transaction; a half-deleted
	// project must never be observable.
	err = o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
	if err != nil {
		return nil, UnexpectedError("failed to delete project", err)
	}

	o.invalidatePattern(cache.PatternProjectLists())
	o.invalidate(cache.KeyProjectDetail(id), cache.KeyAllTasks(), cache.KeyProjectTasks(id))

	notifications := o.fan.ProjectDeleted(actor.ID, project)
	return &MutationResult{Entity: project, Notifications: notifications}, nil
}

// ListTasks is the read side of the "all tasks" cache key.
func (o *Orchestrator) ListTasks() ([]models.Task, error) {
	var tasks []models.Task
	if o.cacheGet(cache.KeyAllTasks(), &tasks) {
		return tasks, nil
	}

	tasks, err := o.tasks.GetTasks(o.db)
	if err != nil {
		return nil, UnexpectedError("failed to list tasks", err)
	}

	o.cacheSet(cache.KeyAllTasks(), tasks, o.cacheTTL)
	return tasks, nil
}

func (o *Orchestrator) ListProjectTasks(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if o.cacheGet(cache.KeyProjectTasks(projectID), &tasks) {
		return tasks, nil
	}

	if _, err := o.projects.GetProjectByID(o.db, projectID); err != nil {
		return nil, mapLookupError(err, "project not found")
	}

	tasks, err := o.tasks.GetTasksByProject(o.db, projectID)
	if err != nil {
		return nil, UnexpectedError("failed to list project tasks", err)
	}

	o.cacheSet(cache.KeyProjectTasks(projectID), tasks, o.cacheTTL)
	return tasks, nil
}

func (o *Orchestrator) GetTask(id uuid.UUID) (models.Task, error) {
	task, err := o.tasks.GetTaskByID(o.db, id)
	if err != nil {
		return task, mapLookupError(err, "task not found")
	}
	return task, nil
}

// ListProjects serves filtered project listings. Parameterized queries get
// half the default TTL to bound the staleness window of less-common shapes.
func (o *Orchestrator) ListProjects(filter ProjectFilter) ([]models.Project, error) {
	filter = filter.Normalize()
	key := cache.KeyProjectList(filter.Status, filter.Search, filter.SortBy, filter.SortOrder)

	var projects []models.Project
	if o.cacheGet(key, &projects) {
		return projects, nil
	}

	projects, err := o.projects.GetProjects(o.db, filter)
	if err != nil {
		return nil, UnexpectedError("failed to list projects", err)
	}

	o.cacheSet(key, projects, o.cacheTTL/2)
	return projects, nil
}

func (o *Orchestrator) GetProject(id uuid.UUID) (models.Project, error) {
	var project models.Project
	if o.cacheGet(cache.KeyProjectDetail(id), &project) {
		return project, nil
	}

	project, err := o.projects.GetProjectByID(o.db, id)
	if err != nil {
		return project, mapLookupError(err, "project not found")
	}

	o.cacheSet(cache.KeyProjectDetail(id), project, o.cacheTTL)
	return project, nil
}

// Cache access degrades rather than fails: an unreachable cache logs a
// warning and behaves as a permanent miss, and invalidation of keys that do
// not exist is a harmless no-op, which also makes repeated invalidation of
// the same keys safe.

func (o *Orchestrator) cacheGet(key string, dest interface{}) bool {
	if o.cache == nil {
		return false
	}
	err := o.cache.Get(key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("cache read failed for %s, falling back to store: %v", key, err)
	}
	return false
}

func (o *Orchestrator) cacheSet(key string, value interface{}, ttl time.Duration) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Set(key, value, ttl); err != nil {
		log.Printf("cache write failed for %s: %v", key, err)
	}
}

func (o *Orchestrator) invalidate(keys ...string) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Delete(keys...); err != nil {
		log.Printf("cache invalidation failed for %v: %v", keys, err)
	}
}

func (o *Orchestrator) invalidatePattern(pattern string) {
	if o.cache == nil {
		return
	}
	if err := o.cache.DeletePattern(pattern); err != nil {
		log.Printf("cache invalidation failed for pattern %s: %v", pattern, err)
	}
}

func mapLookupError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(message)
	}
	return UnexpectedError(message, err)
}
