package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskfan/internal/authz"
	"taskfan/internal/middleware"
	"taskfan/internal/models"
	"taskfan/internal/services"
)

type TaskHandler struct {
	orchestrator *services.Orchestrator
}

func NewTaskHandler(orchestrator *services.Orchestrator) *TaskHandler {
	return &TaskHandler{orchestrator: orchestrator}
}

type taskCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	ProjectID   string     `json:"project_id" binding:"required"`
	AssigneeID  *string    `json:"assignee_id"`
}

type taskUpdateRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Priority      *string    `json:"priority"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
	ProjectID     *string    `json:"project_id"`
	AssigneeID    *string    `json:"assignee_id"`
	ClearAssignee bool       `json:"clear_assignee"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}

	projectID := uuid.FromStringOrNil(req.ProjectID)
	if projectID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project_id"})
		return
	}

	input := services.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		Deadline:    req.Deadline,
		ProjectID:   projectID,
	}
	if req.AssigneeID != nil {
		assigneeID := uuid.FromStringOrNil(*req.AssigneeID)
		if assigneeID == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid assignee_id"})
			return
		}
		input.AssigneeID = &assigneeID
	}

	result, err := h.orchestrator.Mutate(actor, authz.ActionCreate, services.EntityTask, nil, input)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result.Entity)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid task id"})
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}

	input := services.TaskUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
		ClearAssignee: req.ClearAssignee,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.ProjectID != nil {
		projectID := uuid.FromStringOrNil(*req.ProjectID)
		if projectID == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project_id"})
			return
		}
		input.ProjectID = &projectID
	}
	if req.AssigneeID != nil {
		assigneeID := uuid.FromStringOrNil(*req.AssigneeID)
		if assigneeID == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid assignee_id"})
			return
		}
		input.AssigneeID = &assigneeID
	}

	result, err := h.orchestrator.Mutate(actor, authz.ActionUpdate, services.EntityTask, &id, input)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Entity)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid task id"})
		return
	}

	if _, err := h.orchestrator.Mutate(actor, authz.ActionDelete, services.EntityTask, &id, nil); err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// GetTasks lists all tasks, or a single project's tasks when project_id is
// given. Both shapes come out of the read-through cache.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID := uuid.FromStringOrNil(projectIDStr)
		if projectID == uuid.Nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project_id"})
			return
		}

		tasks, err := h.orchestrator.ListProjectTasks(projectID)
		if err != nil {
			handleMutationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": tasks})
		return
	}

	tasks, err := h.orchestrator.ListTasks()
	if err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid task id"})
		return
	}

	task, err := h.orchestrator.GetTask(id)
	if err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
