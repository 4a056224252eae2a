package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskfan/internal/authz"
	"taskfan/internal/middleware"
	"taskfan/internal/models"
	"taskfan/internal/services"
)

type ProjectHandler struct {
	orchestrator *services.Orchestrator
}

func NewProjectHandler(orchestrator *services.Orchestrator) *ProjectHandler {
	return &ProjectHandler{orchestrator: orchestrator}
}

type projectCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type projectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	var req projectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}

	input := services.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
	}

	result, err := h.orchestrator.Mutate(actor, authz.ActionCreate, services.EntityProject, nil, input)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result.Entity)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project id"})
		return
	}

	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}

	input := services.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}

	result, err := h.orchestrator.Mutate(actor, authz.ActionUpdate, services.EntityProject, &id, input)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Entity)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project id"})
		return
	}

	if _, err := h.orchestrator.Mutate(actor, authz.ActionDelete, services.EntityProject, &id, nil); err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	filter := services.ProjectFilter{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	projects, err := h.orchestrator.ListProjects(filter)
	if err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid project id"})
		return
	}

	project, err := h.orchestrator.GetProject(id)
	if err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
