package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/services"
)

type UserHandler struct {
	db    *gorm.DB
	users services.UserService
}

func NewUserHandler(db *gorm.DB, users services.UserService) *UserHandler {
	return &UserHandler{db: db, users: users}
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.users.GetUsers(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid user id"})
		return
	}

	user, err := h.users.GetUserByID(h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}
