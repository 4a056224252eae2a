package services

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/models"
)

type UserService interface {
	GetUserByID(db *gorm.DB, id uuid.UUID) (models.User, error)
	GetUsers(db *gorm.DB) ([]models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserByID(db *gorm.DB, id uuid.UUID) (models.User, error) {
	var user models.User
	err := db.Where("id = ?", id).First(&user).Error
	return user, err
}

func (s *UserServiceImpl) GetUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("is_active = ?", true).Order("username asc").Find(&users).Error
	return users, err
}
