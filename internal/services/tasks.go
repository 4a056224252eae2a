package services

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/models"
)

type TaskService interface {
	GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error)
	GetTasks(db *gorm.DB) ([]models.Task, error)
	GetTasksByProject(db *gorm.DB, projectID uuid.UUID) ([]models.Task, error)
	CreateTask(db *gorm.DB, task models.Task) error
	SaveTask(db *gorm.DB, task models.Task) error
	DeleteTask(db *gorm.DB, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ?", id).First(&task).Error
	return task, err
}

func (s *TaskServiceImpl) GetTasks(db *gorm.DB) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

func (s *TaskServiceImpl) GetTasksByProject(db *gorm.DB, projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("project_id = ?", projectID).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) error {
	return db.Create(&task).Error
}

func (s *TaskServiceImpl) SaveTask(db *gorm.DB, task models.Task) error {
	return db.Save(&task).Error
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&models.Task{}).Error
}
