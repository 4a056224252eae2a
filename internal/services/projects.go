package services

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/models"
)

// ProjectFilter is the query shape for filtered project listings; the same
// tuple feeds the cache key builder, so two requests with the same filter hit
// the same entry.
type ProjectFilter struct {
	Status    string
	Search    string
	SortBy    string
	SortOrder string
}

var projectSortColumns = map[string]string{
	"name":       "name",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// Normalize maps unknown sort inputs onto safe defaults so that filter tuples
// that would query identically also share a cache key.
func (f ProjectFilter) Normalize() ProjectFilter {
	if _, ok := projectSortColumns[f.SortBy]; !ok {
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	return f
}

type ProjectService interface {
	GetProjectByID(db *gorm.DB, id uuid.UUID) (models.Project, error)
	GetProjects(db *gorm.DB, filter ProjectFilter) ([]models.Project, error)
	NameTaken(db *gorm.DB, name string, excludeID *uuid.UUID) (bool, error)
	CreateProject(db *gorm.DB, project models.Project) error
	SaveProject(db *gorm.DB, project models.Project) error
	DeleteProject(db *gorm.DB, id uuid.UUID) error
}

type ProjectServiceImpl struct{}

func NewProjectService() *ProjectServiceImpl {
	return &ProjectServiceImpl{}
}

func (s *ProjectServiceImpl) GetProjectByID(db *gorm.DB, id uuid.UUID) (models.Project, error) {
	var project models.Project
	err := db.Where("id = ?", id).First(&project).Error
	return project, err
}

func (s *ProjectServiceImpl) GetProjects(db *gorm.DB, filter ProjectFilter) ([]models.Project, error) {
	filter = filter.Normalize()

	query := db.Model(&models.Project{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var projects []models.Project
	err := query.Order(projectSortColumns[filter.SortBy] + " " + filter.SortOrder).Find(&projects).Error
	return projects, err
}

func (s *ProjectServiceImpl) NameTaken(db *gorm.DB, name string, excludeID *uuid.UUID) (bool, error) {
	query := db.Model(&models.Project{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ProjectServiceImpl) CreateProject(db *gorm.DB, project models.Project) error {
	return db.Create(&project).Error
}

func (s *ProjectServiceImpl) SaveProject(db *gorm.DB, project models.Project) error {
	return db.Save(&project).Error
}

func (s *ProjectServiceImpl) DeleteProject(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&models.Project{}).Error
}
