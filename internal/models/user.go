package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleDeveloper      Role = "developer"
	RoleTester         Role = "tester"
	RoleViewer         Role = "viewer"
)

type User struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Username string    `json:"username" gorm:"unique;not null"`
	Email    string    `json:"email" gorm:"unique;not null"`
	Password string    `json:"-" gorm:"not null"`
	Role     Role      `json:"role" gorm:"not null;default:'viewer'"`
	IsActive bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Elevated roles pass every authorization rule for tasks and projects.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleProjectManager
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleDeveloper, RoleTester, RoleViewer:
		return true
	}
	return false
}
