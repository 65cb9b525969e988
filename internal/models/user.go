package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleTeamLead       Role = "teamLead"
	RoleDataAnalyst    Role = "dataAnalyst"
	RoleCashController Role = "cashController"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLead, RoleDataAnalyst, RoleCashController:
		return true
	}
	return false
}

// User is a staff account. Bootstrap marks the built-in admin created at startup.
type User struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Username   string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email      string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password   string    `gorm:"size:256;not null" json:"-"`
	Role       Role      `gorm:"size:20;not null;index" json:"role"`
	Gender     string    `gorm:"size:10" json:"gender"`
	Telephone  string    `gorm:"size:20" json:"telephone"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	FirstLogin bool      `gorm:"not null;default:false" json:"first_login"`
	Bootstrap  bool      `gorm:"not null;default:false" json:"bootstrap"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
