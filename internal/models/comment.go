package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ReportID  uuid.UUID `gorm:"type:char(36);not null;index" json:"report_id"`
	AuthorID  uuid.UUID `gorm:"type:char(36);not null;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	Report *Report `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
