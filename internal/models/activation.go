package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamLeadActivation grants a team lead edit rights for a single calendar date.
// Rows are append-only; the most recently created row for a team lead is the current state.
// Seq numbers a team lead's rows in insertion order and breaks created_at ties.
type TeamLeadActivation struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	TeamLeadID    uuid.UUID `gorm:"type:char(36);not null;index;uniqueIndex:idx_activation_lead_seq,priority:1" json:"team_lead_id"`
	Seq           int64     `gorm:"not null;uniqueIndex:idx_activation_lead_seq,priority:2" json:"-"`
	Date          time.Time `gorm:"type:date;not null" json:"date"`
	ActivatedByID uuid.UUID `gorm:"type:char(36);not null" json:"activated_by_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	TeamLead    *User `gorm:"foreignKey:TeamLeadID;constraint:OnDelete:CASCADE" json:"-"`
	ActivatedBy *User `gorm:"foreignKey:ActivatedByID" json:"-"`
}

func (a *TeamLeadActivation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
