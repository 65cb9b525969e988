package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventReportCreated     EventType = "report.created"
	EventReportUpdated     EventType = "report.updated"
	EventReportVerified    EventType = "report.verified"
	EventTeamLeadActivated EventType = "team_lead.activated"
	EventUserCreated       EventType = "user.created"
	EventUserActivated     EventType = "user.activated"
	EventUserDeactivated   EventType = "user.deactivated"
	EventUserDeleted       EventType = "user.deleted"
	EventPasswordReset     EventType = "user.password_reset"
	EventPasswordChanged   EventType = "user.password_changed"
	EventFlightAdded       EventType = "flight.added"
	EventFlightRemoved     EventType = "flight.removed"
	EventSupervisorAdded   EventType = "supervisor.added"
	EventSupervisorRemoved EventType = "supervisor.removed"
	EventCommentDeleted    EventType = "comment.deleted"
)

// AuditLog records who changed what. Object is the affected entity id or name.
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	EventType EventType      `gorm:"size:40;not null;index" json:"event_type"`
	ActorID   uuid.UUID      `gorm:"type:char(36);not null;index" json:"actor_id"`
	Object    string         `gorm:"size:120;not null" json:"object"`
	IP        string         `gorm:"size:64" json:"ip"`
	UserAgent string         `gorm:"size:255" json:"user_agent"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
