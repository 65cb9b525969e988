package dto

import (
	"time"

	"github.com/google/uuid"
)

type ActivateRequest struct {
	TeamLeadID string `json:"team_lead_id"`
	Date       string `json:"date"`
}

// ActivationStatus is what a team lead sees on their dashboard.
type ActivationStatus struct {
	Activated bool   `json:"activated"`
	Date      string `json:"date,omitempty"`
}

type ActivationResponse struct {
	ID          uuid.UUID `json:"id"`
	TeamLead    string    `json:"team_lead"`
	ActivatedBy string    `json:"activated_by"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}
