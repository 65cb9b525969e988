package dto

import "github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"

type NameRequest struct {
	Name string `json:"name"`
}

type ReferenceResponse struct {
	Flights     []models.Flight     `json:"flights"`
	Supervisors []models.Supervisor `json:"supervisors"`
}
