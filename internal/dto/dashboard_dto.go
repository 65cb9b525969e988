package dto

import "github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"

type AdminDashboard struct {
	TotalUsers int64            `json:"total_users"`
	Active     int64            `json:"active_users"`
	ByRole     map[string]int64 `json:"by_role"`
}

// VerificationTotals summarizes today's reports for the data analyst.
type VerificationTotals struct {
	Date      string  `json:"date"`
	IICSTotal int64   `json:"iics_total"`
	GIATotal  int64   `json:"gia_total"`
	IICSDiff  int64   `json:"iics_diff"`
	GIADiff   int64   `json:"gia_diff"`
	Total     int64   `json:"total_reports"`
	Verified  int64   `json:"verified"`
	Pending   int64   `json:"pending"`
	Rate      float64 `json:"verification_rate"`
}

// ChartData holds one entry per day, oldest first, for the last seven days.
type ChartData struct {
	Days          []string         `json:"days"`
	TotalAttended []int64          `json:"total_attended"`
	IICS          []int64          `json:"iics"`
	GIA           []int64          `json:"gia"`
	Verified      []int64          `json:"verified"`
	Pending       []int64          `json:"pending"`
	Zones         map[string]int64 `json:"zones"`
}

type TeamLeadDashboard struct {
	Activation ActivationStatus `json:"activation"`
	Reports    []ReportResponse `json:"reports"`
}

type AuditLogPage struct {
	Items    []models.AuditLog `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
