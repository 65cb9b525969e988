package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Date       string `json:"date"`
	RefNo      string `json:"ref_no"`
	Supervisor string `json:"supervisor"`
	FlightName string `json:"flight_name"`
	Zone       string `json:"zone"`
	models.PassengerCounts
	Remarks string `json:"remarks"`
}

// UpdateReportRequest replaces the counts and remarks. Identity fields are immutable.
type UpdateReportRequest struct {
	models.PassengerCounts
	Remarks string `json:"remarks"`
}

type VerifyReportRequest struct {
	IICSInfant int `json:"iics_infant"`
	IICSAdult  int `json:"iics_adult"`
	GIAInfant  int `json:"gia_infant"`
	GIAAdult   int `json:"gia_adult"`
}

// ReportFilter narrows the verified report listing. Dates are YYYY-MM-DD and inclusive.
type ReportFilter struct {
	Supervisor string `query:"supervisor"`
	Flight     string `query:"flight"`
	From       string `query:"from"`
	To         string `query:"to"`
}

// ReportResponse is the public projection of a report.
type ReportResponse struct {
	ID         uuid.UUID `json:"id"`
	Date       string    `json:"date,omitempty"`
	RefNo      string    `json:"refNo"`
	Supervisor string    `json:"supervisor"`
	FlightName string    `json:"flightName"`
	Zone       string    `json:"zone"`

	Paid        int `json:"paid"`
	Diplomats   int `json:"diplomats"`
	Infants     int `json:"infants"`
	NotPaid     int `json:"notPaid"`
	PaidCardQR  int `json:"paidCardQr"`
	Refunds     int `json:"refunds"`
	Deportees   int `json:"deportees"`
	Transit     int `json:"transit"`
	Waivers     int `json:"waivers"`
	PrepaidBank int `json:"prepaidBank"`
	RoundTrip   int `json:"roundTrip"`
	LatePayment int `json:"latePayment"`

	TotalAttended int `json:"totalAttended"`

	IICSInfant int `json:"iicsInfant"`
	IICSAdult  int `json:"iicsAdult"`
	IICSTotal  int `json:"iicsTotal"`
	GIAInfant  int `json:"giaInfant"`
	GIAAdult   int `json:"giaAdult"`
	GIATotal   int `json:"giaTotal"`

	Verified     bool   `json:"verified"`
	VerifiedDate string `json:"verifiedDate,omitempty"`
	Remarks      string `json:"remarks"`
	SubmittedBy  string `json:"submittedBy"`
	VerifiedBy   string `json:"verifiedBy"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// NewReportResponse never fails: negative counts read as 0, zero dates are
// omitted and unloaded users read as "". TotalAttended is passed through as
// stored since refunds can legitimately push it below zero.
func NewReportResponse(r *models.Report) ReportResponse {
	resp := ReportResponse{
		ID:         r.ID,
		Date:       formatDate(r.Date),
		RefNo:      r.RefNo,
		Supervisor: r.Supervisor,
		FlightName: r.FlightName,
		Zone:       r.Zone,

		Paid:        nonNegative(r.Paid),
		Diplomats:   nonNegative(r.Diplomats),
		Infants:     nonNegative(r.Infants),
		NotPaid:     nonNegative(r.NotPaid),
		PaidCardQR:  nonNegative(r.PaidCardQR),
		Refunds:     nonNegative(r.Refunds),
		Deportees:   nonNegative(r.Deportees),
		Transit:     nonNegative(r.Transit),
		Waivers:     nonNegative(r.Waivers),
		PrepaidBank: nonNegative(r.PrepaidBank),
		RoundTrip:   nonNegative(r.RoundTrip),
		LatePayment: nonNegative(r.LatePayment),

		TotalAttended: r.TotalAttended,

		IICSInfant: nonNegative(r.IICSInfant),
		IICSAdult:  nonNegative(r.IICSAdult),
		IICSTotal:  nonNegative(r.IICSTotal),
		GIAInfant:  nonNegative(r.GIAInfant),
		GIAAdult:   nonNegative(r.GIAAdult),
		GIATotal:   nonNegative(r.GIATotal),

		Verified:  r.Verified,
		Remarks:   r.Remarks,
		CreatedAt: formatTimestamp(r.CreatedAt),
		UpdatedAt: formatTimestamp(r.UpdatedAt),
	}
	if r.VerifiedDate != nil {
		resp.VerifiedDate = formatTimestamp(*r.VerifiedDate)
	}
	if r.Submitter != nil {
		resp.SubmittedBy = r.Submitter.Username
	}
	if r.VerifiedBy != nil {
		resp.VerifiedBy = r.VerifiedBy.Username
	}
	return resp
}

func NewReportResponses(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i := range reports {
		out[i] = NewReportResponse(&reports[i])
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
