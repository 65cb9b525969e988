package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ZoneArrival   = "arrival"
	ZoneDeparture = "departure"
)

// PassengerCounts holds the per-category head counts a team lead records for a flight.
type PassengerCounts struct {
	Paid        int `gorm:"not null;default:0" json:"paid"`
	Diplomats   int `gorm:"not null;default:0" json:"diplomats"`
	Infants     int `gorm:"not null;default:0" json:"infants"`
	NotPaid     int `gorm:"not null;default:0" json:"not_paid"`
	PaidCardQR  int `gorm:"column:paid_card_qr;not null;default:0" json:"paid_card_qr"`
	Refunds     int `gorm:"not null;default:0" json:"refunds"`
	Deportees   int `gorm:"not null;default:0" json:"deportees"`
	Transit     int `gorm:"not null;default:0" json:"transit"`
	Waivers     int `gorm:"not null;default:0" json:"waivers"`
	PrepaidBank int `gorm:"not null;default:0" json:"prepaid_bank"`
	RoundTrip   int `gorm:"not null;default:0" json:"round_trip"`
	LatePayment int `gorm:"not null;default:0" json:"late_payment"`
}

// Total is the attended passenger count. Refunds is the only subtracted category.
func (c PassengerCounts) Total() int {
	return c.Paid + c.Diplomats + c.Infants + c.NotPaid + c.PaidCardQR +
		c.Deportees + c.Transit + c.Waivers + c.PrepaidBank + c.RoundTrip + c.LatePayment -
		c.Refunds
}

// Fields returns the counts keyed by their column name, in export order.
func (c PassengerCounts) Fields() []CountField {
	return []CountField{
		{"paid", c.Paid},
		{"diplomats", c.Diplomats},
		{"infants", c.Infants},
		{"not_paid", c.NotPaid},
		{"paid_card_qr", c.PaidCardQR},
		{"refunds", c.Refunds},
		{"deportees", c.Deportees},
		{"transit", c.Transit},
		{"waivers", c.Waivers},
		{"prepaid_bank", c.PrepaidBank},
		{"round_trip", c.RoundTrip},
		{"late_payment", c.LatePayment},
	}
}

type CountField struct {
	Name  string
	Value int
}

// Report is a team lead's passenger count for one flight and zone.
// Supervisor and FlightName are copied names, not foreign keys.
type Report struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Date       time.Time `gorm:"type:date;not null;index" json:"date"`
	RefNo      string    `gorm:"size:50;not null;uniqueIndex" json:"ref_no"`
	Supervisor string    `gorm:"size:100;not null;index" json:"supervisor"`
	FlightName string    `gorm:"size:100;not null;index" json:"flight_name"`
	Zone       string    `gorm:"size:20;not null" json:"zone"`

	PassengerCounts `gorm:"embedded"`
	TotalAttended   int `gorm:"not null;default:0" json:"total_attended"`

	IICSInfant int `gorm:"column:iics_infant;not null;default:0" json:"iics_infant"`
	IICSAdult  int `gorm:"column:iics_adult;not null;default:0" json:"iics_adult"`
	IICSTotal  int `gorm:"column:iics_total;not null;default:0" json:"iics_total"`
	GIAInfant  int `gorm:"column:gia_infant;not null;default:0" json:"gia_infant"`
	GIAAdult   int `gorm:"column:gia_adult;not null;default:0" json:"gia_adult"`
	GIATotal   int `gorm:"column:gia_total;not null;default:0" json:"gia_total"`

	Verified     bool       `gorm:"not null;default:false;index" json:"verified"`
	VerifiedByID *uuid.UUID `gorm:"type:char(36);index" json:"verified_by_id"`
	VerifiedDate *time.Time `json:"verified_date"`
	Remarks      string     `gorm:"type:text" json:"remarks"`

	SubmittedByID uuid.UUID `gorm:"type:char(36);not null;index" json:"submitted_by_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Submitter  *User `gorm:"foreignKey:SubmittedByID" json:"-"`
	VerifiedBy *User `gorm:"foreignKey:VerifiedByID" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IICSDifference and GIADifference compare the reference totals against the attended count.
func (r *Report) IICSDifference() int { return r.IICSTotal - r.TotalAttended }
func (r *Report) GIADifference() int  { return r.GIATotal - r.TotalAttended }
