// Package export renders reports as CSV tables for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
)

const (
	StatusVerified = "Verified"
	StatusPending  = "Pending"

	notAvailable = "N/A"
	dateLayout   = "2006-01-02"
)

var header = []string{
	"Date", "Ref No", "Supervisor", "Flight Name", "Zone",
	"Paid", "Diplomats", "Infants", "Not Paid", "Paid Card/QR", "Refunds",
	"Deportees", "Transit", "Waivers", "Prepaid Bank", "Round Trip", "Late Payment",
	"Total Attended",
	"IICS Infant", "IICS Adult", "IICS Total",
	"GIA Infant", "GIA Adult", "GIA Total",
	"IICS-Total Difference", "GIA-Total Difference",
	"Status", "Submitted By", "Verified By", "Remarks",
}

var verificationHeader = []string{
	"Date", "Supervisor", "Flight", "IICS Total", "GIA Total", "Verified By", "Verification Date",
}

// Header returns the report export columns.
func Header() []string {
	return append([]string(nil), header...)
}

// ToTable returns one row per report, in the order given. It does not modify reports.
func ToTable(reports []models.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for i := range reports {
		rows = append(rows, row(&reports[i]))
	}
	return rows
}

func row(r *models.Report) []string {
	out := make([]string, 0, len(header))
	out = append(out, r.Date.UTC().Format(dateLayout), r.RefNo, r.Supervisor, r.FlightName, r.Zone)
	for _, f := range r.PassengerCounts.Fields() {
		out = append(out, strconv.Itoa(f.Value))
	}
	out = append(out,
		strconv.Itoa(r.TotalAttended),
		strconv.Itoa(r.IICSInfant), strconv.Itoa(r.IICSAdult), strconv.Itoa(r.IICSTotal),
		strconv.Itoa(r.GIAInfant), strconv.Itoa(r.GIAAdult), strconv.Itoa(r.GIATotal),
		strconv.Itoa(r.IICSDifference()), strconv.Itoa(r.GIADifference()),
		status(r), username(r.Submitter), username(r.VerifiedBy), r.Remarks,
	)
	return out
}

func status(r *models.Report) string {
	if r.Verified {
		return StatusVerified
	}
	return StatusPending
}

func username(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}

// VerificationTable is the data analyst's summary of verified reports.
func VerificationTable(reports []models.Report) (head []string, rows [][]string) {
	rows = make([][]string, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		verifiedBy := notAvailable
		if r.VerifiedBy != nil {
			verifiedBy = r.VerifiedBy.Username
		}
		verifiedAt := notAvailable
		if r.VerifiedDate != nil {
			verifiedAt = r.VerifiedDate.UTC().Format(dateLayout)
		}
		rows = append(rows, []string{
			r.Date.UTC().Format(dateLayout),
			r.Supervisor,
			r.FlightName,
			strconv.Itoa(r.IICSTotal),
			strconv.Itoa(r.GIATotal),
			verifiedBy,
			verifiedAt,
		})
	}
	return append([]string(nil), verificationHeader...), rows
}

// WriteCSV writes the header followed by one line per report.
func WriteCSV(w io.Writer, reports []models.Report) error {
	return writeTable(w, Header(), ToTable(reports))
}

// WriteVerificationCSV writes the verified summary table.
func WriteVerificationCSV(w io.Writer, reports []models.Report) error {
	head, rows := VerificationTable(reports)
	return writeTable(w, head, rows)
}

func writeTable(w io.Writer, head []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(head); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
