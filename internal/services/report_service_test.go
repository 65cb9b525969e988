package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestReportLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	counts := models.PassengerCounts{Paid: 10, Diplomats: 1, NotPaid: 2, Refunds: 1}
	created, err := f.reports.Create(ctx, f.lead, reportRequest("R-1", f.today(), counts))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.TotalAttended != 12 {
		t.Fatalf("TotalAttended = %d, want 12", created.TotalAttended)
	}
	if created.Verified {
		t.Fatal("new report should be unverified")
	}

	verified, err := f.reports.Verify(ctx, f.analyst, created.ID, &dto.VerifyReportRequest{IICSAdult: 12, GIAAdult: 12})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !verified.Verified || verified.IICSTotal != 12 || verified.GIATotal != 12 {
		t.Errorf("verified report = %+v", verified)
	}
	if verified.TotalAttended != 12 {
		t.Errorf("TotalAttended changed to %d", verified.TotalAttended)
	}
	if verified.VerifiedBy == nil || verified.VerifiedBy.Username != "analyst1" {
		t.Errorf("VerifiedBy = %v, want analyst1", verified.VerifiedBy)
	}

	listed, err := f.reports.ListForRole(ctx, f.controller, dto.ReportFilter{})
	if err != nil {
		t.Fatalf("ListForRole(cashController) error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("cash controller sees %d reports, want 1", len(listed))
	}
	rows := export.ToTable(listed)
	if rows[0][1] != "R-1" || rows[0][26] != export.StatusVerified {
		t.Errorf("export row = %v", rows[0])
	}

	var audits int64
	f.db.Model(&models.AuditLog{}).Where("object = ?", "R-1").Count(&audits)
	if audits != 2 {
		t.Errorf("audit entries for R-1 = %d, want 2", audits)
	}
}

func TestCreateReportValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := f.lead
	inactive.Active = false

	tests := []struct {
		name      string
		actor     access.Actor
		mutate    func(r *dto.CreateReportRequest)
		wantErr   error
		wantField string
	}{
		{"analyst cannot submit", f.analyst, nil, ErrPermissionDenied, ""},
		{"inactive team lead", inactive, nil, ErrPermissionDenied, ""},
		{"malformed date", f.lead, func(r *dto.CreateReportRequest) { r.Date = "01/03/2026" }, ErrInvalidField, "date"},
		{"missing ref", f.lead, func(r *dto.CreateReportRequest) { r.RefNo = "  " }, ErrInvalidField, "ref_no"},
		{"unknown zone", f.lead, func(r *dto.CreateReportRequest) { r.Zone = "transit" }, ErrInvalidField, "zone"},
		{"negative count", f.lead, func(r *dto.CreateReportRequest) { r.Waivers = -1 }, ErrInvalidField, "waivers"},
		{"unregistered flight", f.lead, func(r *dto.CreateReportRequest) { r.FlightName = "XX-1" }, ErrInvalidField, "flight_name"},
		{"unregistered supervisor", f.lead, func(r *dto.CreateReportRequest) { r.Supervisor = "Nobody" }, ErrInvalidField, "supervisor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := reportRequest("R-V", f.today(), models.PassengerCounts{Paid: 1})
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := f.reports.Create(ctx, tt.actor, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			var fe *FieldError
			if tt.wantField != "" && (!errors.As(err, &fe) || fe.Field != tt.wantField) {
				t.Errorf("field error = %v, want field %q", err, tt.wantField)
			}
		})
	}

	var count int64
	f.db.Model(&models.Report{}).Count(&count)
	if count != 0 {
		t.Errorf("%d reports stored after failed creates", count)
	}
}

func TestCreateReportDuplicateRefNo(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "R-1")

	_, err := f.reports.Create(context.Background(), f.otherLead, reportRequest("R-1", f.today(), models.PassengerCounts{}))
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("Create() error = %v, want ErrDuplicateReference", err)
	}
}

func TestCreateReportDuplicateRejectedByIndex(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "R-0")

	// A concurrent submission lands between the ref_no check and the insert.
	raced := false
	err := f.db.Callback().Create().Before("gorm:create").Register("test:concurrent_submit", func(tx *gorm.DB) {
		report, ok := tx.Statement.Dest.(*models.Report)
		if !ok || raced {
			return
		}
		raced = true
		other := *report
		other.ID = uuid.Nil
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&other).Error; err != nil {
			tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	var before int64
	f.db.Model(&models.Report{}).Count(&before)

	_, err = f.reports.Create(context.Background(), f.lead, reportRequest("R-1", f.today(), models.PassengerCounts{Paid: 1}))
	if !raced {
		t.Fatal("insert hook did not run")
	}
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("Create() error = %v, want ErrDuplicateReference", err)
	}

	var after int64
	f.db.Model(&models.Report{}).Count(&after)
	if after != before {
		t.Errorf("report count = %d, want %d", after, before)
	}
}

func TestUpdateReport(t *testing.T) {
	ctx := context.Background()
	update := &dto.UpdateReportRequest{
		PassengerCounts: models.PassengerCounts{Paid: 20, Refunds: 2},
		Remarks:         "recount",
	}

	t.Run("requires activation for today", func(t *testing.T) {
		f := newFixture(t)
		r := f.submit(t, "R-1")
		_, err := f.reports.Update(ctx, f.lead, r.ID, update)
		if !errors.Is(err, ErrActivationRequired) || !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("Update() error = %v, want ErrActivationRequired", err)
		}
	})

	t.Run("only the latest activation counts", func(t *testing.T) {
		f := newFixture(t)
		r := f.submit(t, "R-1")
		f.activate(t, f.lead, f.today())
		f.activate(t, f.lead, f.now.AddDate(0, 0, -1).Format(DateLayout))
		_, err := f.reports.Update(ctx, f.lead, r.ID, update)
		if !errors.Is(err, ErrActivationRequired) {
			t.Fatalf("Update() error = %v, want ErrActivationRequired", err)
		}
	})

	t.Run("activation expires at midnight", func(t *testing.T) {
		f := newFixture(t)
		r := f.submit(t, "R-1")
		f.activate(t, f.lead, f.today())
		f.advance(24 * time.Hour)
		_, err := f.reports.Update(ctx, f.lead, r.ID, update)
		if !errors.Is(err, ErrActivationRequired) {
			t.Fatalf("Update() error = %v, want ErrActivationRequired", err)
		}
	})

	t.Run("other team lead is refused", func(t *testing.T) {
		f := newFixture(t)
		r := f.submit(t, "R-1")
		f.activate(t, f.otherLead, f.today())
		_, err := f.reports.Update(ctx, f.otherLead, r.ID, update)
		if !errors.Is(err, ErrNotSubmitter) {
			t.Fatalf("Update() error = %v, want ErrNotSubmitter", err)
		}
	})

	t.Run("missing report", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reports.Update(ctx, f.lead, uuid.New(), update)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("recomputes total and resets verification", func(t *testing.T) {
		f := newFixture(t)
		r := f.submit(t, "R-1")
		if _, err := f.reports.Verify(ctx, f.analyst, r.ID, &dto.VerifyReportRequest{IICSAdult: 5}); err != nil {
			t.Fatal(err)
		}
		f.activate(t, f.lead, f.today())

		got, err := f.reports.Update(ctx, f.lead, r.ID, update)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.TotalAttended != 18 {
			t.Errorf("TotalAttended = %d, want 18", got.TotalAttended)
		}
		if got.Verified || got.VerifiedByID != nil || got.VerifiedDate != nil {
			t.Errorf("verification not cleared: verified=%v by=%v date=%v", got.Verified, got.VerifiedByID, got.VerifiedDate)
		}
		if got.Remarks != "recount" || got.RefNo != "R-1" {
			t.Errorf("report = %+v", got)
		}
	})
}

func TestVerifyIsIdempotentOnTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.submit(t, "R-1")

	first, err := f.reports.Verify(ctx, f.analyst, r.ID, &dto.VerifyReportRequest{IICSInfant: 1, IICSAdult: 2, GIAAdult: 3})
	if err != nil {
		t.Fatal(err)
	}
	f.advance(time.Hour)
	second, err := f.reports.Verify(ctx, f.analyst, r.ID, &dto.VerifyReportRequest{IICSAdult: 9, GIAInfant: 4})
	if err != nil {
		t.Fatal(err)
	}

	if first.TotalAttended != 5 || second.TotalAttended != 5 {
		t.Errorf("TotalAttended = %d then %d, want 5", first.TotalAttended, second.TotalAttended)
	}
	if second.IICSTotal != 9 || second.GIATotal != 4 || second.IICSInfant != 0 {
		t.Errorf("second verify did not overwrite: %+v", second)
	}
	if !second.VerifiedDate.After(*first.VerifiedDate) {
		t.Errorf("VerifiedDate not updated: %v then %v", first.VerifiedDate, second.VerifiedDate)
	}
}

func TestVerifyErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.submit(t, "R-1")

	tests := []struct {
		name    string
		actor   access.Actor
		id      uuid.UUID
		req     dto.VerifyReportRequest
		wantErr error
	}{
		{"team lead cannot verify", f.lead, r.ID, dto.VerifyReportRequest{}, ErrPermissionDenied},
		{"negative count", f.analyst, r.ID, dto.VerifyReportRequest{GIAAdult: -1}, ErrInvalidField},
		{"missing report", f.analyst, uuid.New(), dto.VerifyReportRequest{}, ErrReportNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reports.Verify(ctx, tt.actor, tt.id, &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListForRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, ref := range []string{"R-1", "R-2", "R-3", "R-4"} {
		ids = append(ids, f.submit(t, ref).ID)
	}
	for _, id := range ids[:3] {
		if _, err := f.reports.Verify(ctx, f.analyst, id, &dto.VerifyReportRequest{}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		actor   access.Actor
		wantLen int
		wantErr error
	}{
		{"submitting team lead sees own", f.lead, 4, nil},
		{"other team lead sees none", f.otherLead, 0, nil},
		{"analyst sees pending plus verified window", f.analyst, 3, nil},
		{"cash controller sees verified", f.controller, 3, nil},
		{"admin is refused", f.admin, 0, ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.reports.ListForRole(ctx, tt.actor, dto.ReportFilter{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ListForRole() error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}

	analystView, _ := f.reports.ListForRole(ctx, f.analyst, dto.ReportFilter{})
	if analystView[0].Verified || analystView[0].RefNo != "R-4" {
		t.Errorf("analyst list should start with the pending report, got %s", analystView[0].RefNo)
	}
	if analystView[1].RefNo != "R-3" || analystView[2].RefNo != "R-2" {
		t.Errorf("verified window = %s, %s; want R-3, R-2", analystView[1].RefNo, analystView[2].RefNo)
	}
}

func TestVerifiedFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, date := range []string{"2026-02-26", "2026-02-27", "2026-02-28"} {
		req := reportRequest("R-"+date, date, models.PassengerCounts{Paid: i})
		r, err := f.reports.Create(ctx, f.lead, req)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.reports.Verify(ctx, f.analyst, r.ID, &dto.VerifyReportRequest{}); err != nil {
			t.Fatal(err)
		}
		f.advance(time.Second)
	}

	tests := []struct {
		name    string
		filter  dto.ReportFilter
		wantLen int
		wantErr error
	}{
		{"no filter", dto.ReportFilter{}, 3, nil},
		{"supervisor substring ignores case", dto.ReportFilter{Supervisor: "abebe"}, 3, nil},
		{"unknown supervisor", dto.ReportFilter{Supervisor: "zzz"}, 0, nil},
		{"flight substring", dto.ReportFilter{Flight: "et-3"}, 3, nil},
		{"percent is literal", dto.ReportFilter{Supervisor: "%"}, 0, nil},
		{"underscore is literal", dto.ReportFilter{Flight: "et_3"}, 0, nil},
		{"inclusive range", dto.ReportFilter{From: "2026-02-27", To: "2026-02-28"}, 2, nil},
		{"single day", dto.ReportFilter{From: "2026-02-26", To: "2026-02-26"}, 1, nil},
		{"malformed from", dto.ReportFilter{From: "yesterday"}, 0, ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.reports.Verified(ctx, f.controller, tt.filter)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verified() error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestVerifiedFilterMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.refs.AddFlight(ctx, f.admin, "ET_9"); err != nil {
		t.Fatal(err)
	}

	for _, flight := range []string{"ET-302", "ET_9"} {
		req := reportRequest("R-"+flight, f.today(), models.PassengerCounts{Paid: 1})
		req.FlightName = flight
		r, err := f.reports.Create(ctx, f.lead, req)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.reports.Verify(ctx, f.analyst, r.ID, &dto.VerifyReportRequest{}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.reports.Verified(ctx, f.controller, dto.ReportFilter{Flight: "_"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].FlightName != "ET_9" {
		t.Errorf("Verified(flight=_) = %d reports, want only ET_9", len(got))
	}
}

func TestGetReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.submit(t, "R-1")

	tests := []struct {
		name    string
		actor   access.Actor
		id      uuid.UUID
		wantErr error
	}{
		{"owner", f.lead, r.ID, nil},
		{"analyst", f.analyst, r.ID, nil},
		{"admin", f.admin, r.ID, nil},
		{"other team lead", f.otherLead, r.ID, ErrPermissionDenied},
		{"missing", f.analyst, uuid.New(), ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.reports.Get(ctx, tt.actor, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Get() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Submitter.Username != "lead1" {
				t.Errorf("Submitter = %v", got.Submitter)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		n, d int64
		want float64
	}{
		{0, 0, 0},
		{3, 0, 3},
		{1, 4, 0.25},
		{4, 4, 1},
	}
	for _, tt := range tests {
		if got := ratio(tt.n, tt.d); got != tt.want {
			t.Errorf("ratio(%d, %d) = %v, want %v", tt.n, tt.d, got, tt.want)
		}
	}
}
