package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultVerifiedWindow = 10

// Cache keys invalidated whenever a report changes.
const (
	cacheKeyTotals = "analyst:totals"
	cacheKeyChart  = "analyst:chart"
)

type ReportService struct {
	db             *gorm.DB
	activation     *ActivationService
	audit          *AuditService
	cache          *cache.Cache
	events         events.Publisher
	metrics        *metrics.Metrics
	loc            *time.Location
	verifiedWindow int
	queryTimeout   time.Duration
	now            func() time.Time
}

func NewReportService(db *gorm.DB, cfg *config.Config, activation *ActivationService, audit *AuditService,
	c *cache.Cache, publisher events.Publisher, m *metrics.Metrics) *ReportService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	window := cfg.AnalystVerifiedWindow
	if window <= 0 {
		window = defaultVerifiedWindow
	}
	return &ReportService{
		db:             db,
		activation:     activation,
		audit:          audit,
		cache:          c,
		events:         publisher,
		metrics:        m,
		loc:            cfg.Timezone,
		verifiedWindow: window,
		queryTimeout:   cfg.DBQueryTimeout,
		now:            time.Now,
	}
}

// Create stores a new report submitted by a team lead. Submission is not gated by activation.
func (s *ReportService) Create(ctx context.Context, actor access.Actor, req *dto.CreateReportRequest) (*models.Report, error) {
	if err := authorize(actor, models.RoleTeamLead); err != nil {
		return nil, err
	}
	report, err := s.newReport(actor, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRegistered(tx, report.Supervisor, report.FlightName); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Report{}).Where("ref_no = ?", report.RefNo).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReference
		}
		if err := tx.Create(report).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReference
			}
			return err
		}
		return s.audit.Record(ctx, tx, models.EventReportCreated, actor.ID, report.RefNo, map[string]any{
			"report_id":      report.ID.String(),
			"flight_name":    report.FlightName,
			"total_attended": report.TotalAttended,
		})
	})
	if err != nil {
		s.metrics.Failed("report.create")
		return nil, err
	}

	report.Submitter = &models.User{ID: actor.ID, Username: actor.Username}
	s.metrics.Submitted()
	s.invalidate(ctx)
	s.publish(events.QueueReportSubmitted, events.ReportSubmitted{
		ReportID:      report.ID.String(),
		RefNo:         report.RefNo,
		Date:          report.Date.Format(DateLayout),
		FlightName:    report.FlightName,
		Supervisor:    report.Supervisor,
		TotalAttended: report.TotalAttended,
		SubmittedBy:   actor.Username,
		SubmittedAt:   report.CreatedAt.UTC().Format(time.RFC3339),
	})
	return report, nil
}

func (s *ReportService) newReport(actor access.Actor, req *dto.CreateReportRequest) (*models.Report, error) {
	date, err := ParseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	refNo := strings.TrimSpace(req.RefNo)
	if refNo == "" {
		return nil, invalidField("ref_no", "is required")
	}
	supervisor := strings.TrimSpace(req.Supervisor)
	if supervisor == "" {
		return nil, invalidField("supervisor", "is required")
	}
	flight := strings.TrimSpace(req.FlightName)
	if flight == "" {
		return nil, invalidField("flight_name", "is required")
	}
	zone := strings.ToLower(strings.TrimSpace(req.Zone))
	if zone != models.ZoneArrival && zone != models.ZoneDeparture {
		return nil, invalidField("zone", "must be arrival or departure")
	}
	if err := validateCounts(req.PassengerCounts); err != nil {
		return nil, err
	}

	return &models.Report{
		Date:            date,
		RefNo:           refNo,
		Supervisor:      supervisor,
		FlightName:      flight,
		Zone:            zone,
		PassengerCounts: req.PassengerCounts,
		TotalAttended:   req.PassengerCounts.Total(),
		Remarks:         strings.TrimSpace(req.Remarks),
		SubmittedByID:   actor.ID,
		CreatedAt:       s.now(),
	}, nil
}

func validateCounts(c models.PassengerCounts) error {
	for _, f := range c.Fields() {
		if f.Value < 0 {
			return invalidField(f.Name, "must not be negative")
		}
	}
	return nil
}

func requireRegistered(tx *gorm.DB, supervisor, flight string) error {
	var count int64
	if err := tx.Model(&models.Supervisor{}).Where("name = ?", supervisor).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("supervisor", "is not a registered supervisor")
	}
	if err := tx.Model(&models.Flight{}).Where("name = ?", flight).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("flight_name", "is not a registered flight")
	}
	return nil
}

// Update replaces a report's counts and remarks. Only the submitting team lead may
// update, and only while activated for today. Any earlier verification is cleared.
func (s *ReportService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	if err := authorize(actor, models.RoleTeamLead); err != nil {
		return nil, err
	}
	if err := validateCounts(req.PassengerCounts); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", id).Error; err != nil {
			return notFound(err, ErrReportNotFound)
		}
		if report.SubmittedByID != actor.ID {
			return ErrNotSubmitter
		}
		activated, err := s.activation.activatedOn(tx, actor.ID)
		if err != nil {
			return err
		}
		if !activated {
			return ErrActivationRequired
		}

		updates := countColumns(req.PassengerCounts)
		updates["total_attended"] = req.PassengerCounts.Total()
		updates["remarks"] = strings.TrimSpace(req.Remarks)
		updates["verified"] = false
		updates["verified_by_id"] = nil
		updates["verified_date"] = nil
		updates["updated_at"] = s.now()
		if err := tx.Model(&report).Updates(updates).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, models.EventReportUpdated, actor.ID, report.RefNo, map[string]any{
			"report_id":      report.ID.String(),
			"total_attended": updates["total_attended"],
			"was_verified":   report.Verified,
		})
	})
	if err != nil {
		s.metrics.Failed("report.update")
		return nil, err
	}

	s.metrics.Updated()
	s.invalidate(ctx)
	return s.load(ctx, id)
}

func countColumns(c models.PassengerCounts) map[string]any {
	fields := c.Fields()
	m := make(map[string]any, len(fields)+6)
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}

// Verify records the IICS and GIA reference counts and marks the report verified.
// total_attended is never changed here; verifying again overwrites the previous figures.
func (s *ReportService) Verify(ctx context.Context, actor access.Actor, id uuid.UUID, req *dto.VerifyReportRequest) (*models.Report, error) {
	if err := authorize(actor, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	for _, f := range []models.CountField{
		{Name: "iics_infant", Value: req.IICSInfant},
		{Name: "iics_adult", Value: req.IICSAdult},
		{Name: "gia_infant", Value: req.GIAInfant},
		{Name: "gia_adult", Value: req.GIAAdult},
	} {
		if f.Value < 0 {
			return nil, invalidField(f.Name, "must not be negative")
		}
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	now := s.now()
	var report models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, "id = ?", id).Error; err != nil {
			return notFound(err, ErrReportNotFound)
		}
		iics := req.IICSInfant + req.IICSAdult
		gia := req.GIAInfant + req.GIAAdult
		err := tx.Model(&report).Updates(map[string]any{
			"iics_infant":    req.IICSInfant,
			"iics_adult":     req.IICSAdult,
			"iics_total":     iics,
			"gia_infant":     req.GIAInfant,
			"gia_adult":      req.GIAAdult,
			"gia_total":      gia,
			"verified":       true,
			"verified_by_id": actor.ID,
			"verified_date":  now,
			"updated_at":     now,
		}).Error
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, models.EventReportVerified, actor.ID, report.RefNo, map[string]any{
			"report_id":      report.ID.String(),
			"iics_total":     iics,
			"gia_total":      gia,
			"total_attended": report.TotalAttended,
		})
	})
	if err != nil {
		s.metrics.Failed("report.verify")
		return nil, err
	}

	s.metrics.Verified()
	s.invalidate(ctx)

	verified, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(events.QueueReportVerified, events.ReportVerified{
		ReportID:       verified.ID.String(),
		RefNo:          verified.RefNo,
		TotalAttended:  verified.TotalAttended,
		IICSTotal:      verified.IICSTotal,
		GIATotal:       verified.GIATotal,
		IICSDifference: verified.IICSDifference(),
		GIADifference:  verified.GIADifference(),
		VerifiedBy:     actor.Username,
		VerifiedAt:     now.UTC().Format(time.RFC3339),
	})
	return verified, nil
}

// Get returns one report. Team leads may only read their own.
func (s *ReportService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Report, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeamLead && report.SubmittedByID != actor.ID {
		return nil, denied("team leads may only view their own reports")
	}
	return report, nil
}

func (s *ReportService) load(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Preload("Submitter").
		Preload("VerifiedBy").
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrReportNotFound)
	}
	return &report, nil
}

// ListForRole returns the reports the actor's role is allowed to see.
//   - teamLead: own reports
//   - dataAnalyst: every unverified report, then the latest verified ones
//   - cashController: verified reports narrowed by filter
func (s *ReportService) ListForRole(ctx context.Context, actor access.Actor, filter dto.ReportFilter) ([]models.Report, error) {
	if err := authorize(actor, models.RoleTeamLead, models.RoleDataAnalyst, models.RoleCashController); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	switch actor.Role {
	case models.RoleTeamLead:
		var reports []models.Report
		err := s.base(ctx).Where("submitted_by_id = ?", actor.ID).Find(&reports).Error
		return reports, err
	case models.RoleDataAnalyst:
		unverified, err := s.unverified(ctx)
		if err != nil {
			return nil, err
		}
		var verified []models.Report
		if err := s.base(ctx).Where("verified = ?", true).Limit(s.verifiedWindow).Find(&verified).Error; err != nil {
			return nil, err
		}
		return append(unverified, verified...), nil
	default:
		return s.verifiedFiltered(ctx, filter)
	}
}

// Unverified lists the data analyst's work queue.
func (s *ReportService) Unverified(ctx context.Context, actor access.Actor) ([]models.Report, error) {
	if err := authorize(actor, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.unverified(ctx)
}

func (s *ReportService) unverified(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := s.base(ctx).Where("verified = ?", false).Find(&reports).Error
	return reports, err
}

// Verified returns all verified reports matching filter. Used for CSV downloads by
// both the data analyst and the cash controller.
func (s *ReportService) Verified(ctx context.Context, actor access.Actor, filter dto.ReportFilter) ([]models.Report, error) {
	if err := authorize(actor, models.RoleDataAnalyst, models.RoleCashController); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.verifiedFiltered(ctx, filter)
}

func (s *ReportService) verifiedFiltered(ctx context.Context, filter dto.ReportFilter) ([]models.Report, error) {
	q := s.base(ctx).Where("verified = ?", true)
	if v := strings.TrimSpace(filter.Supervisor); v != "" {
		q = q.Where("LOWER(supervisor) LIKE ? ESCAPE '!'", containsPattern(v))
	}
	if v := strings.TrimSpace(filter.Flight); v != "" {
		q = q.Where("LOWER(flight_name) LIKE ? ESCAPE '!'", containsPattern(v))
	}
	if filter.From != "" {
		from, err := ParseDate("from", filter.From)
		if err != nil {
			return nil, err
		}
		q = q.Where("date >= ?", from)
	}
	if filter.To != "" {
		to, err := ParseDate("to", filter.To)
		if err != nil {
			return nil, err
		}
		q = q.Where("date <= ?", to)
	}
	var reports []models.Report
	err := q.Find(&reports).Error
	return reports, err
}

func (s *ReportService) base(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Submitter").
		Preload("VerifiedBy").
		Order("date DESC").
		Order("created_at DESC")
}

func (s *ReportService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyTotals, cacheKeyChart)
}

// publish runs off the request path; a broker outage only costs a log line.
func (s *ReportService) publish(queue string, event any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, queue, event); err != nil {
			slog.Error("failed to publish report event", "queue", queue, "error", err)
		}
	}()
}
