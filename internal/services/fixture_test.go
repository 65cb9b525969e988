package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/notify"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testPassword   = "Passw0rd!"
	testFlight     = "ET-302"
	testSupervisor = "Abebe Kebede"
)

type fixture struct {
	db  *gorm.DB
	cfg *config.Config
	now time.Time

	audit      *AuditService
	activation *ActivationService
	reports    *ReportService
	refs       *ReferenceService
	comments   *CommentService
	users      *UserService
	auth       *AuthService
	dashboard  *DashboardService

	admin      access.Actor
	lead       access.Actor
	otherLead  access.Actor
	analyst    access.Actor
	controller access.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		DBDriver:               config.DriverSQLite,
		DBQueryTimeout:         5 * time.Second,
		JWTSecret:              "test-secret",
		JWTAccessExpiry:        15 * time.Minute,
		JWTRefreshExpiry:       24 * time.Hour,
		BootstrapAdminUsername: "admin",
		BootstrapAdminEmail:    "admin@example.com",
		Timezone:               time.UTC,
		AnalystVerifiedWindow:  2,
	}

	f := &fixture{
		db:  db,
		cfg: cfg,
		now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.audit = NewAuditService(db, cfg.DBQueryTimeout)
	f.activation = NewActivationService(db, cfg, f.audit)
	f.activation.now = clock
	f.reports = NewReportService(db, cfg, f.activation, f.audit, nil, events.Noop{}, nil)
	f.reports.now = clock
	f.refs = NewReferenceService(db, f.audit, cfg.DBQueryTimeout)
	f.comments = NewCommentService(db, f.audit, cfg.DBQueryTimeout)
	f.comments.now = clock
	f.users = NewUserService(db, cfg, f.audit, notify.Noop{})
	f.auth = NewAuthService(db, cfg, f.audit)
	f.auth.now = clock
	f.dashboard = NewDashboardService(db, cfg, nil)
	f.dashboard.now = clock

	f.admin = f.seedUser(t, "admin", models.RoleAdmin, true)
	f.lead = f.seedUser(t, "lead1", models.RoleTeamLead, false)
	f.otherLead = f.seedUser(t, "lead2", models.RoleTeamLead, false)
	f.analyst = f.seedUser(t, "analyst1", models.RoleDataAnalyst, false)
	f.controller = f.seedUser(t, "cash1", models.RoleCashController, false)

	if err := db.Create(&models.Flight{Name: testFlight}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Supervisor{Name: testSupervisor}).Error; err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) seedUser(t *testing.T, username string, role models.Role, bootstrap bool) access.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hash),
		Role:      role,
		Active:    true,
		Bootstrap: bootstrap,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return access.ActorFromUser(&u)
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) today() string {
	return f.now.Format(DateLayout)
}

func reportRequest(refNo, date string, counts models.PassengerCounts) *dto.CreateReportRequest {
	return &dto.CreateReportRequest{
		Date:            date,
		RefNo:           refNo,
		Supervisor:      testSupervisor,
		FlightName:      testFlight,
		Zone:            models.ZoneArrival,
		PassengerCounts: counts,
	}
}

func (f *fixture) submit(t *testing.T, refNo string) *models.Report {
	t.Helper()
	r, err := f.reports.Create(context.Background(), f.lead, reportRequest(refNo, f.today(), models.PassengerCounts{Paid: 5}))
	if err != nil {
		t.Fatalf("Create(%s) error = %v", refNo, err)
	}
	f.advance(time.Second)
	return r
}

func (f *fixture) activate(t *testing.T, lead access.Actor, date string) {
	t.Helper()
	_, err := f.activation.Activate(context.Background(), f.analyst, &dto.ActivateRequest{
		TeamLeadID: lead.ID.String(),
		Date:       date,
	})
	if err != nil {
		t.Fatalf("Activate(%s) error = %v", date, err)
	}
	f.advance(time.Second)
}
