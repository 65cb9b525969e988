package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/admin"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/analyst"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/cashcontrol"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/teamlead"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const password = "Passw0rd!"

type server struct {
	app *fiber.App
	db  *gorm.DB
}

func newServer(t *testing.T) *server {
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
		JWTSecret:              "routes-test-secret",
		JWTAccessExpiry:        15 * time.Minute,
		JWTRefreshExpiry:       time.Hour,
		BootstrapAdminUsername: "admin",
		BootstrapAdminEmail:    "admin@example.com",
		Timezone:               time.UTC,
		AnalystVerifiedWindow:  10,
		CORSOrigins:            "*",
	}

	registry := prometheus.NewRegistry()
	m := metrics.New("test", registry)

	audit := services.NewAuditService(db, cfg.DBQueryTimeout)
	users := services.NewUserService(db, cfg, audit, notify.Noop{})
	activation := services.NewActivationService(db, cfg, audit)
	references := services.NewReferenceService(db, audit, cfg.DBQueryTimeout)
	reports := services.NewReportService(db, cfg, activation, audit, nil, events.Noop{}, m)
	deps := &apps.Deps{
		Config:     cfg,
		Reports:    reports,
		Activation: activation,
		References: references,
		Users:      users,
		Dashboard:  services.NewDashboardService(db, cfg, nil),
		Audit:      audit,
		Metrics:    m,
	}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(middleware.RequestMeta())
	app.Use(middleware.Metrics(m))
	routes.Setup(app, cfg, routes.Handlers{
		Auth:     handlers.NewAuthHandler(services.NewAuthService(db, cfg, audit)),
		Health:   handlers.NewHealthHandler(db, cfg.DBDriver),
		Reports:  handlers.NewReportHandler(reports, references),
		Comments: handlers.NewCommentHandler(services.NewCommentService(db, audit, cfg.DBQueryTimeout)),
	}, users, deps, []apps.Plugin{admin.New(), teamlead.New(), analyst.New(), cashcontrol.New()}, registry)

	s := &server{app: app, db: db}
	s.seedUser(t, "admin", models.RoleAdmin, false)
	s.seedUser(t, "lead1", models.RoleTeamLead, false)
	s.seedUser(t, "analyst1", models.RoleDataAnalyst, false)
	s.seedUser(t, "cash1", models.RoleCashController, false)
	s.seedUser(t, "newbie", models.RoleTeamLead, true)
	if err := db.Create(&models.Flight{Name: "ET-302"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Supervisor{Name: "Abebe Kebede"}).Error; err != nil {
		t.Fatal(err)
	}
	return s
}

func (s *server) seedUser(t *testing.T, username string, role models.Role, firstLogin bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   string(hash),
		Role:       role,
		Active:     true,
		FirstLogin: firstLogin,
	}
	if err := s.db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (s *server) login(t *testing.T, username string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, resp, &out)
	return out.AccessToken
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Driver string `json:"driver"`
	}
	decode(t, resp, &health)
	if health.Status != "ok" || health.Driver != "sqlite" {
		t.Errorf("health = %+v", health)
	}

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "test_http_request_duration_seconds") {
		t.Errorf("metrics status = %d, body lacks request histogram", resp.StatusCode)
	}
}

func TestRoleSurfaces(t *testing.T) {
	s := newServer(t)
	lead := s.login(t, "lead1")
	analystToken := s.login(t, "analyst1")
	adminToken := s.login(t, "admin")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/team-lead/reports", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/team-lead/reports", "not-a-jwt", http.StatusUnauthorized},
		{"own surface", http.MethodGet, "/api/team-lead/reports", lead, http.StatusOK},
		{"other role surface", http.MethodGet, "/api/team-lead/reports", analystToken, http.StatusForbidden},
		{"admin is not a cash controller", http.MethodGet, "/api/cash-controller/reports", adminToken, http.StatusForbidden},
		{"admin dashboard", http.MethodGet, "/api/admin/dashboard", adminToken, http.StatusOK},
		{"shared reference data", http.MethodGet, "/api/reference", lead, http.StatusOK},
		{"bad report id", http.MethodGet, "/api/reports/not-a-uuid", lead, http.StatusBadRequest},
		{"missing report", http.MethodGet, "/api/reports/6f1c2f0e-0000-4000-8000-000000000000", analystToken, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, tt.method, tt.path, tt.token, nil)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestTemporaryPasswordBlocksRoleRoutes(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "newbie")

	resp := s.do(t, http.MethodGet, "/api/team-lead/reports", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("role route with temporary password = %d, want 403", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/auth/me = %d, want 200", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"current_password": password,
		"new_password":     "N3w-Passw0rd",
		"confirm_password": "N3w-Passw0rd",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change-password = %d", resp.StatusCode)
	}

	// the actor is reloaded per request, so the same token now passes
	resp = s.do(t, http.MethodGet, "/api/team-lead/reports", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("role route after change = %d, want 200", resp.StatusCode)
	}
}

func TestDeactivatedTokenIsRefused(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "cash1")
	s.db.Model(&models.User{}).Where("username = ?", "cash1").Update("active", false)

	resp := s.do(t, http.MethodGet, "/api/cash-controller/reports", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("deactivated account = %d, want 403", resp.StatusCode)
	}
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	lead := s.login(t, "lead1")
	analystToken := s.login(t, "analyst1")
	cash := s.login(t, "cash1")
	today := time.Now().UTC().Format(services.DateLayout)

	report := map[string]any{
		"date":        today,
		"ref_no":      "REF-001",
		"supervisor":  "Abebe Kebede",
		"flight_name": "ET-302",
		"zone":        "arrival",
		"paid":        10,
		"refunds":     1,
	}
	resp := s.do(t, http.MethodPost, "/api/team-lead/reports", lead, report)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	var created struct {
		ID            string `json:"id"`
		TotalAttended int    `json:"totalAttended"`
		SubmittedBy   string `json:"submittedBy"`
	}
	decode(t, resp, &created)
	if created.TotalAttended != 9 || created.SubmittedBy != "lead1" {
		t.Errorf("created = %+v", created)
	}

	resp = s.do(t, http.MethodPost, "/api/team-lead/reports", lead, report)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate ref_no = %d, want 409", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPut, "/api/team-lead/reports/"+created.ID, lead, map[string]any{"paid": 11})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("edit without activation = %d, want 403", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/cash-controller/download-csv", cash, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("export with nothing verified = %d, want 204", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, "/api/data-analyst/reports/"+created.ID+"/verify", analystToken, map[string]int{
		"iics_adult": 9,
		"gia_adult":  8,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify = %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/api/cash-controller/download-csv?flight=et-3", cash, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "passenger_report_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "REF-001") {
		t.Errorf("csv = %q", body)
	}

	resp = s.do(t, http.MethodPost, "/api/reports/"+created.ID+"/comments", cash, map[string]string{"content": "cash matches"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("comment = %d", resp.StatusCode)
	}
}

func TestAdminUserManagement(t *testing.T) {
	s := newServer(t)
	adminToken := s.login(t, "admin")

	resp := s.do(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"username": "lead7",
		"email":    "lead7@example.com",
		"role":     "teamLead",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user = %d", resp.StatusCode)
	}
	var created struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		TemporaryPassword string `json:"temporary_password"`
	}
	decode(t, resp, &created)
	if created.TemporaryPassword == "" {
		t.Fatal("no temporary password returned")
	}

	resp = s.do(t, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"username": "lead7",
		"email":    "other@example.com",
		"role":     "teamLead",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate username = %d, want 409", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, "/api/admin/users/"+created.User.ID+"/deactivate", adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("deactivate = %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodDelete, "/api/admin/users/"+created.User.ID, adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}

	var logs struct {
		Total int64 `json:"total"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/admin/audit-logs?page_size=5", adminToken, nil), &logs)
	if logs.Total < 3 {
		t.Errorf("audit log total = %d, want at least 3", logs.Total)
	}
}
