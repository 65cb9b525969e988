package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"gorm.io/gorm"
)

const chartDays = 7

type DashboardService struct {
	db           *gorm.DB
	cache        *cache.Cache
	loc          *time.Location
	queryTimeout time.Duration
	now          func() time.Time
}

func NewDashboardService(db *gorm.DB, cfg *config.Config, c *cache.Cache) *DashboardService {
	return &DashboardService{
		db:           db,
		cache:        c,
		loc:          cfg.Timezone,
		queryTimeout: cfg.DBQueryTimeout,
		now:          time.Now,
	}
}

// Admin counts accounts in total and per role.
func (s *DashboardService) Admin(ctx context.Context, actor access.Actor) (*dto.AdminDashboard, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	db := s.db.WithContext(ctx)

	var rows []struct {
		Role  string
		Count int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := &dto.AdminDashboard{ByRole: map[string]int64{}}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleTeamLead, models.RoleDataAnalyst, models.RoleCashController} {
		out.ByRole[string(role)] = 0
	}
	for _, r := range rows {
		out.ByRole[r.Role] = r.Count
		out.TotalUsers += r.Count
	}
	if err := db.Model(&models.User{}).Where("active = ?", true).Count(&out.Active).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// VerificationTotals summarizes today's reports. Differences are attended minus
// reference counts, summed over verified reports only.
func (s *DashboardService) VerificationTotals(ctx context.Context, actor access.Actor) (*dto.VerificationTotals, error) {
	if err := authorize(actor, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	today := calendarDate(s.now(), s.loc)

	var out dto.VerificationTotals
	if s.cache.GetJSON(ctx, cacheKeyTotals, &out) && out.Date == today.Format(DateLayout) {
		return &out, nil
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	var reports []models.Report
	if err := s.db.WithContext(ctx).Where("date = ?", today).Find(&reports).Error; err != nil {
		return nil, err
	}
	out = summarize(reports)
	out.Date = today.Format(DateLayout)

	s.cache.SetJSON(ctx, cacheKeyTotals, out)
	return &out, nil
}

func summarize(reports []models.Report) dto.VerificationTotals {
	var out dto.VerificationTotals
	out.Total = int64(len(reports))
	for i := range reports {
		r := &reports[i]
		if !r.Verified {
			out.Pending++
			continue
		}
		out.Verified++
		out.IICSTotal += int64(r.IICSTotal)
		out.GIATotal += int64(r.GIATotal)
		out.IICSDiff += int64(r.TotalAttended - r.IICSTotal)
		out.GIADiff += int64(r.TotalAttended - r.GIATotal)
	}
	out.Rate = ratio(out.Verified, out.Total)
	return out
}

// ChartData returns per-day series for the last seven days, today included.
func (s *DashboardService) ChartData(ctx context.Context, actor access.Actor) (*dto.ChartData, error) {
	if err := authorize(actor, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	today := calendarDate(s.now(), s.loc)
	start := today.AddDate(0, 0, -(chartDays - 1))

	var out dto.ChartData
	if s.cache.GetJSON(ctx, cacheKeyChart, &out) && len(out.Days) == chartDays && out.Days[chartDays-1] == today.Format(DateLayout) {
		return &out, nil
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, today).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	out = chart(reports, start)
	s.cache.SetJSON(ctx, cacheKeyChart, out)
	return &out, nil
}

func chart(reports []models.Report, start time.Time) dto.ChartData {
	out := dto.ChartData{
		Days:          make([]string, chartDays),
		TotalAttended: make([]int64, chartDays),
		IICS:          make([]int64, chartDays),
		GIA:           make([]int64, chartDays),
		Verified:      make([]int64, chartDays),
		Pending:       make([]int64, chartDays),
		Zones:         map[string]int64{models.ZoneArrival: 0, models.ZoneDeparture: 0},
	}
	index := make(map[string]int, chartDays)
	for i := 0; i < chartDays; i++ {
		day := start.AddDate(0, 0, i).Format(DateLayout)
		out.Days[i] = day
		index[day] = i
	}
	for i := range reports {
		r := &reports[i]
		d, ok := index[r.Date.UTC().Format(DateLayout)]
		if !ok {
			continue
		}
		out.TotalAttended[d] += int64(r.TotalAttended)
		out.IICS[d] += int64(r.IICSTotal)
		out.GIA[d] += int64(r.GIATotal)
		if r.Verified {
			out.Verified[d]++
		} else {
			out.Pending[d]++
		}
		out.Zones[r.Zone]++
	}
	return out
}
