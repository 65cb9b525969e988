package services

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultRecentActivations = 5

// ActivationService decides whether a team lead may edit reports today.
// Only the latest activation row counts; older rows are history.
type ActivationService struct {
	db           *gorm.DB
	audit        *AuditService
	loc          *time.Location
	queryTimeout time.Duration
	now          func() time.Time
}

func NewActivationService(db *gorm.DB, cfg *config.Config, audit *AuditService) *ActivationService {
	return &ActivationService{
		db:           db,
		audit:        audit,
		loc:          cfg.Timezone,
		queryTimeout: cfg.DBQueryTimeout,
		now:          time.Now,
	}
}

func (s *ActivationService) today() time.Time {
	return calendarDate(s.now(), s.loc)
}

func (s *ActivationService) latest(tx *gorm.DB, teamLeadID uuid.UUID) (*models.TeamLeadActivation, error) {
	var act models.TeamLeadActivation
	err := tx.Where("team_lead_id = ?", teamLeadID).
		Order("created_at DESC").
		Order("seq DESC").
		First(&act).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// activatedOn runs inside the caller's transaction.
func (s *ActivationService) activatedOn(tx *gorm.DB, teamLeadID uuid.UUID) (bool, error) {
	act, err := s.latest(tx, teamLeadID)
	if err != nil || act == nil {
		return false, err
	}
	return sameDate(act.Date, s.today()), nil
}

func (s *ActivationService) IsActivatedToday(ctx context.Context, teamLeadID uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.activatedOn(s.db.WithContext(ctx), teamLeadID)
}

func (s *ActivationService) Status(ctx context.Context, teamLeadID uuid.UUID) (dto.ActivationStatus, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	act, err := s.latest(s.db.WithContext(ctx), teamLeadID)
	if err != nil || act == nil {
		return dto.ActivationStatus{}, err
	}
	return dto.ActivationStatus{
		Activated: sameDate(act.Date, s.today()),
		Date:      act.Date.UTC().Format(DateLayout),
	}, nil
}

// Activate appends an activation row for the team lead on the given date.
func (s *ActivationService) Activate(ctx context.Context, actor access.Actor, req *dto.ActivateRequest) (*models.TeamLeadActivation, error) {
	if err := authorize(actor, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	teamLeadID, err := uuid.Parse(req.TeamLeadID)
	if err != nil {
		return nil, invalidField("team_lead_id", "must be a valid id")
	}
	date, err := ParseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	act := models.TeamLeadActivation{
		TeamLeadID:    teamLeadID,
		Date:          date,
		ActivatedByID: actor.ID,
		CreatedAt:     s.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.User
		if err := tx.First(&lead, "id = ?", teamLeadID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if lead.Role != models.RoleTeamLead {
			return invalidField("team_lead_id", "user is not a team lead")
		}
		var last int64
		if err := tx.Model(&models.TeamLeadActivation{}).
			Where("team_lead_id = ?", teamLeadID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		act.Seq = last + 1
		if err := tx.Create(&act).Error; err != nil {
			return err
		}
		act.TeamLead = &lead
		return s.audit.Record(ctx, tx, models.EventTeamLeadActivated, actor.ID, lead.Username, map[string]any{
			"team_lead_id": lead.ID.String(),
			"date":         date.Format(DateLayout),
		})
	})
	if err != nil {
		return nil, err
	}
	act.ActivatedBy = &models.User{ID: actor.ID, Username: actor.Username}
	return &act, nil
}

// Recent returns the latest activations across all team leads, newest first.
func (s *ActivationService) Recent(ctx context.Context, limit int) ([]dto.ActivationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultRecentActivations
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	var rows []models.TeamLeadActivation
	err := s.db.WithContext(ctx).
		Preload("TeamLead").
		Preload("ActivatedBy").
		Order("created_at DESC").
		Order("seq DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ActivationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newActivationResponse(&rows[i]))
	}
	return out, nil
}

func newActivationResponse(a *models.TeamLeadActivation) dto.ActivationResponse {
	resp := dto.ActivationResponse{
		ID:        a.ID,
		Date:      a.Date.UTC().Format(DateLayout),
		CreatedAt: a.CreatedAt,
	}
	if a.TeamLead != nil {
		resp.TeamLead = a.TeamLead.Username
	}
	if a.ActivatedBy != nil {
		resp.ActivatedBy = a.ActivatedBy.Username
	}
	return resp
}

// ActivationResponse exposes the projection used by Recent for a freshly created row.
func ActivationResponse(a *models.TeamLeadActivation) dto.ActivationResponse {
	return newActivationResponse(a)
}
