package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceService manages the flight and supervisor registries.
type ReferenceService struct {
	db           *gorm.DB
	audit        *AuditService
	queryTimeout time.Duration
}

func NewReferenceService(db *gorm.DB, audit *AuditService, queryTimeout time.Duration) *ReferenceService {
	return &ReferenceService{db: db, audit: audit, queryTimeout: queryTimeout}
}

func (s *ReferenceService) ListFlights(ctx context.Context) ([]models.Flight, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	flights := []models.Flight{}
	err := s.db.WithContext(ctx).Order("name ASC").Find(&flights).Error
	return flights, err
}

func (s *ReferenceService) ListSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()
	supervisors := []models.Supervisor{}
	err := s.db.WithContext(ctx).Order("name ASC").Find(&supervisors).Error
	return supervisors, err
}

func (s *ReferenceService) AddFlight(ctx context.Context, actor access.Actor, name string) (*models.Flight, error) {
	name, err := checkName(actor, name)
	if err != nil {
		return nil, err
	}
	flight := &models.Flight{Name: name}
	if err := s.add(ctx, actor, flight, name, models.EventFlightAdded); err != nil {
		return nil, err
	}
	return flight, nil
}

func (s *ReferenceService) AddSupervisor(ctx context.Context, actor access.Actor, name string) (*models.Supervisor, error) {
	name, err := checkName(actor, name)
	if err != nil {
		return nil, err
	}
	supervisor := &models.Supervisor{Name: name}
	if err := s.add(ctx, actor, supervisor, name, models.EventSupervisorAdded); err != nil {
		return nil, err
	}
	return supervisor, nil
}

func (s *ReferenceService) RemoveFlight(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	return s.remove(ctx, actor, id, &models.Flight{}, ErrFlightNotFound, models.EventFlightRemoved)
}

func (s *ReferenceService) RemoveSupervisor(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	return s.remove(ctx, actor, id, &models.Supervisor{}, ErrSupervisorNotFound, models.EventSupervisorRemoved)
}

func checkName(actor access.Actor, name string) (string, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidField("name", "is required")
	}
	if len(name) > 100 {
		return "", invalidField("name", "must be at most 100 characters")
	}
	return name, nil
}

func (s *ReferenceService) add(ctx context.Context, actor access.Actor, record any, name string, event models.EventType) error {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(record).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}
		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		return s.audit.Record(ctx, tx, event, actor.ID, name, nil)
	})
}

// remove deletes a registry entry. Reports copied the name, so they are left as they are.
func (s *ReferenceService) remove(ctx context.Context, actor access.Actor, id uuid.UUID, model any, missing error, event models.EventType) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Name string }
		if err := tx.Model(model).Select("name").Where("id = ?", id).Take(&row).Error; err != nil {
			return notFound(err, missing)
		}
		if err := tx.Where("id = ?", id).Delete(model).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, event, actor.ID, row.Name, map[string]any{"id": id.String()})
	})
}
