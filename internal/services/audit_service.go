package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditService struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewAuditService(db *gorm.DB, queryTimeout time.Duration) *AuditService {
	return &AuditService{db: db, queryTimeout: queryTimeout}
}

// Record writes an audit entry inside tx so it commits or rolls back with the change it describes.
func (s *AuditService) Record(ctx context.Context, tx *gorm.DB, event models.EventType, actorID uuid.UUID, object string, details map[string]any) error {
	meta := requestMetaFrom(ctx)
	entry := models.AuditLog{
		EventType: event,
		ActorID:   actorID,
		Object:    object,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Details:   datatypes.JSON("{}"),
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(b)
		}
	}
	return tx.Create(&entry).Error
}

// List returns one page of entries, newest first.
func (s *AuditService) List(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]models.AuditLog, 0, pageSize)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
