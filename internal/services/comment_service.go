package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCommentLength = 2000

type CommentService struct {
	db           *gorm.DB
	audit        *AuditService
	queryTimeout time.Duration
	now          func() time.Time
}

func NewCommentService(db *gorm.DB, audit *AuditService, queryTimeout time.Duration) *CommentService {
	return &CommentService{db: db, audit: audit, queryTimeout: queryTimeout, now: time.Now}
}

// List returns the report's comments, newest first.
func (s *CommentService) List(ctx context.Context, actor access.Actor, reportID uuid.UUID) ([]models.Comment, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.reportExists(s.db.WithContext(ctx), reportID); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (s *CommentService) Add(ctx context.Context, actor access.Actor, reportID uuid.UUID, content string) (*models.Comment, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidField("content", "is required")
	}
	if len(content) > maxCommentLength {
		return nil, invalidField("content", "is too long")
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	comment := models.Comment{
		Content:   content,
		ReportID:  reportID,
		AuthorID:  actor.ID,
		CreatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reportExists(tx, reportID); err != nil {
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	comment.Author = &models.User{ID: actor.ID, Username: actor.Username}
	return &comment, nil
}

// Delete removes a comment. Only its author or an admin may do so.
func (s *CommentService) Delete(ctx context.Context, actor access.Actor, reportID, commentID uuid.UUID) error {
	if err := authorize(actor); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ? AND report_id = ?", commentID, reportID).Error; err != nil {
			return notFound(err, ErrCommentNotFound)
		}
		if comment.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
			return denied("only the author or an admin may delete this comment")
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, models.EventCommentDeleted, actor.ID, comment.ID.String(), map[string]any{
			"report_id": reportID.String(),
			"author_id": comment.AuthorID.String(),
		})
	})
}

func (s *CommentService) reportExists(tx *gorm.DB, reportID uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Report{}).Where("id = ?", reportID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrReportNotFound
	}
	return nil
}
