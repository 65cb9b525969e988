package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
)

type CommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ReportID  uuid.UUID `json:"report_id"`
	Author    string    `json:"author"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		ReportID:  c.ReportID,
	}
	if c.Author != nil {
		resp.Author = c.Author.Username
	}
	return resp
}
