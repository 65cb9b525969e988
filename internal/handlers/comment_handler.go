package handlers

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	reportID, err := ParamID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	comments, err := h.comments.List(c.UserContext(), middleware.CurrentActor(c), reportID)
	if err != nil {
		return Fail(c, err)
	}
	out := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		out[i] = dto.NewCommentResponse(&comments[i])
	}
	return c.JSON(out)
}

func (h *CommentHandler) Add(c *fiber.Ctx) error {
	reportID, err := ParamID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest(c, "Invalid request body")
	}
	comment, err := h.comments.Add(c.UserContext(), middleware.CurrentActor(c), reportID, req.Content)
	if err != nil {
		return Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	reportID, err := ParamID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	commentID, err := ParamID(c, "commentId")
	if err != nil {
		return Fail(c, err)
	}
	if err := h.comments.Delete(c.UserContext(), middleware.CurrentActor(c), reportID, commentID); err != nil {
		return Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
