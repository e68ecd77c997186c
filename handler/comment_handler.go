package handler

import (
	"errors"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentHandler struct {
	commentSvc *service.CommentService
}

func NewCommentHandler(commentSvc *service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// GetComments 获取约会的评论
func (h *CommentHandler) GetComments(c *gin.Context) {
	dateID, err := uuid.Parse(c.Query("date_id"))
	if err != nil {
		utils.BadRequest(c, "valid date_id is required")
		return
	}

	comments, err := h.commentSvc.ListComments(dateID)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch comments")
		return
	}

	utils.SuccessResponse(c, gin.H{"comments": comments})
}

// AddComment 发表评论
func (h *CommentHandler) AddComment(c *gin.Context) {
	var req struct {
		DateID  uuid.UUID `json:"date_id" binding:"required"`
		UserID  uuid.UUID `json:"user_id" binding:"required"`
		Content string    `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "date_id, user_id and non-empty content required")
		return
	}

	comment, err := h.commentSvc.AddComment(req.DateID, req.UserID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDateNotFound), errors.Is(err, service.ErrUserNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, service.ErrCommentForbidden):
			utils.Forbidden(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to post comment")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"comment": comment})
}
