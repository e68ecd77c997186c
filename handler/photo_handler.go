package handler

import (
	"errors"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PhotoHandler struct {
	photoSvc *service.PhotoService
	statsSvc *service.StatsService
}

func NewPhotoHandler(photoSvc *service.PhotoService, statsSvc *service.StatsService) *PhotoHandler {
	return &PhotoHandler{photoSvc: photoSvc, statsSvc: statsSvc}
}

// GetPhotos 获取用户的照片（带约会信息）
func (h *PhotoHandler) GetPhotos(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	photos, err := h.photoSvc.ListPhotos(userID)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch photos")
		return
	}

	utils.SuccessResponse(c, gin.H{"photos": photos})
}

// AddPhoto 给约会添加照片记录
func (h *PhotoHandler) AddPhoto(c *gin.Context) {
	var req struct {
		UserID      uuid.UUID `json:"user_id" binding:"required"`
		DateID      uuid.UUID `json:"date_id" binding:"required"`
		FilePath    string    `json:"file_path" binding:"required"`
		Description *string   `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	photo, err := h.photoSvc.AddPhoto(req.UserID, req.DateID, req.FilePath, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrDateNotFound):
			utils.NotFound(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to add photo")
		}
		return
	}

	h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)

	utils.SuccessResponse(c, gin.H{"photo": photo})
}
