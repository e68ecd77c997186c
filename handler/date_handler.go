package handler

import (
	"errors"
	"time"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DateHandler struct {
	dateSvc  *service.DateService
	statsSvc *service.StatsService
}

func NewDateHandler(dateSvc *service.DateService, statsSvc *service.StatsService) *DateHandler {
	return &DateHandler{dateSvc: dateSvc, statsSvc: statsSvc}
}

// GetDates 获取约会列表
func (h *DateHandler) GetDates(c *gin.Context) {
	dates, err := h.dateSvc.ListDates()
	if err != nil {
		utils.InternalServerError(c, "failed to fetch dates")
		return
	}

	utils.SuccessResponse(c, gin.H{"dates": dates})
}

// CreateDate 创建约会记录
func (h *DateHandler) CreateDate(c *gin.Context) {
	var req struct {
		ProfileID   uuid.UUID `json:"profile_id" binding:"required"`
		Title       string    `json:"title" binding:"required"`
		Description *string   `json:"description"`
		DateTime    time.Time `json:"date_time" binding:"required"`
		Location    *string   `json:"location"`
		Privacy     string    `json:"privacy" binding:"omitempty,oneof=INHERIT PUBLIC PRIVATE"`
		Image       *string   `json:"image"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	date, err := h.dateSvc.CreateDate(service.CreateDateInput{
		ProfileID:   req.ProfileID,
		Title:       req.Title,
		Description: req.Description,
		DateTime:    req.DateTime,
		Location:    req.Location,
		Privacy:     req.Privacy,
		Image:       req.Image,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, "failed to create date")
		return
	}

	h.statsSvc.InvalidateStatsForProfile(c.Request.Context(), req.ProfileID)

	utils.SuccessResponse(c, gin.H{"date": date})
}
