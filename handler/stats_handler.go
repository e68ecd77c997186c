package handler

import (
	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StatsHandler struct {
	statsSvc *service.StatsService
}

func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// GetStats 仪表盘统计
// user_id 缺失或非法时返回全零，不报错（首页在未登录时也会请求）
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.SuccessResponse(c, &service.Stats{})
		return
	}

	stats, err := h.statsSvc.GetStats(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch stats")
		return
	}

	utils.SuccessResponse(c, stats)
}
