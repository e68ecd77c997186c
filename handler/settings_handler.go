package handler

import (
	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettingsHandler struct {
	notifSvc *service.NotificationService
}

func NewSettingsHandler(notifSvc *service.NotificationService) *SettingsHandler {
	return &SettingsHandler{notifSvc: notifSvc}
}

// GetNotificationSettings 获取通知设置
// GET /api/settings/notifications
func (h *SettingsHandler) GetNotificationSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	enabled, err := h.notifSvc.NotificationsEnabled(userID)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch notification settings")
		return
	}

	// 细分开关目前都跟随总开关
	utils.SuccessResponse(c, gin.H{
		"notifications_enabled": enabled,
		"partner_updates":       enabled,
		"date_reminders":        enabled,
		"photo_uploads":         enabled,
	})
}

// UpdateNotificationSettings 更新通知设置
// PATCH /api/settings/notifications
func (h *SettingsHandler) UpdateNotificationSettings(c *gin.Context) {
	var req struct {
		UserID               uuid.UUID `json:"user_id" binding:"required"`
		NotificationsEnabled *bool     `json:"notifications_enabled" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "user_id and notifications_enabled are required")
		return
	}

	if err := h.notifSvc.UpdateNotificationsEnabled(req.UserID, *req.NotificationsEnabled); err != nil {
		utils.InternalServerError(c, "failed to update notification settings")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"success":               true,
		"notifications_enabled": *req.NotificationsEnabled,
	})
}
