package handler

import (
	"encoding/json"
	"errors"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
	statsSvc *service.StatsService
}

func NewNotificationHandler(notifSvc *service.NotificationService, statsSvc *service.StatsService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, statsSvc: statsSvc}
}

// GetNotifications 获取通知列表（带未读数量）
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	notifications, unreadCount, err := h.notifSvc.GetNotifications(userID, unreadOnly)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch notifications")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"notifications": notifications,
		"unreadCount":   unreadCount,
	})
}

// CreateNotification 创建一条通知（内部/调试用途）
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req struct {
		UserID  uuid.UUID       `json:"user_id" binding:"required"`
		Type    string          `json:"type" binding:"required"`
		Message json.RawMessage `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	notification, err := h.notifSvc.Create(req.UserID, req.Type, string(req.Message))
	if err != nil {
		utils.InternalServerError(c, "failed to create notification")
		return
	}

	h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)

	utils.SuccessResponse(c, gin.H{"notification": notification})
}

// MarkAsRead 标记已读（mark_all 为真时全部已读）
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	var req struct {
		UserID         uuid.UUID  `json:"user_id" binding:"required"`
		NotificationID *uuid.UUID `json:"notification_id"`
		MarkAll        bool       `json:"mark_all"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if req.MarkAll {
		if err := h.notifSvc.MarkAllAsRead(req.UserID); err != nil {
			utils.InternalServerError(c, "failed to mark notifications read")
			return
		}
		h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)
		utils.SuccessWithMessage(c, "all notifications marked as read", nil)
		return
	}

	if req.NotificationID == nil {
		utils.BadRequest(c, "valid notification_id is required")
		return
	}

	if err := h.notifSvc.MarkAsRead(req.UserID, *req.NotificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, "failed to mark notification read")
		return
	}

	h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)

	utils.SuccessWithMessage(c, "notification marked as read", nil)
}

// DeleteNotification 删除通知
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	notificationID, err := uuid.Parse(c.Query("notification_id"))
	if err != nil {
		utils.BadRequest(c, "valid notification_id is required")
		return
	}

	if err := h.notifSvc.Delete(userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, "failed to delete notification")
		return
	}

	h.statsSvc.InvalidateStats(c.Request.Context(), userID)

	utils.SuccessWithMessage(c, "notification deleted", nil)
}
