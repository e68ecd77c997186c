package handler

import (
	"errors"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PartnerHandler struct {
	partnerSvc *service.PartnerService
	statsSvc   *service.StatsService
}

func NewPartnerHandler(partnerSvc *service.PartnerService, statsSvc *service.StatsService) *PartnerHandler {
	return &PartnerHandler{partnerSvc: partnerSvc, statsSvc: statsSvc}
}

// SendRequest 发送配对请求
func (h *PartnerHandler) SendRequest(c *gin.Context) {
	var req struct {
		FromUserID uuid.UUID `json:"from_user_id" binding:"required"`
		ToUsername string    `json:"to_username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "from_user_id and to_username are required")
		return
	}

	notificationID, err := h.partnerSvc.SendRequest(req.FromUserID, req.ToUsername)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSenderNotFound), errors.Is(err, service.ErrReceiverNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, service.ErrSelfRequest),
			errors.Is(err, service.ErrAlreadyPaired),
			errors.Is(err, service.ErrReceiverPaired),
			errors.Is(err, service.ErrPendingRequestExists):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to send partner request")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"notification_id": notificationID})
}

// AcceptRequest 接受配对请求
func (h *PartnerHandler) AcceptRequest(c *gin.Context) {
	var req struct {
		UserID         uuid.UUID `json:"user_id" binding:"required"`
		NotificationID uuid.UUID `json:"notification_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "user_id and notification_id are required")
		return
	}

	if err := h.partnerSvc.AcceptRequest(req.UserID, req.NotificationID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrUserNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotRequestOwner):
			utils.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrAlreadyProcessed), errors.Is(err, service.ErrAlreadyPaired):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to accept partner request")
		}
		return
	}

	// 配对改变了跨伴侣统计的范围
	h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)

	utils.SuccessResponse(c, gin.H{"success": true})
}

// RemovePartner 解除配对
func (h *PartnerHandler) RemovePartner(c *gin.Context) {
	var req struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "user_id is required")
		return
	}

	if err := h.partnerSvc.RemovePartner(req.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNoPartner):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to remove partner")
		}
		return
	}

	h.statsSvc.InvalidateStats(c.Request.Context(), req.UserID)

	utils.SuccessResponse(c, gin.H{"success": true})
}

// ListRequests 获取待处理配对请求
func (h *PartnerHandler) ListRequests(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	requests, err := h.partnerSvc.ListPendingRequests(userID)
	if err != nil {
		utils.InternalServerError(c, "failed to fetch partner requests")
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}
