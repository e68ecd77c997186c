package handler

import (
	"errors"

	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// SearchUsers 用户名模糊搜索
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("query")

	users, err := h.userSvc.SearchUsers(query)
	if err != nil {
		utils.InternalServerError(c, "search failed")
		return
	}

	utils.SuccessResponse(c, gin.H{"users": users})
}

// GetProfile 获取资料页数据
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		utils.BadRequest(c, "valid user_id is required")
		return
	}

	profile, err := h.userSvc.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, "failed to fetch profile")
		return
	}

	utils.SuccessResponse(c, gin.H{"profile": profile})
}
