package handler

import (
	"errors"
	"time"

	"duo_dates/middleware"
	"duo_dates/service"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authSvc  *service.AuthService
	tokenTTL time.Duration
}

func NewAuthHandler(authSvc *service.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, tokenTTL: tokenTTL}
}

// Signup 注册
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.authSvc.Signup(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrUsernameTaken) {
			utils.BadRequest(c, err.Error())
			return
		}
		utils.InternalServerError(c, "signup failed")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id":  user.UserID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login 登录，成功返回 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.Unauthorized(c, err.Error())
			return
		}
		utils.InternalServerError(c, "login failed")
		return
	}

	token, err := middleware.GenerateToken(user.UserID, h.tokenTTL)
	if err != nil {
		utils.InternalServerError(c, "failed to issue token")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id":  user.UserID,
		"username": user.Username,
		"token":    token,
	})
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		UserID      uuid.UUID `json:"user_id" binding:"required"`
		OldPassword string    `json:"old_password" binding:"required"`
		NewPassword string    `json:"new_password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.authSvc.ChangePassword(req.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, service.ErrWrongPassword):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "failed to change password")
		}
		return
	}

	utils.SuccessWithMessage(c, "password changed", nil)
}

// ForgotPassword 忘记密码重置
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "email and new password are required")
		return
	}

	user, err := h.authSvc.ResetPassword(req.Email, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.InternalServerError(c, "failed to reset password")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"success":  true,
		"user_id":  user.UserID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// CheckAvailability 注册页实时校验用户名 / 邮箱
func (h *AuthHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	available, problems, err := h.authSvc.CheckAvailability(req.Username, req.Email)
	if err != nil {
		utils.InternalServerError(c, "failed to check availability")
		return
	}

	if !available {
		utils.SuccessResponse(c, gin.H{"available": false, "errors": problems})
		return
	}
	utils.SuccessResponse(c, gin.H{"available": true})
}
