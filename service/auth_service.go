package service

import (
	"errors"
	"fmt"
	"strings"

	"duo_dates/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 账号注册 / 登录 / 改密
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Signup 注册新用户
// 用户名唯一，邮箱不区分大小写唯一，密码 bcrypt 加密后入库
func (s *AuthService) Signup(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.Model(&model.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHashed: string(hashed),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login 邮箱 + 密码登录
// 用户不存在和密码错误返回同一个错误，不泄露账号是否存在
func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.Where("LOWER(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// ChangePassword 修改密码（先验证旧密码）
func (s *AuthService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	var user model.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.Model(&user).Update("password_hashed", string(hashed)).Error
}

// ResetPassword 忘记密码重置（按邮箱找回，无额外验证，与线上行为一致）
func (s *AuthService) ResetPassword(email, newPassword string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.Where("LOWER(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(&user).Update("password_hashed", string(hashed)).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return &user, nil
}

// CheckAvailability 检查用户名 / 邮箱是否可用（注册页实时校验用）
func (s *AuthService) CheckAvailability(username, email string) (bool, []string, error) {
	var problems []string

	username = strings.TrimSpace(username)
	if username != "" {
		var count int64
		if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return false, nil, fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			problems = append(problems, "Username already taken")
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && strings.Contains(email, "@") {
		var count int64
		if err := s.db.Model(&model.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
			return false, nil, fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			problems = append(problems, "Email already registered")
		}
	}

	return len(problems) == 0, problems, nil
}
