package service

import (
	"errors"
	"fmt"
	"strings"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService 用户搜索与资料查询
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserSummary 搜索结果条目
type UserSummary struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// SearchUsers 用户名模糊搜索（不区分大小写，最多 10 条）
func (s *UserService) SearchUsers(query string) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []UserSummary{}, nil
	}

	var results []UserSummary
	err := s.db.Model(&model.User{}).
		Select("user_id, username").
		Where("LOWER(username) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("username").
		Limit(10).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	if results == nil {
		results = []UserSummary{}
	}
	return results, nil
}

// ProfileView 资料页数据（自己的用户名 + 伴侣用户名 + 资料设置）
type ProfileView struct {
	UserName     string  `json:"user_name"`
	PartnerName  *string `json:"partner_name"`
	ThemeSetting *string `json:"theme_setting"`
	DisplayName  *string `json:"display_name"`
}

// GetProfile 获取资料页数据（伴侣用户名通过 users 自连接取出）
func (s *UserService) GetProfile(userID uuid.UUID) (*ProfileView, error) {
	var view ProfileView
	err := s.db.Model(&model.User{}).
		Select("users.username AS user_name, p.username AS partner_name, pr.theme_setting, pr.display_name").
		Joins("LEFT JOIN users p ON users.partner_id = p.user_id").
		Joins("LEFT JOIN profiles pr ON pr.user_id = users.user_id").
		Where("users.user_id = ?", userID).
		Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &view, nil
}
