package service

import (
	"errors"
	"fmt"
	"time"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateService 约会记录的查询和创建
type DateService struct {
	db *gorm.DB
}

func NewDateService(db *gorm.DB) *DateService {
	return &DateService{db: db}
}

// ListDates 获取约会列表（按约会时间倒序）
func (s *DateService) ListDates() ([]model.DateEntry, error) {
	var dates []model.DateEntry
	err := s.db.Order("date_time DESC").Find(&dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	return dates, nil
}

// CreateDateInput 创建约会的入参
type CreateDateInput struct {
	ProfileID   uuid.UUID
	Title       string
	Description *string
	DateTime    time.Time
	Location    *string
	Privacy     string
	Image       *string
}

// CreateDate 创建约会记录
func (s *DateService) CreateDate(input CreateDateInput) (*model.DateEntry, error) {
	var profile model.Profile
	err := s.db.Where("profile_id = ?", input.ProfileID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if input.Privacy == "" {
		input.Privacy = "INHERIT"
	}

	date := &model.DateEntry{
		ProfileID:   input.ProfileID,
		Title:       input.Title,
		Description: input.Description,
		DateTime:    input.DateTime,
		Location:    input.Location,
		Privacy:     input.Privacy,
		Image:       input.Image,
	}
	if err := s.db.Create(date).Error; err != nil {
		return nil, fmt.Errorf("failed to create date: %w", err)
	}

	return date, nil
}
