package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhotoService 照片记录（文件本体由外部存储负责，这里只管元数据行）
type PhotoService struct {
	db       *gorm.DB
	notifSvc *NotificationService
}

func NewPhotoService(db *gorm.DB, notifSvc *NotificationService) *PhotoService {
	return &PhotoService{db: db, notifSvc: notifSvc}
}

// PhotoView 照片列表条目（带所属约会信息）
type PhotoView struct {
	PhotoID      uuid.UUID  `json:"photo_id"`
	DateID       uuid.UUID  `json:"date_id"`
	UserID       uuid.UUID  `json:"user_id"`
	FilePath     string     `json:"file_path"`
	Description  *string    `json:"description"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	DateTitle    string     `json:"date_title"`
	DateTime     time.Time  `json:"date_time"`
	DateLocation *string    `json:"date_location"`
}

// ListPhotos 获取用户的照片（带约会信息，最新在前）
func (s *PhotoService) ListPhotos(userID uuid.UUID) ([]PhotoView, error) {
	var photos []PhotoView
	err := s.db.Model(&model.Photo{}).
		Select("photos.photo_id, photos.date_id, photos.user_id, photos.file_path, photos.description, photos.uploaded_at, d.title AS date_title, d.date_time, d.location AS date_location").
		Joins("JOIN dates d ON photos.date_id = d.date_id").
		Where("photos.user_id = ?", userID).
		Order("photos.uploaded_at DESC").
		Scan(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}

	if photos == nil {
		photos = []PhotoView{}
	}
	return photos, nil
}

// AddPhoto 给约会添加一条照片记录，已配对时尽力通知伴侣
func (s *PhotoService) AddPhoto(userID, dateID uuid.UUID, filePath string, description *string) (*model.Photo, error) {
	var user model.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var date model.DateEntry
	err = s.db.Where("date_id = ?", dateID).First(&date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load date: %w", err)
	}

	photo := &model.Photo{
		DateID:      dateID,
		UserID:      userID,
		FilePath:    filePath,
		Description: description,
	}
	if err := s.db.Create(photo).Error; err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	// 尽力通知伴侣，失败不影响照片记录
	if s.notifSvc != nil && user.PartnerID != nil {
		if _, err := s.notifSvc.SendPhotoUpload(*user.PartnerID, user.UserID, user.Username, date.DateID, date.Title, 1); err != nil {
			log.Printf("[WARN] Failed to send PHOTO_UPLOAD notification: %v", err)
		}
	}

	return photo, nil
}
