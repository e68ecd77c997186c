package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService 通知的写入、查询和已读管理
// 写入前检查接收方的通知开关；开关关闭时静默跳过，不算错误
type NotificationService struct {
	db          *gorm.DB
	hubNotifier HubNotifier
}

// HubNotifier WebSocket 在线推送接口
type HubNotifier interface {
	SendNotification(userID uuid.UUID, notification interface{}) bool
	IsUserOnline(userID uuid.UUID) bool
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetHubNotifier 设置 Hub 通知器（用于依赖注入）
func (s *NotificationService) SetHubNotifier(notifier HubNotifier) {
	s.hubNotifier = notifier
}

// Send 给用户插入一条通知
// 开关关闭时返回 (nil, nil)；开关查询失败按开启处理，通知是尽力而为的
func (s *NotificationService) Send(userID uuid.UUID, notifType string, payload interface{}) (*model.Notification, error) {
	enabled, err := s.NotificationsEnabled(userID)
	if err != nil {
		log.Printf("[WARN] Failed to check notification setting: %v", err)
		enabled = true
	}
	if !enabled {
		return nil, nil
	}

	message, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid notification payload: %w", err)
	}

	notification := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: string(message),
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// 只推送给在线用户
	if s.hubNotifier != nil && s.hubNotifier.IsUserOnline(userID) {
		s.hubNotifier.SendNotification(userID, notification)
	}

	return notification, nil
}

// SendPartnerAccepted 配对请求被接受后通知发起方
func (s *NotificationService) SendPartnerAccepted(requesterID, accepterID uuid.UUID, accepterUsername string) (*model.Notification, error) {
	return s.Send(requesterID, model.NotifTypePartnerAccepted, map[string]interface{}{
		"from_user_id":  accepterID,
		"from_username": accepterUsername,
		"text":          fmt.Sprintf("%s accepted your partner request!", accepterUsername),
	})
}

// SendPartnerRemoved 配对被解除后通知对方
func (s *NotificationService) SendPartnerRemoved(partnerID uuid.UUID, removedByUsername string) (*model.Notification, error) {
	return s.Send(partnerID, model.NotifTypePartnerRemoved, map[string]interface{}{
		"from_username": removedByUsername,
		"text":          fmt.Sprintf("%s ended the partnership.", removedByUsername),
	})
}

// SendPhotoUpload 伴侣上传照片后通知
func (s *NotificationService) SendPhotoUpload(partnerID, uploaderID uuid.UUID, uploaderUsername string, dateID uuid.UUID, dateTitle string, photoCount int) (*model.Notification, error) {
	plural := ""
	if photoCount > 1 {
		plural = "s"
	}
	return s.Send(partnerID, model.NotifTypePhotoUpload, map[string]interface{}{
		"from_user_id":  uploaderID,
		"from_username": uploaderUsername,
		"date_id":       dateID,
		"date_title":    dateTitle,
		"photo_count":   photoCount,
		"text":          fmt.Sprintf("%s added %d photo%s to %q", uploaderUsername, photoCount, plural, dateTitle),
	})
}

// SendComment 约会被评论后通知所有者
func (s *NotificationService) SendComment(ownerID, commenterID uuid.UUID, commenterUsername string, dateID uuid.UUID, dateTitle, commentPreview string) (*model.Notification, error) {
	return s.Send(ownerID, model.NotifTypeComment, map[string]interface{}{
		"from_user_id":  commenterID,
		"from_username": commenterUsername,
		"date_id":       dateID,
		"date_title":    dateTitle,
		"comment_text":  commentPreview,
		"text":          fmt.Sprintf("%s commented on %q", commenterUsername, dateTitle),
	})
}

// NotificationView 返回给前端的通知（message 解析回对象）
type NotificationView struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	Message   map[string]interface{} `json:"message"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`
}

// GetNotifications 获取通知列表（最新在前，最多 50 条）
// 返回列表和未读数量
func (s *NotificationService) GetNotifications(userID uuid.UUID, unreadOnly bool) ([]NotificationView, int, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_status = ?", false)
	}

	var rows []model.Notification
	if err := query.Order("created_at DESC").Limit(50).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}

	views := make([]NotificationView, 0, len(rows))
	for _, row := range rows {
		parsed := map[string]interface{}{}
		if err := json.Unmarshal([]byte(row.Message), &parsed); err != nil {
			// 非 JSON 的历史数据按纯文本处理
			parsed = map[string]interface{}{"text": row.Message}
		}
		views = append(views, NotificationView{
			ID:        row.NotificationID,
			Type:      row.Type,
			Message:   parsed,
			Read:      row.ReadStatus,
			CreatedAt: row.CreatedAt,
		})
	}

	unreadCount, err := s.GetUnreadCount(userID)
	if err != nil {
		return nil, 0, err
	}

	return views, unreadCount, nil
}

// GetUnreadCount 未读通知数量
func (s *NotificationService) GetUnreadCount(userID uuid.UUID) (int, error) {
	var count int64
	err := s.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(count), nil
}

// Create 直接创建一条通知（不检查通知开关，内部/管理接口使用）
func (s *NotificationService) Create(userID uuid.UUID, notifType, message string) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.hubNotifier != nil && s.hubNotifier.IsUserOnline(userID) {
		s.hubNotifier.SendNotification(userID, notification)
	}

	return notification, nil
}

// MarkAsRead 标记单条已读（校验归属）
func (s *NotificationService) MarkAsRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("read_status", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead 标记所有通知已读
func (s *NotificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Update("read_status", true).Error
}

// Delete 删除通知（校验归属）
func (s *NotificationService) Delete(userID, notificationID uuid.UUID) error {
	result := s.db.Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// NotificationsEnabled 查询用户的通知开关（无资料行或未设置时默认开启）
func (s *NotificationService) NotificationsEnabled(userID uuid.UUID) (bool, error) {
	var profile model.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if profile.NotificationsEnabled == nil {
		return true, nil
	}
	return *profile.NotificationsEnabled, nil
}

// UpdateNotificationsEnabled 更新通知开关（首次设置时创建资料行）
func (s *NotificationService) UpdateNotificationsEnabled(userID uuid.UUID, enabled bool) error {
	var profile model.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = model.Profile{
			UserID:               userID,
			DisplayName:          "My Profile",
			ThemeSetting:         "default",
			Visibility:           "PRIVATE",
			LayoutType:           "GALLERY",
			NotificationsEnabled: &enabled,
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	return s.db.Model(&profile).Update("notifications_enabled", enabled).Error
}
