package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 通知类型
const (
	NotifTypePartnerRequest  = "PARTNER_REQUEST"
	NotifTypePartnerAccepted = "PARTNER_ACCEPTED"
	NotifTypePartnerRemoved  = "PARTNER_REMOVED"
	NotifTypeDateReminder    = "DATE_REMINDER"
	NotifTypeDateUpcoming    = "DATE_UPCOMING"
	NotifTypePhotoUpload     = "PHOTO_UPLOAD"
	NotifTypeComment         = "COMMENT"
	NotifTypeGeneral         = "GENERAL"
)

// Notification 通知表
// message 字段存 JSON 文本，结构由 type 决定
type Notification struct {
	NotificationID uuid.UUID `json:"notification_id" gorm:"column:notification_id;type:uuid;primaryKey"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type           string    `json:"type" gorm:"type:varchar(30);not null"`
	Message        string    `json:"message" gorm:"type:text;not null"`
	ReadStatus     bool      `json:"read_status" gorm:"column:read_status;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
