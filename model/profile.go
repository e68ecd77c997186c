package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile 用户资料表（含通知开关）
// notifications_enabled 为 NULL 时按开启处理
type Profile struct {
	ProfileID            uuid.UUID `json:"profile_id" gorm:"column:profile_id;type:uuid;primaryKey"`
	UserID               uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName          string    `json:"display_name" gorm:"type:varchar(100);not null;default:'My Profile'"`
	ThemeSetting         string    `json:"theme_setting" gorm:"type:varchar(20);not null;default:'default'"`
	Visibility           string    `json:"visibility" gorm:"type:varchar(10);not null;default:'PRIVATE'"` // 'PUBLIC' | 'PRIVATE'
	LayoutType           string    `json:"layout_type" gorm:"type:varchar(10);not null;default:'GALLERY'"`
	NotificationsEnabled *bool     `json:"notifications_enabled" gorm:"default:true"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ProfileID == uuid.Nil {
		p.ProfileID = uuid.New()
	}
	return nil
}
