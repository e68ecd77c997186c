package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户表
// partner_id 指向配对的另一方，配对关系必须互相指向（由 PartnerService 维护）
type User struct {
	UserID         uuid.UUID  `json:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	Username       string     `json:"username" gorm:"type:varchar(50);not null;uniqueIndex"`
	Email          string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHashed string     `json:"-" gorm:"column:password_hashed;type:varchar(100);not null"`
	PartnerID      *uuid.UUID `json:"partner_id,omitempty" gorm:"column:partner_id;type:uuid"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
