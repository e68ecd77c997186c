package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateEntry 约会记录表
// privacy 为 INHERIT 时跟随所属 profile 的 visibility
type DateEntry struct {
	DateID      uuid.UUID `json:"date_id" gorm:"column:date_id;type:uuid;primaryKey"`
	ProfileID   uuid.UUID `json:"profile_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	DateTime    time.Time `json:"date_time" gorm:"column:date_time;not null"`
	Location    *string   `json:"location,omitempty" gorm:"type:varchar(255)"`
	Privacy     string    `json:"privacy" gorm:"type:varchar(10);not null;default:'INHERIT'"` // 'INHERIT' | 'PUBLIC' | 'PRIVATE'
	Image       *string   `json:"image,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DateEntry) TableName() string {
	return "dates"
}

func (d *DateEntry) BeforeCreate(_ *gorm.DB) error {
	if d.DateID == uuid.Nil {
		d.DateID = uuid.New()
	}
	return nil
}
