package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo 照片表（只存文件路径，文件本体由外部存储负责）
type Photo struct {
	PhotoID     uuid.UUID `json:"photo_id" gorm:"column:photo_id;type:uuid;primaryKey"`
	DateID      uuid.UUID `json:"date_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FilePath    string    `json:"file_path" gorm:"column:file_path;type:text;not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	UploadedAt  time.Time `json:"uploaded_at" gorm:"column:uploaded_at;autoCreateTime"`
}

func (Photo) TableName() string {
	return "photos"
}

func (p *Photo) BeforeCreate(_ *gorm.DB) error {
	if p.PhotoID == uuid.Nil {
		p.PhotoID = uuid.New()
	}
	return nil
}
