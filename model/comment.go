package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment 约会评论表
type Comment struct {
	CommentID uuid.UUID `json:"comment_id" gorm:"column:comment_id;type:uuid;primaryKey"`
	DateID    uuid.UUID `json:"date_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.CommentID == uuid.Nil {
		c.CommentID = uuid.New()
	}
	return nil
}
