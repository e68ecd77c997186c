package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentService 约会评论
// 写入受可见性约束：公开约会任何人可评论，私密约会只有所有者和伴侣可以
type CommentService struct {
	db       *gorm.DB
	notifSvc *NotificationService
}

func NewCommentService(db *gorm.DB, notifSvc *NotificationService) *CommentService {
	return &CommentService{db: db, notifSvc: notifSvc}
}

// CommentView 评论列表条目（带评论者用户名）
type CommentView struct {
	CommentID uuid.UUID `json:"comment_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
}

// ListComments 获取约会的评论（最早在前，读取不做权限限制）
func (s *CommentService) ListComments(dateID uuid.UUID) ([]CommentView, error) {
	var comments []CommentView
	err := s.db.Model(&model.Comment{}).
		Select("comments.comment_id, comments.content, comments.created_at, u.user_id, u.username").
		Joins("JOIN users u ON u.user_id = comments.user_id").
		Where("comments.date_id = ?", dateID).
		Order("comments.created_at ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	if comments == nil {
		comments = []CommentView{}
	}
	return comments, nil
}

// dateVisibility 约会的有效可见性信息
type dateVisibility struct {
	DateID            uuid.UUID
	Title             string
	DatePrivacy       string
	ProfileVisibility string
	OwnerUserID       uuid.UUID
	OwnerPartnerID    *uuid.UUID
}

func (s *CommentService) getDateVisibility(dateID uuid.UUID) (*dateVisibility, error) {
	var info dateVisibility
	err := s.db.Model(&model.DateEntry{}).
		Select("dates.date_id, dates.title, dates.privacy AS date_privacy, p.visibility AS profile_visibility, p.user_id AS owner_user_id, u.partner_id AS owner_partner_id").
		Joins("JOIN profiles p ON dates.profile_id = p.profile_id").
		Joins("JOIN users u ON p.user_id = u.user_id").
		Where("dates.date_id = ?", dateID).
		Take(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load date visibility: %w", err)
	}
	return &info, nil
}

// AddComment 发表评论
// 有效可见性：约会自身 PUBLIC，或 INHERIT 且 profile PUBLIC，则公开；否则私密
func (s *CommentService) AddComment(dateID, userID uuid.UUID, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content must not be empty")
	}

	info, err := s.getDateVisibility(dateID)
	if err != nil {
		return nil, err
	}

	isPublic := info.DatePrivacy == "PUBLIC" ||
		(info.DatePrivacy == "INHERIT" && info.ProfileVisibility == "PUBLIC")

	if !isPublic {
		allowed := userID == info.OwnerUserID ||
			(info.OwnerPartnerID != nil && userID == *info.OwnerPartnerID)
		if !allowed {
			return nil, ErrCommentForbidden
		}
	}

	var commenter model.User
	err = s.db.Where("user_id = ?", userID).First(&commenter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load commenter: %w", err)
	}

	comment := &model.Comment{
		DateID:  dateID,
		UserID:  userID,
		Content: content,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// 评论别人的约会时尽力通知所有者
	if s.notifSvc != nil && userID != info.OwnerUserID {
		preview := content
		// 按字符截断，避免把多字节字符切坏
		if runes := []rune(preview); len(runes) > 100 {
			preview = string(runes[:100])
		}
		if _, err := s.notifSvc.SendComment(info.OwnerUserID, userID, commenter.Username, dateID, info.Title, preview); err != nil {
			log.Printf("[WARN] Failed to send COMMENT notification: %v", err)
		}
	}

	return &CommentView{
		CommentID: comment.CommentID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserID:    userID,
		Username:  commenter.Username,
	}, nil
}
