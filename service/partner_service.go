package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"duo_dates/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerService 配对引擎：配对请求的发送 / 接受 / 解除
// 不变量：partner_id 互相指向，且一个用户同时最多一个伴侣
// 所有跨请求的顺序保证都来自数据库行锁和事务，进程内不做任何协调
type PartnerService struct {
	db       *gorm.DB
	notifSvc *NotificationService
}

func NewPartnerService(db *gorm.DB, notifSvc *NotificationService) *PartnerService {
	return &PartnerService{db: db, notifSvc: notifSvc}
}

// SendRequest 发送配对请求
// 校验顺序：发送者存在 → 接收者存在 → 非本人 → 双方均未配对 → 两人之间无未处理请求
// 查重和插入放在同一个事务里，并发下不会产生两条待处理请求
func (s *PartnerService) SendRequest(fromUserID uuid.UUID, toUsername string) (uuid.UUID, error) {
	var notificationID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sender model.User
		if err := tx.Where("user_id = ?", fromUserID).First(&sender).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSenderNotFound
			}
			return fmt.Errorf("failed to load sender: %w", err)
		}

		var receiver model.User
		if err := tx.Where("username = ?", toUsername).First(&receiver).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReceiverNotFound
			}
			return fmt.Errorf("failed to load receiver: %w", err)
		}

		if sender.UserID == receiver.UserID {
			return ErrSelfRequest
		}
		if sender.PartnerID != nil {
			return ErrAlreadyPaired
		}
		if receiver.PartnerID != nil {
			return ErrReceiverPaired
		}

		pending, err := findPendingRequestBetween(tx, sender.UserID, receiver.UserID)
		if err != nil {
			return err
		}
		if pending {
			return ErrPendingRequestExists
		}

		payload := model.PartnerRequestPayload{
			FromUserID:   sender.UserID,
			FromUsername: sender.Username,
			ToUserID:     receiver.UserID,
			ToUsername:   receiver.Username,
		}
		message, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request payload: %w", err)
		}

		notification := &model.Notification{
			UserID:  receiver.UserID,
			Type:    model.NotifTypePartnerRequest,
			Message: string(message),
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create partner request: %w", err)
		}

		notificationID = notification.NotificationID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return notificationID, nil
}

// findPendingRequestBetween 查两人之间（任一方向）是否已有未处理的配对请求
// 解析结构化载荷做精确匹配，不做 JSON 文本的子串匹配
func findPendingRequestBetween(tx *gorm.DB, userA, userB uuid.UUID) (bool, error) {
	var rows []model.Notification
	err := tx.Where("type = ? AND read_status = ? AND user_id IN ?",
		model.NotifTypePartnerRequest, false, []uuid.UUID{userA, userB}).
		Find(&rows).Error
	if err != nil {
		return false, fmt.Errorf("failed to query pending requests: %w", err)
	}

	for _, row := range rows {
		var payload model.PartnerRequestPayload
		if err := json.Unmarshal([]byte(row.Message), &payload); err != nil {
			continue // 历史脏数据，跳过
		}
		involvesA := payload.FromUserID == userA || payload.ToUserID == userA
		involvesB := payload.FromUserID == userB || payload.ToUserID == userB
		if involvesA && involvesB {
			return true, nil
		}
	}
	return false, nil
}

// AcceptRequest 接受配对请求（最敏感路径：单事务 + 行锁）
// 锁通知行 → 校验归属和未读 → 解析载荷 → 按 user_id 排序锁双方用户行
// → 锁内复查双方均未配对 → 互写 partner_id → 标记已读 → 提交
// 任何一步失败整个事务回滚，不会出现单边配对
func (s *PartnerService) AcceptRequest(actingUserID, notificationID uuid.UUID) error {
	var payload model.PartnerRequestPayload

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var notif model.Notification
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("notification_id = ? AND type = ?", notificationID, model.NotifTypePartnerRequest).
			First(&notif).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to lock partner request: %w", err)
		}

		if notif.UserID != actingUserID {
			return ErrNotRequestOwner
		}
		if notif.ReadStatus {
			return ErrAlreadyProcessed
		}

		if err := json.Unmarshal([]byte(notif.Message), &payload); err != nil {
			return fmt.Errorf("invalid partner request payload: %w", err)
		}

		// 固定按 user_id 升序加锁，避免并发 accept 之间的锁顺序死锁
		var users []model.User
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id IN ?", []uuid.UUID{payload.FromUserID, payload.ToUserID}).
			Order("user_id").
			Find(&users).Error
		if err != nil {
			return fmt.Errorf("failed to lock users: %w", err)
		}
		if len(users) != 2 {
			return ErrUserNotFound
		}

		// 锁内复查：请求发出后任何一方可能已经和别人配对
		for i := range users {
			if users[i].PartnerID != nil {
				return ErrAlreadyPaired
			}
		}

		if err := tx.Model(&model.User{}).Where("user_id = ?", payload.FromUserID).
			Update("partner_id", payload.ToUserID).Error; err != nil {
			return fmt.Errorf("failed to set sender partner: %w", err)
		}
		if err := tx.Model(&model.User{}).Where("user_id = ?", payload.ToUserID).
			Update("partner_id", payload.FromUserID).Error; err != nil {
			return fmt.Errorf("failed to set receiver partner: %w", err)
		}

		if err := tx.Model(&model.Notification{}).
			Where("notification_id = ?", notificationID).
			Update("read_status", true).Error; err != nil {
			return fmt.Errorf("failed to mark request processed: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	// 提交后尽力通知发起方，失败只记日志，不影响已提交的配对
	if s.notifSvc != nil {
		if _, err := s.notifSvc.SendPartnerAccepted(payload.FromUserID, payload.ToUserID, payload.ToUsername); err != nil {
			log.Printf("[WARN] Failed to send PARTNER_ACCEPTED notification: %v", err)
		}
	}

	return nil
}

// RemovePartner 解除配对
// 对方行缺失或反向引用不一致时照样清理自己这边（与线上历史行为一致，只记日志）
func (s *PartnerService) RemovePartner(actingUserID uuid.UUID) error {
	var formerPartnerID *uuid.UUID
	var actingUsername string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", actingUserID).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if user.PartnerID == nil {
			return ErrNoPartner
		}
		actingUsername = user.Username
		partnerID := *user.PartnerID

		var partner model.User
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", partnerID).
			First(&partner).Error
		switch {
		case err == nil:
			if partner.PartnerID == nil || *partner.PartnerID != actingUserID {
				log.Printf("[WARN] Inconsistent partner back-reference: user=%s partner=%s", actingUserID, partnerID)
			}
			if err := tx.Model(&model.User{}).Where("user_id = ?", partnerID).
				Update("partner_id", nil).Error; err != nil {
				return fmt.Errorf("failed to clear partner side: %w", err)
			}
			formerPartnerID = &partnerID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 对方行已不存在，仍然清掉自己这边
			log.Printf("[WARN] Partner row missing during remove: user=%s partner=%s", actingUserID, partnerID)
		default:
			return fmt.Errorf("failed to lock partner: %w", err)
		}

		if err := tx.Model(&model.User{}).Where("user_id = ?", actingUserID).
			Update("partner_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear partner_id: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if s.notifSvc != nil && formerPartnerID != nil {
		if _, err := s.notifSvc.SendPartnerRemoved(*formerPartnerID, actingUsername); err != nil {
			log.Printf("[WARN] Failed to send PARTNER_REMOVED notification: %v", err)
		}
	}

	return nil
}

// ListPendingRequests 获取发给该用户的待处理配对请求（最新在前）
func (s *PartnerService) ListPendingRequests(userID uuid.UUID) ([]model.PartnerRequest, error) {
	var rows []model.Notification
	err := s.db.Where("user_id = ? AND type = ? AND read_status = ?",
		userID, model.NotifTypePartnerRequest, false).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query partner requests: %w", err)
	}

	requests := make([]model.PartnerRequest, 0, len(rows))
	for _, row := range rows {
		var payload model.PartnerRequestPayload
		if err := json.Unmarshal([]byte(row.Message), &payload); err != nil {
			continue
		}
		requests = append(requests, model.PartnerRequest{
			NotificationID:        row.NotificationID,
			CreatedAt:             row.CreatedAt,
			PartnerRequestPayload: payload,
		})
	}

	return requests, nil
}
