package model

import (
	"time"

	"github.com/google/uuid"
)

// PartnerRequestPayload PARTNER_REQUEST 通知的 message 载荷
// 配对请求不是独立表，接受时要从这里还原双方信息
type PartnerRequestPayload struct {
	FromUserID   uuid.UUID `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	ToUserID     uuid.UUID `json:"to_user_id"`
	ToUsername   string    `json:"to_username"`
}

// PartnerRequest 待处理配对请求（列表接口的返回形态）
type PartnerRequest struct {
	NotificationID uuid.UUID `json:"notification_id"`
	CreatedAt      time.Time `json:"created_at"`
	PartnerRequestPayload
}
