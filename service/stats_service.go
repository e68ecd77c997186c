package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"duo_dates/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StatsService 仪表盘统计（约会数 / 照片数 / 未读通知数）
// 结果在 Redis 里做短 TTL 缓存；没有 Redis 时每次现算
type StatsService struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewStatsService(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *StatsService {
	return &StatsService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

// Stats 仪表盘计数
type Stats struct {
	Dates         int64 `json:"dates"`
	Photos        int64 `json:"photos"`
	Notifications int64 `json:"notifications"`
}

// GetStats 获取用户的仪表盘计数
// 已配对时约会数和照片数把伴侣的也算进去；用户不存在返回全零
func (s *StatsService) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	cacheKey := fmt.Sprintf("stats:%s", userID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	var user model.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Stats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	owners := []uuid.UUID{userID}
	if user.PartnerID != nil {
		owners = append(owners, *user.PartnerID)
	}

	var stats Stats
	err = s.db.Model(&model.DateEntry{}).
		Joins("JOIN profiles p ON dates.profile_id = p.profile_id").
		Where("p.user_id IN ?", owners).
		Count(&stats.Dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count dates: %w", err)
	}

	err = s.db.Model(&model.Photo{}).
		Where("user_id IN ?", owners).
		Count(&stats.Photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}

	err = s.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&stats.Notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(&stats); err == nil {
			s.rdb.Set(ctx, cacheKey, encoded, s.cacheTTL)
		}
	}

	return &stats, nil
}

// InvalidateStats 清掉用户的统计缓存（写操作后调用）
// 约会数和照片数跨伴侣统计，已配对时把伴侣的缓存一起清掉
func (s *StatsService) InvalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.rdb == nil {
		return
	}

	keys := []string{fmt.Sprintf("stats:%s", userID)}

	var user model.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err == nil && user.PartnerID != nil {
		keys = append(keys, fmt.Sprintf("stats:%s", *user.PartnerID))
	}

	s.rdb.Del(ctx, keys...)
}

// InvalidateStatsForProfile 按资料 ID 清缓存（约会写入路径只知道 profile_id）
func (s *StatsService) InvalidateStatsForProfile(ctx context.Context, profileID uuid.UUID) {
	if s.rdb == nil {
		return
	}

	var profile model.Profile
	if err := s.db.Where("profile_id = ?", profileID).First(&profile).Error; err != nil {
		return
	}
	s.InvalidateStats(ctx, profile.UserID)
}
