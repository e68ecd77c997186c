package service

import (
	"testing"

	"duo_dates/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 内存 SQLite 测试库
// sqlite 驱动会忽略 FOR UPDATE 子句，事务路径的代码不用改就能跑
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 下每个连接是独立的库，只允许一个连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.DateEntry{},
		&model.Photo{},
		&model.Comment{},
		&model.Notification{},
	))

	return db
}

// createTestUser 创建测试用户
func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		UserID:         uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		PasswordHashed: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestProfile 创建测试资料行
func createTestProfile(t *testing.T, db *gorm.DB, userID uuid.UUID, visibility string) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		ProfileID:    uuid.New(),
		UserID:       userID,
		DisplayName:  "My Profile",
		ThemeSetting: "default",
		Visibility:   visibility,
		LayoutType:   "GALLERY",
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// reloadUser 重新读取用户行
func reloadUser(t *testing.T, db *gorm.DB, userID uuid.UUID) *model.User {
	t.Helper()

	var user model.User
	require.NoError(t, db.Where("user_id = ?", userID).First(&user).Error)
	return &user
}
