package utils

import (
	"context"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// CustomLogger 自定义 GORM 日志器：只打印慢查询和真实错误
type CustomLogger struct {
	SlowThreshold time.Duration // 慢查询阈值
}

func (l *CustomLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *CustomLogger) Info(ctx context.Context, msg string, data ...interface{}) {
}

func (l *CustomLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
}

func (l *CustomLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	// "record not found" 属于正常业务分支，不打印
	if msg != "record not found" {
		log.Printf("[GORM Error] "+msg, data...)
	}
}

func (l *CustomLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && err.Error() != "record not found" {
		log.Printf("[GORM Error] %s [%v] [rows:%d] %s", err, elapsed, rows, sql)
	} else if elapsed >= l.SlowThreshold {
		log.Printf("[SLOW SQL] [%v] [rows:%d] %s", elapsed, rows, sql)
	}
}

// InitDB 初始化数据库连接
func InitDB(databaseURL string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: &CustomLogger{
			SlowThreshold: 100 * time.Millisecond,
		},
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)

	log.Println("✅ Database connected")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
