package service

import (
	"time"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	txAttempts = 3
	txBackoff  = 20 * time.Millisecond
)

// StatsInvalidator 写操作完成后使用户统计缓存失效
type StatsInvalidator interface {
	Invalidate(userID uint)
}

// inTx 执行事务，仅对 TRANSIENT 错误（死锁、连接中断等）做有限重试
func inTx(db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = util.FromStorage(op, db.Transaction(fn), nil)
		if !util.IsTransient(err) {
			return err
		}
		logger.Log.Warn("transaction failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * txBackoff)
	}
	return err
}
