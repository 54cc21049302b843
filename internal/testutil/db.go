// Package testutil 测试用的内存数据库与夹具
package testutil

import (
	"fmt"
	"testing"
	"wellness_backend/internal/model"
	"wellness_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试一个独立的内存库，只建表不写默认目录
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateMission 写入任务定义；metric 为空时是手动任务
func CreateMission(t *testing.T, db *gorm.DB, code string, target float64, points int, metric model.MetricKind, agg model.Aggregation) *model.MissionDefinition {
	t.Helper()

	def := &model.MissionDefinition{
		Code:        code,
		Title:       code,
		TargetValue: target,
		Points:      points,
		Aggregation: agg,
		IsEnabled:   true,
	}
	if metric != "" {
		m := metric
		def.MetricKind = &m
	}
	require.NoError(t, db.Create(def).Error)
	return def
}

func CreateActivity(t *testing.T, db *gorm.DB, code string, points, duration int) *model.ActivityDefinition {
	t.Helper()

	def := &model.ActivityDefinition{
		Code:            code,
		Title:           code,
		Points:          points,
		DurationMinutes: duration,
		IsEnabled:       true,
	}
	require.NoError(t, db.Create(def).Error)
	return def
}

// Disable 关闭目录项；default:true 的字段无法在创建时写入 false
func Disable(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	require.NoError(t, db.Model(value).Update("is_enabled", false).Error)
}
