package repository

import (
	"wellness_backend/internal/model"

	"gorm.io/gorm"
)

// DailyAggregate 某一天的指标聚合值
type DailyAggregate struct {
	Date  string  `gorm:"column:agg_date" json:"date"`
	Value float64 `gorm:"column:agg_value" json:"value"`
}

type TrackingRepository struct {
	DB *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *TrackingRepository) WithTx(tx *gorm.DB) *TrackingRepository {
	return &TrackingRepository{DB: tx}
}

// CreateBatch 追加写入打卡记录
func (r *TrackingRepository) CreateBatch(entries []model.TrackingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.DB.Create(&entries).Error
}

// FindByUserAndDate 获取用户某天全部打卡记录
func (r *TrackingRepository) FindByUserAndDate(userID uint, date string) ([]model.TrackingEntry, error) {
	var entries []model.TrackingEntry
	err := r.DB.Where("user_id = ? AND entry_date = ?", userID, date).
		Order("recorded_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// DailyAggregates 区间内按天聚合，只返回有记录的日期
func (r *TrackingRepository) DailyAggregates(userID uint, kind model.MetricKind, from, to string, agg model.Aggregation) ([]DailyAggregate, error) {
	var rows []DailyAggregate
	err := r.DB.Model(&model.TrackingEntry{}).
		Select("entry_date AS agg_date, "+aggregateExpr(agg)+" AS agg_value").
		Where("user_id = ? AND metric_kind = ? AND entry_date BETWEEN ? AND ?", userID, kind, from, to).
		Group("entry_date").
		Order("entry_date").
		Scan(&rows).Error
	return rows, err
}

// LoggedCategoryDays 区间内有记录的 (日期, 分类) 组合数
func (r *TrackingRepository) LoggedCategoryDays(userID uint, from, to string) (int, error) {
	var rows []struct {
		EntryDate string
		Category  string
	}
	err := r.DB.Model(&model.TrackingEntry{}).
		Select("entry_date, category").
		Where("user_id = ? AND entry_date BETWEEN ? AND ?", userID, from, to).
		Group("entry_date, category").
		Scan(&rows).Error
	return len(rows), err
}

func aggregateExpr(agg model.Aggregation) string {
	switch agg {
	case model.AggMax:
		return "COALESCE(MAX(value), 0)"
	case model.AggCount:
		return "COUNT(*)"
	default:
		return "COALESCE(SUM(value), 0)"
	}
}
