package repository

import (
	"wellness_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointRepository struct {
	DB *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{DB: db}
}

func (r *PointRepository) WithTx(tx *gorm.DB) *PointRepository {
	return &PointRepository{DB: tx}
}

// Award 按来源幂等发放，重复发放时返回 false
func (r *PointRepository) Award(award *model.PointAward) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(award)
	return res.RowsAffected > 0, res.Error
}

// SumByUser 用户积分总额
func (r *PointRepository) SumByUser(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.PointAward{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// SumBySource 区间内某来源的积分
func (r *PointRepository) SumBySource(userID uint, source model.PointSource, from, to string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.PointAward{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND source = ? AND awarded_on BETWEEN ? AND ?", userID, source, from, to).
		Scan(&total).Error
	return total, err
}
