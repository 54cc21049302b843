package repository

import (
	"wellness_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: tx}
}

// ListDefinitions 活动目录
func (r *ActivityRepository) ListDefinitions(enabledOnly bool) ([]model.ActivityDefinition, error) {
	var activities []model.ActivityDefinition
	query := r.DB.Model(&model.ActivityDefinition{})
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	err := query.Order("id").Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) FindDefinition(id uint) (*model.ActivityDefinition, error) {
	var activity model.ActivityDefinition
	err := r.DB.First(&activity, id).Error
	return &activity, err
}

// CountEnabled 可用活动数
func (r *ActivityRepository) CountEnabled() (int64, error) {
	var count int64
	err := r.DB.Model(&model.ActivityDefinition{}).Where("is_enabled = ?", true).Count(&count).Error
	return count, err
}

// FindCompletionForUpdate 事务内加锁的预检查
func (r *ActivityRepository) FindCompletionForUpdate(userID, activityID uint, date string) (*model.ActivityCompletion, error) {
	var completion model.ActivityCompletion
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND activity_id = ? AND activity_date = ?", userID, activityID, date).
		First(&completion).Error
	return &completion, err
}

func (r *ActivityRepository) CreateCompletion(completion *model.ActivityCompletion) error {
	return r.DB.Create(completion).Error
}

// CompletionsForDate 用户某天的完成记录，按活动 ID 索引
func (r *ActivityRepository) CompletionsForDate(userID uint, date string) (map[uint]model.ActivityCompletion, error) {
	var completions []model.ActivityCompletion
	err := r.DB.Where("user_id = ? AND activity_date = ?", userID, date).Find(&completions).Error
	if err != nil {
		return nil, err
	}

	byActivity := make(map[uint]model.ActivityCompletion, len(completions))
	for _, c := range completions {
		byActivity[c.ActivityID] = c
	}
	return byActivity, nil
}

// History 区间内完成记录，新的在前
func (r *ActivityRepository) History(userID uint, from, to string) ([]model.ActivityCompletion, error) {
	var completions []model.ActivityCompletion
	err := r.DB.Preload("Activity").
		Where("user_id = ? AND activity_date BETWEEN ? AND ?", userID, from, to).
		Order("activity_date DESC, id DESC").
		Find(&completions).Error
	return completions, err
}

// CompletionSummary 区间内完成次数、积分与有完成记录的天数
func (r *ActivityRepository) CompletionSummary(userID uint, from, to string) (count int64, points int64, activeDays int64, err error) {
	var row struct {
		Total  int64
		Points int64
	}
	err = r.DB.Model(&model.ActivityCompletion{}).
		Select("COUNT(*) AS total, COALESCE(SUM(points_earned), 0) AS points").
		Where("user_id = ? AND activity_date BETWEEN ? AND ?", userID, from, to).
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}

	err = r.DB.Model(&model.ActivityCompletion{}).
		Where("user_id = ? AND activity_date BETWEEN ? AND ?", userID, from, to).
		Distinct("activity_date").
		Count(&activeDays).Error
	return row.Total, row.Points, activeDays, err
}
