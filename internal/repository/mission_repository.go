package repository

import (
	"time"
	"wellness_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MissionRepository struct {
	DB *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: db}
}

func (r *MissionRepository) WithTx(tx *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: tx}
}

// ListDefinitions 任务目录
func (r *MissionRepository) ListDefinitions(enabledOnly bool) ([]model.MissionDefinition, error) {
	var missions []model.MissionDefinition
	query := r.DB.Model(&model.MissionDefinition{})
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	err := query.Order("id").Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) FindDefinition(id uint) (*model.MissionDefinition, error) {
	var mission model.MissionDefinition
	err := r.DB.First(&mission, id).Error
	return &mission, err
}

func (r *MissionRepository) CreateUserMission(um *model.UserMission) error {
	return r.DB.Create(um).Error
}

// FindBySlot 查找占用该槽位的未取消记录
func (r *MissionRepository) FindBySlot(slot string) (*model.UserMission, error) {
	var um model.UserMission
	err := r.DB.Where("open_slot = ?", slot).First(&um).Error
	return &um, err
}

// FindUserMissionForUpdate 在事务中加行锁重新读取
func (r *MissionRepository) FindUserMissionForUpdate(id, userID uint) (*model.UserMission, error) {
	var um model.UserMission
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&um).Error
	return &um, err
}

func (r *MissionRepository) FindUserMission(id, userID uint) (*model.UserMission, error) {
	var um model.UserMission
	err := r.DB.Preload("Mission").Where("id = ? AND user_id = ?", id, userID).First(&um).Error
	return &um, err
}

// ListUserMissions status 为空时返回全部
func (r *MissionRepository) ListUserMissions(userID uint, status model.MissionStatus) ([]model.UserMission, error) {
	var ums []model.UserMission
	query := r.DB.Preload("Mission").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("accepted_at DESC, id DESC").Find(&ums).Error
	return ums, err
}

// FindActiveTrackedForUpdate 锁定受该指标影响的进行中任务：
// 指定日期的任务只在当天生效；未指定日期的任务跟随最近的打卡日，早于 progress_on 的补录不再改变当前值
func (r *MissionRepository) FindActiveTrackedForUpdate(userID uint, kind model.MetricKind, date string) ([]model.UserMission, error) {
	var ums []model.UserMission
	definitions := r.DB.Model(&model.MissionDefinition{}).Select("id").Where("metric_kind = ?", kind)
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, model.MissionActive).
		Where("mission_id IN (?)", definitions).
		Where("((mission_date = ?) OR (mission_date IS NULL AND accepted_on <= ? AND progress_on <= ?))", date, date, date).
		Order("id").
		Find(&ums).Error
	return ums, err
}

// UpdateProgress 只更新仍处于 active 的记录，返回受影响行数
func (r *MissionRepository) UpdateProgress(um *model.UserMission) (int64, error) {
	updates := map[string]interface{}{
		"current_value":  um.CurrentValue,
		"progress":       um.Progress,
		"status":         um.Status,
		"completed_at":   um.CompletedAt,
		"completed_on":   um.CompletedOn,
		"progress_on":    um.ProgressOn,
		"points_awarded": um.PointsAwarded,
		"notes":          um.Notes,
		"updated_at":     time.Now(),
	}
	res := r.DB.Model(&model.UserMission{}).
		Where("id = ? AND status = ?", um.ID, model.MissionActive).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// Cancel 取消任务并释放槽位
func (r *MissionRepository) Cancel(id uint, at time.Time) (int64, error) {
	res := r.DB.Model(&model.UserMission{}).
		Where("id = ? AND status = ?", id, model.MissionActive).
		Updates(map[string]interface{}{
			"status":       model.MissionCancelled,
			"cancelled_at": at,
			"open_slot":    nil,
			"updated_at":   at,
		})
	return res.RowsAffected, res.Error
}

// CountAccepted 区间内接受的任务数（不含已取消）
func (r *MissionRepository) CountAccepted(userID uint, from, to string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserMission{}).
		Where("user_id = ? AND accepted_on BETWEEN ? AND ? AND status <> ?", userID, from, to, model.MissionCancelled).
		Count(&count).Error
	return count, err
}

// CountCompleted 区间内完成的任务数，与任务积分同样按完成日期统计
func (r *MissionRepository) CountCompleted(userID uint, from, to string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserMission{}).
		Where("user_id = ? AND completed_on BETWEEN ? AND ? AND status = ?", userID, from, to, model.MissionCompleted).
		Count(&count).Error
	return count, err
}
