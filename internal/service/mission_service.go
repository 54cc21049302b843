package service

import (
	"errors"
	"math"
	"strings"
	"time"
	"wellness_backend/internal/model"
	"wellness_backend/internal/repository"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/logger"
	"wellness_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MissionService 任务引擎：UserMission.CurrentValue/Progress/Status 的唯一写入方
type MissionService struct {
	MissionRepo  *repository.MissionRepository
	PointRepo    *repository.PointRepository
	TrackingRepo *repository.TrackingRepository
	Stats        StatsInvalidator
	DB           *gorm.DB

	now func() time.Time
}

func NewMissionService(
	missionRepo *repository.MissionRepository,
	pointRepo *repository.PointRepository,
	trackingRepo *repository.TrackingRepository,
	stats StatsInvalidator,
	db *gorm.DB,
) *MissionService {
	return &MissionService{
		MissionRepo:  missionRepo,
		PointRepo:    pointRepo,
		TrackingRepo: trackingRepo,
		Stats:        stats,
		DB:           db,
		now:          time.Now,
	}
}

// ListCatalog 可接受的任务目录
func (s *MissionService) ListCatalog() ([]model.MissionDefinition, error) {
	missions, err := s.MissionRepo.ListDefinitions(true)
	if err != nil {
		return nil, util.FromStorage("list missions", err, nil)
	}
	return missions, nil
}

// ListUserMissions status 为空返回全部
func (s *MissionService) ListUserMissions(userID uint, status string) ([]model.UserMission, error) {
	st := model.MissionStatus(strings.TrimSpace(strings.ToLower(status)))
	switch st {
	case "", model.MissionActive, model.MissionCompleted, model.MissionCancelled:
	default:
		return nil, util.Validation("unknown mission status %q", status)
	}

	ums, err := s.MissionRepo.ListUserMissions(userID, st)
	if err != nil {
		return nil, util.FromStorage("list user missions", err, nil)
	}
	return ums, nil
}

func (s *MissionService) GetUserMission(userID, userMissionID uint) (*model.UserMission, error) {
	um, err := s.MissionRepo.FindUserMission(userMissionID, userID)
	if err != nil {
		return nil, util.FromStorage("get user mission", err, util.ErrUserMissionNotFound)
	}
	return um, nil
}

// AcceptMission 接受任务；同一 (user, mission, date) 已有进行中或已完成记录时返回 ALREADY_ACCEPTED
func (s *MissionService) AcceptMission(userID, missionID uint, missionDate string) (*model.UserMission, error) {
	var datePtr *string
	if strings.TrimSpace(missionDate) != "" {
		d, err := util.ParseDate(missionDate, "")
		if err != nil {
			return nil, err
		}
		datePtr = &d
	}

	def, err := s.MissionRepo.FindDefinition(missionID)
	if err != nil {
		return nil, util.FromStorage("find mission", err, util.ErrMissionNotFound)
	}
	if !def.IsEnabled {
		return nil, util.ErrMissionNotFound
	}

	now := s.now()
	slot := model.MissionSlot(userID, missionID, datePtr)
	var um *model.UserMission
	completed := false

	err = inTx(s.DB, "accept mission", func(tx *gorm.DB) error {
		repo := s.MissionRepo.WithTx(tx)

		if _, err := repo.FindBySlot(slot); err == nil {
			return util.ErrAlreadyAccepted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		um = &model.UserMission{
			UserID:      userID,
			MissionID:   missionID,
			Status:      model.MissionActive,
			AcceptedAt:  now,
			AcceptedOn:  util.DateOf(now),
			MissionDate: datePtr,
			ProgressOn:  util.DateOf(now),
			OpenSlot:    &slot,
		}
		if datePtr != nil {
			um.ProgressOn = *datePtr
		}
		if err := repo.CreateUserMission(um); err != nil {
			// 预检查之后的并发插入由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyAccepted
			}
			return err
		}

		if !def.Tracked() {
			return nil
		}

		// 接受当天可能已有打卡记录
		value, err := NewAggregator(s.TrackingRepo.WithTx(tx)).Aggregate(userID, *def.MetricKind, um.ProgressOn, def.Aggregation)
		if err != nil {
			return err
		}
		completed, err = s.apply(tx, um, def, value)
		return err
	})
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	um.Mission = def
	monitoring.MissionTransitions.WithLabelValues(string(model.MissionActive)).Inc()
	logger.Log.Info("mission accepted",
		zap.Uint("user_id", userID),
		zap.Uint("mission_id", missionID),
		zap.Uint("user_mission_id", um.ID),
	)
	s.afterWrite(userID, um, completed)
	return um, nil
}

// RecordTrackingWrite 对受影响的进行中任务做全天重新聚合，由打卡写入触发
func (s *MissionService) RecordTrackingWrite(userID uint, kind model.MetricKind, date string) ([]model.UserMission, error) {
	var write *trackingWrite
	err := inTx(s.DB, "record tracking write", func(tx *gorm.DB) error {
		var err error
		write, err = s.recomputeTx(tx, userID, kind, date)
		return err
	})
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	s.finishTrackingWrite(userID, write)
	return write.updated, nil
}

// trackingWrite 一次重算的结果，事务提交后再记录指标与失效缓存
type trackingWrite struct {
	updated      []model.UserMission
	completedIDs []uint
}

// recomputeTx 在调用方事务内锁定并重算受影响任务
func (s *MissionService) recomputeTx(tx *gorm.DB, userID uint, kind model.MetricKind, date string) (*trackingWrite, error) {
	if _, ok := model.LookupMetric(kind); !ok {
		return nil, util.Validation("unknown metric kind %q", kind)
	}
	if _, err := util.ParseDate(date, ""); err != nil || date == "" {
		return nil, util.Validation("invalid date %q", date)
	}

	repo := s.MissionRepo.WithTx(tx)
	aggregator := NewAggregator(s.TrackingRepo.WithTx(tx))

	ums, err := repo.FindActiveTrackedForUpdate(userID, kind, date)
	if err != nil {
		return nil, err
	}

	write := &trackingWrite{updated: []model.UserMission{}}
	defs := make(map[uint]*model.MissionDefinition)
	for i := range ums {
		um := &ums[i]
		def, ok := defs[um.MissionID]
		if !ok {
			def, err = repo.FindDefinition(um.MissionID)
			if err != nil {
				return nil, err
			}
			defs[um.MissionID] = def
		}

		value, err := aggregator.Aggregate(userID, kind, date, def.Aggregation)
		if err != nil {
			return nil, err
		}
		um.ProgressOn = date
		completed, err := s.apply(tx, um, def, value)
		if err != nil {
			return nil, err
		}
		if completed {
			write.completedIDs = append(write.completedIDs, um.ID)
		}
		um.Mission = def
		write.updated = append(write.updated, *um)
	}
	return write, nil
}

func (s *MissionService) finishTrackingWrite(userID uint, write *trackingWrite) {
	for i := range write.updated {
		s.afterWrite(userID, &write.updated[i], containsID(write.completedIDs, write.updated[i].ID))
	}
	if len(write.updated) == 0 && s.Stats != nil {
		s.Stats.Invalidate(userID)
	}
}

// UpdateProgressManually 手动习惯类任务更新进度
func (s *MissionService) UpdateProgressManually(userID, userMissionID uint, value float64, notes string) (*model.UserMission, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, util.Validation("current value must be a non-negative number")
	}

	var um *model.UserMission
	var def *model.MissionDefinition
	completed := false

	err := inTx(s.DB, "update mission progress", func(tx *gorm.DB) error {
		repo := s.MissionRepo.WithTx(tx)

		var err error
		um, err = repo.FindUserMissionForUpdate(userMissionID, userID)
		if err != nil {
			return util.FromStorage("find user mission", err, util.ErrUserMissionNotFound)
		}
		if err := statusError(um.Status); err != nil {
			return err
		}

		def, err = repo.FindDefinition(um.MissionID)
		if err != nil {
			return util.FromStorage("find mission", err, util.ErrMissionNotFound)
		}
		if def.Tracked() {
			return util.ErrTrackedMissionManual
		}

		if n := strings.TrimSpace(notes); n != "" {
			um.Notes = n
		}
		completed, err = s.apply(tx, um, def, value)
		return err
	})
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	um.Mission = def
	s.afterWrite(userID, um, completed)
	return um, nil
}

// AbandonMission active → cancelled，不可逆
func (s *MissionService) AbandonMission(userID, userMissionID uint) (*model.UserMission, error) {
	var um *model.UserMission
	now := s.now()

	err := inTx(s.DB, "abandon mission", func(tx *gorm.DB) error {
		repo := s.MissionRepo.WithTx(tx)

		var err error
		um, err = repo.FindUserMissionForUpdate(userMissionID, userID)
		if err != nil {
			return util.FromStorage("find user mission", err, util.ErrUserMissionNotFound)
		}
		if err := statusError(um.Status); err != nil {
			return err
		}

		rows, err := repo.Cancel(um.ID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.reloadStatusError(repo, um)
		}

		um.Status = model.MissionCancelled
		um.CancelledAt = &now
		um.OpenSlot = nil
		return nil
	})
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	monitoring.MissionTransitions.WithLabelValues(string(model.MissionCancelled)).Inc()
	logger.Log.Info("mission abandoned", zap.Uint("user_id", userID), zap.Uint("user_mission_id", um.ID))
	if s.Stats != nil {
		s.Stats.Invalidate(userID)
	}
	return um, nil
}

// apply 写入新的聚合值并在进度达到 100 时完成任务，返回是否在本次完成
func (s *MissionService) apply(tx *gorm.DB, um *model.UserMission, def *model.MissionDefinition, value float64) (bool, error) {
	repo := s.MissionRepo.WithTx(tx)

	um.CurrentValue = value
	um.Progress = ComputeProgress(value, def.TargetValue)

	completed := false
	if um.Progress >= 100 {
		now := s.now()
		um.Status = model.MissionCompleted
		um.CompletedAt = &now
		um.CompletedOn = util.DateOf(now)
		um.PointsAwarded = def.Points
		completed = true
	}

	rows, err := repo.UpdateProgress(um)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// 部分驱动在值未变化时不计入受影响行，这里重新确认状态
		if err := s.reloadStatusError(repo, um); err != nil {
			return false, err
		}
	}

	if completed && def.Points > 0 {
		_, err := s.PointRepo.WithTx(tx).Award(&model.PointAward{
			UserID:    um.UserID,
			Source:    model.PointSourceMission,
			SourceID:  um.ID,
			Points:    def.Points,
			AwardedOn: um.CompletedOn,
		})
		if err != nil {
			return false, err
		}
	}

	return completed, nil
}

func (s *MissionService) reloadStatusError(repo *repository.MissionRepository, um *model.UserMission) error {
	fresh, err := repo.FindUserMissionForUpdate(um.ID, um.UserID)
	if err != nil {
		return util.FromStorage("reload user mission", err, util.ErrUserMissionNotFound)
	}
	return statusError(fresh.Status)
}

func (s *MissionService) afterWrite(userID uint, um *model.UserMission, completed bool) {
	if completed {
		monitoring.MissionTransitions.WithLabelValues(string(model.MissionCompleted)).Inc()
		logger.Log.Info("mission completed",
			zap.Uint("user_id", userID),
			zap.Uint("user_mission_id", um.ID),
			zap.Float64("current_value", um.CurrentValue),
			zap.Int("points", um.PointsAwarded),
		)
	}
	if s.Stats != nil {
		s.Stats.Invalidate(userID)
	}
}

func (s *MissionService) recordOutcome(err error) {
	if util.IsTransient(err) {
		logger.Log.Error("mission storage failure", zap.Error(err))
		return
	}
	monitoring.BusinessErrors.WithLabelValues(string(util.CodeOf(err))).Inc()
	logger.Log.Debug("mission business outcome", zap.Error(err))
}

// statusError 终态对应的业务错误
func statusError(status model.MissionStatus) error {
	switch status {
	case model.MissionCompleted:
		return util.ErrAlreadyCompleted
	case model.MissionCancelled:
		return util.ErrAlreadyCancelled
	}
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
