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

const (
	ActivityStatusAvailable = "available"
	ActivityStatusCompleted = "completed"
)

// ActivityService 健康活动台账
type ActivityService struct {
	ActivityRepo *repository.ActivityRepository
	PointRepo    *repository.PointRepository
	Stats        StatsInvalidator
	DB           *gorm.DB

	now func() time.Time
}

func NewActivityService(
	activityRepo *repository.ActivityRepository,
	pointRepo *repository.PointRepository,
	stats StatsInvalidator,
	db *gorm.DB,
) *ActivityService {
	return &ActivityService{
		ActivityRepo: activityRepo,
		PointRepo:    pointRepo,
		Stats:        stats,
		DB:           db,
		now:          time.Now,
	}
}

// ActivityStatus 某天某活动的完成状态
type ActivityStatus struct {
	Activity   model.ActivityDefinition  `json:"activity"`
	Status     string                    `json:"status"`
	Completion *model.ActivityCompletion `json:"completion,omitempty"`
}

type CompleteActivityRequest struct {
	ActivityDate    string `json:"activity_date"`
	ActivityType    string `json:"activity_type"`
	DurationMinutes *int   `json:"duration_minutes"`
	Notes           string `json:"notes" binding:"max=500"`
}

// PointsFor 活动积分 = round(基础积分 × 强度倍率)
func PointsFor(base int, activityType model.ActivityType) (int, error) {
	m, ok := activityType.Multiplier()
	if !ok {
		return 0, util.Validation("unknown activity type %q", activityType)
	}
	return int(math.Round(float64(base) * m)), nil
}

func (s *ActivityService) ListCatalog() ([]model.ActivityDefinition, error) {
	activities, err := s.ActivityRepo.ListDefinitions(true)
	if err != nil {
		return nil, util.FromStorage("list activities", err, nil)
	}
	return activities, nil
}

// ListActivitiesForUserDate 目录中每个活动在该日期的状态，日期之间互不影响
func (s *ActivityService) ListActivitiesForUserDate(userID uint, date string) ([]ActivityStatus, error) {
	activities, err := s.ActivityRepo.ListDefinitions(true)
	if err != nil {
		return nil, util.FromStorage("list activities", err, nil)
	}
	completions, err := s.ActivityRepo.CompletionsForDate(userID, date)
	if err != nil {
		return nil, util.FromStorage("list activity completions", err, nil)
	}

	result := make([]ActivityStatus, 0, len(activities))
	for _, a := range activities {
		status := ActivityStatus{Activity: a, Status: ActivityStatusAvailable}
		if c, ok := completions[a.ID]; ok {
			c := c
			status.Status = ActivityStatusCompleted
			status.Completion = &c
		}
		result = append(result, status)
	}
	return result, nil
}

// CompleteActivity 每个 (user, activity, date) 只能完成一次
func (s *ActivityService) CompleteActivity(userID, activityID uint, req CompleteActivityRequest) (*model.ActivityCompletion, error) {
	now := s.now()
	date, err := util.ParseDate(req.ActivityDate, util.DateOf(now))
	if err != nil {
		return nil, err
	}

	activityType := model.ActivityType(strings.ToLower(strings.TrimSpace(req.ActivityType)))
	if activityType == "" {
		activityType = model.ActivityNormal
	}

	def, err := s.ActivityRepo.FindDefinition(activityID)
	if err != nil {
		return nil, util.FromStorage("find activity", err, util.ErrActivityNotFound)
	}
	if !def.IsEnabled {
		return nil, util.ErrActivityNotFound
	}

	points, err := PointsFor(def.Points, activityType)
	if err != nil {
		return nil, err
	}

	duration := def.DurationMinutes
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 0 {
			return nil, util.Validation("duration_minutes must be non-negative")
		}
		duration = *req.DurationMinutes
	}

	completion := &model.ActivityCompletion{
		UserID:          userID,
		ActivityID:      activityID,
		ActivityDate:    date,
		ActivityType:    activityType,
		DurationMinutes: duration,
		PointsEarned:    points,
		CompletedAt:     now,
		Notes:           strings.TrimSpace(req.Notes),
	}

	err = inTx(s.DB, "complete activity", func(tx *gorm.DB) error {
		repo := s.ActivityRepo.WithTx(tx)

		if _, err := repo.FindCompletionForUpdate(userID, activityID, date); err == nil {
			return util.ErrDuplicateCompletion
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		completion.ID = 0
		if err := repo.CreateCompletion(completion); err != nil {
			// 并发完成由唯一索引裁决，失败方得到重复错误
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateCompletion
			}
			return err
		}

		if points <= 0 {
			return nil
		}
		_, err := s.PointRepo.WithTx(tx).Award(&model.PointAward{
			UserID:    userID,
			Source:    model.PointSourceActivity,
			SourceID:  completion.ID,
			Points:    points,
			AwardedOn: date,
		})
		return err
	})
	if err != nil {
		if util.IsTransient(err) {
			logger.Log.Error("activity storage failure", zap.Uint("user_id", userID), zap.Error(err))
		} else {
			monitoring.BusinessErrors.WithLabelValues(string(util.CodeOf(err))).Inc()
		}
		return nil, err
	}

	completion.Activity = def
	monitoring.ActivityCompletions.WithLabelValues(string(activityType)).Inc()
	logger.Log.Info("activity completed",
		zap.Uint("user_id", userID),
		zap.Uint("activity_id", activityID),
		zap.String("date", date),
		zap.String("activity_type", string(activityType)),
		zap.Int("points", points),
	)
	if s.Stats != nil {
		s.Stats.Invalidate(userID)
	}
	return completion, nil
}

// History 区间内的完成记录
func (s *ActivityService) History(userID uint, periodDays int, endDate string) ([]model.ActivityCompletion, error) {
	from, to := util.DateRange(endDate, periodDays)
	completions, err := s.ActivityRepo.History(userID, from, to)
	if err != nil {
		return nil, util.FromStorage("activity history", err, nil)
	}
	return completions, nil
}
