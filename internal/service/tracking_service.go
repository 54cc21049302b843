package service

import (
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

// TrackingService 各打卡入口：写入记录后触发任务重算
type TrackingService struct {
	TrackingRepo *repository.TrackingRepository
	Missions     *MissionService
	Aggregator   *Aggregator
	DB           *gorm.DB

	now func() time.Time
}

func NewTrackingService(
	trackingRepo *repository.TrackingRepository,
	missions *MissionService,
	aggregator *Aggregator,
	db *gorm.DB,
) *TrackingService {
	return &TrackingService{
		TrackingRepo: trackingRepo,
		Missions:     missions,
		Aggregator:   aggregator,
		DB:           db,
		now:          time.Now,
	}
}

type FitnessRequest struct {
	Steps          *float64   `json:"steps"`
	DistanceKm     *float64   `json:"distance_km"`
	CaloriesBurned *float64   `json:"calories_burned"`
	ActiveMinutes  *float64   `json:"active_minutes"`
	RecordedAt     *time.Time `json:"recorded_at"`
	Note           string     `json:"note" binding:"max=255"`
}

type WaterRequest struct {
	AmountMl   float64    `json:"amount_ml" binding:"required"`
	RecordedAt *time.Time `json:"recorded_at"`
	Note       string     `json:"note" binding:"max=255"`
}

type SleepRequest struct {
	Hours      float64    `json:"hours" binding:"required"`
	RecordedAt *time.Time `json:"recorded_at"`
	Note       string     `json:"note" binding:"max=255"`
}

type MealRequest struct {
	Calories   float64    `json:"calories"`
	MealType   string     `json:"meal_type" binding:"max=20"`
	RecordedAt *time.Time `json:"recorded_at"`
	Note       string     `json:"note" binding:"max=255"`
}

type MoodRequest struct {
	Score      float64    `json:"score" binding:"required"`
	RecordedAt *time.Time `json:"recorded_at"`
	Note       string     `json:"note" binding:"max=255"`
}

// TrackingResult 写入的记录与因此更新的任务
type TrackingResult struct {
	Entries  []model.TrackingEntry `json:"entries"`
	Missions []model.UserMission   `json:"missions"`
}

// MetricSummary 某天某指标的聚合值
type MetricSummary struct {
	model.MetricSpec
	Value float64 `json:"value"`
}

type DaySummary struct {
	Date    string          `json:"date"`
	Metrics []MetricSummary `json:"metrics"`
}

type measurement struct {
	kind  model.MetricKind
	value float64
}

func (s *TrackingService) LogFitness(userID uint, req FitnessRequest) (*TrackingResult, error) {
	var ms []measurement
	add := func(kind model.MetricKind, v *float64) {
		if v != nil {
			ms = append(ms, measurement{kind: kind, value: *v})
		}
	}
	add(model.MetricSteps, req.Steps)
	add(model.MetricDistanceKm, req.DistanceKm)
	add(model.MetricCaloriesBurned, req.CaloriesBurned)
	add(model.MetricActiveMinutes, req.ActiveMinutes)

	if len(ms) == 0 {
		return nil, util.Validation("at least one fitness metric is required")
	}
	return s.record(userID, model.CategoryFitness, ms, req.RecordedAt, req.Note)
}

func (s *TrackingService) LogWater(userID uint, req WaterRequest) (*TrackingResult, error) {
	if req.AmountMl <= 0 {
		return nil, util.Validation("amount_ml must be positive")
	}
	return s.record(userID, model.CategoryWater, []measurement{{model.MetricWaterMl, req.AmountMl}}, req.RecordedAt, req.Note)
}

func (s *TrackingService) LogSleep(userID uint, req SleepRequest) (*TrackingResult, error) {
	if req.Hours <= 0 || req.Hours > 24 {
		return nil, util.Validation("hours must be within (0, 24]")
	}
	return s.record(userID, model.CategorySleep, []measurement{{model.MetricSleepHours, req.Hours}}, req.RecordedAt, req.Note)
}

// LogMeal 每次提交计一餐，热量可选
func (s *TrackingService) LogMeal(userID uint, req MealRequest) (*TrackingResult, error) {
	if req.Calories < 0 {
		return nil, util.Validation("calories must be non-negative")
	}
	ms := []measurement{{model.MetricMeals, 1}}
	if req.Calories > 0 {
		ms = append(ms, measurement{model.MetricCaloriesConsumed, req.Calories})
	}
	note := strings.TrimSpace(req.Note)
	if mt := strings.TrimSpace(req.MealType); mt != "" {
		note = strings.TrimSpace(mt + " " + note)
	}
	return s.record(userID, model.CategoryMeal, ms, req.RecordedAt, note)
}

func (s *TrackingService) LogMood(userID uint, req MoodRequest) (*TrackingResult, error) {
	if req.Score < 1 || req.Score > 10 {
		return nil, util.Validation("score must be between 1 and 10")
	}
	return s.record(userID, model.CategoryMood, []measurement{{model.MetricMoodScore, req.Score}}, req.RecordedAt, req.Note)
}

// ListEntries 某天全部原始记录
func (s *TrackingService) ListEntries(userID uint, date string) ([]model.TrackingEntry, error) {
	entries, err := s.TrackingRepo.FindByUserAndDate(userID, date)
	if err != nil {
		return nil, util.FromStorage("list tracking entries", err, nil)
	}
	return entries, nil
}

// DaySummary 某天各指标按默认聚合方式的汇总
func (s *TrackingService) DaySummary(userID uint, date string) (*DaySummary, error) {
	summary := &DaySummary{Date: date, Metrics: make([]MetricSummary, 0, len(model.MetricCatalog))}
	for _, spec := range model.MetricCatalog {
		v, err := s.Aggregator.Aggregate(userID, spec.Kind, date, spec.Aggregation)
		if err != nil {
			return nil, err
		}
		summary.Metrics = append(summary.Metrics, MetricSummary{MetricSpec: spec, Value: v})
	}
	return summary, nil
}

func (s *TrackingService) record(userID uint, category model.TrackingCategory, ms []measurement, recordedAt *time.Time, note string) (*TrackingResult, error) {
	at := s.now()
	if recordedAt != nil && !recordedAt.IsZero() {
		if recordedAt.After(at.Add(5 * time.Minute)) {
			return nil, util.Validation("recorded_at cannot be in the future")
		}
		at = *recordedAt
	}
	date := util.DateOf(at)

	entries := make([]model.TrackingEntry, 0, len(ms))
	for _, m := range ms {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) || m.value < 0 {
			return nil, util.Validation("%s must be a non-negative number", m.kind)
		}
		spec, _ := model.LookupMetric(m.kind)
		entries = append(entries, model.TrackingEntry{
			UserID:     userID,
			Category:   category,
			MetricKind: m.kind,
			Value:      m.value,
			Unit:       spec.Unit,
			RecordedAt: at,
			EntryDate:  date,
			Note:       strings.TrimSpace(note),
		})
	}

	// 记录写入与任务重算同一事务，失败时整体回滚
	var stored []model.TrackingEntry
	var writes []*trackingWrite
	err := inTx(s.DB, "write tracking entries", func(tx *gorm.DB) error {
		stored = append([]model.TrackingEntry(nil), entries...)
		writes = writes[:0]
		if err := s.TrackingRepo.WithTx(tx).CreateBatch(stored); err != nil {
			return err
		}
		for _, m := range ms {
			write, err := s.Missions.recomputeTx(tx, userID, m.kind, date)
			if err != nil {
				return err
			}
			writes = append(writes, write)
		}
		return nil
	})
	if err != nil {
		logger.Log.Warn("tracking write rolled back",
			zap.Uint("user_id", userID),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		s.Missions.recordOutcome(err)
		return nil, err
	}

	for _, e := range stored {
		monitoring.TrackingEntries.WithLabelValues(string(e.MetricKind)).Inc()
	}
	logger.Log.Debug("tracking entries written",
		zap.Uint("user_id", userID),
		zap.String("category", string(category)),
		zap.String("date", date),
		zap.Int("count", len(stored)),
	)

	result := &TrackingResult{Entries: stored, Missions: []model.UserMission{}}
	for _, write := range writes {
		s.Missions.finishTrackingWrite(userID, write)
		result.Missions = append(result.Missions, write.updated...)
	}

	return result, nil
}
