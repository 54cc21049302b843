package service

import (
	"context"
	"math"
	"sync"
	"wellness_backend/internal/config"
	"wellness_backend/internal/model"
	"wellness_backend/internal/repository"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/logger"

	"go.uber.org/zap"
)

// ScoreWeights wellness_score 各分项权重
type ScoreWeights struct {
	Activity float64 `json:"activity"`
	Mission  float64 `json:"mission"`
	Tracking float64 `json:"tracking"`
}

// ScoreComponents 各分项覆盖率，取值 [0, 1]
type ScoreComponents struct {
	ActivityCoverage  float64 `json:"activity_coverage"`
	MissionCompletion float64 `json:"mission_completion"`
	TrackingCoverage  float64 `json:"tracking_coverage"`
}

type MetricStats struct {
	model.MetricSpec
	Total        float64 `json:"total"`
	DailyAverage float64 `json:"daily_average"`
	DaysLogged   int     `json:"days_logged"`
}

// Stats 统计周期汇总
type Stats struct {
	PeriodDays          int             `json:"period_days"`
	StartDate           string          `json:"start_date"`
	EndDate             string          `json:"end_date"`
	AvailableActivities int64           `json:"available_activities"`
	ActivityCompletions int64           `json:"activity_completions"`
	ActivityPoints      int64           `json:"activity_points"`
	ActiveDays          int64           `json:"active_days"`
	MissionsAccepted    int64           `json:"missions_accepted"`
	MissionsCompleted   int64           `json:"missions_completed"`
	MissionPoints       int64           `json:"mission_points"`
	PeriodPoints        int64           `json:"period_points"`
	Metrics             []MetricStats   `json:"metrics"`
	Components          ScoreComponents `json:"components"`
	Weights             ScoreWeights    `json:"weights"`
	WellnessScore       int             `json:"wellness_score"`
}

type PointsBalance struct {
	UserID uint  `json:"user_id"`
	Total  int64 `json:"total"`
}

type StatsService struct {
	ActivityRepo *repository.ActivityRepository
	MissionRepo  *repository.MissionRepository
	PointRepo    *repository.PointRepository
	Aggregator   *Aggregator
	Cache        *StatsCache

	defaultDays int
	maxDays     int

	mu      sync.RWMutex
	weights ScoreWeights
}

func NewStatsService(
	activityRepo *repository.ActivityRepository,
	missionRepo *repository.MissionRepository,
	pointRepo *repository.PointRepository,
	aggregator *Aggregator,
	cache *StatsCache,
	cfg *config.Config,
) *StatsService {
	s := &StatsService{
		ActivityRepo: activityRepo,
		MissionRepo:  missionRepo,
		PointRepo:    pointRepo,
		Aggregator:   aggregator,
		Cache:        cache,
		defaultDays:  cfg.Stats.DefaultPeriodDays,
		maxDays:      cfg.Stats.MaxPeriodDays,
	}
	if s.defaultDays <= 0 {
		s.defaultDays = util.DefaultPeriodDays
	}
	if s.maxDays < s.defaultDays {
		s.maxDays = util.MaxPeriodDays
	}
	s.SetWeights(cfg.Scoring)
	return s
}

// SetWeights 配置热更新时调用
func (s *StatsService) SetWeights(sc config.ScoringConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = ScoreWeights{
		Activity: sc.ActivityWeight,
		Mission:  sc.MissionWeight,
		Tracking: sc.TrackingWeight,
	}
}

func (s *StatsService) Weights() ScoreWeights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// Invalidate 实现 StatsInvalidator
func (s *StatsService) Invalidate(userID uint) {
	s.Cache.Invalidate(userID)
}

// ResolvePeriod 校验统计周期，0 表示默认值
func (s *StatsService) ResolvePeriod(periodDays int, endDate string) (int, string, error) {
	if periodDays == 0 {
		periodDays = s.defaultDays
	}
	if periodDays < 1 || periodDays > s.maxDays {
		return 0, "", util.Validation("period_days must be between 1 and %d", s.maxDays)
	}
	end, err := util.ParseDate(endDate, util.Today())
	if err != nil {
		return 0, "", err
	}
	return periodDays, end, nil
}

// GetStats 周期汇总；缓存只是加速路径，缓存故障时直接计算
func (s *StatsService) GetStats(userID uint, periodDays int, endDate string) (*Stats, error) {
	days, end, err := s.ResolvePeriod(periodDays, endDate)
	if err != nil {
		return nil, err
	}

	var key string
	if s.Cache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		key, err = s.Cache.Key(ctx, userID, days, end)
		if err == nil {
			var cached Stats
			hit, err := s.Cache.Get(ctx, key, &cached)
			if err == nil && hit {
				s.score(&cached)
				return &cached, nil
			}
			if err != nil {
				logger.Log.Warn("stats cache read failed", zap.Uint("user_id", userID), zap.Error(err))
			}
		} else {
			logger.Log.Warn("stats cache unavailable", zap.Uint("user_id", userID), zap.Error(err))
			key = ""
		}
	}

	stats, err := s.compute(userID, days, end)
	if err != nil {
		return nil, err
	}
	s.score(stats)

	if key != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()
		if err := s.Cache.Set(ctx, key, stats); err != nil {
			logger.Log.Warn("stats cache write failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return stats, nil
}

// PointsBalance 用户积分总额
func (s *StatsService) PointsBalance(userID uint) (*PointsBalance, error) {
	total, err := s.PointRepo.SumByUser(userID)
	if err != nil {
		return nil, util.FromStorage("sum points", err, nil)
	}
	return &PointsBalance{UserID: userID, Total: total}, nil
}

func (s *StatsService) compute(userID uint, days int, end string) (*Stats, error) {
	from, to := util.DateRange(end, days)
	stats := &Stats{PeriodDays: days, StartDate: from, EndDate: to}

	var err error
	if stats.AvailableActivities, err = s.ActivityRepo.CountEnabled(); err != nil {
		return nil, util.FromStorage("count activities", err, nil)
	}
	stats.ActivityCompletions, stats.ActivityPoints, stats.ActiveDays, err = s.ActivityRepo.CompletionSummary(userID, from, to)
	if err != nil {
		return nil, util.FromStorage("summarize completions", err, nil)
	}
	if stats.MissionsAccepted, err = s.MissionRepo.CountAccepted(userID, from, to); err != nil {
		return nil, util.FromStorage("count accepted missions", err, nil)
	}
	if stats.MissionsCompleted, err = s.MissionRepo.CountCompleted(userID, from, to); err != nil {
		return nil, util.FromStorage("count completed missions", err, nil)
	}
	if stats.MissionPoints, err = s.PointRepo.SumBySource(userID, model.PointSourceMission, from, to); err != nil {
		return nil, util.FromStorage("sum mission points", err, nil)
	}
	stats.PeriodPoints = stats.ActivityPoints + stats.MissionPoints

	stats.Metrics = make([]MetricStats, 0, len(model.MetricCatalog))
	for _, spec := range model.MetricCatalog {
		series, err := s.Aggregator.DailySeries(userID, spec.Kind, from, to, spec.Aggregation)
		if err != nil {
			return nil, err
		}
		stats.Metrics = append(stats.Metrics, summarizeSeries(spec, series, days))
	}

	loggedPairs, err := s.TrackingPairs(userID, from, to)
	if err != nil {
		return nil, err
	}

	stats.Components = ScoreComponents{
		ActivityCoverage:  ratio(float64(stats.ActiveDays), float64(days)),
		MissionCompletion: ratio(float64(stats.MissionsCompleted), float64(stats.MissionsAccepted)),
		TrackingCoverage:  ratio(float64(loggedPairs), float64(days*len(model.TrackingCategories))),
	}
	return stats, nil
}

// TrackingPairs 区间内有记录的 (日期, 分类) 组合数
func (s *StatsService) TrackingPairs(userID uint, from, to string) (int, error) {
	n, err := s.Aggregator.TrackingRepo.LoggedCategoryDays(userID, from, to)
	if err != nil {
		return 0, util.FromStorage("count logged categories", err, nil)
	}
	return n, nil
}

// score 按当前权重计算，缓存命中时同样重算以反映权重热更新
func (s *StatsService) score(stats *Stats) {
	w := s.Weights()
	stats.Weights = w
	stats.WellnessScore = WellnessScore(stats.Components, w)
}

// WellnessScore round(100 * Σw·c / Σw)，权重和为 0 时为 0
func WellnessScore(c ScoreComponents, w ScoreWeights) int {
	total := w.Activity + w.Mission + w.Tracking
	if total <= 0 {
		return 0
	}
	blend := w.Activity*c.ActivityCoverage + w.Mission*c.MissionCompletion + w.Tracking*c.TrackingCoverage
	score := int(math.Round(100 * blend / total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// summarizeSeries MAX 类指标（心情）按有记录的天数取平均，其余按周期天数
func summarizeSeries(spec model.MetricSpec, series []repository.DailyAggregate, days int) MetricStats {
	ms := MetricStats{MetricSpec: spec, DaysLogged: len(series)}
	for _, d := range series {
		ms.Total += d.Value
	}

	divisor := days
	if spec.Aggregation == model.AggMax {
		divisor = ms.DaysLogged
	}
	if divisor > 0 {
		ms.DailyAverage = math.Round(ms.Total/float64(divisor)*100) / 100
	}
	return ms
}

func ratio(n, d float64) float64 {
	if d <= 0 {
		return 0
	}
	r := n / d
	if r > 1 {
		return 1
	}
	return r
}
