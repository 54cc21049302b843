package service

import (
	"sync"
	"testing"
	"time"
	"wellness_backend/internal/config"
	"wellness_backend/internal/repository"
	"wellness_backend/internal/testutil"

	"gorm.io/gorm"
)

var day = time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)

const (
	today     = "2024-05-10"
	yesterday = "2024-05-09"
	tomorrow  = "2024-05-11"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[uint]int
}

func (c *countingInvalidator) Invalidate(userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[uint]int)
	}
	c.calls[userID]++
}

func (c *countingInvalidator) count(userID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[userID]
}

type testRepos struct {
	tracking *repository.TrackingRepository
	mission  *repository.MissionRepository
	activity *repository.ActivityRepository
	point    *repository.PointRepository
}

type engine struct {
	db          *gorm.DB
	repos       testRepos
	invalidator *countingInvalidator
	aggregator  *Aggregator
	missions    *MissionService
	tracking    *TrackingService
	activities  *ActivityService
	stats       *StatsService
}

func testConfig() *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{ActivityWeight: 0.4, MissionWeight: 0.35, TrackingWeight: 0.25},
		Stats:   config.StatsConfig{DefaultPeriodDays: 7, MaxPeriodDays: 90},
	}
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	e := &engine{db: testutil.NewDB(t), invalidator: &countingInvalidator{}}
	e.repos.tracking = repository.NewTrackingRepository(e.db)
	e.repos.mission = repository.NewMissionRepository(e.db)
	e.repos.activity = repository.NewActivityRepository(e.db)
	e.repos.point = repository.NewPointRepository(e.db)

	e.aggregator = NewAggregator(e.repos.tracking)
	e.stats = NewStatsService(e.repos.activity, e.repos.mission, e.repos.point, e.aggregator, NewStatsCache(nil, 0), testConfig())
	e.missions = NewMissionService(e.repos.mission, e.repos.point, e.repos.tracking, e.invalidator, e.db)
	e.tracking = NewTrackingService(e.repos.tracking, e.missions, e.aggregator, e.db)
	e.activities = NewActivityService(e.repos.activity, e.repos.point, e.invalidator, e.db)

	e.setNow(day)
	return e
}

func (e *engine) setNow(t time.Time) {
	now := func() time.Time { return t }
	e.missions.now = now
	e.tracking.now = now
	e.activities.now = now
}

func float(v float64) *float64 {
	return &v
}
