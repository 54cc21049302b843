package service

import (
	"errors"
	"sync"
	"testing"
	"time"
	"wellness_backend/internal/model"
	"wellness_backend/internal/testutil"
	"wellness_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsAccumulateAcrossSubmissions(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_15k", 15000, 50, model.MetricSteps, model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.MissionActive, um.Status)

	res, err := e.tracking.LogFitness(1, FitnessRequest{Steps: float(5436)})
	require.NoError(t, err)
	require.Len(t, res.Missions, 1)
	assert.InDelta(t, 5436, res.Missions[0].CurrentValue, 1e-9)
	assert.Equal(t, 36, res.Missions[0].Progress)
	assert.Equal(t, model.MissionActive, res.Missions[0].Status)

	_, err = e.tracking.LogFitness(1, FitnessRequest{Steps: float(11200)})
	require.NoError(t, err)

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.InDelta(t, 16636, got.CurrentValue, 1e-9)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, model.MissionCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 50, got.PointsAwarded)

	total, err := e.repos.point.SumByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
}

func permutations(values []float64) [][]float64 {
	if len(values) <= 1 {
		return [][]float64{append([]float64{}, values...)}
	}
	var out [][]float64
	for i := range values {
		rest := make([]float64, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]float64{values[i]}, p...))
		}
	}
	return out
}

func TestRecomputeIsOrderAndDuplicateIndependent(t *testing.T) {
	e := newEngine(t)
	total := testutil.CreateMission(t, e.db, "water_big", 1e9, 0, model.MetricWaterMl, model.AggSum)
	peak := testutil.CreateMission(t, e.db, "water_peak", 1e9, 0, model.MetricWaterMl, model.AggMax)
	count := testutil.CreateMission(t, e.db, "water_count", 1e9, 0, model.MetricWaterMl, model.AggCount)

	values := []float64{300, 1200, 50, 800}
	for i, order := range permutations(values) {
		userID := uint(100 + i)
		ids := map[uint]uint{}
		for _, def := range []*model.MissionDefinition{total, peak, count} {
			um, err := e.missions.AcceptMission(userID, def.ID, "")
			require.NoError(t, err)
			ids[def.ID] = um.ID
		}

		for _, v := range order {
			require.NoError(t, e.repos.tracking.CreateBatch([]model.TrackingEntry{entry(userID, model.MetricWaterMl, today, v)}))
			_, err := e.missions.RecordTrackingWrite(userID, model.MetricWaterMl, today)
			require.NoError(t, err)
		}
		// 客户端重试
		_, err := e.missions.RecordTrackingWrite(userID, model.MetricWaterMl, today)
		require.NoError(t, err)

		want := map[uint]float64{total.ID: 2350, peak.ID: 1200, count.ID: 4}
		for missionID, umID := range ids {
			got, err := e.missions.GetUserMission(userID, umID)
			require.NoError(t, err)
			assert.InDelta(t, want[missionID], got.CurrentValue, 1e-9, "order %v", order)
			assert.Equal(t, ComputeProgress(got.CurrentValue, 1e9), got.Progress)
		}
	}
}

func TestAcceptTwiceReturnsAlreadyAccepted(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "meditate", 10, 20, "", model.AggSum)

	first, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	before, err := e.missions.GetUserMission(1, first.ID)
	require.NoError(t, err)

	e.setNow(day.Add(time.Hour))
	_, err = e.missions.AcceptMission(1, def.ID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrAlreadyAccepted))
	assert.Equal(t, util.KindConflict, util.KindOf(err))

	after, err := e.missions.GetUserMission(1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.CurrentValue, after.CurrentValue)
	assert.True(t, before.AcceptedAt.Equal(after.AcceptedAt))
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))

	ums, err := e.missions.ListUserMissions(1, "")
	require.NoError(t, err)
	assert.Len(t, ums, 1)

	// 其他用户不受影响
	_, err = e.missions.AcceptMission(2, def.ID, "")
	assert.NoError(t, err)
}

func TestAcceptAgainAfterAbandonAndNotAfterCompletion(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "read", 20, 15, "", model.AggSum)

	first, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	_, err = e.missions.AbandonMission(1, first.ID)
	require.NoError(t, err)

	second, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = e.missions.UpdateProgressManually(1, second.ID, 20, "")
	require.NoError(t, err)

	_, err = e.missions.AcceptMission(1, def.ID, "")
	assert.True(t, errors.Is(err, util.ErrAlreadyAccepted))
}

func TestDatedMissionsAreIndependentPerDate(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_dated", 1000, 10, model.MetricSteps, model.AggSum)

	a, err := e.missions.AcceptMission(1, def.ID, today)
	require.NoError(t, err)
	b, err := e.missions.AcceptMission(1, def.ID, tomorrow)
	require.NoError(t, err)
	_, err = e.missions.AcceptMission(1, def.ID, today)
	assert.True(t, errors.Is(err, util.ErrAlreadyAccepted))

	_, err = e.tracking.LogFitness(1, FitnessRequest{Steps: float(400)})
	require.NoError(t, err)

	gotA, err := e.missions.GetUserMission(1, a.ID)
	require.NoError(t, err)
	gotB, err := e.missions.GetUserMission(1, b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 400, gotA.CurrentValue, 1e-9)
	assert.InDelta(t, 0, gotB.CurrentValue, 1e-9)

	_, err = e.missions.AcceptMission(1, def.ID, "2024-02-30")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestAcceptPicksUpEntriesAlreadyLogged(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_10k", 10000, 50, model.MetricSteps, model.AggSum)

	_, err := e.tracking.LogFitness(1, FitnessRequest{Steps: float(7000)})
	require.NoError(t, err)
	_, err = e.tracking.LogFitness(1, FitnessRequest{Steps: float(4000)})
	require.NoError(t, err)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	assert.InDelta(t, 11000, um.CurrentValue, 1e-9)
	assert.Equal(t, model.MissionCompleted, um.Status)
	assert.Equal(t, 100, um.Progress)
}

func TestCompletedMissionNeverReverts(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "sleep_8h", 8, 30, model.MetricSleepHours, model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	_, err = e.tracking.LogSleep(1, SleepRequest{Hours: 8})
	require.NoError(t, err)

	// 后续写入不再修改已完成任务，积分只发放一次
	res, err := e.tracking.LogSleep(1, SleepRequest{Hours: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Missions)

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCompleted, got.Status)
	assert.InDelta(t, 8, got.CurrentValue, 1e-9)
	assert.Equal(t, 100, got.Progress)

	_, err = e.missions.UpdateProgressManually(1, um.ID, 0, "")
	assert.True(t, errors.Is(err, util.ErrAlreadyCompleted))
	_, err = e.missions.AbandonMission(1, um.ID)
	assert.True(t, errors.Is(err, util.ErrAlreadyCompleted))

	total, err := e.repos.point.SumByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
}

func TestManualProgressAndTerminalStates(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "meditate_10", 10, 20, "", model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)

	um, err = e.missions.UpdateProgressManually(1, um.ID, 4, "  morning session ")
	require.NoError(t, err)
	assert.Equal(t, 40, um.Progress)
	assert.Equal(t, model.MissionActive, um.Status)
	assert.Equal(t, "morning session", um.Notes)

	// 手动值为绝对值而不是增量
	um, err = e.missions.UpdateProgressManually(1, um.ID, 4, "")
	require.NoError(t, err)
	assert.InDelta(t, 4, um.CurrentValue, 1e-9)

	um, err = e.missions.UpdateProgressManually(1, um.ID, 12, "")
	require.NoError(t, err)
	assert.Equal(t, model.MissionCompleted, um.Status)
	assert.Equal(t, 100, um.Progress)
	assert.Equal(t, 20, um.PointsAwarded)

	_, err = e.missions.UpdateProgressManually(1, um.ID, 1, "")
	assert.True(t, errors.Is(err, util.ErrAlreadyCompleted))

	_, err = e.missions.UpdateProgressManually(1, um.ID, -1, "")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestAbandonIsIrreversible(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "read_20", 20, 15, "", model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)

	cancelled, err := e.missions.AbandonMission(1, um.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = e.missions.AbandonMission(1, um.ID)
	assert.True(t, errors.Is(err, util.ErrAlreadyCancelled))
	_, err = e.missions.UpdateProgressManually(1, um.ID, 20, "")
	assert.True(t, errors.Is(err, util.ErrAlreadyCancelled))

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCancelled, got.Status)
	assert.Equal(t, 0, got.PointsAwarded)
}

func TestAbandonedTrackedMissionIgnoresWrites(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "hydrate", 2000, 20, model.MetricWaterMl, model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	_, err = e.missions.AbandonMission(1, um.ID)
	require.NoError(t, err)

	_, err = e.tracking.LogWater(1, WaterRequest{AmountMl: 2500})
	require.NoError(t, err)

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCancelled, got.Status)
	assert.InDelta(t, 0, got.CurrentValue, 1e-9)
}

func TestTrackedMissionRejectsManualUpdate(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps", 1000, 10, model.MetricSteps, model.AggSum)

	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)

	_, err = e.missions.UpdateProgressManually(1, um.ID, 5000, "")
	assert.True(t, errors.Is(err, util.ErrTrackedMissionManual))
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestMissionNotFound(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "hidden", 10, 0, "", model.AggSum)
	testutil.Disable(t, e.db, def)

	_, err := e.missions.AcceptMission(1, 999, "")
	assert.True(t, errors.Is(err, util.ErrMissionNotFound))
	assert.Equal(t, util.KindNotFound, util.KindOf(err))

	_, err = e.missions.AcceptMission(1, def.ID, "")
	assert.True(t, errors.Is(err, util.ErrMissionNotFound))

	own := testutil.CreateMission(t, e.db, "own", 10, 0, "", model.AggSum)
	um, err := e.missions.AcceptMission(1, own.ID, "")
	require.NoError(t, err)

	// 其他用户的任务不可见
	_, err = e.missions.GetUserMission(2, um.ID)
	assert.True(t, errors.Is(err, util.ErrUserMissionNotFound))
	_, err = e.missions.AbandonMission(2, um.ID)
	assert.True(t, errors.Is(err, util.ErrUserMissionNotFound))
	_, err = e.missions.UpdateProgressManually(2, um.ID, 1, "")
	assert.True(t, errors.Is(err, util.ErrUserMissionNotFound))
}

func TestListUserMissionsFiltersByStatus(t *testing.T) {
	e := newEngine(t)
	a := testutil.CreateMission(t, e.db, "a", 1, 0, "", model.AggSum)
	b := testutil.CreateMission(t, e.db, "b", 1, 0, "", model.AggSum)
	c := testutil.CreateMission(t, e.db, "c", 1, 0, "", model.AggSum)

	_, err := e.missions.AcceptMission(1, a.ID, "")
	require.NoError(t, err)
	umB, err := e.missions.AcceptMission(1, b.ID, "")
	require.NoError(t, err)
	umC, err := e.missions.AcceptMission(1, c.ID, "")
	require.NoError(t, err)

	_, err = e.missions.UpdateProgressManually(1, umB.ID, 1, "")
	require.NoError(t, err)
	_, err = e.missions.AbandonMission(1, umC.ID)
	require.NoError(t, err)

	for status, want := range map[string]int{"": 3, "active": 1, "COMPLETED": 1, "cancelled": 1} {
		ums, err := e.missions.ListUserMissions(1, status)
		require.NoError(t, err)
		assert.Len(t, ums, want, status)
	}

	_, err = e.missions.ListUserMissions(1, "paused")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestRecordTrackingWriteValidation(t *testing.T) {
	e := newEngine(t)

	_, err := e.missions.RecordTrackingWrite(1, model.MetricKind("heart_rate"), today)
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	_, err = e.missions.RecordTrackingWrite(1, model.MetricSteps, "")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	_, err = e.missions.RecordTrackingWrite(1, model.MetricSteps, "10/05/2024")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestWritesInvalidateStats(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "m", 10, 0, "", model.AggSum)

	um, err := e.missions.AcceptMission(7, def.ID, "")
	require.NoError(t, err)
	_, err = e.missions.UpdateProgressManually(7, um.ID, 3, "")
	require.NoError(t, err)
	_, err = e.missions.AbandonMission(7, um.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, e.invalidator.count(7))
	assert.Equal(t, 0, e.invalidator.count(1))
}

func TestConcurrentAcceptsKeepOneMission(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_race", 10000, 50, model.MetricSteps, model.AggSum)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.missions.AcceptMission(1, def.ID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, util.ErrAlreadyAccepted), err.Error())
	}
	assert.Equal(t, 1, succeeded)

	ums, err := e.missions.ListUserMissions(1, "")
	require.NoError(t, err)
	assert.Len(t, ums, 1)
}

func TestConcurrentTrackingWritesAccumulate(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_2k", 2000, 20, model.MetricSteps, model.AggSum)
	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.tracking.LogFitness(1, FitnessRequest{Steps: float(100)})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, got.CurrentValue, 1e-9)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, model.MissionActive, got.Status)

	entries, err := e.tracking.ListEntries(1, today)
	require.NoError(t, err)
	assert.Len(t, entries, workers)
}

func TestUndatedMissionFollowsLatestDay(t *testing.T) {
	e := newEngine(t)
	def := testutil.CreateMission(t, e.db, "steps_10k", 10000, 50, model.MetricSteps, model.AggSum)
	um, err := e.missions.AcceptMission(1, def.ID, "")
	require.NoError(t, err)
	assert.Equal(t, today, um.ProgressOn)

	_, err = e.tracking.LogFitness(1, FitnessRequest{Steps: float(9000)})
	require.NoError(t, err)

	e.setNow(day.AddDate(0, 0, 1))
	_, err = e.tracking.LogFitness(1, FitnessRequest{Steps: float(1000)})
	require.NoError(t, err)

	got, err := e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, got.CurrentValue, 1e-9)
	assert.Equal(t, tomorrow, got.ProgressOn)

	// 补录前一天不影响已经跟随到次日的进度
	earlier := day
	res, err := e.tracking.LogFitness(1, FitnessRequest{Steps: float(100), RecordedAt: &earlier})
	require.NoError(t, err)
	assert.Empty(t, res.Missions)

	got, err = e.missions.GetUserMission(1, um.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, got.CurrentValue, 1e-9)
	assert.Equal(t, 10, got.Progress)

	entries, err := e.tracking.ListEntries(1, today)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
