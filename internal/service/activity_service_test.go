package service

import (
	"errors"
	"sync"
	"testing"
	"wellness_backend/internal/model"
	"wellness_backend/internal/testutil"
	"wellness_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFor(t *testing.T) {
	cases := []struct {
		base int
		typ  model.ActivityType
		want int
	}{
		{20, model.ActivityNormal, 20},
		{20, model.ActivityIntense, 30},
		{20, model.ActivityRelaxed, 16},
		{15, model.ActivityIntense, 23},
		{5, model.ActivityRelaxed, 4},
		{0, model.ActivityIntense, 0},
	}
	for _, tc := range cases {
		got, err := PointsFor(tc.base, tc.typ)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%d %s", tc.base, tc.typ)
	}

	_, err := PointsFor(20, model.ActivityType("extreme"))
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func countCompletions(t *testing.T, e *engine, userID, activityID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.ActivityCompletion{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Count(&n).Error)
	return n
}

func TestCompleteActivityAppliesMultiplier(t *testing.T) {
	e := newEngine(t)
	yoga := testutil.CreateActivity(t, e.db, "yoga", 20, 25)

	c, err := e.activities.CompleteActivity(1, yoga.ID, CompleteActivityRequest{ActivityType: "Intense"})
	require.NoError(t, err)
	assert.Equal(t, 30, c.PointsEarned)
	assert.Equal(t, model.ActivityIntense, c.ActivityType)
	assert.Equal(t, 25, c.DurationMinutes)
	assert.Equal(t, today, c.ActivityDate)

	duration := 40
	c, err = e.activities.CompleteActivity(1, yoga.ID, CompleteActivityRequest{ActivityDate: yesterday, ActivityType: "relaxed", DurationMinutes: &duration})
	require.NoError(t, err)
	assert.Equal(t, 16, c.PointsEarned)
	assert.Equal(t, 40, c.DurationMinutes)

	// 缺省为 normal
	c, err = e.activities.CompleteActivity(1, yoga.ID, CompleteActivityRequest{ActivityDate: tomorrow})
	require.NoError(t, err)
	assert.Equal(t, 20, c.PointsEarned)

	total, err := e.repos.point.SumByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(66), total)
}

func TestCompleteActivityTwiceSameDay(t *testing.T) {
	e := newEngine(t)
	walk := testutil.CreateActivity(t, e.db, "walk", 25, 30)

	_, err := e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{})
	require.NoError(t, err)

	_, err = e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{ActivityType: "intense"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrDuplicateCompletion))
	assert.Equal(t, util.KindConflict, util.KindOf(err))

	assert.Equal(t, int64(1), countCompletions(t, e, 1, walk.ID))

	total, err := e.repos.point.SumByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
}

func TestCompleteActivityOnTwoDates(t *testing.T) {
	e := newEngine(t)
	stretch := testutil.CreateActivity(t, e.db, "stretch", 10, 10)

	a, err := e.activities.CompleteActivity(1, stretch.ID, CompleteActivityRequest{ActivityDate: yesterday, ActivityType: "intense"})
	require.NoError(t, err)
	b, err := e.activities.CompleteActivity(1, stretch.ID, CompleteActivityRequest{ActivityDate: today, ActivityType: "relaxed"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 15, a.PointsEarned)
	assert.Equal(t, 8, b.PointsEarned)
	assert.Equal(t, int64(2), countCompletions(t, e, 1, stretch.ID))
}

func TestListActivitiesResetsNextDay(t *testing.T) {
	e := newEngine(t)
	breathe := testutil.CreateActivity(t, e.db, "breathe", 5, 5)
	journal := testutil.CreateActivity(t, e.db, "journal", 10, 10)

	_, err := e.activities.CompleteActivity(1, breathe.ID, CompleteActivityRequest{})
	require.NoError(t, err)

	statuses, err := e.activities.ListActivitiesForUserDate(1, today)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	byID := map[uint]ActivityStatus{}
	for _, s := range statuses {
		byID[s.Activity.ID] = s
	}
	assert.Equal(t, ActivityStatusCompleted, byID[breathe.ID].Status)
	require.NotNil(t, byID[breathe.ID].Completion)
	assert.Equal(t, ActivityStatusAvailable, byID[journal.ID].Status)
	assert.Nil(t, byID[journal.ID].Completion)

	next, err := e.activities.ListActivitiesForUserDate(1, tomorrow)
	require.NoError(t, err)
	for _, s := range next {
		assert.Equal(t, ActivityStatusAvailable, s.Status, s.Activity.Code)
	}

	// 其他用户当天同样可用
	other, err := e.activities.ListActivitiesForUserDate(2, today)
	require.NoError(t, err)
	for _, s := range other {
		assert.Equal(t, ActivityStatusAvailable, s.Status)
	}

	// 历史记录保留
	assert.Equal(t, int64(1), countCompletions(t, e, 1, breathe.ID))
}

func TestConcurrentCompletionsKeepOneRow(t *testing.T) {
	e := newEngine(t)
	hiit := testutil.CreateActivity(t, e.db, "hiit", 40, 25)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.activities.CompleteActivity(1, hiit.ID, CompleteActivityRequest{ActivityType: "intense"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, util.ErrDuplicateCompletion), err.Error())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), countCompletions(t, e, 1, hiit.ID))

	total, err := e.repos.point.SumByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), total)
}

func TestUniqueIndexBacksThePreCheck(t *testing.T) {
	e := newEngine(t)
	walk := testutil.CreateActivity(t, e.db, "walk", 25, 30)

	row := &model.ActivityCompletion{UserID: 1, ActivityID: walk.ID, ActivityDate: today, ActivityType: model.ActivityNormal}
	require.NoError(t, e.repos.activity.CreateCompletion(row))

	dup := &model.ActivityCompletion{UserID: 1, ActivityID: walk.ID, ActivityDate: today, ActivityType: model.ActivityNormal}
	err := e.repos.activity.CreateCompletion(dup)
	require.Error(t, err)
	assert.Equal(t, int64(1), countCompletions(t, e, 1, walk.ID))
}

func TestCompleteActivityRejections(t *testing.T) {
	e := newEngine(t)
	walk := testutil.CreateActivity(t, e.db, "walk", 25, 30)
	retired := testutil.CreateActivity(t, e.db, "retired", 10, 10)
	testutil.Disable(t, e.db, retired)

	_, err := e.activities.CompleteActivity(1, 999, CompleteActivityRequest{})
	assert.True(t, errors.Is(err, util.ErrActivityNotFound))

	_, err = e.activities.CompleteActivity(1, retired.ID, CompleteActivityRequest{})
	assert.True(t, errors.Is(err, util.ErrActivityNotFound))

	_, err = e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{ActivityType: "extreme"})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{ActivityDate: "yesterday"})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	negative := -5
	_, err = e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{DurationMinutes: &negative})
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	assert.Equal(t, int64(0), countCompletions(t, e, 1, walk.ID))

	// 已停用的活动不出现在列表中
	statuses, err := e.activities.ListActivitiesForUserDate(1, today)
	require.NoError(t, err)
	assert.Len(t, statuses, 1)
}

func TestActivityHistory(t *testing.T) {
	e := newEngine(t)
	walk := testutil.CreateActivity(t, e.db, "walk", 25, 30)

	for _, d := range []string{"2024-05-01", "2024-05-08", yesterday, today} {
		_, err := e.activities.CompleteActivity(1, walk.ID, CompleteActivityRequest{ActivityDate: d})
		require.NoError(t, err)
	}

	history, err := e.activities.History(1, 7, today)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, today, history[0].ActivityDate)
	require.NotNil(t, history[0].Activity)
	assert.Equal(t, "walk", history[0].Activity.Code)
}
