package controller

import (
	"strconv"
	"wellness_backend/internal/service"
	"wellness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: activityService}
}

// ListActivities godoc
// @Summary 活动列表及当天完成状态
// @Tags 健康活动
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=[]service.ActivityStatus}
// @Router /api/activities [get]
func (c *ActivityController) ListActivities(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	date, err := util.ParseDate(ctx.Query("date"), util.Today())
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	statuses, err := c.ActivityService.ListActivitiesForUserDate(userID, date)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"date":       date,
		"activities": statuses,
	})
}

// CompleteActivity godoc
// @Summary 完成活动
// @Description 同一活动每天只能完成一次，重复提交返回 409 DUPLICATE_ACTIVITY_COMPLETION
// @Tags 健康活动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "活动ID"
// @Param request body service.CompleteActivityRequest false "强度与时长"
// @Success 201 {object} util.Response{data=model.ActivityCompletion}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/activities/{id}/complete [post]
func (c *ActivityController) CompleteActivity(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	activityID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.CompleteActivityRequest
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, &req) {
		return
	}

	completion, err := c.ActivityService.CompleteActivity(userID, activityID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, completion)
}

// History godoc
// @Summary 活动完成历史
// @Tags 健康活动
// @Produce json
// @Security BearerAuth
// @Param period_days query int false "天数，默认 7"
// @Param end_date query string false "YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=[]model.ActivityCompletion}
// @Router /api/activities/history [get]
func (c *ActivityController) History(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	days, end, ok := periodQuery(ctx)
	if !ok {
		return
	}
	if days == 0 {
		days = util.DefaultPeriodDays
	}
	if days > util.MaxPeriodDays {
		util.BadRequest(ctx, "period_days too large")
		return
	}

	completions, err := c.ActivityService.History(userID, days, end)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, completions)
}

// periodQuery 解析 period_days/end_date，period_days 缺省为 0
func periodQuery(ctx *gin.Context) (int, string, bool) {
	days := 0
	if s := ctx.Query("period_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			util.BadRequest(ctx, "period_days must be a positive integer")
			return 0, "", false
		}
		days = n
	}

	end, err := util.ParseDate(ctx.Query("end_date"), util.Today())
	if err != nil {
		util.Fail(ctx, err)
		return 0, "", false
	}
	return days, end, true
}
