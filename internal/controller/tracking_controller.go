package controller

import (
	"wellness_backend/internal/service"
	"wellness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TrackingController struct {
	TrackingService *service.TrackingService
}

func NewTrackingController(trackingService *service.TrackingService) *TrackingController {
	return &TrackingController{TrackingService: trackingService}
}

// LogFitness godoc
// @Summary 运动打卡
// @Description 同一天多次提交按累加计算
// @Tags 打卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.FitnessRequest true "运动数据"
// @Success 201 {object} util.Response{data=service.TrackingResult}
// @Failure 400 {object} util.Response
// @Router /api/tracking/fitness [post]
func (c *TrackingController) LogFitness(ctx *gin.Context) {
	var req service.FitnessRequest
	c.handle(ctx, &req, func(userID uint) (*service.TrackingResult, error) {
		return c.TrackingService.LogFitness(userID, req)
	})
}

// LogWater godoc
// @Summary 饮水打卡
// @Tags 打卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.WaterRequest true "饮水量"
// @Success 201 {object} util.Response{data=service.TrackingResult}
// @Router /api/tracking/water [post]
func (c *TrackingController) LogWater(ctx *gin.Context) {
	var req service.WaterRequest
	c.handle(ctx, &req, func(userID uint) (*service.TrackingResult, error) {
		return c.TrackingService.LogWater(userID, req)
	})
}

// LogSleep godoc
// @Summary 睡眠打卡
// @Tags 打卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SleepRequest true "睡眠时长"
// @Success 201 {object} util.Response{data=service.TrackingResult}
// @Router /api/tracking/sleep [post]
func (c *TrackingController) LogSleep(ctx *gin.Context) {
	var req service.SleepRequest
	c.handle(ctx, &req, func(userID uint) (*service.TrackingResult, error) {
		return c.TrackingService.LogSleep(userID, req)
	})
}

// LogMeal godoc
// @Summary 饮食打卡
// @Tags 打卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MealRequest true "餐食"
// @Success 201 {object} util.Response{data=service.TrackingResult}
// @Router /api/tracking/meal [post]
func (c *TrackingController) LogMeal(ctx *gin.Context) {
	var req service.MealRequest
	c.handle(ctx, &req, func(userID uint) (*service.TrackingResult, error) {
		return c.TrackingService.LogMeal(userID, req)
	})
}

// LogMood godoc
// @Summary 心情打卡
// @Tags 打卡
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MoodRequest true "心情评分 1-10"
// @Success 201 {object} util.Response{data=service.TrackingResult}
// @Router /api/tracking/mood [post]
func (c *TrackingController) LogMood(ctx *gin.Context) {
	var req service.MoodRequest
	c.handle(ctx, &req, func(userID uint) (*service.TrackingResult, error) {
		return c.TrackingService.LogMood(userID, req)
	})
}

// ListEntries godoc
// @Summary 当天打卡记录
// @Tags 打卡
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=[]model.TrackingEntry}
// @Router /api/tracking/entries [get]
func (c *TrackingController) ListEntries(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	date, err := util.ParseDate(ctx.Query("date"), util.Today())
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	entries, err := c.TrackingService.ListEntries(userID, date)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// DaySummary godoc
// @Summary 当天各指标汇总
// @Tags 打卡
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=service.DaySummary}
// @Router /api/tracking/summary [get]
func (c *TrackingController) DaySummary(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	date, err := util.ParseDate(ctx.Query("date"), util.Today())
	if err != nil {
		util.Fail(ctx, err)
		return
	}

	summary, err := c.TrackingService.DaySummary(userID, date)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

func (c *TrackingController) handle(ctx *gin.Context, req interface{}, write func(userID uint) (*service.TrackingResult, error)) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	if !bindJSON(ctx, req) {
		return
	}

	result, err := write(userID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, result)
}
