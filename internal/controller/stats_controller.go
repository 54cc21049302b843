package controller

import (
	"wellness_backend/internal/service"
	"wellness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// GetStats godoc
// @Summary 周期统计与健康评分
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param period_days query int false "天数，默认 7"
// @Param end_date query string false "YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=service.Stats}
// @Failure 400 {object} util.Response
// @Router /api/stats [get]
func (c *StatsController) GetStats(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	days, end, ok := periodQuery(ctx)
	if !ok {
		return
	}

	stats, err := c.StatsService.GetStats(userID, days, end)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GetPoints godoc
// @Summary 积分余额
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.PointsBalance}
// @Router /api/points [get]
func (c *StatsController) GetPoints(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	balance, err := c.StatsService.PointsBalance(userID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, balance)
}
