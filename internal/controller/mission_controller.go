package controller

import (
	"wellness_backend/internal/service"
	"wellness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MissionController struct {
	MissionService *service.MissionService
}

func NewMissionController(missionService *service.MissionService) *MissionController {
	return &MissionController{MissionService: missionService}
}

// AcceptMissionRequest 接受任务请求
// swagger:model AcceptMissionRequest
type AcceptMissionRequest struct {
	MissionDate string `json:"mission_date"`
}

// UpdateProgressRequest 手动更新进度请求
// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	CurrentValue *float64 `json:"current_value" binding:"required"`
	Notes        string   `json:"notes" binding:"max=1000"`
}

// ListMissions godoc
// @Summary 任务目录
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.MissionDefinition}
// @Router /api/missions [get]
func (c *MissionController) ListMissions(ctx *gin.Context) {
	missions, err := c.MissionService.ListCatalog()
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, missions)
}

// ListUserMissions godoc
// @Summary 我的任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param status query string false "active/completed/cancelled"
// @Success 200 {object} util.Response{data=[]model.UserMission}
// @Failure 400 {object} util.Response
// @Router /api/user-missions [get]
func (c *MissionController) ListUserMissions(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	ums, err := c.MissionService.ListUserMissions(userID, ctx.Query("status"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, ums)
}

// GetUserMission godoc
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户任务ID"
// @Success 200 {object} util.Response{data=model.UserMission}
// @Failure 404 {object} util.Response
// @Router /api/user-missions/{id} [get]
func (c *MissionController) GetUserMission(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	um, err := c.MissionService.GetUserMission(userID, id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, um)
}

// AcceptMission godoc
// @Summary 接受任务
// @Description 同一任务同一日期已有进行中或已完成记录时返回 409 ALREADY_ACCEPTED
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Param request body AcceptMissionRequest false "可选的任务日期"
// @Success 201 {object} util.Response{data=model.UserMission}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/missions/{id}/accept [post]
func (c *MissionController) AcceptMission(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	missionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req AcceptMissionRequest
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, &req) {
		return
	}

	um, err := c.MissionService.AcceptMission(userID, missionID, req.MissionDate)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, um)
}

// UpdateProgress godoc
// @Summary 手动更新任务进度
// @Description 仅适用于未绑定打卡指标的任务
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户任务ID"
// @Param request body UpdateProgressRequest true "当前值"
// @Success 200 {object} util.Response{data=model.UserMission}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/user-missions/{id}/progress [patch]
func (c *MissionController) UpdateProgress(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}

	um, err := c.MissionService.UpdateProgressManually(userID, id, *req.CurrentValue, req.Notes)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, um)
}

// AbandonMission godoc
// @Summary 放弃任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户任务ID"
// @Success 200 {object} util.Response{data=model.UserMission}
// @Failure 409 {object} util.Response
// @Router /api/user-missions/{id}/abandon [post]
func (c *MissionController) AbandonMission(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	um, err := c.MissionService.AbandonMission(userID, id)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, um)
}
