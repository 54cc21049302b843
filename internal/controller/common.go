package controller

import (
	"wellness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 未认证时已写入 401 响应
func currentUser(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return user.UserID, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.Fail(ctx, err)
		return 0, false
	}
	return id, true
}

func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		util.BadRequest(ctx, err.Error())
		return false
	}
	return true
}
