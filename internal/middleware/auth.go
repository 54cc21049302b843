package middleware

import (
	"strings"
	"wellness_backend/internal/config"
	"wellness_backend/internal/util"
	"wellness_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 解析 Bearer token，把 claims 放入上下文供 handler 取 user_id
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.String("request_id", RequestID(c)), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// CurrentUserID 已认证用户 ID，未认证时为 0
func CurrentUserID(c *gin.Context) uint {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
