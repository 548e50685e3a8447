package middleware

import (
	"grader_web/internal/config"
	"grader_web/internal/util"
	"grader_web/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionTokenHeader 新签发的会话令牌同时通过该响应头返回，供 API 客户端使用
const SessionTokenHeader = "X-Grader-Token"

// GraderSession 识别评分者。优先读取 Authorization: Bearer，其次读取 cookie；
// 都没有或无效时分配新的会话 id 并写回 cookie
func GraderSession(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString, _ = c.Cookie(cfg.CookieName)
		}

		if tokenString != "" {
			claims, err := util.ParseSessionToken(tokenString, cfg.Secret)
			if err == nil {
				util.SetGraderID(c, claims.SessionID)
				c.Next()
				return
			}
			logger.Log.Debug("Discarding invalid session token", zap.Error(err))
		}

		sid := uuid.New().String()
		token, err := util.GenerateSessionToken(sid, cfg.Secret, cfg.ExpireTime)
		if err != nil {
			logger.Log.Error("Failed to sign session token", zap.Error(err))
		} else {
			c.SetCookie(cfg.CookieName, token, int(cfg.ExpireTime.Seconds()), "/", "", c.Request.TLS != nil, true)
			c.Header(SessionTokenHeader, token)
		}

		util.SetGraderID(c, sid)
		c.Next()
	}
}
