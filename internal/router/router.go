package router

import (
	"github.com/gin-gonic/gin"

	"sudooom.mahjong/internal/config"
	"sudooom.mahjong/internal/handler"
	"sudooom.mahjong/internal/health"
	"sudooom.mahjong/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	checker *health.Checker,
	sessionHandler *handler.SessionHandler,
	handHandler *handler.HandHandler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", checker.Live)
	r.GET("/ready", checker.Ready)

	// API v1
	v1 := r.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.DELETE("/:id", sessionHandler.Delete)
			sessions.GET("/:id/ws", sessionHandler.Stream)

			sessions.POST("/:id/draw", sessionHandler.Draw)
			sessions.POST("/:id/discard", sessionHandler.Discard)
			sessions.POST("/:id/claim", sessionHandler.Claim)
			sessions.POST("/:id/pass", sessionHandler.Pass)
			sessions.POST("/:id/next-round", sessionHandler.NextRound)
			sessions.POST("/:id/pause", sessionHandler.Pause)
			sessions.POST("/:id/resume", sessionHandler.Resume)
		}

		v1.POST("/hands/analyze", handHandler.Analyze)
		v1.GET("/leaderboard", handHandler.Leaderboard)
	}

	return r
}
