package router

import (
	"time"

	"github.com/blues/campaignd/internal/handler"
	"github.com/blues/campaignd/internal/logger"
	"github.com/gin-gonic/gin"
)

// Setup 注册路由；history 为 nil 时不提供流水与事件查询
func Setup(campaigns *handler.CampaignHandler, history *handler.HistoryHandler) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "campaignd",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		v1.GET("/state", campaigns.GetState)
		v1.POST("/wallet/connect", campaigns.Connect)

		group := v1.Group("/campaigns")
		{
			group.GET("", campaigns.GetCampaigns)
			group.POST("", campaigns.CreateCampaign)
			group.GET("/:id", campaigns.GetCampaign)
			group.DELETE("/:id", campaigns.Delete)
			group.POST("/:id/donations", campaigns.Donate)
			group.POST("/:id/withdraw", campaigns.Withdraw)
		}

		if history != nil {
			v1.GET("/transactions", history.GetTransactions)
			v1.GET("/events", history.GetEvents)
		}
	}

	return r
}

// requestLogger 使用应用日志器记录请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
