package rest

import (
	"net/http"
	"strconv"

	"bank-settlement-engine/internal/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// StatsSource отдает счетчики итогов расчёта (реализуется redis.Client)
type StatsSource interface {
	GetSettlementStats() (map[string]int64, error)
}

// CORSMiddleware возвращает middleware для обработки CORS
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupCommonEndpoints добавляет общие endpoints (health, events, stats) к роутеру
func SetupCommonEndpoints(router *gin.Engine) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Events endpoint
	router.GET("/api/v1/events", func(c *gin.Context) {
		limit := 100
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}
		if eventType := c.Query("type"); eventType != "" {
			c.JSON(http.StatusOK, gin.H{"events": logger.FilterEvents(limit, logger.EventType(eventType))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": logger.GetEvents(limit)})
	})

	// Stats endpoint
	router.GET("/api/v1/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, logger.GetStats())
	})
}

func newEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware())
	return router
}

// SetupTransferRouter настраивает маршруты сервиса приема переводов
func SetupTransferRouter(handlers *Handlers, jwtSecret string) *gin.Engine {
	router := newEngine()

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	api := router.Group("/api/v1")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.POST("/transfers", handlers.InitiateTransfer)
		api.GET("/transfers/generate", handlers.GenerateRandomTransfer)
		api.GET("/transactions/:id", handlers.GetTransactionStatus)
		api.GET("/audit", handlers.ListAudit)
	}

	// Общие endpoints (health, events, stats)
	SetupCommonEndpoints(router)

	return router
}

// SetupSettlementRouter настраивает маршруты воркера расчётов: уведомления, websocket, счетчики.
// stats может быть nil, если Redis отключен.
func SetupSettlementRouter(handlers *NotificationHandlers, jwtSecret string, stats StatsSource) *gin.Engine {
	router := newEngine()

	router.GET("/ws", handlers.ServeUserWS)
	router.GET("/ws/events", handlers.ServeEventsWS)

	api := router.Group("/api/v1")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/notifications", handlers.ListNotifications)
		api.GET("/notifications/stats", handlers.NotificationStats)
		api.PUT("/notifications/read-all", handlers.MarkAllRead)
		api.PUT("/notifications/:id/read", handlers.MarkRead)
	}

	router.GET("/api/v1/settlement/stats", func(c *gin.Context) {
		if stats == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Settlement stats are not available"})
			return
		}
		counters, err := stats.GetSettlementStats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settlement stats"})
			return
		}
		c.JSON(http.StatusOK, counters)
	})

	SetupCommonEndpoints(router)

	return router
}
