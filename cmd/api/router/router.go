package router

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"vocab-updated/aggregator"
	"vocab-updated/cmd/api/auth"
	"vocab-updated/cmd/api/handlers"
	"vocab-updated/cmd/api/middleware"
	"vocab-updated/config"
	"vocab-updated/db"
	_ "vocab-updated/docs"
)

// New wires the HTTP surface: health check, swagger, and the bearer-guarded
// daily content endpoints.
func New(agg *aggregator.Aggregator, store aggregator.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())
	r.Use(middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if client := db.Client(); client != nil {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		config.Logger.Warnf("JWT auth disabled: %v", err)
		jwtManager = nil
	}
	serviceToken := os.Getenv("SERVICE_TOKEN")
	if jwtManager == nil && serviceToken == "" {
		config.Logger.Warn("no SERVICE_TOKEN or JWT_SECRET configured, all aggregation requests will be rejected")
	}
	guard := middleware.ServiceAuthMiddleware(jwtManager, serviceToken)

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.POST("/aggregate-daily-content", guard, handlers.AggregateDailyContentHandler(agg))
		api.GET("/daily-content", guard, handlers.GetDailyContentHandler(store))
	}

	return r
}
