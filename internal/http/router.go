package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/storepulse/backend/internal/ai"
	"github.com/storepulse/backend/internal/collector"
	"github.com/storepulse/backend/internal/config"
	"github.com/storepulse/backend/internal/db"
	"github.com/storepulse/backend/internal/http/handlers"
	"github.com/storepulse/backend/internal/http/middleware"
	"github.com/storepulse/backend/internal/metrics"
	"github.com/storepulse/backend/internal/service"

	_ "github.com/storepulse/backend/docs"
)

func Router(cfg config.Config, store *db.Store, svc *service.AggregationService, processor collector.Processor, assistant ai.Assistant, reg *metrics.Registry, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Service:   svc,
		Processor: processor,
		Assistant: assistant,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(reg.Handler()))

	api := r.Group("/api")
	{
		api.GET("/insights/latest", h.InsightsLatest)
		api.GET("/snapshots/latest", h.SnapshotLatest)
		api.GET("/snapshots/:date", h.SnapshotByDate)
		api.GET("/regions", h.Regions)
		api.GET("/runs/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/aggregate", h.Aggregate)
		admin.POST("/insights/import", h.ImportInsights)
		admin.POST("/collect", h.Collect)
		admin.POST("/assistant/chat", h.AssistantChat)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
