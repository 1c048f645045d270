package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/tms-dashboard/internal/api/handlers"
	"github.com/andresuchdata/tms-dashboard/internal/api/middleware"
	"github.com/andresuchdata/tms-dashboard/internal/service"
)

type Services struct {
	Dashboard *service.DashboardService
	// FetchRuns is nil when run tracking is disabled.
	FetchRuns handlers.RunStore
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Dashboard != nil {
			dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
			dashboardGroup := apiGroup.Group("/dashboard")
			{
				dashboardGroup.GET("/regions", dashboardHandler.GetRegions)
				dashboardGroup.GET("/statuses", dashboardHandler.GetStatuses)
				dashboardGroup.GET("/projects/:project/stats", dashboardHandler.GetProjectStats)

				regionGroup := dashboardGroup.Group("/regions/:region")
				{
					regionGroup.GET("/rows", dashboardHandler.GetRows)
					regionGroup.GET("/rows.xlsx", dashboardHandler.ExportRows)
					regionGroup.GET("/forecast", dashboardHandler.GetForecast)
					regionGroup.GET("/history/monthly", dashboardHandler.GetMonthlyHistory)
					regionGroup.GET("/history/weekly", dashboardHandler.GetWeeklyHistory)
				}
			}
		}

		if services.FetchRuns != nil {
			runHandler := handlers.NewFetchRunHandler(services.FetchRuns)
			runGroup := apiGroup.Group("/fetch-runs")
			{
				runGroup.GET("", runHandler.ListRuns)
				runGroup.GET("/:id", runHandler.GetRun)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
